package crypto

import (
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DeriveAddress hashes a domain tag together with the canonical encoding of a
// configuration tuple and truncates the digest to an address payload. Each
// caller constructs a fresh value from its inputs; there is no shared compiled
// instance, so two differently-configured contracts can never collide and the
// derivation is order-independent across calls.
func DeriveAddress(prefix AddressPrefix, domain string, fields ...[]byte) Address {
	digest := DeriveID(domain, fields...)
	addr := Address{prefix: prefix}
	copy(addr.raw[:], digest[:AddressLen])
	return addr
}

// DeriveID returns the keccak256 digest of a domain tag and a field sequence.
// Fields are length-prefixed before hashing so adjacent fields cannot be
// reassociated.
func DeriveID(domain string, fields ...[]byte) [32]byte {
	parts := make([][]byte, 0, 2*len(fields)+1)
	parts = append(parts, []byte(domain))
	for _, field := range fields {
		parts = append(parts, lengthPrefix(len(field)), field)
	}
	return ethcrypto.Keccak256Hash(parts...)
}

// DerivePolicyID derives a minting-policy identifier from a domain tag and the
// controlling identity, e.g. the beacon policy from the arbiter address.
func DerivePolicyID(domain string, controller Address) [32]byte {
	return DeriveID(domain, []byte(controller.prefix), controller.raw[:])
}

func lengthPrefix(n int) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}
