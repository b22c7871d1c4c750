package crypto

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// AddressPrefix defines the human-readable prefixes used by the protocol.
type AddressPrefix string

const (
	// AccountPrefix marks a participant (pubkey-hash) address.
	AccountPrefix AddressPrefix = "addr"
	// SwapPrefix marks a swap contract address derived from a SwapConfig.
	SwapPrefix AddressPrefix = "swap"
	// EscrowPrefix marks an escrow contract address derived from an EscrowConfig.
	EscrowPrefix AddressPrefix = "escw"
	// IdentityPrefix marks the validator address locking membership reference tokens.
	IdentityPrefix AddressPrefix = "idnt"
)

// AddressLen is the byte length of every address payload.
const AddressLen = 20

// Address is a 20-byte identity with a role prefix. Participant addresses are
// pubkey hashes issued by the external wallet collaborator; contract addresses
// are derived deterministically from configuration tuples.
type Address struct {
	prefix AddressPrefix
	raw    [AddressLen]byte
}

// NewAddress constructs an address from a prefix and a 20-byte payload.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != AddressLen {
		return Address{}, fmt.Errorf("crypto: address must be %d bytes, got %d", AddressLen, len(b))
	}
	addr := Address{prefix: prefix}
	copy(addr.raw[:], b)
	return addr, nil
}

// MustAddress is NewAddress for statically-known payloads; it panics on a
// malformed length.
func MustAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// Bytes returns a copy of the 20-byte payload.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLen)
	copy(out, a.raw[:])
	return out
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix { return a.prefix }

// Hex returns the hex-encoded payload without the prefix. Beacon token names
// are built from this form.
func (a Address) Hex() string { return hex.EncodeToString(a.raw[:]) }

// IsZero reports whether the address is the zero value.
func (a Address) IsZero() bool { return a == Address{} }

// String renders the address in bech32 with its prefix.
func (a Address) String() string {
	conv, err := bech32.ConvertBits(a.raw[:], 8, 5, true)
	if err != nil {
		return "<invalid address>"
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		return "<invalid address>"
	}
	return encoded
}

// DecodeAddress parses a bech32 address produced by String.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("crypto: error converting bits: %w", err)
	}
	return NewAddress(AddressPrefix(prefix), conv)
}

// MarshalText renders the address in bech32 form, so addresses embed cleanly
// in JSON datums.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a bech32 address.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// Compare orders addresses by prefix then payload, for deterministic
// iteration.
func (a Address) Compare(other Address) int {
	if a.prefix != other.prefix {
		if a.prefix < other.prefix {
			return -1
		}
		return 1
	}
	return bytes.Compare(a.raw[:], other.raw[:])
}
