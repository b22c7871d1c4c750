package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressBech32RoundTrip(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	addr, err := NewAddress(AccountPrefix, raw)
	require.NoError(t, err)

	encoded := addr.String()
	require.Contains(t, encoded, string(AccountPrefix))

	decoded, err := DecodeAddress(encoded)
	require.NoError(t, err)
	require.Equal(t, addr, decoded)
	require.Equal(t, raw, decoded.Bytes())
}

func TestAddressRejectsBadLength(t *testing.T) {
	_, err := NewAddress(AccountPrefix, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestAddressTextCodec(t *testing.T) {
	addr := MustAddress(EscrowPrefix, make([]byte, 20))
	text, err := addr.MarshalText()
	require.NoError(t, err)

	var decoded Address
	require.NoError(t, decoded.UnmarshalText(text))
	require.Equal(t, addr, decoded)
	require.Equal(t, EscrowPrefix, decoded.Prefix())
}

func TestDeriveAddressDeterministic(t *testing.T) {
	a := DeriveAddress(SwapPrefix, "example.domain", []byte("one"), []byte("two"))
	b := DeriveAddress(SwapPrefix, "example.domain", []byte("one"), []byte("two"))
	require.Equal(t, a, b)
	require.Equal(t, SwapPrefix, a.Prefix())
}

func TestDeriveAddressFieldBoundaries(t *testing.T) {
	// Length prefixing keeps ("ab","c") and ("a","bc") distinct.
	a := DeriveAddress(SwapPrefix, "example.domain", []byte("ab"), []byte("c"))
	b := DeriveAddress(SwapPrefix, "example.domain", []byte("a"), []byte("bc"))
	require.NotEqual(t, a, b)
}

func TestDeriveIDDomainSeparation(t *testing.T) {
	a := DeriveID("domain.one", []byte("payload"))
	b := DeriveID("domain.two", []byte("payload"))
	require.NotEqual(t, a, b)
}

func TestDerivePolicyIDPerController(t *testing.T) {
	alice := DeriveAddress(AccountPrefix, "test.wallet", []byte("alice"))
	bob := DeriveAddress(AccountPrefix, "test.wallet", []byte("bob"))
	require.NotEqual(t, DerivePolicyID("test.policy", alice), DerivePolicyID("test.policy", bob))
	require.Equal(t, DerivePolicyID("test.policy", alice), DerivePolicyID("test.policy", alice))
}
