package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// PolicyID identifies the minting policy that controls an asset class. The
// zero value is reserved for the ledger's native coin.
type PolicyID [32]byte

// IsNative reports whether the policy is the native-coin marker.
func (p PolicyID) IsNative() bool { return p == PolicyID{} }

func (p PolicyID) String() string { return hex.EncodeToString(p[:]) }

// ParsePolicyID decodes a hex-encoded policy identifier.
func ParsePolicyID(s string) (PolicyID, error) {
	var p PolicyID
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return p, fmt.Errorf("types: invalid policy id: %w", err)
	}
	if len(raw) != len(p) {
		return p, fmt.Errorf("types: policy id must be %d bytes, got %d", len(p), len(raw))
	}
	copy(p[:], raw)
	return p, nil
}

// AssetID names a single asset class: a (policy, token name) pair. The zero
// value identifies the native coin.
type AssetID struct {
	Policy PolicyID
	Name   string
}

// NativeAsset is the identifier of the ledger's native coin.
var NativeAsset = AssetID{}

// IsNative reports whether the identifier names the native coin.
func (a AssetID) IsNative() bool { return a == NativeAsset }

func (a AssetID) String() string {
	if a.IsNative() {
		return "coin"
	}
	return a.Policy.String() + "." + a.Name
}

// AssetQuantity pairs an asset identifier with a signed quantity.
type AssetQuantity struct {
	Asset    AssetID
	Quantity int64
}
