package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNegativeValue is returned when a value that must rest on the ledger
	// carries a negative component.
	ErrNegativeValue = errors.New("types: negative value component")
	// ErrMultiAssetAmbiguous is returned when a single-asset operation is
	// applied to a value holding more than one non-native asset class.
	ErrMultiAssetAmbiguous = errors.New("types: value holds more than one asset class")
)

// Value is a multi-asset quantity bag mapping asset identifiers to signed
// quantities. Keys are unique and order is irrelevant. Components may go
// negative transiently during computation; AssertAllPositive guards the
// at-rest invariant.
type Value map[AssetID]int64

// NewValue returns a value holding the given quantity of the native coin.
func NewValue(coin int64) Value {
	return Value{NativeAsset: coin}
}

// NewAssetValue returns a value holding the given quantity of a single asset.
// A zero quantity is kept as an explicit component so the asset class stays
// identifiable, e.g. in the datum of a fully filled order.
func NewAssetValue(asset AssetID, quantity int64) Value {
	return Value{asset: quantity}
}

// Clone returns an independent copy of the value.
func (v Value) Clone() Value {
	out := make(Value, len(v))
	for id, qty := range v {
		out[id] = qty
	}
	return out
}

// Coin returns the native-coin component.
func (v Value) Coin() int64 { return v[NativeAsset] }

// Quantity returns the quantity of the given asset class.
func (v Value) Quantity(asset AssetID) int64 { return v[asset] }

// Add returns the component-wise sum of v and other.
func (v Value) Add(other Value) Value {
	out := v.Clone()
	for id, qty := range other {
		out[id] += qty
	}
	return out
}

// Sub returns the component-wise difference of v and other. The result may
// carry negative components; that is a transient computation state, never a
// valid at-rest value.
func (v Value) Sub(other Value) Value {
	out := v.Clone()
	for id, qty := range other {
		out[id] -= qty
	}
	return out
}

// Compact returns a copy with all zero components removed. Change outputs use
// this form; datums keep explicit zeros so the traded asset class stays named.
func (v Value) Compact() Value {
	out := make(Value, len(v))
	for id, qty := range v {
		if qty != 0 {
			out[id] = qty
		}
	}
	return out
}

// AssertAllPositive returns ErrNegativeValue if any component is negative.
func (v Value) AssertAllPositive() error {
	for id, qty := range v {
		if qty < 0 {
			return fmt.Errorf("%w: %d of %s", ErrNegativeValue, qty, id)
		}
	}
	return nil
}

// IsZero reports whether every component is zero.
func (v Value) IsZero() bool {
	for _, qty := range v {
		if qty != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether v and other hold identical components.
func (v Value) Equal(other Value) bool {
	diff := v.Sub(other)
	return diff.IsZero()
}

// SingleAsset extracts the one asset class the value deals in. Orders trade
// single-asset pairs: a value qualifies when it holds exactly zero or one
// non-native asset class. With no non-native class present the native coin is
// treated as the asset.
func (v Value) SingleAsset() (AssetQuantity, error) {
	var found *AssetID
	for id := range v {
		if id.IsNative() {
			continue
		}
		if found != nil {
			return AssetQuantity{}, fmt.Errorf("%w: %s and %s", ErrMultiAssetAmbiguous, found, id)
		}
		id := id
		found = &id
	}
	if found == nil {
		return AssetQuantity{Asset: NativeAsset, Quantity: v.Coin()}, nil
	}
	return AssetQuantity{Asset: *found, Quantity: v[*found]}, nil
}

// valueComponent is the canonical wire form of one value entry.
type valueComponent struct {
	Policy   string `json:"policy,omitempty"`
	Name     string `json:"name,omitempty"`
	Quantity int64  `json:"quantity"`
}

// MarshalJSON encodes the value as a deterministic component list sorted by
// asset identifier, so encoded datums are byte-stable.
func (v Value) MarshalJSON() ([]byte, error) {
	components := make([]valueComponent, 0, len(v))
	for id, qty := range v {
		c := valueComponent{Quantity: qty}
		if !id.IsNative() {
			c.Policy = id.Policy.String()
			c.Name = id.Name
		}
		components = append(components, c)
	}
	sort.Slice(components, func(i, j int) bool {
		if components[i].Policy != components[j].Policy {
			return components[i].Policy < components[j].Policy
		}
		return components[i].Name < components[j].Name
	})
	return json.Marshal(components)
}

// UnmarshalJSON decodes a component list produced by MarshalJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	var components []valueComponent
	if err := json.Unmarshal(data, &components); err != nil {
		return err
	}
	out := make(Value, len(components))
	for _, c := range components {
		id := NativeAsset
		if strings.TrimSpace(c.Policy) != "" {
			policy, err := ParsePolicyID(c.Policy)
			if err != nil {
				return err
			}
			id = AssetID{Policy: policy, Name: c.Name}
		}
		out[id] += c.Quantity
	}
	*v = out
	return nil
}

func (v Value) String() string {
	data, err := json.Marshal(v)
	if err != nil {
		return "<invalid value>"
	}
	return string(data)
}
