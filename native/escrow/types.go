package escrow

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"openswap/core/types"
	"openswap/crypto"
)

var (
	// ErrRecordNotFound is returned when no escrow record matches the lookup.
	ErrRecordNotFound = errors.New("escrow: record not found")
	// ErrRefundLocked is returned when a refund is attempted before the
	// time lock has elapsed.
	ErrRefundLocked = errors.New("escrow: refund still time-locked")
)

// EscrowConfig is the immutable identity of one escrow contract instance,
// independent of any swap configuration.
type EscrowConfig struct {
	Buyer   crypto.Address
	Seller  crypto.Address
	Arbiter crypto.Address
}

// Validate rejects configurations with missing participants.
func (c *EscrowConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("escrow: nil config")
	}
	if c.Buyer.IsZero() || c.Seller.IsZero() || c.Arbiter.IsZero() {
		return fmt.Errorf("escrow: buyer, seller and arbiter must all be set")
	}
	return nil
}

// Address derives the escrow contract address for this configuration.
func (c *EscrowConfig) Address() crypto.Address {
	return crypto.DeriveAddress(crypto.EscrowPrefix, "openswap.escrow",
		c.Buyer.Bytes(), c.Seller.Bytes(), c.Arbiter.Bytes())
}

// OrderID uniquely names one outstanding escrow record at a configuration's
// address. It is a content hash, not a caller-chosen string, so two deposits
// can only collide by reusing the same nonce.
type OrderID [32]byte

func (id OrderID) String() string { return hex.EncodeToString(id[:]) }

// MarshalText renders the id in hex for datum encoding.
func (id OrderID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses a hex-encoded id.
func (id *OrderID) UnmarshalText(text []byte) error {
	raw, err := hex.DecodeString(string(text))
	if err != nil || len(raw) != len(id) {
		return fmt.Errorf("escrow: malformed order id %q", text)
	}
	copy(id[:], raw)
	return nil
}

// DeriveOrderID builds the record identifier from the deposit's content and a
// caller-supplied nonce.
func DeriveOrderID(buyer, seller crypto.Address, nonce [32]byte, orderValue types.Value) OrderID {
	encoded, _ := json.Marshal(orderValue)
	return OrderID(crypto.DeriveID("openswap.order",
		buyer.Bytes(), seller.Bytes(), nonce[:], encoded))
}

// Record is the datum attached to a deposit at an escrow address. It is
// created by an escrow-routed swap, and consumed by Approve or by the
// time-locked Refund.
type Record struct {
	OrderID OrderID `json:"orderId"`
	// Buyer funds the deposit and receives the product on approval.
	Buyer   crypto.Address `json:"buyer"`
	Deposit types.Value    `json:"deposit"`
	// Seller receives the order value on approval.
	Seller crypto.Address `json:"seller"`
	// OrderValue is the payment owed to the seller.
	OrderValue types.Value `json:"orderValue"`
	// ProductValue is the purchased goods held until settlement.
	ProductValue types.Value `json:"productValue"`
	// CreatedAt anchors the refund time lock.
	CreatedAt int64 `json:"createdAt"`
}

// Total returns everything locked at the escrow address for this record.
func (r *Record) Total() types.Value {
	return r.OrderValue.Add(r.Deposit).Add(r.ProductValue)
}

// EncodeRecord renders the escrow datum in its canonical wire form.
func EncodeRecord(record *Record) ([]byte, error) {
	if record == nil {
		return nil, fmt.Errorf("escrow: nil record")
	}
	return json.Marshal(record)
}

// DecodeRecord parses an escrow datum.
func DecodeRecord(datum []byte) (*Record, error) {
	if len(datum) == 0 {
		return nil, fmt.Errorf("escrow: empty datum")
	}
	var record Record
	if err := json.Unmarshal(datum, &record); err != nil {
		return nil, fmt.Errorf("escrow: malformed datum: %w", err)
	}
	return &record, nil
}
