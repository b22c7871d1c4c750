package swap

import (
	"encoding/json"
	"errors"
	"fmt"

	"openswap/core/types"
	"openswap/crypto"
)

var (
	// ErrInvalidPrice is returned when an order's asked quantity is not positive.
	ErrInvalidPrice = errors.New("swap: order price must be positive")
	// ErrInsufficientFunds is returned when a payment cannot buy a single unit.
	ErrInsufficientFunds = errors.New("swap: payment below unit price")
	// ErrAssetMismatch is returned when a payment's asset class differs from
	// the order's asked asset.
	ErrAssetMismatch = errors.New("swap: payment asset does not match asked asset")
	// ErrLiveOrderNotFound is returned when no record at the contract address
	// carries the configuration's beacon token.
	ErrLiveOrderNotFound = errors.New("swap: live order not found")
	// ErrOrderExists is returned by Init when the configuration already has a
	// live order.
	ErrOrderExists = errors.New("swap: live order already exists")
	// ErrNegativeResultingOffer is returned by Update when the adjusted offer
	// would go negative.
	ErrNegativeResultingOffer = errors.New("swap: resulting offer would be negative")
	// ErrInsufficientFunding is returned when the caller's spendable records
	// cannot cover a transition's outputs.
	ErrInsufficientFunding = errors.New("swap: funding records do not cover outputs")
)

// beaconDomain tags the derivation of the beacon minting policy from the
// arbiter identity.
const beaconDomain = "openswap.beacon"

// DeriveBeaconPolicy returns the beacon minting-policy identifier controlled
// by the given arbiter.
func DeriveBeaconPolicy(arbiter crypto.Address) types.PolicyID {
	return crypto.DerivePolicyID(beaconDomain, arbiter)
}

// SwapConfig is the immutable identity of one order's contract instance. The
// contract address is a deterministic function of the entire tuple, so two
// differently-configured orders never collide.
type SwapConfig struct {
	Asked           types.AssetID
	Offered         types.AssetID
	BeaconPolicy    types.PolicyID
	Seller          crypto.Address
	EscrowEnabled   bool
	EscrowAddress   crypto.Address
	UserTokenPolicy types.PolicyID
}

// Validate rejects configurations that cannot name a well-formed order.
func (c *SwapConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("swap: nil config")
	}
	if c.Asked == c.Offered {
		return fmt.Errorf("swap: asked and offered asset must differ")
	}
	if c.Seller.IsZero() {
		return fmt.Errorf("swap: seller not set")
	}
	if c.BeaconPolicy.IsNative() {
		return fmt.Errorf("swap: beacon policy not set")
	}
	if c.EscrowEnabled && c.EscrowAddress.IsZero() {
		return fmt.Errorf("swap: escrow enabled without escrow address")
	}
	return nil
}

// Address derives the contract address for this configuration. The derivation
// is a pure function of the tuple; every call constructs a fresh value from
// the inputs.
func (c *SwapConfig) Address() crypto.Address {
	escrowFlag := []byte{0}
	if c.EscrowEnabled {
		escrowFlag = []byte{1}
	}
	return crypto.DeriveAddress(crypto.SwapPrefix, "openswap.swap",
		c.Asked.Policy[:], []byte(c.Asked.Name),
		c.Offered.Policy[:], []byte(c.Offered.Name),
		c.BeaconPolicy[:],
		c.Seller.Bytes(),
		escrowFlag,
		c.EscrowAddress.Bytes(),
		c.UserTokenPolicy[:],
	)
}

// BeaconName returns the beacon token name for this configuration: the
// hex-encoded contract address payload.
func (c *SwapConfig) BeaconName() string {
	return c.Address().Hex()
}

// BeaconAsset returns the full beacon asset identifier.
func (c *SwapConfig) BeaconAsset() types.AssetID {
	return types.AssetID{Policy: c.BeaconPolicy, Name: c.BeaconName()}
}

// UserToken returns the membership-token asset for the given holder token
// name under this configuration's user-token policy.
func (c *SwapConfig) UserToken(name string) types.AssetID {
	return types.AssetID{Policy: c.UserTokenPolicy, Name: name}
}

// Order is the datum attached to the live record at a SwapConfig's address:
// the price the seller asks per unit and the quantity still offered. Records
// are replaced, never mutated, so Order values are immutable snapshots.
type Order struct {
	Asked   types.Value `json:"asked"`
	Offered types.Value `json:"offered"`
}

// EncodeOrder renders the order datum in its canonical wire form.
func EncodeOrder(order *Order) ([]byte, error) {
	if order == nil {
		return nil, fmt.Errorf("swap: nil order")
	}
	return json.Marshal(order)
}

// DecodeOrder parses an order datum.
func DecodeOrder(datum []byte) (*Order, error) {
	if len(datum) == 0 {
		return nil, fmt.Errorf("swap: empty order datum")
	}
	var order Order
	if err := json.Unmarshal(datum, &order); err != nil {
		return nil, fmt.Errorf("swap: malformed order datum: %w", err)
	}
	return &order, nil
}
