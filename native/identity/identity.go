// Package identity mints membership tokens. Holding a membership token marks
// an address as a registered participant; swap outputs carry the holder's
// token alongside goods and payments. Every mint locks one reference token at
// the identity validator address so the token name stays provably unique.
package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
)

var (
	// ErrQuantityTooSmall is returned when a mint cannot cover the reference
	// token plus at least one holder token.
	ErrQuantityTooSmall = errors.New("identity: mint quantity must be at least 2")
	// ErrInsufficientFunding is returned when the user's spendable records
	// cannot cover the minted outputs.
	ErrInsufficientFunding = errors.New("identity: funding records do not cover outputs")
)

const (
	policyDomain    = "openswap.user"
	validatorDomain = "openswap.identity"
)

// Policy returns the membership-token minting policy controlled by the given
// arbiter.
func Policy(arbiter crypto.Address) types.PolicyID {
	return crypto.DerivePolicyID(policyDomain, arbiter)
}

// ValidatorAddress returns the address holding reference tokens for the given
// arbiter's membership policy.
func ValidatorAddress(arbiter crypto.Address) crypto.Address {
	return crypto.DeriveAddress(crypto.IdentityPrefix, validatorDomain, arbiter.Bytes())
}

// TokenName builds the canonical membership token name for a user and nonce.
func TokenName(user crypto.Address, nonce string) string {
	return user.Hex() + "|" + nonce
}

// NewNonce returns a fresh registration nonce.
func NewNonce() string { return uuid.NewString() }

// Minter builds membership-token mint transitions.
type Minter struct {
	arbiter   crypto.Address
	minAtRest int64
}

// NewMinter constructs a minter for the given arbiter identity. minAtRest is
// the smallest native-coin quantity every produced record must carry.
func NewMinter(arbiter crypto.Address, minAtRest int64) *Minter {
	return &Minter{arbiter: arbiter, minAtRest: minAtRest}
}

// Policy returns the minter's membership-token policy.
func (m *Minter) Policy() types.PolicyID { return Policy(m.arbiter) }

// ValidatorAddress returns the minter's reference-token address.
func (m *Minter) ValidatorAddress() crypto.Address { return ValidatorAddress(m.arbiter) }

// MintUserTokens proposes a transition minting quantity membership tokens
// named for the user and nonce: one reference token locked at the validator
// address, the rest handed to the user. The user's records fund the at-rest
// coin on both outputs; leftover returns to the user. Required signers: user
// and arbiter.
func (m *Minter) MintUserTokens(user crypto.Address, nonce string, quantity int64, funding []*ledger.Record) (*ledger.Transition, error) {
	if user.IsZero() {
		return nil, fmt.Errorf("identity: user not set")
	}
	if quantity < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrQuantityTooSmall, quantity)
	}
	if len(funding) == 0 {
		return nil, fmt.Errorf("identity: no funding records")
	}

	token := types.AssetID{Policy: m.Policy(), Name: TokenName(user, nonce)}
	t := &ledger.Transition{
		Mints: []ledger.Mint{{Policy: token.Policy, Name: token.Name, Quantity: quantity}},
		Produces: []ledger.Output{
			{
				Address: m.ValidatorAddress(),
				Value:   types.NewValue(m.minAtRest).Add(types.NewAssetValue(token, 1)),
			},
			{
				Address: user,
				Value:   types.NewValue(m.minAtRest).Add(types.NewAssetValue(token, quantity-1)),
			},
		},
	}
	t.AddSigner(user)
	t.AddSigner(m.arbiter)

	total := types.NewAssetValue(token, quantity)
	for _, record := range funding {
		t.Consumes = append(t.Consumes, record.ID)
		total = total.Add(record.Value)
	}
	for _, output := range t.Produces {
		total = total.Sub(output.Value)
	}
	if err := total.AssertAllPositive(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInsufficientFunding, err)
	}
	if residual := total.Compact(); !residual.IsZero() {
		t.Produces = append(t.Produces, ledger.Output{Address: user, Value: residual})
	}
	return t, nil
}
