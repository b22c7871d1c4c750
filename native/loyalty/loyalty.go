// Package loyalty derives the point and reward token policies handed out when
// an escrowed order is approved: one point token to the buyer, one reward
// token to the seller. Both policies are controlled by the arbiter identity.
package loyalty

import (
	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
)

const (
	pointDomain  = "openswap.points"
	rewardDomain = "openswap.rewards"

	// PointTokenName is the token name carried by every minted point.
	PointTokenName = "Points Token"
	// RewardTokenName is the token name carried by every minted reward.
	RewardTokenName = "Rewards Token"
)

// PointPolicy returns the minting policy for buyer loyalty points.
func PointPolicy(arbiter crypto.Address) types.PolicyID {
	return crypto.DerivePolicyID(pointDomain, arbiter)
}

// RewardPolicy returns the minting policy for seller rewards.
func RewardPolicy(arbiter crypto.Address) types.PolicyID {
	return crypto.DerivePolicyID(rewardDomain, arbiter)
}

// PointAsset returns the full point asset identifier.
func PointAsset(arbiter crypto.Address) types.AssetID {
	return types.AssetID{Policy: PointPolicy(arbiter), Name: PointTokenName}
}

// RewardAsset returns the full reward asset identifier.
func RewardAsset(arbiter crypto.Address) types.AssetID {
	return types.AssetID{Policy: RewardPolicy(arbiter), Name: RewardTokenName}
}

// PointMint returns the mint instruction and value for one buyer point.
func PointMint(arbiter crypto.Address) (ledger.Mint, types.Value) {
	asset := PointAsset(arbiter)
	mint := ledger.Mint{Policy: asset.Policy, Name: asset.Name, Quantity: 1}
	return mint, types.NewAssetValue(asset, 1)
}

// RewardMint returns the mint instruction and value for one seller reward.
func RewardMint(arbiter crypto.Address) (ledger.Mint, types.Value) {
	asset := RewardAsset(arbiter)
	mint := ledger.Mint{Policy: asset.Policy, Name: asset.Name, Quantity: 1}
	return mint, types.NewAssetValue(asset, 1)
}
