package loyalty

import (
	"testing"

	"github.com/stretchr/testify/require"

	"openswap/crypto"
)

func TestMintsMatchAssets(t *testing.T) {
	arbiter := crypto.DeriveAddress(crypto.AccountPrefix, "loyalty.test", []byte("arbiter"))

	mint, value := PointMint(arbiter)
	require.Equal(t, int64(1), mint.Quantity)
	require.Equal(t, PointAsset(arbiter), mint.Asset())
	require.Equal(t, int64(1), value.Quantity(PointAsset(arbiter)))

	mint, value = RewardMint(arbiter)
	require.Equal(t, int64(1), mint.Quantity)
	require.Equal(t, RewardAsset(arbiter), mint.Asset())
	require.Equal(t, int64(1), value.Quantity(RewardAsset(arbiter)))
}

func TestPoliciesAreDistinct(t *testing.T) {
	arbiter := crypto.DeriveAddress(crypto.AccountPrefix, "loyalty.test", []byte("arbiter"))
	other := crypto.DeriveAddress(crypto.AccountPrefix, "loyalty.test", []byte("other"))

	require.NotEqual(t, PointPolicy(arbiter), RewardPolicy(arbiter))
	require.NotEqual(t, PointPolicy(arbiter), PointPolicy(other))
}
