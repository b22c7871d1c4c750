package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func testAsset(seed byte, name string) AssetID {
	var policy PolicyID
	policy[0] = seed
	return AssetID{Policy: policy, Name: name}
}

func TestValueAddSub(t *testing.T) {
	gold := testAsset(1, "gold")
	v := NewValue(100).Add(NewAssetValue(gold, 7))
	require.Equal(t, int64(100), v.Coin())
	require.Equal(t, int64(7), v.Quantity(gold))

	diff := v.Sub(NewAssetValue(gold, 7)).Sub(NewValue(40))
	require.Equal(t, int64(60), diff.Coin())
	require.Equal(t, int64(0), diff.Quantity(gold))
	// The fully drained component stays present so the asset class is kept.
	_, ok := diff[gold]
	require.True(t, ok)
}

func TestValueNegativeTransient(t *testing.T) {
	v := NewValue(5).Sub(NewValue(9))
	require.Equal(t, int64(-4), v.Coin())
	require.ErrorIs(t, v.AssertAllPositive(), ErrNegativeValue)
	require.NoError(t, NewValue(0).AssertAllPositive())
}

func TestValueCompact(t *testing.T) {
	gold := testAsset(1, "gold")
	v := NewValue(10).Add(NewAssetValue(gold, 3)).Sub(NewAssetValue(gold, 3))
	compact := v.Compact()
	_, ok := compact[gold]
	require.False(t, ok)
	require.Equal(t, int64(10), compact.Coin())
}

func TestValueIsZeroAndEqual(t *testing.T) {
	gold := testAsset(1, "gold")
	require.True(t, Value{}.IsZero())
	require.True(t, NewAssetValue(gold, 0).IsZero())
	require.False(t, NewValue(1).IsZero())

	a := NewValue(5).Add(NewAssetValue(gold, 2))
	b := NewAssetValue(gold, 2).Add(NewValue(5))
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(NewValue(5)))
}

func TestValueClone(t *testing.T) {
	gold := testAsset(1, "gold")
	v := NewAssetValue(gold, 2)
	clone := v.Clone()
	clone[gold] = 99
	require.Equal(t, int64(2), v.Quantity(gold))
}

func TestSingleAsset(t *testing.T) {
	gold := testAsset(1, "gold")
	silver := testAsset(2, "silver")

	qty, err := NewValue(42).SingleAsset()
	require.NoError(t, err)
	require.Equal(t, NativeAsset, qty.Asset)
	require.Equal(t, int64(42), qty.Quantity)

	qty, err = NewValue(100).Add(NewAssetValue(gold, 7)).SingleAsset()
	require.NoError(t, err)
	require.Equal(t, gold, qty.Asset)
	require.Equal(t, int64(7), qty.Quantity)

	// An explicit zero component still names the asset class.
	qty, err = NewAssetValue(gold, 0).SingleAsset()
	require.NoError(t, err)
	require.Equal(t, gold, qty.Asset)
	require.Equal(t, int64(0), qty.Quantity)

	_, err = NewAssetValue(gold, 1).Add(NewAssetValue(silver, 1)).SingleAsset()
	require.ErrorIs(t, err, ErrMultiAssetAmbiguous)
}

func TestValueJSONDeterministic(t *testing.T) {
	gold := testAsset(1, "gold")
	silver := testAsset(2, "silver")
	v := NewValue(10).Add(NewAssetValue(silver, 3)).Add(NewAssetValue(gold, 5))

	first, err := json.Marshal(v)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		again, err := json.Marshal(v)
		require.NoError(t, err)
		require.Equal(t, string(first), string(again))
	}

	var decoded Value
	require.NoError(t, json.Unmarshal(first, &decoded))
	require.True(t, v.Equal(decoded))
	require.Equal(t, gold, func() AssetID {
		for id := range decoded {
			if id == gold {
				return id
			}
		}
		return AssetID{}
	}())
}

func TestValueJSONKeepsZeroComponents(t *testing.T) {
	gold := testAsset(1, "gold")
	v := NewAssetValue(gold, 0)
	data, err := json.Marshal(v)
	require.NoError(t, err)

	var decoded Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	_, ok := decoded[gold]
	require.True(t, ok)
}
