package identity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
	"openswap/storage"
)

const testMinAtRest = 5_000_000

func walletAddr(name string) crypto.Address {
	return crypto.DeriveAddress(crypto.AccountPrefix, "identity.test.wallet", []byte(name))
}

func TestMintUserTokens(t *testing.T) {
	em := ledger.NewEmulator(storage.NewMemDB())
	arbiter := walletAddr("arbiter")
	user := walletAddr("bob")
	minter := NewMinter(arbiter, testMinAtRest)

	funding, err := em.Faucet(user, types.NewValue(50_000_000))
	require.NoError(t, err)

	nonce := NewNonce()
	tr, err := minter.MintUserTokens(user, nonce, 3, []*ledger.Record{funding})
	require.NoError(t, err)
	require.Contains(t, tr.Signers, user)
	require.Contains(t, tr.Signers, arbiter)

	_, err = em.Submit(tr)
	require.NoError(t, err)

	token := types.AssetID{Policy: minter.Policy(), Name: TokenName(user, nonce)}

	refRecords, err := em.RecordsAt(minter.ValidatorAddress())
	require.NoError(t, err)
	require.Len(t, refRecords, 1)
	require.Equal(t, int64(1), refRecords[0].Value.Quantity(token))
	require.Equal(t, int64(testMinAtRest), refRecords[0].Value.Coin())

	userRecords, err := em.RecordsAt(user)
	require.NoError(t, err)
	total := types.Value{}
	for _, r := range userRecords {
		total = total.Add(r.Value)
	}
	require.Equal(t, int64(2), total.Quantity(token))
	require.Equal(t, int64(50_000_000-testMinAtRest), total.Coin())
}

func TestMintUserTokensQuantityFloor(t *testing.T) {
	minter := NewMinter(walletAddr("arbiter"), testMinAtRest)
	user := walletAddr("bob")
	record := &ledger.Record{Address: user, Value: types.NewValue(50_000_000)}

	_, err := minter.MintUserTokens(user, NewNonce(), 1, []*ledger.Record{record})
	require.ErrorIs(t, err, ErrQuantityTooSmall)
}

func TestMintUserTokensInsufficientFunding(t *testing.T) {
	minter := NewMinter(walletAddr("arbiter"), testMinAtRest)
	user := walletAddr("bob")
	record := &ledger.Record{Address: user, Value: types.NewValue(1_000)}

	_, err := minter.MintUserTokens(user, NewNonce(), 2, []*ledger.Record{record})
	require.ErrorIs(t, err, ErrInsufficientFunding)
}

func TestTokenNameEmbedsUserAndNonce(t *testing.T) {
	user := walletAddr("bob")
	name := TokenName(user, "nonce-1")
	require.Contains(t, name, user.Hex())
	require.Contains(t, name, "nonce-1")
	require.NotEqual(t, name, TokenName(user, "nonce-2"))
	require.NotEqual(t, name, TokenName(walletAddr("carol"), "nonce-1"))
}
