package escrow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
	"openswap/native/loyalty"
	"openswap/storage"
)

func walletAddr(name string) crypto.Address {
	return crypto.DeriveAddress(crypto.AccountPrefix, "escrow.test.wallet", []byte(name))
}

func widgetAsset() types.AssetID {
	var policy types.PolicyID
	policy[0] = 0x42
	return types.AssetID{Policy: policy, Name: "widget"}
}

type escrowEnv struct {
	em      *ledger.Emulator
	cfg     *EscrowConfig
	record  *Record
	buyer   crypto.Address
	seller  crypto.Address
	arbiter crypto.Address
}

// newEscrowEnv places a deposit on the ledger exactly as an escrow-routed
// swap would produce it.
func newEscrowEnv(t *testing.T, createdAt int64) *escrowEnv {
	t.Helper()
	env := &escrowEnv{
		em:      ledger.NewEmulator(storage.NewMemDB()),
		buyer:   walletAddr("bob"),
		seller:  walletAddr("alice"),
		arbiter: walletAddr("arbiter"),
	}
	env.cfg = &EscrowConfig{Buyer: env.buyer, Seller: env.seller, Arbiter: env.arbiter}

	orderValue := types.NewValue(20_000_000)
	var nonce [32]byte
	nonce[0] = 0x09
	env.record = &Record{
		OrderID:      DeriveOrderID(env.buyer, env.seller, nonce, orderValue),
		Buyer:        env.buyer,
		Deposit:      types.NewValue(5_000_000),
		Seller:       env.seller,
		OrderValue:   orderValue,
		ProductValue: types.NewAssetValue(widgetAsset(), 2),
		CreatedAt:    createdAt,
	}
	datum, err := EncodeRecord(env.record)
	require.NoError(t, err)

	funding, err := env.em.Faucet(env.buyer, env.record.Total())
	require.NoError(t, err)
	_, err = env.em.Submit(&ledger.Transition{
		Consumes: []ledger.RecordID{funding.ID},
		Produces: []ledger.Output{{
			Address: env.cfg.Address(),
			Value:   env.record.Total(),
			Datum:   datum,
		}},
	})
	require.NoError(t, err)
	return env
}

func (env *escrowEnv) walletValue(t *testing.T, addr crypto.Address) types.Value {
	t.Helper()
	records, err := env.em.RecordsAt(addr)
	require.NoError(t, err)
	total := types.Value{}
	for _, r := range records {
		total = total.Add(r.Value)
	}
	return total
}

func TestFindRecord(t *testing.T) {
	env := newEscrowEnv(t, 1000)

	locked, datum, err := FindRecord(env.em, env.cfg, env.record.OrderID, env.buyer, env.seller)
	require.NoError(t, err)
	require.Equal(t, env.cfg.Address(), locked.Address)
	require.Equal(t, env.record.OrderID, datum.OrderID)
	require.True(t, datum.OrderValue.Equal(env.record.OrderValue))
	require.Equal(t, env.record.CreatedAt, datum.CreatedAt)

	_, _, err = FindRecord(env.em, env.cfg, OrderID{}, env.buyer, env.seller)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestApprove(t *testing.T) {
	env := newEscrowEnv(t, 1000)
	engine := NewEngine(env.em, Params{RefundDelay: 3600})

	tr, err := engine.Approve(env.cfg, env.record.OrderID)
	require.NoError(t, err)
	require.Len(t, tr.Mints, 2)
	require.Contains(t, tr.Signers, env.seller)
	require.Contains(t, tr.Signers, env.arbiter)
	require.NotContains(t, tr.Signers, env.buyer)

	_, err = env.em.Submit(tr)
	require.NoError(t, err)

	buyer := env.walletValue(t, env.buyer)
	require.Equal(t, int64(5_000_000), buyer.Coin())
	require.Equal(t, int64(2), buyer.Quantity(widgetAsset()))
	require.Equal(t, int64(1), buyer.Quantity(loyalty.PointAsset(env.arbiter)))

	seller := env.walletValue(t, env.seller)
	require.Equal(t, int64(20_000_000), seller.Coin())
	require.Equal(t, int64(1), seller.Quantity(loyalty.RewardAsset(env.arbiter)))

	// The deposit record is gone.
	_, _, err = FindRecord(env.em, env.cfg, env.record.OrderID, env.buyer, env.seller)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestApproveUnknownOrder(t *testing.T) {
	env := newEscrowEnv(t, 1000)
	engine := NewEngine(env.em, Params{RefundDelay: 3600})

	var other OrderID
	other[0] = 0xff
	_, err := engine.Approve(env.cfg, other)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRefundBeforeDelay(t *testing.T) {
	env := newEscrowEnv(t, 1000)
	engine := NewEngine(env.em, Params{RefundDelay: 3600})
	engine.SetNowFunc(func() int64 { return 1000 + 3599 })

	_, err := engine.Refund(env.cfg, env.record.OrderID)
	require.ErrorIs(t, err, ErrRefundLocked)
}

func TestRefundAfterDelay(t *testing.T) {
	env := newEscrowEnv(t, 1000)
	engine := NewEngine(env.em, Params{RefundDelay: 3600})
	engine.SetNowFunc(func() int64 { return 1000 + 3600 })

	tr, err := engine.Refund(env.cfg, env.record.OrderID)
	require.NoError(t, err)
	require.Empty(t, tr.Mints)
	require.Contains(t, tr.Signers, env.buyer)
	require.Contains(t, tr.Signers, env.arbiter)

	_, err = env.em.Submit(tr)
	require.NoError(t, err)

	buyer := env.walletValue(t, env.buyer)
	require.True(t, buyer.Equal(env.record.Total()))
}

func TestDeriveOrderIDContent(t *testing.T) {
	buyer, seller := walletAddr("bob"), walletAddr("alice")
	value := types.NewValue(20_000_000)
	var n1, n2 [32]byte
	n2[0] = 1

	require.Equal(t,
		DeriveOrderID(buyer, seller, n1, value),
		DeriveOrderID(buyer, seller, n1, value))
	require.NotEqual(t,
		DeriveOrderID(buyer, seller, n1, value),
		DeriveOrderID(buyer, seller, n2, value))
	require.NotEqual(t,
		DeriveOrderID(buyer, seller, n1, value),
		DeriveOrderID(buyer, seller, n1, types.NewValue(1)))
}

func TestRecordCodec(t *testing.T) {
	env := newEscrowEnv(t, 1234)
	datum, err := EncodeRecord(env.record)
	require.NoError(t, err)

	decoded, err := DecodeRecord(datum)
	require.NoError(t, err)
	require.Equal(t, env.record.OrderID, decoded.OrderID)
	require.Equal(t, env.record.Buyer, decoded.Buyer)
	require.Equal(t, env.record.Seller, decoded.Seller)
	require.True(t, decoded.Deposit.Equal(env.record.Deposit))
	require.True(t, decoded.ProductValue.Equal(env.record.ProductValue))
	require.Equal(t, int64(1234), decoded.CreatedAt)
}
