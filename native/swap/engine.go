package swap

import (
	"errors"
	"fmt"
	"time"

	"openswap/core/events"
	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
	"openswap/native/escrow"
	"openswap/observability/metrics"
)

// Params carries the protocol constants the swap engine needs.
type Params struct {
	// MinAtRest is the smallest native-coin quantity every contract record
	// must carry.
	MinAtRest int64
	// MinChange is the smallest native-coin change worth a separate output.
	MinChange int64
	// EscrowDeposit is the fixed buyer deposit locked with every
	// escrow-routed swap.
	EscrowDeposit int64
}

// Validate rejects parameter sets that cannot produce valid records.
func (p Params) Validate() error {
	if p.MinAtRest <= 0 {
		return fmt.Errorf("swap: MinAtRest must be positive")
	}
	if p.MinChange <= 0 {
		return fmt.Errorf("swap: MinChange must be positive")
	}
	if p.EscrowDeposit < p.MinAtRest {
		return fmt.Errorf("swap: EscrowDeposit below MinAtRest")
	}
	return nil
}

// Funding names the caller's spendable records backing a transition, and the
// address that takes the leftover. Record selection is the wallet
// collaborator's concern; the engine consumes what it is given and returns
// the residual as change.
type Funding struct {
	Records []*ledger.Record
	Change  crypto.Address
}

func (f *Funding) validate() error {
	if f == nil || len(f.Records) == 0 {
		return fmt.Errorf("swap: no funding records")
	}
	if f.Change.IsZero() {
		return fmt.Errorf("swap: funding change address not set")
	}
	return nil
}

// SwapResult bundles the proposed transition with the fill computation that
// produced it.
type SwapResult struct {
	Transition *ledger.Transition
	Details    *OrderDetails
	// OrderID identifies the escrow deposit created by this swap. Zero unless
	// the configuration routes proceeds into escrow.
	OrderID escrow.OrderID
}

// Engine builds swap state transitions over a ledger view. Every operation is
// a synchronous computation that proposes a transition; atomicity and
// conflict resolution belong to the ledger, which accepts a transition only
// if every consumed record is still unspent. A rejected submission means the
// view was stale: re-run discovery and rebuild.
type Engine struct {
	view    ledger.View
	params  Params
	arbiter crypto.Address
	emitter events.Emitter
	nowFn   func() int64
}

type swapEvent struct {
	evt *types.Event
}

func (e swapEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e swapEvent) Event() *types.Event { return e.evt }

// NewEngine constructs a swap engine. The arbiter is the identity controlling
// the beacon minting policy; it co-signs Init and Close.
func NewEngine(view ledger.View, params Params, arbiter crypto.Address) *Engine {
	return &Engine{
		view:    view,
		params:  params,
		arbiter: arbiter,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp escrow deposits.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(swapEvent{evt: evt})
}

// Init opens a new order: it mints the configuration's beacon token and locks
// the offered value, the minimum at-rest coin, the beacon and the seller's
// membership token at the contract address, with the order datum attached.
// Fails with ErrOrderExists when the beacon already marks a live order.
// Required signers: seller and arbiter (beacon mint).
func (e *Engine) Init(cfg *SwapConfig, asked, offered types.Value, sellerTokenName string, funding *Funding) (*ledger.Transition, error) {
	t, err := e.buildInit(cfg, asked, offered, sellerTokenName, funding)
	if err != nil {
		metrics.Swap().IncOp("init", "error")
		return nil, err
	}
	metrics.Swap().IncOp("init", "ok")
	return t, nil
}

func (e *Engine) buildInit(cfg *SwapConfig, asked, offered types.Value, sellerTokenName string, funding *Funding) (*ledger.Transition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := funding.validate(); err != nil {
		return nil, err
	}
	if err := e.checkPair(cfg, asked, offered); err != nil {
		return nil, err
	}
	switch _, _, err := FindLiveOrder(e.view, cfg); {
	case err == nil:
		return nil, fmt.Errorf("%w: beacon %s", ErrOrderExists, cfg.BeaconAsset())
	case !errors.Is(err, ErrLiveOrderNotFound):
		return nil, err
	}

	datum, err := EncodeOrder(&Order{Asked: asked, Offered: offered})
	if err != nil {
		return nil, err
	}
	beacon := cfg.BeaconAsset()
	orderValue := types.NewValue(e.params.MinAtRest).
		Add(offered).
		Add(types.NewAssetValue(beacon, 1)).
		Add(types.NewAssetValue(cfg.UserToken(sellerTokenName), 1))

	t := &ledger.Transition{
		Mints: []ledger.Mint{{Policy: beacon.Policy, Name: beacon.Name, Quantity: 1}},
		Produces: []ledger.Output{{
			Address: cfg.Address(),
			Value:   orderValue,
			Datum:   datum,
		}},
	}
	t.AddSigner(cfg.Seller)
	t.AddSigner(e.arbiter)
	if err := e.balance(t, nil, funding); err != nil {
		return nil, err
	}
	e.emit(NewInitializedEvent(cfg, &Order{Asked: asked, Offered: offered}))
	return t, nil
}

// Update replaces the live order with a new asked price and an offered
// quantity adjusted by delta. A positive delta restocks from the seller's
// funding; a negative delta reclaims stock back to the seller as change. The
// beacon and the seller's membership token carry forward unchanged. Fails
// with ErrNegativeResultingOffer when the adjustment overdraws the offer.
// Required signer: seller.
func (e *Engine) Update(cfg *SwapConfig, newAsked, deltaOffered types.Value, funding *Funding) (*ledger.Transition, error) {
	t, err := e.buildUpdate(cfg, newAsked, deltaOffered, funding)
	if err != nil {
		metrics.Swap().IncOp("update", "error")
		return nil, err
	}
	metrics.Swap().IncOp("update", "ok")
	return t, nil
}

func (e *Engine) buildUpdate(cfg *SwapConfig, newAsked, deltaOffered types.Value, funding *Funding) (*ledger.Transition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := funding.validate(); err != nil {
		return nil, err
	}
	record, order, err := FindLiveOrder(e.view, cfg)
	if err != nil {
		return nil, err
	}
	if err := e.checkPair(cfg, newAsked, deltaOffered); err != nil {
		return nil, err
	}

	updatedOffered := order.Offered.Add(deltaOffered)
	if err := updatedOffered.AssertAllPositive(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegativeResultingOffer, err)
	}
	replacement := record.Value.Add(deltaOffered)
	if err := replacement.AssertAllPositive(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegativeResultingOffer, err)
	}
	datum, err := EncodeOrder(&Order{Asked: newAsked, Offered: updatedOffered})
	if err != nil {
		return nil, err
	}

	t := &ledger.Transition{
		Consumes: []ledger.RecordID{record.ID},
		Produces: []ledger.Output{{
			Address: cfg.Address(),
			Value:   replacement,
			Datum:   datum,
		}},
	}
	t.AddSigner(cfg.Seller)
	if err := e.balance(t, record.Value, funding); err != nil {
		return nil, err
	}
	e.emit(NewUpdatedEvent(cfg, &Order{Asked: newAsked, Offered: updatedOffered}))
	return t, nil
}

// Swap fills the live order with the buyer's payment. The transition replaces
// the order record with the remaining quantity, pays the seller (or deposits
// into escrow when the configuration enables it), hands the purchased goods
// and the buyer's membership token to the buyer, and returns change unless it
// was absorbed as dust. The nonce feeds the escrow order-id derivation and is
// ignored on the direct path. Required signer: buyer.
func (e *Engine) Swap(cfg *SwapConfig, buyer crypto.Address, payment types.Value, buyerTokenName string, nonce [32]byte, funding *Funding) (*SwapResult, error) {
	result, err := e.buildSwap(cfg, buyer, payment, buyerTokenName, nonce, funding)
	if err != nil {
		metrics.Swap().IncOp("swap", "error")
		return nil, err
	}
	metrics.Swap().IncOp("swap", "ok")
	metrics.Swap().ObserveFill(result.Details.Bought)
	return result, nil
}

func (e *Engine) buildSwap(cfg *SwapConfig, buyer crypto.Address, payment types.Value, buyerTokenName string, nonce [32]byte, funding *Funding) (*SwapResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := funding.validate(); err != nil {
		return nil, err
	}
	if buyer.IsZero() {
		return nil, fmt.Errorf("swap: buyer not set")
	}
	record, order, err := FindLiveOrder(e.view, cfg)
	if err != nil {
		return nil, err
	}
	details, err := Fill(order, payment, e.params.MinChange)
	if err != nil {
		return nil, err
	}

	datum, err := EncodeOrder(&Order{Asked: order.Asked, Offered: details.RemainingValue()})
	if err != nil {
		return nil, err
	}
	t := &ledger.Transition{
		Consumes: []ledger.RecordID{record.ID},
		Produces: []ledger.Output{{
			Address: cfg.Address(),
			Value:   record.Value.Sub(details.BoughtValue()),
			Datum:   datum,
		}},
	}
	t.AddSigner(buyer)

	result := &SwapResult{Transition: t, Details: details}
	if cfg.EscrowEnabled {
		orderID, err := e.addEscrowDeposit(t, cfg, buyer, payment, details, nonce)
		if err != nil {
			return nil, err
		}
		result.OrderID = orderID
	} else {
		// Proceeds straight to the seller; goods and membership token to the
		// buyer, on top of the minimum at-rest coin.
		t.Produces = append(t.Produces, ledger.Output{
			Address: cfg.Seller,
			Value:   details.PaymentNet(payment),
		})
		t.Produces = append(t.Produces, ledger.Output{
			Address: buyer,
			Value: types.NewValue(e.params.MinAtRest).
				Add(details.BoughtValue()).
				Add(types.NewAssetValue(cfg.UserToken(buyerTokenName), 1)),
		})
	}
	if !details.NoChange {
		t.Produces = append(t.Produces, ledger.Output{
			Address: buyer,
			Value:   details.ChangeValue(),
		})
	}
	if err := e.balance(t, record.Value, funding); err != nil {
		return nil, err
	}
	e.emit(NewSwappedEvent(cfg, details))
	return result, nil
}

// addEscrowDeposit redirects the seller's proceeds, the purchased goods and
// the fixed deposit into a new escrow record instead of settling directly.
func (e *Engine) addEscrowDeposit(t *ledger.Transition, cfg *SwapConfig, buyer crypto.Address, payment types.Value, details *OrderDetails, nonce [32]byte) (escrow.OrderID, error) {
	orderValue := details.PaymentNet(payment)
	deposit := types.NewValue(e.params.EscrowDeposit)
	record := &escrow.Record{
		OrderID:      escrow.DeriveOrderID(buyer, cfg.Seller, nonce, orderValue),
		Buyer:        buyer,
		Deposit:      deposit,
		Seller:       cfg.Seller,
		OrderValue:   orderValue,
		ProductValue: details.BoughtValue(),
		CreatedAt:    e.nowFn(),
	}
	datum, err := escrow.EncodeRecord(record)
	if err != nil {
		return escrow.OrderID{}, err
	}
	t.Produces = append(t.Produces, ledger.Output{
		Address: cfg.EscrowAddress,
		Value:   record.Total(),
		Datum:   datum,
	})
	e.emit(escrow.NewDepositedEvent(record))
	return record.OrderID, nil
}

// Close retires the live order: the beacon is burned and everything else at
// the contract, remaining offer, at-rest coin and membership token, returns
// to the seller. Required signers: seller and arbiter (beacon burn).
func (e *Engine) Close(cfg *SwapConfig) (*ledger.Transition, error) {
	t, err := e.buildClose(cfg)
	if err != nil {
		metrics.Swap().IncOp("close", "error")
		return nil, err
	}
	metrics.Swap().IncOp("close", "ok")
	return t, nil
}

func (e *Engine) buildClose(cfg *SwapConfig) (*ledger.Transition, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	record, _, err := FindLiveOrder(e.view, cfg)
	if err != nil {
		return nil, err
	}
	beacon := cfg.BeaconAsset()
	t := &ledger.Transition{
		Consumes: []ledger.RecordID{record.ID},
		Mints:    []ledger.Mint{{Policy: beacon.Policy, Name: beacon.Name, Quantity: -1}},
		Produces: []ledger.Output{{
			Address: cfg.Seller,
			Value:   record.Value.Sub(types.NewAssetValue(beacon, 1)).Compact(),
		}},
	}
	t.AddSigner(cfg.Seller)
	t.AddSigner(e.arbiter)
	e.emit(NewClosedEvent(cfg))
	return t, nil
}

// checkPair verifies that asked and offered values deal in the asset classes
// the configuration names.
func (e *Engine) checkPair(cfg *SwapConfig, asked, offered types.Value) error {
	askedQty, err := asked.SingleAsset()
	if err != nil {
		return err
	}
	if askedQty.Asset != cfg.Asked {
		return fmt.Errorf("%w: asked %s, config names %s", ErrAssetMismatch, askedQty.Asset, cfg.Asked)
	}
	offeredQty, err := offered.SingleAsset()
	if err != nil {
		return err
	}
	if offeredQty.Asset != cfg.Offered && !offered.Compact().IsZero() {
		return fmt.Errorf("%w: offered %s, config names %s", ErrAssetMismatch, offeredQty.Asset, cfg.Offered)
	}
	return nil
}

// balance appends the funding records as inputs and closes the value
// equation: whatever the inputs and mints hold beyond the declared outputs
// flows back to the funding change address. A shortfall in any component
// means the funding cannot carry the transition.
func (e *Engine) balance(t *ledger.Transition, consumed types.Value, funding *Funding) error {
	total := consumed.Clone()
	for _, record := range funding.Records {
		t.Consumes = append(t.Consumes, record.ID)
		total = total.Add(record.Value)
	}
	for _, mint := range t.Mints {
		total = total.Add(types.NewAssetValue(mint.Asset(), mint.Quantity))
	}
	for _, output := range t.Produces {
		total = total.Sub(output.Value)
	}
	if err := total.AssertAllPositive(); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientFunding, err)
	}
	if residual := total.Compact(); !residual.IsZero() {
		t.Produces = append(t.Produces, ledger.Output{
			Address: funding.Change,
			Value:   residual,
		})
	}
	return nil
}
