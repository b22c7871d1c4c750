package escrow

import (
	"fmt"
	"time"

	"openswap/core/events"
	"openswap/core/types"
	"openswap/ledger"
	"openswap/native/loyalty"
	"openswap/observability/metrics"
)

// Params carries the protocol constants the escrow engine needs.
type Params struct {
	// RefundDelay is the number of seconds after deposit before the buyer may
	// reclaim a never-approved order.
	RefundDelay int64
}

// Engine builds escrow settlement transitions: Approve releases a deposit in
// favour of both parties and mints loyalty tokens; Refund reclaims a deposit
// whose approval never arrived, once the time lock has elapsed. The engine
// only proposes transitions; signing and submission stay with the caller.
type Engine struct {
	view    ledger.View
	params  Params
	emitter events.Emitter
	nowFn   func() int64
}

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

// NewEngine constructs an escrow engine over the given ledger view.
func NewEngine(view ledger.View, params Params) *Engine {
	return &Engine{
		view:    view,
		params:  params,
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

// SetNowFunc overrides the time source, primarily for deterministic tests.
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
	e.emitter.Emit(escrowEvent{evt: evt})
}

// Approve settles the escrow record identified by orderID: the buyer receives
// the deposit, the product and one freshly minted point token; the seller
// receives the order value and one reward token. The record is consumed.
// Required signers: seller and arbiter.
func (e *Engine) Approve(cfg *EscrowConfig, orderID OrderID) (*ledger.Transition, error) {
	if err := cfg.Validate(); err != nil {
		metrics.Escrow().IncOp("approve", "error")
		return nil, err
	}
	locked, record, err := FindRecord(e.view, cfg, orderID, cfg.Buyer, cfg.Seller)
	if err != nil {
		metrics.Escrow().IncOp("approve", "error")
		return nil, err
	}

	pointMint, pointValue := loyalty.PointMint(cfg.Arbiter)
	rewardMint, rewardValue := loyalty.RewardMint(cfg.Arbiter)

	t := &ledger.Transition{
		Consumes: []ledger.RecordID{locked.ID},
		Mints:    []ledger.Mint{pointMint, rewardMint},
		Produces: []ledger.Output{
			{
				Address: record.Buyer,
				Value:   record.Deposit.Add(record.ProductValue).Add(pointValue),
			},
			{
				Address: record.Seller,
				Value:   record.OrderValue.Add(rewardValue),
			},
		},
	}
	t.AddSigner(cfg.Seller)
	t.AddSigner(cfg.Arbiter)

	e.emit(NewApprovedEvent(record))
	metrics.Escrow().IncOp("approve", "ok")
	return t, nil
}

// Refund reclaims a deposit whose approval never arrived. The whole locked
// value, deposit, order value and product alike, returns to the buyer. The
// transition is only valid once RefundDelay seconds have passed since the
// deposit was created. Required signers: buyer and arbiter.
func (e *Engine) Refund(cfg *EscrowConfig, orderID OrderID) (*ledger.Transition, error) {
	if err := cfg.Validate(); err != nil {
		metrics.Escrow().IncOp("refund", "error")
		return nil, err
	}
	locked, record, err := FindRecord(e.view, cfg, orderID, cfg.Buyer, cfg.Seller)
	if err != nil {
		metrics.Escrow().IncOp("refund", "error")
		return nil, err
	}
	unlockAt := record.CreatedAt + e.params.RefundDelay
	if now := e.nowFn(); now < unlockAt {
		metrics.Escrow().IncOp("refund", "locked")
		return nil, fmt.Errorf("%w: unlocks at %d, now %d", ErrRefundLocked, unlockAt, now)
	}

	t := &ledger.Transition{
		Consumes: []ledger.RecordID{locked.ID},
		Produces: []ledger.Output{
			{
				Address: record.Buyer,
				Value:   record.Total(),
			},
		},
	}
	t.AddSigner(cfg.Buyer)
	t.AddSigner(cfg.Arbiter)

	e.emit(NewRefundedEvent(record))
	metrics.Escrow().IncOp("refund", "ok")
	return t, nil
}
