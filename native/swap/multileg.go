package swap

import (
	"fmt"

	"openswap/core/types"
	"openswap/crypto"
	"openswap/ledger"
	"openswap/native/escrow"
	"openswap/observability/metrics"
)

// MultiLegResult bundles the combined transition with the per-leg fill
// computations.
type MultiLegResult struct {
	Transition *ledger.Transition
	Leg1       *OrderDetails
	Leg2       *OrderDetails
	// OrderID identifies the escrow deposit created by the final leg. Zero
	// unless the second configuration routes proceeds into escrow.
	OrderID escrow.OrderID
}

// MultiLegSwap fills two orders in one atomic transition: the buyer's payment
// buys the intermediate asset from the first order, and everything bought
// there is immediately spent against the second order. Each leg fills exactly
// as a standalone swap would, the legs are merely stitched into a single
// transition so neither can settle without the other. The first order's
// offered asset must be the second order's asked asset. Required signer:
// buyer.
func (e *Engine) MultiLegSwap(first, second *SwapConfig, buyer crypto.Address, payment types.Value, buyerTokenName string, nonce [32]byte, funding *Funding) (*MultiLegResult, error) {
	result, err := e.buildMultiLeg(first, second, buyer, payment, buyerTokenName, nonce, funding)
	if err != nil {
		metrics.Swap().IncOp("multileg", "error")
		return nil, err
	}
	metrics.Swap().IncOp("multileg", "ok")
	metrics.Swap().ObserveFill(result.Leg1.Bought)
	metrics.Swap().ObserveFill(result.Leg2.Bought)
	return result, nil
}

func (e *Engine) buildMultiLeg(first, second *SwapConfig, buyer crypto.Address, payment types.Value, buyerTokenName string, nonce [32]byte, funding *Funding) (*MultiLegResult, error) {
	if err := first.Validate(); err != nil {
		return nil, err
	}
	if err := second.Validate(); err != nil {
		return nil, err
	}
	if err := funding.validate(); err != nil {
		return nil, err
	}
	if buyer.IsZero() {
		return nil, fmt.Errorf("swap: buyer not set")
	}
	if first.Address() == second.Address() {
		return nil, fmt.Errorf("swap: multi-leg legs name the same order")
	}
	if first.Offered != second.Asked {
		return nil, fmt.Errorf("%w: first leg offers %s, second leg asks %s",
			ErrAssetMismatch, first.Offered, second.Asked)
	}

	record1, order1, err := FindLiveOrder(e.view, first)
	if err != nil {
		return nil, fmt.Errorf("first leg: %w", err)
	}
	record2, order2, err := FindLiveOrder(e.view, second)
	if err != nil {
		return nil, fmt.Errorf("second leg: %w", err)
	}

	leg1, err := Fill(order1, payment, e.params.MinChange)
	if err != nil {
		return nil, fmt.Errorf("first leg: %w", err)
	}
	intermediate := leg1.BoughtValue()
	leg2, err := Fill(order2, intermediate, e.params.MinChange)
	if err != nil {
		return nil, fmt.Errorf("second leg: %w", err)
	}

	datum1, err := EncodeOrder(&Order{Asked: order1.Asked, Offered: leg1.RemainingValue()})
	if err != nil {
		return nil, err
	}
	datum2, err := EncodeOrder(&Order{Asked: order2.Asked, Offered: leg2.RemainingValue()})
	if err != nil {
		return nil, err
	}

	t := &ledger.Transition{
		Consumes: []ledger.RecordID{record1.ID, record2.ID},
		Produces: []ledger.Output{
			{
				Address: first.Address(),
				Value:   record1.Value.Sub(leg1.BoughtValue()),
				Datum:   datum1,
			},
			{
				Address: first.Seller,
				Value:   leg1.PaymentNet(payment),
			},
			{
				Address: second.Address(),
				Value:   record2.Value.Sub(leg2.BoughtValue()),
				Datum:   datum2,
			},
		},
	}
	t.AddSigner(buyer)

	result := &MultiLegResult{Transition: t, Leg1: leg1, Leg2: leg2}
	if second.EscrowEnabled {
		orderID, err := e.addEscrowDeposit(t, second, buyer, intermediate, leg2, nonce)
		if err != nil {
			return nil, err
		}
		result.OrderID = orderID
	} else {
		t.Produces = append(t.Produces, ledger.Output{
			Address: second.Seller,
			Value:   leg2.PaymentNet(intermediate),
		})
		t.Produces = append(t.Produces, ledger.Output{
			Address: buyer,
			Value: types.NewValue(e.params.MinAtRest).
				Add(leg2.BoughtValue()).
				Add(types.NewAssetValue(second.UserToken(buyerTokenName), 1)),
		})
	}
	if !leg1.NoChange {
		t.Produces = append(t.Produces, ledger.Output{
			Address: buyer,
			Value:   leg1.ChangeValue(),
		})
	}
	if !leg2.NoChange {
		t.Produces = append(t.Produces, ledger.Output{
			Address: buyer,
			Value:   leg2.ChangeValue(),
		})
	}
	if err := e.balance(t, record1.Value.Add(record2.Value), funding); err != nil {
		return nil, err
	}
	e.emit(NewSwappedEvent(first, leg1))
	e.emit(NewSwappedEvent(second, leg2))
	return result, nil
}
