package swap

import (
	"fmt"

	"openswap/core/types"
)

// OrderDetails is the result of the order-fill calculation. It is produced
// and consumed within one transition-construction pass and never persisted.
type OrderDetails struct {
	// Asked and Offered identify the order's trading pair, with the
	// quantities read from the live datum.
	Asked   types.AssetQuantity
	Offered types.AssetQuantity
	// Bought is the offered-asset quantity the payment purchases.
	Bought int64
	// Remaining is the offered-asset quantity left at the contract.
	Remaining int64
	// Change is the asked-asset quantity returned to the buyer, after dust
	// absorption.
	Change int64
	// NoChange is set when no separate change output should be created.
	NoChange bool
}

// BoughtValue returns the purchased goods as a value.
func (d *OrderDetails) BoughtValue() types.Value {
	return types.NewAssetValue(d.Offered.Asset, d.Bought)
}

// RemainingValue returns the updated offered value for the replacement datum.
// A fully filled order keeps an explicit zero component so the traded asset
// stays identifiable.
func (d *OrderDetails) RemainingValue() types.Value {
	return types.NewAssetValue(d.Offered.Asset, d.Remaining)
}

// ChangeValue returns the buyer's change as a value.
func (d *OrderDetails) ChangeValue() types.Value {
	return types.NewAssetValue(d.Asked.Asset, d.Change).Compact()
}

// PaymentNet returns the portion of the payment that settles with the seller:
// the full payment when change was absorbed, otherwise payment minus change.
func (d *OrderDetails) PaymentNet(payment types.Value) types.Value {
	if d.NoChange {
		return payment.Clone()
	}
	return payment.Sub(d.ChangeValue())
}

// Fill computes how much of an order a payment purchases. Pure function:
// integer arithmetic with floor division, no side effects. minChange is the
// smallest native-coin change worth returning as a separate output; smaller
// amounts are absorbed into the seller's proceeds so no sub-economic record
// is created.
func Fill(order *Order, payment types.Value, minChange int64) (*OrderDetails, error) {
	if order == nil {
		return nil, fmt.Errorf("swap: nil order")
	}
	if err := payment.AssertAllPositive(); err != nil {
		return nil, err
	}
	asked, err := order.Asked.SingleAsset()
	if err != nil {
		return nil, err
	}
	offered, err := order.Offered.SingleAsset()
	if err != nil {
		return nil, err
	}
	pay, err := payment.SingleAsset()
	if err != nil {
		return nil, err
	}
	if pay.Asset != asked.Asset {
		return nil, fmt.Errorf("%w: paid %s, asked %s", ErrAssetMismatch, pay.Asset, asked.Asset)
	}

	price := asked.Quantity
	if price <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPrice, price)
	}
	qty := offered.Quantity
	spend := pay.Quantity

	orderAmt := spend / price
	if orderAmt < 1 {
		return nil, fmt.Errorf("%w: %d buys nothing at price %d", ErrInsufficientFunds, spend, price)
	}

	var bought, remaining int64
	if diff := spend - price*qty; diff >= 0 {
		// The payment covers the whole remaining quantity.
		bought = qty
		remaining = 0
	} else {
		bought = orderAmt
		remaining = qty - orderAmt
	}
	change := spend - bought*price

	// Dust absorption: change too small to stand as its own record is folded
	// into the seller's proceeds.
	if asked.Asset.IsNative() {
		if change < minChange {
			change = 0
		}
	} else if change < 1 {
		change = 0
	}

	return &OrderDetails{
		Asked:     asked,
		Offered:   offered,
		Bought:    bought,
		Remaining: remaining,
		Change:    change,
		NoChange:  change == 0,
	}, nil
}
