package escrow

import (
	"strconv"

	"openswap/core/types"
)

const (
	// EventTypeDeposited marks a swap whose proceeds were routed into escrow.
	EventTypeDeposited = "escrow.deposited"
	// EventTypeApproved marks the settlement of an escrowed order.
	EventTypeApproved = "escrow.approved"
	// EventTypeRefunded marks a time-locked reclaim of an escrowed order.
	EventTypeRefunded = "escrow.refunded"
)

// NewDepositedEvent returns the canonical event payload for a new deposit.
func NewDepositedEvent(r *Record) *types.Event { return newEscrowEvent(EventTypeDeposited, r) }

// NewApprovedEvent returns the canonical event payload for a settlement.
func NewApprovedEvent(r *Record) *types.Event { return newEscrowEvent(EventTypeApproved, r) }

// NewRefundedEvent returns the canonical event payload for a refund.
func NewRefundedEvent(r *Record) *types.Event { return newEscrowEvent(EventTypeRefunded, r) }

func newEscrowEvent(eventType string, r *Record) *types.Event {
	attrs := make(map[string]string)
	if r == nil {
		return &types.Event{Type: eventType, Attributes: attrs}
	}
	attrs["orderId"] = r.OrderID.String()
	attrs["buyer"] = r.Buyer.String()
	attrs["seller"] = r.Seller.String()
	attrs["deposit"] = r.Deposit.String()
	attrs["orderValue"] = r.OrderValue.String()
	attrs["productValue"] = r.ProductValue.String()
	attrs["createdAt"] = strconv.FormatInt(r.CreatedAt, 10)
	return &types.Event{Type: eventType, Attributes: attrs}
}
