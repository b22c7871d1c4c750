package swap

import (
	"strconv"

	"openswap/core/types"
)

const (
	// EventTypeInitialized marks the opening of a new order.
	EventTypeInitialized = "swap.initialized"
	// EventTypeUpdated marks a repricing or restocking of a live order.
	EventTypeUpdated = "swap.updated"
	// EventTypeSwapped marks a fill against a live order.
	EventTypeSwapped = "swap.executed"
	// EventTypeClosed marks the retirement of a live order.
	EventTypeClosed = "swap.closed"
)

// NewInitializedEvent returns the canonical event payload for a new order.
func NewInitializedEvent(cfg *SwapConfig, order *Order) *types.Event {
	return newOrderEvent(EventTypeInitialized, cfg, order)
}

// NewUpdatedEvent returns the canonical event payload for an order update.
func NewUpdatedEvent(cfg *SwapConfig, order *Order) *types.Event {
	return newOrderEvent(EventTypeUpdated, cfg, order)
}

// NewSwappedEvent returns the canonical event payload for a fill.
func NewSwappedEvent(cfg *SwapConfig, details *OrderDetails) *types.Event {
	attrs := configAttrs(cfg)
	if details != nil {
		attrs["bought"] = strconv.FormatInt(details.Bought, 10)
		attrs["remaining"] = strconv.FormatInt(details.Remaining, 10)
		attrs["change"] = strconv.FormatInt(details.Change, 10)
	}
	return &types.Event{Type: EventTypeSwapped, Attributes: attrs}
}

// NewClosedEvent returns the canonical event payload for an order close.
func NewClosedEvent(cfg *SwapConfig) *types.Event {
	return &types.Event{Type: EventTypeClosed, Attributes: configAttrs(cfg)}
}

func newOrderEvent(eventType string, cfg *SwapConfig, order *Order) *types.Event {
	attrs := configAttrs(cfg)
	if order != nil {
		attrs["asked"] = order.Asked.String()
		attrs["offered"] = order.Offered.String()
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

func configAttrs(cfg *SwapConfig) map[string]string {
	attrs := make(map[string]string)
	if cfg == nil {
		return attrs
	}
	attrs["contract"] = cfg.Address().String()
	attrs["seller"] = cfg.Seller.String()
	attrs["beacon"] = cfg.BeaconAsset().String()
	attrs["escrowed"] = strconv.FormatBool(cfg.EscrowEnabled)
	return attrs
}
