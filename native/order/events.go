package order

import (
	"encoding/hex"
	"strconv"

	"basketchain/core/types"
)

const (
	EventTypeOrderInitialized = "order.initialized"
	EventTypeOrderStarted     = "order.started"
	EventTypeOrderCohered     = "order.cohered"
	EventTypeOrderDecohered   = "order.decohered"
	EventTypeOrderFinalized   = "order.finalized"
)

// NewInitializedEvent returns the payload emitted when an order record is
// allocated for a (basket, orderer) pair.
func NewInitializedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderInitialized, o)
}

// NewStartedEvent returns the payload emitted when a settlement cycle is
// armed.
func NewStartedEvent(o *Order) *types.Event {
	return newOrderEvent(EventTypeOrderStarted, o)
}

// NewCoheredEvent returns the payload emitted after a constituent deposit.
func NewCoheredEvent(o *Order, index uint16, amount uint64) *types.Event {
	return newSettlementEvent(EventTypeOrderCohered, o, index, amount)
}

// NewDecoheredEvent returns the payload emitted after a constituent release.
func NewDecoheredEvent(o *Order, index uint16, amount uint64) *types.Event {
	return newSettlementEvent(EventTypeOrderDecohered, o, index, amount)
}

// NewFinalizedEvent returns the payload emitted when a cycle settles,
// including the construction fee split when one was minted.
func NewFinalizedEvent(o *Order, split *Split) *types.Event {
	evt := newOrderEvent(EventTypeOrderFinalized, o)
	if split != nil {
		evt.Attributes["ordererAmount"] = strconv.FormatUint(split.Orderer, 10)
		evt.Attributes["ownerAmount"] = strconv.FormatUint(split.Owner, 10)
		evt.Attributes["managerAmount"] = strconv.FormatUint(split.Manager, 10)
	}
	return evt
}

func newOrderEvent(eventType string, o *Order) *types.Event {
	return &types.Event{
		Type: eventType,
		Attributes: map[string]string{
			"basket":  hex.EncodeToString(o.Basket[:]),
			"orderer": hex.EncodeToString(o.Orderer[:]),
			"status":  o.Status.String(),
			"type":    o.Type.String(),
			"amount":  strconv.FormatUint(o.Amount, 10),
		},
	}
}

func newSettlementEvent(eventType string, o *Order, index uint16, amount uint64) *types.Event {
	evt := newOrderEvent(eventType, o)
	evt.Attributes["index"] = strconv.FormatUint(uint64(index), 10)
	evt.Attributes["transferred"] = strconv.FormatUint(amount, 10)
	return evt
}
