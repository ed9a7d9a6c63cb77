package basket

import (
	"encoding/hex"
	"strconv"

	"basketchain/core/types"
)

const (
	EventTypeControllerInitialized = "basket.controller.initialized"
	EventTypeControllerUpdated     = "basket.controller.updated"
	EventTypeBasketCreated         = "basket.created"
	EventTypeConstituentsAppended  = "basket.constituents.appended"
	EventTypeBasketFinalized       = "basket.finalized"
	EventTypeBasketUpdated         = "basket.updated"
)

// NewControllerInitializedEvent returns the canonical payload emitted when the
// controller singleton is created.
func NewControllerInitializedEvent(c *Controller) *types.Event {
	return &types.Event{
		Type: EventTypeControllerInitialized,
		Attributes: map[string]string{
			"owner":                    hex.EncodeToString(c.Owner[:]),
			"defaultConstructionBps":   strconv.FormatUint(uint64(c.DefaultConstructionBps), 10),
			"defaultDeconstructionBps": strconv.FormatUint(uint64(c.DefaultDeconstructionBps), 10),
			"defaultManagerCutBps":     strconv.FormatUint(uint64(c.DefaultManagerCutBps), 10),
		},
	}
}

// NewControllerUpdatedEvent returns the payload emitted after any
// owner-signed controller setter.
func NewControllerUpdatedEvent(c *Controller, field string) *types.Event {
	return &types.Event{
		Type: EventTypeControllerUpdated,
		Attributes: map[string]string{
			"owner": hex.EncodeToString(c.Owner[:]),
			"field": field,
		},
	}
}

// NewCreatedEvent returns the canonical payload for a newly registered basket.
func NewCreatedEvent(b *Basket) *types.Event {
	return newBasketEvent(EventTypeBasketCreated, b)
}

// NewConstituentsAppendedEvent returns the payload emitted after a successful
// append, including the new table length.
func NewConstituentsAppendedEvent(b *Basket) *types.Event {
	evt := newBasketEvent(EventTypeConstituentsAppended, b)
	evt.Attributes["length"] = strconv.Itoa(b.Constituents.Len())
	return evt
}

// NewFinalizedEvent returns the payload emitted when a basket flips to
// FINISHED.
func NewFinalizedEvent(b *Basket) *types.Event {
	return newBasketEvent(EventTypeBasketFinalized, b)
}

// NewUpdatedEvent returns the payload emitted after any manager-signed
// per-basket setter.
func NewUpdatedEvent(b *Basket, field string) *types.Event {
	evt := newBasketEvent(EventTypeBasketUpdated, b)
	evt.Attributes["field"] = field
	return evt
}

func newBasketEvent(eventType string, b *Basket) *types.Event {
	return &types.Event{
		Type: eventType,
		Attributes: map[string]string{
			"mint":    hex.EncodeToString(b.Mint[:]),
			"manager": hex.EncodeToString(b.Manager[:]),
			"status":  b.Status.String(),
		},
	}
}
