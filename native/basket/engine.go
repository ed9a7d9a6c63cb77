package basket

import (
	"errors"

	"basketchain/core/events"
	"basketchain/core/types"
)

var (
	errNilState  = errors.New("basket engine: state not configured")
	errNilLedger = errors.New("basket engine: ledger not configured")
)

type engineState interface {
	ControllerGet() (*Controller, bool)
	ControllerPut(*Controller) error
	BasketPut(*Basket) error
	BasketGet(mint [20]byte) (*Basket, bool)
}

// mintInfo is the subset of the token ledger the registry needs: the
// authority and supply checks performed at basket registration time.
type mintInfo interface {
	Supply(mint [20]byte) (uint64, error)
	MintAuthority(mint [20]byte) (*[20]byte, error)
	FreezeAuthority(mint [20]byte) (*[20]byte, error)
}

type basketEvent struct {
	evt *types.Event
}

func (e basketEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e basketEvent) Event() *types.Event { return e.evt }

// Engine wires the basket registry and controller business logic with
// external state, the token ledger, and an event emitter.
type Engine struct {
	state     engineState
	ledger    mintInfo
	emitter   events.Emitter
	authority [20]byte
	capacity  uint16
}

// NewEngine creates a registry engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine(authority [20]byte, capacity uint16) *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		authority: authority,
		capacity:  capacity,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the token ledger queried for mint metadata.
func (e *Engine) SetLedger(ledger mintInfo) { e.ledger = ledger }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// Authority returns the protocol's program-derived signing address.
func (e *Engine) Authority() [20]byte { return e.authority }

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(basketEvent{evt: event})
}

func (e *Engine) loadController() (*Controller, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ctrl, ok := e.state.ControllerGet()
	if !ok {
		return nil, ErrControllerMissing
	}
	return ctrl, nil
}

// Controller returns a copy of the controller singleton.
func (e *Engine) Controller() (*Controller, error) {
	ctrl, err := e.loadController()
	if err != nil {
		return nil, err
	}
	return ctrl.Clone(), nil
}

// Initialize creates the controller singleton with the default fee
// parameters. It fails if the controller already exists.
func (e *Engine) Initialize(owner [20]byte) (*Controller, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if _, ok := e.state.ControllerGet(); ok {
		return nil, ErrControllerExists
	}
	ctrl := &Controller{
		Owner:                    owner,
		DefaultConstructionBps:   DefaultConstructionBps,
		DefaultDeconstructionBps: DefaultDeconstructionBps,
		DefaultManagerCutBps:     DefaultManagerCutBps,
	}
	if err := e.state.ControllerPut(ctrl); err != nil {
		return nil, err
	}
	e.emit(NewControllerInitializedEvent(ctrl))
	return ctrl.Clone(), nil
}

func (e *Engine) updateController(caller [20]byte, field string, mutate func(*Controller)) error {
	ctrl, err := e.loadController()
	if err != nil {
		return err
	}
	if ctrl.Owner != caller {
		return ErrUnauthorized
	}
	mutate(ctrl)
	if err := e.state.ControllerPut(ctrl); err != nil {
		return err
	}
	e.emit(NewControllerUpdatedEvent(ctrl, field))
	return nil
}

// SetOwner transfers controller ownership. Owner-signed.
func (e *Engine) SetOwner(caller, newOwner [20]byte) error {
	return e.updateController(caller, "owner", func(c *Controller) { c.Owner = newOwner })
}

// SetDefaultConstructionBps updates the default construction fee rate.
func (e *Engine) SetDefaultConstructionBps(caller [20]byte, bps uint16) error {
	return e.updateController(caller, "defaultConstructionBps", func(c *Controller) { c.DefaultConstructionBps = bps })
}

// SetDefaultDeconstructionBps updates the default deconstruction fee rate.
func (e *Engine) SetDefaultDeconstructionBps(caller [20]byte, bps uint16) error {
	return e.updateController(caller, "defaultDeconstructionBps", func(c *Controller) { c.DefaultDeconstructionBps = bps })
}

// SetDefaultManagerCut updates the default manager share of collected fees.
func (e *Engine) SetDefaultManagerCut(caller [20]byte, bps uint16) error {
	return e.updateController(caller, "defaultManagerCutBps", func(c *Controller) { c.DefaultManagerCutBps = bps })
}

// CreateBasket registers a new basket for mint, managed by manager. The mint
// must have zero supply and both its mint and freeze authority must be the
// protocol authority, unless the manager is the controller owner. Fee
// parameters are seeded from the controller defaults.
func (e *Engine) CreateBasket(manager, mint [20]byte) (*Basket, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if e.ledger == nil {
		return nil, errNilLedger
	}
	ctrl, err := e.loadController()
	if err != nil {
		return nil, err
	}
	if _, ok := e.state.BasketGet(mint); ok {
		return nil, ErrBasketExists
	}
	supply, err := e.ledger.Supply(mint)
	if err != nil {
		return nil, err
	}
	if supply != 0 {
		return nil, ErrNonZeroSupply
	}
	if manager != ctrl.Owner {
		mintAuth, err := e.ledger.MintAuthority(mint)
		if err != nil {
			return nil, err
		}
		if mintAuth == nil || *mintAuth != e.authority {
			return nil, ErrNotMintAuthority
		}
		freezeAuth, err := e.ledger.FreezeAuthority(mint)
		if err != nil {
			return nil, err
		}
		if freezeAuth == nil || *freezeAuth != e.authority {
			return nil, ErrNotFreezeAuthority
		}
	}
	b := &Basket{
		Mint:              mint,
		Manager:           manager,
		Status:            StatusUnfinished,
		ConstructionBps:   ctrl.DefaultConstructionBps,
		DeconstructionBps: ctrl.DefaultDeconstructionBps,
		ManagerCutBps:     ctrl.DefaultManagerCutBps,
		Rebalancing:       RebalancingOff,
		Schedule:          RebalanceNever,
		Constituents:      &ConstituentTable{Capacity: e.capacity},
	}
	if err := e.state.BasketPut(b); err != nil {
		return nil, err
	}
	e.emit(NewCreatedEvent(b))
	return b.Clone(), nil
}

func (e *Engine) loadBasket(mint [20]byte) (*Basket, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	b, ok := e.state.BasketGet(mint)
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

// Basket returns a copy of the registered basket for mint.
func (e *Engine) Basket(mint [20]byte) (*Basket, error) {
	b, err := e.loadBasket(mint)
	if err != nil {
		return nil, err
	}
	return b.Clone(), nil
}

// AppendConstituents appends new weighted constituents to an UNFINISHED
// basket, preserving order. Manager-signed.
func (e *Engine) AppendConstituents(caller, mint [20]byte, add []Constituent) error {
	b, err := e.loadBasket(mint)
	if err != nil {
		return err
	}
	if b.Manager != caller {
		return ErrUnauthorized
	}
	if b.Status != StatusUnfinished {
		return ErrIsFinished
	}
	table := b.Constituents
	if table.Len()+len(add) > int(table.Capacity) {
		return ErrBasketFull
	}
	for _, c := range add {
		if c.Weight == 0 {
			return ErrZeroWeight
		}
	}
	table.Constituents = append(table.Constituents, add...)
	if err := e.state.BasketPut(b); err != nil {
		return err
	}
	e.emit(NewConstituentsAppendedEvent(b))
	return nil
}

// FinalizeBasket freezes the constituent list and opens the basket for
// orders. The flip is idempotent. Manager-signed.
func (e *Engine) FinalizeBasket(caller, mint [20]byte) error {
	b, err := e.loadBasket(mint)
	if err != nil {
		return err
	}
	if b.Manager != caller {
		return ErrUnauthorized
	}
	if b.Status == StatusFinished {
		return nil
	}
	b.Status = StatusFinished
	if err := e.state.BasketPut(b); err != nil {
		return err
	}
	e.emit(NewFinalizedEvent(b))
	return nil
}

func (e *Engine) updateBasket(caller, mint [20]byte, field string, mutate func(*Basket)) error {
	b, err := e.loadBasket(mint)
	if err != nil {
		return err
	}
	if b.Manager != caller {
		return ErrUnauthorized
	}
	mutate(b)
	if err := e.state.BasketPut(b); err != nil {
		return err
	}
	e.emit(NewUpdatedEvent(b, field))
	return nil
}

// SetManager hands basket management to a new address. Manager-signed.
func (e *Engine) SetManager(caller, mint, newManager [20]byte) error {
	return e.updateBasket(caller, mint, "manager", func(b *Basket) { b.Manager = newManager })
}

// SetManagerCut overrides the manager share for one basket.
func (e *Engine) SetManagerCut(caller, mint [20]byte, bps uint16) error {
	return e.updateBasket(caller, mint, "managerCutBps", func(b *Basket) { b.ManagerCutBps = bps })
}

// SetConstructionBps overrides the construction fee rate for one basket.
func (e *Engine) SetConstructionBps(caller, mint [20]byte, bps uint16) error {
	return e.updateBasket(caller, mint, "constructionBps", func(b *Basket) { b.ConstructionBps = bps })
}

// SetDeconstructionBps overrides the deconstruction fee rate for one basket.
func (e *Engine) SetDeconstructionBps(caller, mint [20]byte, bps uint16) error {
	return e.updateBasket(caller, mint, "deconstructionBps", func(b *Basket) { b.DeconstructionBps = bps })
}
