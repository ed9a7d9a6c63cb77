package order

import (
	"errors"

	"basketchain/core/events"
	"basketchain/core/types"
	"basketchain/native/basket"
)

var (
	errNilState  = errors.New("order engine: state not configured")
	errNilLedger = errors.New("order engine: ledger not configured")
)

type engineState interface {
	OrderPut(*Order) error
	OrderGet(basketMint, orderer [20]byte) (*Order, bool)
	BasketGet(mint [20]byte) (*basket.Basket, bool)
	ControllerGet() (*basket.Controller, bool)
}

// settlementLedger is the token custody capability the state machine drives:
// delegated deposits into custody, releases back out, the up-front burn for
// deconstructions, and the three-way mint at construction finalize.
type settlementLedger interface {
	Transfer(mint, from, to, authority [20]byte, amount uint64) error
	MintTo(mint, to, authority [20]byte, amount uint64) error
	Burn(mint, from, authority [20]byte, amount uint64) error
	DelegatedAmount(mint, holder, delegate [20]byte) uint64
	Decimals(mint [20]byte) (uint8, error)
}

type orderEvent struct {
	evt *types.Event
}

func (e orderEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e orderEvent) Event() *types.Event { return e.evt }

// Engine drives construction and deconstruction orders through their
// settlement cycle: start, one cohere/decohere per constituent, finalize.
// The program-derived authority doubles as the custody account holding
// deposited constituents.
type Engine struct {
	state     engineState
	ledger    settlementLedger
	emitter   events.Emitter
	authority [20]byte
}

// NewEngine creates an order engine with a no-op emitter.
func NewEngine(authority [20]byte) *Engine {
	return &Engine{
		emitter:   events.NoopEmitter{},
		authority: authority,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetLedger configures the token ledger used for settlement movements.
func (e *Engine) SetLedger(ledger settlementLedger) { e.ledger = ledger }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(orderEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.ledger == nil {
		return errNilLedger
	}
	return nil
}

func (e *Engine) loadOrder(basketMint, orderer [20]byte) (*Order, error) {
	o, ok := e.state.OrderGet(basketMint, orderer)
	if !ok {
		return nil, ErrNotFound
	}
	return o, nil
}

func (e *Engine) loadBasket(mint [20]byte) (*basket.Basket, error) {
	b, ok := e.state.BasketGet(mint)
	if !ok {
		return nil, basket.ErrNotFound
	}
	return b, nil
}

// Order returns a copy of the order record for the (basket, orderer) pair.
func (e *Engine) Order(basketMint, orderer [20]byte) (*Order, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	o, err := e.loadOrder(basketMint, orderer)
	if err != nil {
		return nil, err
	}
	return o.Clone(), nil
}

// InitOrder allocates the reusable order record for a (basket, orderer)
// pair. The record starts SUCCEEDED so the first StartOrder can arm it.
func (e *Engine) InitOrder(orderer, basketMint [20]byte) (*Order, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if _, err := e.loadBasket(basketMint); err != nil {
		return nil, err
	}
	if _, ok := e.state.OrderGet(basketMint, orderer); ok {
		return nil, ErrOrderExists
	}
	o := &Order{
		Basket:  basketMint,
		Orderer: orderer,
		Status:  StatusSucceeded,
		Type:    TypeConstruction,
	}
	if err := e.state.OrderPut(o); err != nil {
		return nil, err
	}
	e.emit(NewInitializedEvent(o))
	return o.Clone(), nil
}

// StartOrder arms an order record for a new settlement cycle against a
// finished basket. Construction cycles start with an all-false bitmap and
// mint nothing yet; deconstruction cycles burn the full amount of basket
// tokens from the orderer up front and start with an all-true bitmap, so the
// burned supply is never in circulation while constituents pay out.
func (e *Engine) StartOrder(orderer, basketMint [20]byte, orderType Type, amount uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	o, err := e.loadOrder(basketMint, orderer)
	if err != nil {
		return err
	}
	if o.Status == StatusPending {
		return ErrIncorrectOrderStatus
	}
	b, err := e.loadBasket(basketMint)
	if err != nil {
		return err
	}
	if b.Status != basket.StatusFinished {
		return ErrBasketNotFinished
	}
	if amount == 0 {
		return ErrZeroOrder
	}
	if !orderType.Valid() {
		return ErrIncorrectOrderType
	}
	o.Amount = amount
	o.Type = orderType
	o.Status = StatusPending
	o.Bitmap = make([]bool, b.Constituents.Len())
	if orderType == TypeDeconstruction {
		for i := range o.Bitmap {
			o.Bitmap[i] = true
		}
		if err := e.ledger.Burn(basketMint, orderer, orderer, amount); err != nil {
			return err
		}
	}
	if err := e.state.OrderPut(o); err != nil {
		return err
	}
	e.emit(NewStartedEvent(o))
	return nil
}

// Cohere delivers one constituent of a pending construction order into
// protocol custody. The call is idempotent: an index already marked
// transferred returns success without moving tokens again. The transfer is
// funded from the allowance the orderer delegated to the protocol authority.
func (e *Engine) Cohere(orderer, basketMint [20]byte, index uint16, transferMint [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	o, err := e.loadOrder(basketMint, orderer)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return ErrIncorrectOrderStatus
	}
	if o.Type != TypeConstruction {
		return ErrIncorrectOrderType
	}
	b, err := e.loadBasket(basketMint)
	if err != nil {
		return err
	}
	if int(index) >= len(o.Bitmap) || int(index) >= b.Constituents.Len() {
		return ErrIndexPassedBound
	}
	if o.Bitmap[index] {
		return nil
	}
	constituent := b.Constituents.Constituents[index]
	if constituent.Mint != transferMint {
		return ErrWrongIndexMint
	}
	decimals, err := e.ledger.Decimals(basketMint)
	if err != nil {
		return err
	}
	required, err := RequiredDeposit(o.Amount, constituent.Weight, decimals)
	if err != nil {
		return err
	}
	if e.ledger.DelegatedAmount(transferMint, orderer, e.authority) < required {
		return ErrNotEnoughApproved
	}
	if err := e.ledger.Transfer(transferMint, orderer, e.authority, e.authority, required); err != nil {
		return err
	}
	o.Bitmap[index] = true
	if err := e.state.OrderPut(o); err != nil {
		return err
	}
	e.emit(NewCoheredEvent(o, index, required))
	return nil
}

// Decohere releases one constituent of a pending deconstruction order from
// protocol custody back to the orderer. An index already released returns
// success without moving tokens again.
func (e *Engine) Decohere(orderer, basketMint [20]byte, index uint16, transferMint [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	o, err := e.loadOrder(basketMint, orderer)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return ErrIncorrectOrderStatus
	}
	if o.Type != TypeDeconstruction {
		return ErrIncorrectOrderType
	}
	b, err := e.loadBasket(basketMint)
	if err != nil {
		return err
	}
	if int(index) >= len(o.Bitmap) || int(index) >= b.Constituents.Len() {
		return ErrIndexPassedBound
	}
	if !o.Bitmap[index] {
		return nil
	}
	constituent := b.Constituents.Constituents[index]
	if constituent.Mint != transferMint {
		return ErrWrongIndexMint
	}
	decimals, err := e.ledger.Decimals(basketMint)
	if err != nil {
		return err
	}
	required, err := RequiredWithdrawal(o.Amount, constituent.Weight, decimals)
	if err != nil {
		return err
	}
	if err := e.ledger.Transfer(transferMint, e.authority, orderer, e.authority, required); err != nil {
		return err
	}
	o.Bitmap[index] = false
	if err := e.state.OrderPut(o); err != nil {
		return err
	}
	e.emit(NewDecoheredEvent(o, index, required))
	return nil
}

// FinalizeOrder settles a pending cycle once every bitmap entry has reached
// its completed value. Construction finalizes by minting the fee split to
// orderer, controller owner, and basket manager; deconstruction has nothing
// left to move since the burn happened at start. The record is then reusable
// for the next StartOrder.
func (e *Engine) FinalizeOrder(orderer, basketMint [20]byte) error {
	if err := e.ready(); err != nil {
		return err
	}
	o, err := e.loadOrder(basketMint, orderer)
	if err != nil {
		return err
	}
	if o.Status != StatusPending {
		return ErrIncorrectOrderStatus
	}
	if !o.Settled() {
		return ErrStillPending
	}
	var split *Split
	if o.Type == TypeConstruction {
		b, err := e.loadBasket(basketMint)
		if err != nil {
			return err
		}
		ctrl, ok := e.state.ControllerGet()
		if !ok {
			return basket.ErrControllerMissing
		}
		s, err := SplitMint(o.Amount, b.ConstructionBps, b.ManagerCutBps)
		if err != nil {
			return err
		}
		if err := e.ledger.MintTo(basketMint, orderer, e.authority, s.Orderer); err != nil {
			return err
		}
		if err := e.ledger.MintTo(basketMint, ctrl.Owner, e.authority, s.Owner); err != nil {
			return err
		}
		if err := e.ledger.MintTo(basketMint, b.Manager, e.authority, s.Manager); err != nil {
			return err
		}
		split = &s
	}
	for i := range o.Bitmap {
		o.Bitmap[i] = false
	}
	o.Status = StatusSucceeded
	if err := e.state.OrderPut(o); err != nil {
		return err
	}
	e.emit(NewFinalizedEvent(o, split))
	return nil
}
