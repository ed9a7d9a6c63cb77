package order

import (
	"bytes"
	"errors"
	"testing"

	"basketchain/native/basket"
	"basketchain/native/token"
)

type mockState struct {
	controller *basket.Controller
	baskets    map[[20]byte]*basket.Basket
	orders     map[[40]byte]*Order
}

func newMockState() *mockState {
	return &mockState{
		baskets: make(map[[20]byte]*basket.Basket),
		orders:  make(map[[40]byte]*Order),
	}
}

func orderMapKey(basketMint, orderer [20]byte) [40]byte {
	var key [40]byte
	copy(key[:20], basketMint[:])
	copy(key[20:], orderer[:])
	return key
}

func (m *mockState) OrderPut(o *Order) error {
	sanitized, err := Sanitize(o)
	if err != nil {
		return err
	}
	m.orders[orderMapKey(sanitized.Basket, sanitized.Orderer)] = sanitized
	return nil
}

func (m *mockState) OrderGet(basketMint, orderer [20]byte) (*Order, bool) {
	o, ok := m.orders[orderMapKey(basketMint, orderer)]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

func (m *mockState) BasketGet(mint [20]byte) (*basket.Basket, bool) {
	b, ok := m.baskets[mint]
	if !ok {
		return nil, false
	}
	return b.Clone(), true
}

func (m *mockState) ControllerGet() (*basket.Controller, bool) {
	if m.controller == nil {
		return nil, false
	}
	return m.controller.Clone(), true
}

func newTestAddress(fill byte) [20]byte {
	var addr [20]byte
	copy(addr[:], bytes.Repeat([]byte{fill}, 20))
	return addr
}

type fixture struct {
	engine  *Engine
	state   *mockState
	ledger  *token.InMemoryLedger
	orderer [20]byte
	owner   [20]byte
	manager [20]byte

	authority  [20]byte
	basketMint [20]byte
	mintA      [20]byte
	mintB      [20]byte
}

// newFixture builds a finished two-constituent basket with 8-decimal weights
// {A: 1_00000000, B: 2_00000000}, an orderer holding and approving plenty of
// both constituents, and 90 bps construction fee with a 2000 bps manager cut.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		state:      newMockState(),
		ledger:     token.NewInMemoryLedger(),
		orderer:    newTestAddress(0x01),
		owner:      newTestAddress(0x02),
		manager:    newTestAddress(0x03),
		authority:  newTestAddress(0xEE),
		basketMint: newTestAddress(0x10),
		mintA:      newTestAddress(0x11),
		mintB:      newTestAddress(0x12),
	}
	f.state.controller = &basket.Controller{
		Owner:                    f.owner,
		DefaultConstructionBps:   basket.DefaultConstructionBps,
		DefaultDeconstructionBps: basket.DefaultDeconstructionBps,
		DefaultManagerCutBps:     basket.DefaultManagerCutBps,
	}
	f.state.baskets[f.basketMint] = &basket.Basket{
		Mint:              f.basketMint,
		Manager:           f.manager,
		Status:            basket.StatusFinished,
		ConstructionBps:   90,
		DeconstructionBps: 0,
		ManagerCutBps:     2000,
		Constituents: &basket.ConstituentTable{
			Capacity: 100,
			Constituents: []basket.Constituent{
				{Mint: f.mintA, Weight: 1_00000000},
				{Mint: f.mintB, Weight: 2_00000000},
			},
		},
	}

	authority := f.authority
	if err := f.ledger.CreateMint(f.basketMint, 8, &authority, &authority); err != nil {
		t.Fatalf("create basket mint: %v", err)
	}
	external := newTestAddress(0xDD)
	for _, mint := range [][20]byte{f.mintA, f.mintB} {
		if err := f.ledger.CreateMint(mint, 8, &external, &external); err != nil {
			t.Fatalf("create constituent mint: %v", err)
		}
		if err := f.ledger.MintTo(mint, f.orderer, external, 10_000000); err != nil {
			t.Fatalf("fund orderer: %v", err)
		}
		if err := f.ledger.Approve(mint, f.orderer, f.authority, 5_000000); err != nil {
			t.Fatalf("approve: %v", err)
		}
	}

	f.engine = NewEngine(f.authority)
	f.engine.SetState(f.state)
	f.engine.SetLedger(f.ledger)

	if _, err := f.engine.InitOrder(f.orderer, f.basketMint); err != nil {
		t.Fatalf("init order: %v", err)
	}
	return f
}

func TestConstructionCycle(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeConstruction, 1_000000); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); !errors.Is(err, ErrStillPending) {
		t.Fatalf("finalize before cohere: expected ErrStillPending, got %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintB); !errors.Is(err, ErrWrongIndexMint) {
		t.Fatalf("expected ErrWrongIndexMint, got %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 2, f.mintA); !errors.Is(err, ErrIndexPassedBound) {
		t.Fatalf("expected ErrIndexPassedBound, got %v", err)
	}

	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintA); err != nil {
		t.Fatalf("cohere 0: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintA, f.authority); got != 1_000000 {
		t.Fatalf("custody A: want 1_000000, got %d", got)
	}
	// Repeating a settled index is a no-op: no double transfer.
	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintA); err != nil {
		t.Fatalf("idempotent cohere: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintA, f.authority); got != 1_000000 {
		t.Fatalf("custody A after repeat: want 1_000000, got %d", got)
	}
	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); !errors.Is(err, ErrStillPending) {
		t.Fatalf("finalize with one constituent left: expected ErrStillPending, got %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 1, f.mintB); err != nil {
		t.Fatalf("cohere 1: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintB, f.authority); got != 2_000000 {
		t.Fatalf("custody B: want 2_000000, got %d", got)
	}

	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeConstruction, 500); !errors.Is(err, ErrIncorrectOrderStatus) {
		t.Fatalf("restart pending order: expected ErrIncorrectOrderStatus, got %v", err)
	}

	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if got := f.ledger.BalanceOf(f.basketMint, f.orderer); got != 991000 {
		t.Fatalf("orderer basket balance: want 991000, got %d", got)
	}
	if got := f.ledger.BalanceOf(f.basketMint, f.owner); got != 7200 {
		t.Fatalf("owner basket balance: want 7200, got %d", got)
	}
	if got := f.ledger.BalanceOf(f.basketMint, f.manager); got != 1800 {
		t.Fatalf("manager basket balance: want 1800, got %d", got)
	}
	supply, err := f.ledger.Supply(f.basketMint)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply != 1_000000 {
		t.Fatalf("supply: want 1_000000, got %d", supply)
	}

	o, err := f.engine.Order(f.basketMint, f.orderer)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if o.Status != StatusSucceeded {
		t.Fatalf("status: want succeeded, got %s", o.Status)
	}
	for i, transferred := range o.Bitmap {
		if transferred {
			t.Fatalf("bitmap[%d] not reset after finalize", i)
		}
	}
}

func TestDeconstructionCycle(t *testing.T) {
	f := newFixture(t)

	// Build up supply and custody with a construction cycle first.
	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeConstruction, 1_000000); err != nil {
		t.Fatalf("start construction: %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintA); err != nil {
		t.Fatalf("cohere 0: %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 1, f.mintB); err != nil {
		t.Fatalf("cohere 1: %v", err)
	}
	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); err != nil {
		t.Fatalf("finalize construction: %v", err)
	}

	// The order record arms again immediately for the opposite direction.
	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeDeconstruction, 500000); err != nil {
		t.Fatalf("start deconstruction: %v", err)
	}
	supply, err := f.ledger.Supply(f.basketMint)
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply != 500000 {
		t.Fatalf("supply after up-front burn: want 500000, got %d", supply)
	}
	if got := f.ledger.BalanceOf(f.basketMint, f.orderer); got != 491000 {
		t.Fatalf("orderer basket balance after burn: want 491000, got %d", got)
	}

	o, err := f.engine.Order(f.basketMint, f.orderer)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	for i, transferred := range o.Bitmap {
		if !transferred {
			t.Fatalf("bitmap[%d] not armed for deconstruction", i)
		}
	}

	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintA); !errors.Is(err, ErrIncorrectOrderType) {
		t.Fatalf("cohere on deconstruction: expected ErrIncorrectOrderType, got %v", err)
	}

	ordererABefore := f.ledger.BalanceOf(f.mintA, f.orderer)
	if err := f.engine.Decohere(f.orderer, f.basketMint, 0, f.mintA); err != nil {
		t.Fatalf("decohere 0: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintA, f.orderer); got != ordererABefore+500000 {
		t.Fatalf("orderer A: want %d, got %d", ordererABefore+500000, got)
	}
	if err := f.engine.Decohere(f.orderer, f.basketMint, 0, f.mintA); err != nil {
		t.Fatalf("idempotent decohere: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintA, f.orderer); got != ordererABefore+500000 {
		t.Fatalf("orderer A after repeat: want %d, got %d", ordererABefore+500000, got)
	}

	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); !errors.Is(err, ErrStillPending) {
		t.Fatalf("finalize before decohere 1: expected ErrStillPending, got %v", err)
	}
	if err := f.engine.Decohere(f.orderer, f.basketMint, 1, f.mintB); err != nil {
		t.Fatalf("decohere 1: %v", err)
	}
	if err := f.engine.FinalizeOrder(f.orderer, f.basketMint); err != nil {
		t.Fatalf("finalize deconstruction: %v", err)
	}
	o, err = f.engine.Order(f.basketMint, f.orderer)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if o.Status != StatusSucceeded {
		t.Fatalf("status: want succeeded, got %s", o.Status)
	}
}

func TestStartOrderPreconditions(t *testing.T) {
	f := newFixture(t)

	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeConstruction, 0); !errors.Is(err, ErrZeroOrder) {
		t.Fatalf("expected ErrZeroOrder, got %v", err)
	}

	unfinished := newTestAddress(0x20)
	f.state.baskets[unfinished] = &basket.Basket{
		Mint:         unfinished,
		Manager:      f.manager,
		Status:       basket.StatusUnfinished,
		Constituents: &basket.ConstituentTable{Capacity: 100},
	}
	if _, err := f.engine.InitOrder(f.orderer, unfinished); err != nil {
		t.Fatalf("init order: %v", err)
	}
	if err := f.engine.StartOrder(f.orderer, unfinished, TypeConstruction, 100); !errors.Is(err, ErrBasketNotFinished) {
		t.Fatalf("expected ErrBasketNotFinished, got %v", err)
	}

	if err := f.engine.StartOrder(f.orderer, newTestAddress(0x33), TypeConstruction, 100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInitOrderTwice(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.InitOrder(f.orderer, f.basketMint); !errors.Is(err, ErrOrderExists) {
		t.Fatalf("expected ErrOrderExists, got %v", err)
	}
}

func TestCohereNotEnoughApproved(t *testing.T) {
	f := newFixture(t)
	if err := f.ledger.Approve(f.mintA, f.orderer, f.authority, 10); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := f.engine.StartOrder(f.orderer, f.basketMint, TypeConstruction, 1_000000); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.Cohere(f.orderer, f.basketMint, 0, f.mintA); !errors.Is(err, ErrNotEnoughApproved) {
		t.Fatalf("expected ErrNotEnoughApproved, got %v", err)
	}
	o, err := f.engine.Order(f.basketMint, f.orderer)
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if o.Bitmap[0] {
		t.Fatalf("bitmap credited without transfer")
	}
}

func TestDustOrderStillTransfersOneUnit(t *testing.T) {
	f := newFixture(t)
	// A constituent whose weight truncates to zero at the basket's scale
	// still costs one minimum unit per cohere.
	dustBasket := newTestAddress(0x21)
	f.state.baskets[dustBasket] = &basket.Basket{
		Mint:            dustBasket,
		Manager:         f.manager,
		Status:          basket.StatusFinished,
		ConstructionBps: 90,
		ManagerCutBps:   2000,
		Constituents: &basket.ConstituentTable{
			Capacity:     100,
			Constituents: []basket.Constituent{{Mint: f.mintA, Weight: 1}},
		},
	}
	authority := f.authority
	if err := f.ledger.CreateMint(dustBasket, 8, &authority, &authority); err != nil {
		t.Fatalf("create mint: %v", err)
	}
	if _, err := f.engine.InitOrder(f.orderer, dustBasket); err != nil {
		t.Fatalf("init order: %v", err)
	}
	if err := f.engine.StartOrder(f.orderer, dustBasket, TypeConstruction, 1000); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.engine.Cohere(f.orderer, dustBasket, 0, f.mintA); err != nil {
		t.Fatalf("cohere: %v", err)
	}
	if got := f.ledger.BalanceOf(f.mintA, f.authority); got != 1 {
		t.Fatalf("custody A: want 1, got %d", got)
	}
}
