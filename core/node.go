package core

import (
	"log/slog"
	"sync"
	"time"

	"basketchain/core/events"
	"basketchain/crypto"
	"basketchain/native/basket"
	"basketchain/native/order"
	"basketchain/native/token"
	"basketchain/observability"
	"basketchain/state"
	"basketchain/storage"
)

// AuthoritySeed is the module seed from which the protocol's program-derived
// signing authority is derived. The resulting address controls every custody
// account and basket mint.
const AuthoritySeed = "settlement-authority"

// DefaultConstituentCapacity bounds the constituent table of newly created
// baskets.
const DefaultConstituentCapacity uint16 = 100

// Node owns the settlement engines and serializes instruction execution: the
// host model processes one instruction at a time, and any instruction either
// completes or leaves no partial effect observable to the next one.
type Node struct {
	mu sync.Mutex

	store   *state.Store
	ledger  *token.InMemoryLedger
	baskets *basket.Engine
	orders  *order.Engine

	authority [20]byte
	log       *slog.Logger
	metrics   *observability.InstructionMetrics
}

// NewNode wires a node over the given database. The in-memory ledger starts
// empty; engine records persist across restarts through the state store.
func NewNode(db storage.Database, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	authority := crypto.ModuleAddress(AuthoritySeed)
	store := state.NewStore(db)
	ledger := token.NewInMemoryLedger()

	baskets := basket.NewEngine(authority, DefaultConstituentCapacity)
	baskets.SetState(store)
	baskets.SetLedger(ledger)

	orders := order.NewEngine(authority)
	orders.SetState(store)
	orders.SetLedger(ledger)

	return &Node{
		store:     store,
		ledger:    ledger,
		baskets:   baskets,
		orders:    orders,
		authority: authority,
		log:       logger.With("component", "node"),
		metrics:   observability.Instructions(),
	}
}

// SetEmitter routes engine events to the given emitter.
func (n *Node) SetEmitter(emitter events.Emitter) {
	n.baskets.SetEmitter(emitter)
	n.orders.SetEmitter(emitter)
}

// Authority returns the protocol's program-derived signing address.
func (n *Node) Authority() [20]byte { return n.authority }

// Ledger exposes the token ledger for balance and allowance queries.
func (n *Node) Ledger() *token.InMemoryLedger { return n.ledger }

func (n *Node) withInstruction(module, instruction string, fn func() error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	n.metrics.Observe(module, instruction, err, elapsed)
	if err != nil {
		n.log.Warn("instruction failed", "module", module, "instruction", instruction, "err", err)
	} else {
		n.log.Info("instruction applied", "module", module, "instruction", instruction, "elapsed", elapsed)
	}
	return err
}

// --- controller instructions ---

func (n *Node) Initialize(owner [20]byte) (ctrl *basket.Controller, err error) {
	err = n.withInstruction("basket", "initialize", func() error {
		ctrl, err = n.baskets.Initialize(owner)
		return err
	})
	return ctrl, err
}

func (n *Node) SetOwner(caller, newOwner [20]byte) error {
	return n.withInstruction("basket", "set_owner", func() error {
		return n.baskets.SetOwner(caller, newOwner)
	})
}

func (n *Node) SetDefaultConstructionBps(caller [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_default_construction_bps", func() error {
		return n.baskets.SetDefaultConstructionBps(caller, bps)
	})
}

func (n *Node) SetDefaultDeconstructionBps(caller [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_default_deconstruction_bps", func() error {
		return n.baskets.SetDefaultDeconstructionBps(caller, bps)
	})
}

func (n *Node) SetDefaultManagerCut(caller [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_default_manager_cut", func() error {
		return n.baskets.SetDefaultManagerCut(caller, bps)
	})
}

// Controller returns the controller singleton.
func (n *Node) Controller() (*basket.Controller, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.baskets.Controller()
}

// --- basket instructions ---

func (n *Node) CreateBasket(manager, mint [20]byte) (b *basket.Basket, err error) {
	err = n.withInstruction("basket", "create_basket", func() error {
		b, err = n.baskets.CreateBasket(manager, mint)
		return err
	})
	return b, err
}

func (n *Node) AppendConstituents(caller, mint [20]byte, add []basket.Constituent) error {
	return n.withInstruction("basket", "append_constituents", func() error {
		return n.baskets.AppendConstituents(caller, mint, add)
	})
}

func (n *Node) FinalizeBasket(caller, mint [20]byte) error {
	return n.withInstruction("basket", "finalize_basket", func() error {
		return n.baskets.FinalizeBasket(caller, mint)
	})
}

func (n *Node) SetManager(caller, mint, newManager [20]byte) error {
	return n.withInstruction("basket", "set_manager", func() error {
		return n.baskets.SetManager(caller, mint, newManager)
	})
}

func (n *Node) SetManagerCut(caller, mint [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_manager_cut", func() error {
		return n.baskets.SetManagerCut(caller, mint, bps)
	})
}

func (n *Node) SetConstructionBps(caller, mint [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_construction_bps", func() error {
		return n.baskets.SetConstructionBps(caller, mint, bps)
	})
}

func (n *Node) SetDeconstructionBps(caller, mint [20]byte, bps uint16) error {
	return n.withInstruction("basket", "set_deconstruction_bps", func() error {
		return n.baskets.SetDeconstructionBps(caller, mint, bps)
	})
}

// Basket returns the registered basket for mint.
func (n *Node) Basket(mint [20]byte) (*basket.Basket, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.baskets.Basket(mint)
}

// Baskets returns every registered basket in registration order.
func (n *Node) Baskets() ([]*basket.Basket, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.BasketList()
}

// --- order instructions ---

func (n *Node) InitOrder(orderer, basketMint [20]byte) (o *order.Order, err error) {
	err = n.withInstruction("order", "init_order", func() error {
		o, err = n.orders.InitOrder(orderer, basketMint)
		return err
	})
	return o, err
}

func (n *Node) StartOrder(orderer, basketMint [20]byte, orderType order.Type, amount uint64) error {
	return n.withInstruction("order", "start_order", func() error {
		return n.orders.StartOrder(orderer, basketMint, orderType, amount)
	})
}

func (n *Node) Cohere(orderer, basketMint [20]byte, index uint16, transferMint [20]byte) error {
	return n.withInstruction("order", "cohere", func() error {
		return n.orders.Cohere(orderer, basketMint, index, transferMint)
	})
}

func (n *Node) Decohere(orderer, basketMint [20]byte, index uint16, transferMint [20]byte) error {
	return n.withInstruction("order", "decohere", func() error {
		return n.orders.Decohere(orderer, basketMint, index, transferMint)
	})
}

func (n *Node) FinalizeOrder(orderer, basketMint [20]byte) error {
	return n.withInstruction("order", "finalize_order", func() error {
		return n.orders.FinalizeOrder(orderer, basketMint)
	})
}

// Order returns the order record for a (basket, orderer) pair.
func (n *Node) Order(basketMint, orderer [20]byte) (*order.Order, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.orders.Order(basketMint, orderer)
}

// --- token instructions ---

// CreateMint registers a mint controlled by the protocol authority. Baskets
// require their mint and freeze authority to be the protocol itself.
func (n *Node) CreateMint(mint [20]byte, decimals uint8) error {
	return n.withInstruction("token", "create_mint", func() error {
		authority := n.authority
		return n.ledger.CreateMint(mint, decimals, &authority, &authority)
	})
}

// CreateExternalMint registers a mint with an external authority, as used for
// constituent assets whose supply the protocol does not control.
func (n *Node) CreateExternalMint(mint [20]byte, decimals uint8, authority [20]byte) error {
	return n.withInstruction("token", "create_mint", func() error {
		return n.ledger.CreateMint(mint, decimals, &authority, &authority)
	})
}

// Approve delegates allowance from holder to the protocol authority, funding
// subsequent cohere transfers.
func (n *Node) Approve(mint, holder [20]byte, amount uint64) error {
	return n.withInstruction("token", "approve", func() error {
		return n.ledger.Approve(mint, holder, n.authority, amount)
	})
}

// MintTokens issues supply of an externally-controlled mint. The caller must
// be that mint's authority; the ledger rejects anything else.
func (n *Node) MintTokens(mint, to, caller [20]byte, amount uint64) error {
	return n.withInstruction("token", "mint_to", func() error {
		return n.ledger.MintTo(mint, to, caller, amount)
	})
}
