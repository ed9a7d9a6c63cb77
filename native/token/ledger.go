package token

import (
	"fmt"
	"math"
	"sync"
)

type holding struct {
	balance   uint64
	delegate  [20]byte
	allowance uint64
}

// InMemoryLedger is the reference Ledger implementation backing local
// deployments and tests. All balances live in process memory; persistence of
// the engine records themselves is handled separately by the state store.
type InMemoryLedger struct {
	mu       sync.RWMutex
	mints    map[[20]byte]*Mint
	holdings map[[20]byte]map[[20]byte]*holding
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		mints:    make(map[[20]byte]*Mint),
		holdings: make(map[[20]byte]map[[20]byte]*holding),
	}
}

// CreateMint registers a new mint with zero supply.
func (l *InMemoryLedger) CreateMint(mint [20]byte, decimals uint8, mintAuthority, freezeAuthority *[20]byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[mint]; ok {
		return ErrMintExists
	}
	record := &Mint{Address: mint, Decimals: decimals}
	if mintAuthority != nil {
		auth := *mintAuthority
		record.MintAuthority = &auth
	}
	if freezeAuthority != nil {
		auth := *freezeAuthority
		record.FreezeAuthority = &auth
	}
	l.mints[mint] = record
	l.holdings[mint] = make(map[[20]byte]*holding)
	return nil
}

// Approve grants delegate the right to move up to amount of holder's tokens.
// A subsequent approval replaces any previous delegation outright.
func (l *InMemoryLedger) Approve(mint, holder, delegate [20]byte, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[mint]; !ok {
		return ErrUnknownMint
	}
	h := l.holding(mint, holder)
	h.delegate = delegate
	h.allowance = amount
	return nil
}

func (l *InMemoryLedger) Transfer(mint, from, to, authority [20]byte, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.mints[mint]; !ok {
		return ErrUnknownMint
	}
	if amount == 0 {
		return nil
	}
	src := l.holding(mint, from)
	if authority != from {
		if src.delegate != authority || src.allowance < amount {
			return ErrInsufficientAllow
		}
	}
	if src.balance < amount {
		return ErrInsufficientBalance
	}
	dst := l.holding(mint, to)
	if dst.balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	src.balance -= amount
	if authority != from {
		src.allowance -= amount
	}
	dst.balance += amount
	return nil
}

func (l *InMemoryLedger) MintTo(mint, to, authority [20]byte, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.mints[mint]
	if !ok {
		return ErrUnknownMint
	}
	if record.MintAuthority == nil || *record.MintAuthority != authority {
		return ErrNotMintAuthority
	}
	if amount == 0 {
		return nil
	}
	if record.Supply > math.MaxUint64-amount {
		return ErrSupplyOverflow
	}
	dst := l.holding(mint, to)
	if dst.balance > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	record.Supply += amount
	dst.balance += amount
	return nil
}

func (l *InMemoryLedger) Burn(mint, from, authority [20]byte, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	record, ok := l.mints[mint]
	if !ok {
		return ErrUnknownMint
	}
	if amount == 0 {
		return nil
	}
	src := l.holding(mint, from)
	if authority != from {
		if src.delegate != authority || src.allowance < amount {
			return ErrInsufficientAllow
		}
	}
	if src.balance < amount {
		return ErrInsufficientBalance
	}
	if record.Supply < amount {
		return fmt.Errorf("token: burn exceeds recorded supply")
	}
	src.balance -= amount
	if authority != from {
		src.allowance -= amount
	}
	record.Supply -= amount
	return nil
}

func (l *InMemoryLedger) BalanceOf(mint, holder [20]byte) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	holdings, ok := l.holdings[mint]
	if !ok {
		return 0
	}
	h, ok := holdings[holder]
	if !ok {
		return 0
	}
	return h.balance
}

func (l *InMemoryLedger) DelegatedAmount(mint, holder, delegate [20]byte) uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	holdings, ok := l.holdings[mint]
	if !ok {
		return 0
	}
	h, ok := holdings[holder]
	if !ok || h.delegate != delegate {
		return 0
	}
	return h.allowance
}

func (l *InMemoryLedger) Decimals(mint [20]byte) (uint8, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.mints[mint]
	if !ok {
		return 0, ErrUnknownMint
	}
	return record.Decimals, nil
}

func (l *InMemoryLedger) Supply(mint [20]byte) (uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.mints[mint]
	if !ok {
		return 0, ErrUnknownMint
	}
	return record.Supply, nil
}

func (l *InMemoryLedger) MintAuthority(mint [20]byte) (*[20]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.mints[mint]
	if !ok {
		return nil, ErrUnknownMint
	}
	return record.Clone().MintAuthority, nil
}

func (l *InMemoryLedger) FreezeAuthority(mint [20]byte) (*[20]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	record, ok := l.mints[mint]
	if !ok {
		return nil, ErrUnknownMint
	}
	return record.Clone().FreezeAuthority, nil
}

// holding returns the holder record for mint, creating it on first use.
// Callers must hold the write lock.
func (l *InMemoryLedger) holding(mint, holder [20]byte) *holding {
	holdings, ok := l.holdings[mint]
	if !ok {
		holdings = make(map[[20]byte]*holding)
		l.holdings[mint] = holdings
	}
	h, ok := holdings[holder]
	if !ok {
		h = &holding{}
		holdings[holder] = h
	}
	return h
}

var _ Ledger = (*InMemoryLedger)(nil)
