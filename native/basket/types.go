package basket

import "fmt"

// Status tracks the registration lifecycle of a basket. An UNFINISHED basket
// accepts constituent appends; a FINISHED basket is frozen and may be ordered
// against. The transition happens exactly once and is not reversible.
type Status uint8

const (
	StatusUnfinished Status = iota
	StatusFinished
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	return s == StatusUnfinished || s == StatusFinished
}

func (s Status) String() string {
	switch s {
	case StatusUnfinished:
		return "unfinished"
	case StatusFinished:
		return "finished"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// RebalancingMode and RebalanceSchedule are reserved for a future rebalancing
// engine. Every exercised path runs with the zero values below.
type RebalancingMode uint8

const RebalancingOff RebalancingMode = 0

type RebalanceSchedule uint8

const RebalanceNever RebalanceSchedule = 0

// Constituent is one underlying asset and its fixed per-unit weight within a
// basket. Weights are independent per-unit requirements; they are never
// validated to sum to any particular total.
type Constituent struct {
	Mint   [20]byte
	Weight uint64
}

// ConstituentTable is the append-only weighted-constituent list of a basket.
// Entries are appended in index order while the basket is UNFINISHED and the
// index of each entry is stable thereafter: orders address constituents by
// index, re-validating the mint on every access.
type ConstituentTable struct {
	Capacity     uint16
	Constituents []Constituent
}

// Len returns the number of registered constituents.
func (t *ConstituentTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Constituents)
}

// Clone returns a deep copy of the table.
func (t *ConstituentTable) Clone() *ConstituentTable {
	if t == nil {
		return nil
	}
	clone := &ConstituentTable{Capacity: t.Capacity}
	if len(t.Constituents) > 0 {
		clone.Constituents = append([]Constituent(nil), t.Constituents...)
	}
	return clone
}

// Basket captures the metadata and runtime status of one registered
// synthetic-token mint together with its constituent table.
type Basket struct {
	Mint              [20]byte
	Manager           [20]byte
	Status            Status
	ConstructionBps   uint16
	DeconstructionBps uint16
	ManagerCutBps     uint16
	Rebalancing       RebalancingMode
	Schedule          RebalanceSchedule
	Constituents      *ConstituentTable
}

// Clone returns a deep copy of the basket so callers can safely mutate the
// copy without affecting the stored instance.
func (b *Basket) Clone() *Basket {
	if b == nil {
		return nil
	}
	clone := *b
	clone.Constituents = b.Constituents.Clone()
	return &clone
}

// Sanitize validates the supplied basket record and returns a cloned instance
// with a non-nil constituent table. The original value is not mutated.
func Sanitize(b *Basket) (*Basket, error) {
	if b == nil {
		return nil, fmt.Errorf("basket: nil record")
	}
	if !b.Status.Valid() {
		return nil, fmt.Errorf("basket: invalid status: %d", b.Status)
	}
	clone := b.Clone()
	if clone.Constituents == nil {
		clone.Constituents = &ConstituentTable{}
	}
	if clone.Constituents.Len() > int(clone.Constituents.Capacity) {
		return nil, fmt.Errorf("basket: constituent table exceeds capacity")
	}
	for i, c := range clone.Constituents.Constituents {
		if c.Weight == 0 {
			return nil, fmt.Errorf("basket: constituent %d has zero weight", i)
		}
	}
	return clone, nil
}
