package order

import "fmt"

// Status is the lifecycle state of an order record. CANCELLED is defined for
// wire compatibility but never produced by the core transitions: the machine
// only moves PENDING <-> SUCCEEDED.
type Status uint8

const (
	StatusPending Status = iota
	StatusSucceeded
	StatusCancelled
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSucceeded, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSucceeded:
		return "succeeded"
	case StatusCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Type distinguishes deposits that mint the basket token from burns that
// withdraw its constituents.
type Type uint8

const (
	TypeConstruction Type = iota
	TypeDeconstruction
)

func (t Type) Valid() bool {
	return t == TypeConstruction || t == TypeDeconstruction
}

func (t Type) String() string {
	switch t {
	case TypeConstruction:
		return "construction"
	case TypeDeconstruction:
		return "deconstruction"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Order is the per-(basket, orderer) settlement record. The Bitmap runs
// parallel to the basket's constituent table at start time: construction
// starts all-false and fills to true as each constituent is delivered,
// deconstruction starts all-true and drains to false as each constituent is
// released. Records are reusable; StartOrder re-arms a settled record for the
// next cycle.
type Order struct {
	Basket  [20]byte
	Orderer [20]byte
	Status  Status
	Type    Type
	Amount  uint64
	Bitmap  []bool
}

// Clone returns a deep copy of the order record.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Bitmap != nil {
		clone.Bitmap = append([]bool(nil), o.Bitmap...)
	}
	return &clone
}

// Settled reports whether every bitmap entry has reached the completed value
// for the given order type: all true for construction, all false for
// deconstruction.
func (o *Order) Settled() bool {
	if o == nil {
		return false
	}
	done := o.Type == TypeConstruction
	for _, transferred := range o.Bitmap {
		if transferred != done {
			return false
		}
	}
	return true
}

// Sanitize validates an order record loaded from storage and returns a clone.
func Sanitize(o *Order) (*Order, error) {
	if o == nil {
		return nil, fmt.Errorf("order: nil record")
	}
	if !o.Status.Valid() {
		return nil, fmt.Errorf("order: invalid status: %d", o.Status)
	}
	if !o.Type.Valid() {
		return nil, fmt.Errorf("order: invalid type: %d", o.Type)
	}
	return o.Clone(), nil
}
