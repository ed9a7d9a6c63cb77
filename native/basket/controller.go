package basket

import "fmt"

// Default fee parameters seeded into the controller at initialize time.
// Construction charges 0.90% each way by default, deconstruction is free, and
// managers receive 20% of every collected fee.
const (
	DefaultConstructionBps   uint16 = 90
	DefaultDeconstructionBps uint16 = 0
	DefaultManagerCutBps     uint16 = 2_000
)

// Controller is the deployment-wide singleton holding the protocol owner and
// the default fee parameters copied into each newly registered basket. It is
// created once via Engine.Initialize and mutated only by owner-signed setters.
type Controller struct {
	Owner                    [20]byte
	DefaultConstructionBps   uint16
	DefaultDeconstructionBps uint16
	DefaultManagerCutBps     uint16
}

// Clone returns a copy of the controller record.
func (c *Controller) Clone() *Controller {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// SanitizeController validates a controller record loaded from storage.
func SanitizeController(c *Controller) (*Controller, error) {
	if c == nil {
		return nil, fmt.Errorf("basket: nil controller")
	}
	if c.Owner == ([20]byte{}) {
		return nil, fmt.Errorf("basket: controller owner unset")
	}
	return c.Clone(), nil
}
