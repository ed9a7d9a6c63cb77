package basket

import "errors"

var (
	// ErrNotMintAuthority is returned when a basket registration names a mint
	// the protocol authority does not control and the caller is not the
	// controller owner.
	ErrNotMintAuthority = errors.New("basket: protocol is not the mint authority")
	// ErrNotFreezeAuthority mirrors ErrNotMintAuthority for the freeze
	// capability.
	ErrNotFreezeAuthority = errors.New("basket: protocol is not the freeze authority")
	// ErrNonZeroSupply is returned when the target mint already has
	// outstanding supply at registration time.
	ErrNonZeroSupply = errors.New("basket: mint has non-zero initial supply")
	// ErrIsFinished is returned when a mutation is attempted on an already
	// finalized constituent list.
	ErrIsFinished = errors.New("basket: already finished, constituents are frozen")
	// ErrZeroWeight is returned when an appended constituent carries weight 0.
	ErrZeroWeight = errors.New("basket: constituent weight must be positive")
	// ErrBasketFull is returned when an append would exceed the constituent
	// table capacity.
	ErrBasketFull = errors.New("basket: constituent table is full")
	// ErrNotFound is returned when no basket is registered for a mint.
	ErrNotFound = errors.New("basket: not found")
	// ErrUnauthorized is returned when a caller lacks the manager or owner
	// rights the instruction requires.
	ErrUnauthorized = errors.New("basket: unauthorized caller")
	// ErrControllerExists is returned when initialize is invoked twice.
	ErrControllerExists = errors.New("basket: controller already initialized")
	// ErrControllerMissing is returned when an instruction requires the
	// controller singleton before initialize has run.
	ErrControllerMissing = errors.New("basket: controller not initialized")
	// ErrBasketExists is returned when a mint is registered twice.
	ErrBasketExists = errors.New("basket: mint already registered")
)
