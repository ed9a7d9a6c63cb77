package order

import "errors"

var (
	// ErrIncorrectOrderStatus is returned when an instruction requires a
	// status the order is not in, e.g. starting an already pending order.
	ErrIncorrectOrderStatus = errors.New("order: incorrect order status")
	// ErrIncorrectOrderType is returned when cohere is invoked on a
	// deconstruction order or decohere on a construction order.
	ErrIncorrectOrderType = errors.New("order: incorrect order type")
	// ErrBasketNotFinished is returned when an order is started against a
	// basket whose constituent list has not been finalized.
	ErrBasketNotFinished = errors.New("order: basket is not finished being designed")
	// ErrZeroOrder is returned when an order is started with amount 0.
	ErrZeroOrder = errors.New("order: amount must be positive")
	// ErrStillPending is returned by finalize while any constituent of the
	// current cycle remains untransferred.
	ErrStillPending = errors.New("order: settlement still pending, some constituents not transferred")
	// ErrIndexPassedBound is returned when a settlement step addresses an
	// index beyond the basket's constituent count.
	ErrIndexPassedBound = errors.New("order: index passed bound")
	// ErrWrongIndexMint is returned when the supplied transfer mint does not
	// match the constituent registered at the index.
	ErrWrongIndexMint = errors.New("order: mint does not match constituent at index")
	// ErrNotEnoughApproved is returned when the orderer's delegated allowance
	// is below the required constituent amount.
	ErrNotEnoughApproved = errors.New("order: not enough approved")
	// ErrNotFound is returned when no order record exists for the
	// (basket, orderer) pair.
	ErrNotFound = errors.New("order: not found")
	// ErrOrderExists is returned when InitOrder runs twice for the same pair.
	ErrOrderExists = errors.New("order: already initialized")

	// ErrScaleFailure is returned when decimal scale adjustment cannot be
	// performed without overflow.
	ErrScaleFailure = errors.New("order: scaling failed or overflowed")
	// ErrU64Failure is returned when a scaled decimal does not fit a uint64.
	ErrU64Failure = errors.New("order: decimal to uint64 conversion overflowed")
	// ErrPotentialUnderflow is returned when the computed fee would consume
	// the entire order amount.
	ErrPotentialUnderflow = errors.New("order: fee would underflow order amount")
)
