package order

import "github.com/holiman/uint256"

// Basis points carry four decimal places; manager cuts compound a second
// four-place scale on top of the fee.
const basisPointScale = 10_000

// maxDecimalScale bounds the supported mint decimals for the scaled-decimal
// settlement arithmetic.
const maxDecimalScale = 28

// minOwnerFee guarantees the basket owner never receives zero even on tiny
// orders; minManagerFee does the same for the basket manager.
const (
	minOwnerFee   = 2
	minManagerFee = 1
)

// Split is the three-way division of a construction mint between the orderer,
// the protocol owner, and the basket manager. The shares always reconcile to
// the original notional: Orderer + Owner + Manager == amount.
type Split struct {
	Orderer uint64
	Owner   uint64
	Manager uint64
}

// SplitMint computes the construction fee split for a notional amount of the
// basket token. The fee is constructionBps of the amount (scale 4, truncated)
// floored at minOwnerFee; the manager share is managerCutBps of the fee
// (scale 4 again, truncated) floored at minManagerFee. Truncation losses stay
// with the orderer's share so the three parts sum to amount exactly.
func SplitMint(amount uint64, constructionBps, managerCutBps uint16) (Split, error) {
	if amount == 0 {
		return Split{}, ErrZeroOrder
	}
	fee, err := scaleDown(new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(uint64(constructionBps))), 4)
	if err != nil {
		return Split{}, err
	}
	if fee < minOwnerFee {
		fee = minOwnerFee
	}
	if fee >= amount {
		return Split{}, ErrPotentialUnderflow
	}
	manager, err := scaleDown(new(uint256.Int).Mul(uint256.NewInt(fee), uint256.NewInt(uint64(managerCutBps))), 4)
	if err != nil {
		return Split{}, err
	}
	if manager < minManagerFee {
		manager = minManagerFee
	}
	if manager > fee {
		return Split{}, ErrPotentialUnderflow
	}
	return Split{
		Orderer: amount - fee,
		Owner:   fee - manager,
		Manager: manager,
	}, nil
}

// RequiredDeposit returns the constituent amount a cohere call must transfer:
// amount * weight shifted down by the basket mint's decimals, truncated, then
// bumped to one minimum unit when truncation reached zero. The bump prevents
// dust orders from earning a bitmap credit without contributing real value.
func RequiredDeposit(amount, weight uint64, decimals uint8) (uint64, error) {
	required, err := requiredTransfer(amount, weight, decimals)
	if err != nil {
		return 0, err
	}
	if required == 0 {
		required = 1
	}
	return required, nil
}

// RequiredWithdrawal returns the constituent amount a decohere call releases.
// Unlike deposits the truncated value is paid out as-is; rounding dust stays
// in custody.
func RequiredWithdrawal(amount, weight uint64, decimals uint8) (uint64, error) {
	return requiredTransfer(amount, weight, decimals)
}

func requiredTransfer(amount, weight uint64, decimals uint8) (uint64, error) {
	return scaleDown(new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(weight)), decimals)
}

// scaleDown divides v by 10^scale and converts the result back to uint64,
// surfacing the two failure modes of the scaled-decimal pipeline.
func scaleDown(v *uint256.Int, scale uint8) (uint64, error) {
	if scale > maxDecimalScale {
		return 0, ErrScaleFailure
	}
	divisor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(scale)))
	scaled := new(uint256.Int).Div(v, divisor)
	if !scaled.IsUint64() {
		return 0, ErrU64Failure
	}
	return scaled.Uint64(), nil
}
