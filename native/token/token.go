package token

import "errors"

var (
	ErrUnknownMint         = errors.New("token: unknown mint")
	ErrMintExists          = errors.New("token: mint already registered")
	ErrNotMintAuthority    = errors.New("token: caller is not the mint authority")
	ErrInsufficientBalance = errors.New("token: insufficient balance")
	ErrInsufficientAllow   = errors.New("token: insufficient delegated allowance")
	ErrSupplyOverflow      = errors.New("token: supply overflow")
	ErrBalanceOverflow     = errors.New("token: balance overflow")
)

// Mint describes a fungible token administered by the ledger. Authorities are
// optional: a nil authority means the capability has been irrevocably disabled.
type Mint struct {
	Address         [20]byte
	Decimals        uint8
	Supply          uint64
	MintAuthority   *[20]byte
	FreezeAuthority *[20]byte
}

// Clone returns a deep copy of the mint definition.
func (m *Mint) Clone() *Mint {
	if m == nil {
		return nil
	}
	clone := *m
	if m.MintAuthority != nil {
		auth := *m.MintAuthority
		clone.MintAuthority = &auth
	}
	if m.FreezeAuthority != nil {
		auth := *m.FreezeAuthority
		clone.FreezeAuthority = &auth
	}
	return &clone
}

// Ledger is the token custody capability consumed by the settlement engines.
// Every call is atomic and immediately finalized; there is no asynchronous
// settlement at this layer.
type Ledger interface {
	// Transfer moves amount of mint between two holders. The authority must be
	// either the owner of the source account or its approved delegate; a
	// delegated transfer consumes allowance.
	Transfer(mint, from, to, authority [20]byte, amount uint64) error
	// MintTo creates new supply. The authority must match the mint authority.
	MintTo(mint, to, authority [20]byte, amount uint64) error
	// Burn destroys amount held by from. The authority must be the holder or
	// its approved delegate.
	Burn(mint, from, authority [20]byte, amount uint64) error

	BalanceOf(mint, holder [20]byte) uint64
	// DelegatedAmount reports the allowance holder has granted to delegate.
	DelegatedAmount(mint, holder, delegate [20]byte) uint64
	Decimals(mint [20]byte) (uint8, error)
	Supply(mint [20]byte) (uint64, error)
	MintAuthority(mint [20]byte) (*[20]byte, error)
	FreezeAuthority(mint [20]byte) (*[20]byte, error)
}
