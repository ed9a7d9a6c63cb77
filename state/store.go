// Package state persists the settlement engine's records as RLP-encoded
// values in a key-value database. One record is stored per controller,
// basket, and (basket, orderer) order, mirroring the host account model the
// protocol was designed against.
package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"basketchain/native/basket"
	"basketchain/native/order"
	"basketchain/storage"
)

var (
	controllerKey  = []byte("basket/controller")
	basketPrefix   = []byte("basket/record/")
	basketIndexKey = []byte("basket/index")
	orderPrefix    = []byte("order/record/")
)

// Store adapts a storage.Database into the state interfaces consumed by the
// basket and order engines. Get methods return freshly decoded records, so
// callers may mutate the result before putting it back.
type Store struct {
	db storage.Database
}

func NewStore(db storage.Database) *Store {
	return &Store{db: db}
}

func basketKey(mint [20]byte) []byte {
	return append(append([]byte(nil), basketPrefix...), mint[:]...)
}

func orderKey(basketMint, orderer [20]byte) []byte {
	key := append(append([]byte(nil), orderPrefix...), basketMint[:]...)
	return append(key, orderer[:]...)
}

func (s *Store) put(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode %q: %w", key, err)
	}
	return s.db.Put(key, encoded)
}

func (s *Store) get(key []byte, out interface{}) (bool, error) {
	raw, err := s.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := rlp.DecodeBytes(raw, out); err != nil {
		return false, fmt.Errorf("state: decode %q: %w", key, err)
	}
	return true, nil
}

// ControllerPut stores the controller singleton.
func (s *Store) ControllerPut(c *basket.Controller) error {
	sanitized, err := basket.SanitizeController(c)
	if err != nil {
		return err
	}
	return s.put(controllerKey, sanitized)
}

// ControllerGet loads the controller singleton.
func (s *Store) ControllerGet() (*basket.Controller, bool) {
	var c basket.Controller
	ok, err := s.get(controllerKey, &c)
	if err != nil || !ok {
		return nil, false
	}
	return &c, true
}

// BasketPut stores a basket record and maintains the mint index used for
// listing.
func (s *Store) BasketPut(b *basket.Basket) error {
	sanitized, err := basket.Sanitize(b)
	if err != nil {
		return err
	}
	key := basketKey(sanitized.Mint)
	exists, err := s.db.Has(key)
	if err != nil {
		return err
	}
	if err := s.put(key, sanitized); err != nil {
		return err
	}
	if exists {
		return nil
	}
	index, err := s.basketIndex()
	if err != nil {
		return err
	}
	index = append(index, sanitized.Mint)
	return s.put(basketIndexKey, index)
}

// BasketGet loads the basket registered for mint.
func (s *Store) BasketGet(mint [20]byte) (*basket.Basket, bool) {
	var b basket.Basket
	ok, err := s.get(basketKey(mint), &b)
	if err != nil || !ok {
		return nil, false
	}
	return &b, true
}

func (s *Store) basketIndex() ([][20]byte, error) {
	var index [][20]byte
	if _, err := s.get(basketIndexKey, &index); err != nil {
		return nil, err
	}
	return index, nil
}

// BasketList returns every registered basket in registration order.
func (s *Store) BasketList() ([]*basket.Basket, error) {
	index, err := s.basketIndex()
	if err != nil {
		return nil, err
	}
	baskets := make([]*basket.Basket, 0, len(index))
	for _, mint := range index {
		b, ok := s.BasketGet(mint)
		if !ok {
			return nil, fmt.Errorf("state: indexed basket missing: %x", mint)
		}
		baskets = append(baskets, b)
	}
	return baskets, nil
}

// OrderPut stores the order record for its (basket, orderer) pair.
func (s *Store) OrderPut(o *order.Order) error {
	sanitized, err := order.Sanitize(o)
	if err != nil {
		return err
	}
	return s.put(orderKey(sanitized.Basket, sanitized.Orderer), sanitized)
}

// OrderGet loads the order record for a (basket, orderer) pair.
func (s *Store) OrderGet(basketMint, orderer [20]byte) (*order.Order, bool) {
	var o order.Order
	ok, err := s.get(orderKey(basketMint, orderer), &o)
	if err != nil || !ok {
		return nil, false
	}
	return &o, true
}
