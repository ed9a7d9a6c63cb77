package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"basketchain/native/basket"
	"basketchain/native/order"
	"basketchain/storage"
)

func testAddr(fill byte) [20]byte {
	var a [20]byte
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestControllerRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	_, ok := store.ControllerGet()
	require.False(t, ok)

	ctrl := &basket.Controller{
		Owner:                    testAddr(0x01),
		DefaultConstructionBps:   90,
		DefaultDeconstructionBps: 0,
		DefaultManagerCutBps:     2000,
	}
	require.NoError(t, store.ControllerPut(ctrl))

	got, ok := store.ControllerGet()
	require.True(t, ok)
	require.Equal(t, ctrl, got)
}

func TestBasketRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	mint := testAddr(0x10)

	_, ok := store.BasketGet(mint)
	require.False(t, ok)

	b := &basket.Basket{
		Mint:            mint,
		Manager:         testAddr(0x02),
		Status:          basket.StatusFinished,
		ConstructionBps: 90,
		ManagerCutBps:   2000,
		Constituents: &basket.ConstituentTable{
			Capacity: 4,
			Constituents: []basket.Constituent{
				{Mint: testAddr(0x20), Weight: 1_00000000},
				{Mint: testAddr(0x21), Weight: 2_00000000},
			},
		},
	}
	require.NoError(t, store.BasketPut(b))

	got, ok := store.BasketGet(mint)
	require.True(t, ok)
	require.Equal(t, b.Manager, got.Manager)
	require.Equal(t, basket.StatusFinished, got.Status)
	require.Equal(t, uint16(4), got.Constituents.Capacity)
	require.Len(t, got.Constituents.Constituents, 2)
	require.Equal(t, uint64(2_00000000), got.Constituents.Constituents[1].Weight)
}

func TestBasketListIndex(t *testing.T) {
	store := NewStore(storage.NewMemDB())

	list, err := store.BasketList()
	require.NoError(t, err)
	require.Empty(t, list)

	mints := [][20]byte{testAddr(0x10), testAddr(0x11), testAddr(0x12)}
	for _, mint := range mints {
		require.NoError(t, store.BasketPut(&basket.Basket{
			Mint:         mint,
			Manager:      testAddr(0x02),
			Status:       basket.StatusUnfinished,
			Constituents: &basket.ConstituentTable{Capacity: 4},
		}))
	}

	// Rewriting an existing basket must not grow the index.
	require.NoError(t, store.BasketPut(&basket.Basket{
		Mint:         mints[1],
		Manager:      testAddr(0x03),
		Status:       basket.StatusFinished,
		Constituents: &basket.ConstituentTable{Capacity: 4},
	}))

	list, err = store.BasketList()
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, b := range list {
		require.Equal(t, mints[i], b.Mint)
	}
	require.Equal(t, basket.StatusFinished, list[1].Status)
}

func TestOrderRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemDB())
	basketMint := testAddr(0x10)
	orderer := testAddr(0x30)

	_, ok := store.OrderGet(basketMint, orderer)
	require.False(t, ok)

	o := &order.Order{
		Basket:  basketMint,
		Orderer: orderer,
		Status:  order.StatusPending,
		Type:    order.TypeConstruction,
		Amount:  1_000000,
		Bitmap:  []bool{true, false, true},
	}
	require.NoError(t, store.OrderPut(o))

	got, ok := store.OrderGet(basketMint, orderer)
	require.True(t, ok)
	require.Equal(t, o, got)

	// Records are keyed per (basket, orderer) pair.
	_, ok = store.OrderGet(basketMint, testAddr(0x31))
	require.False(t, ok)
	_, ok = store.OrderGet(testAddr(0x11), orderer)
	require.False(t, ok)
}
