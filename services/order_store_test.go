package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/models"
)

func TestOrderStoreLoadIndexesWindow(t *testing.T) {
	orders := &fakeOrders{listed: []models.Order{
		{ID: 1, OrderDate: "2025-06-10", Status: models.OrderPending},
		{ID: 2, OrderDate: "2025-06-11", Status: models.OrderCancelled},
		{ID: 3, OrderDate: "2025-06-10", Status: models.OrderConfirmed},
	}}
	store := NewOrderStore(orders)
	days := []string{"2025-06-09", "2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13"}

	require.NoError(t, store.Load(context.Background(), days))
	assert.Equal(t, "2025-06-09", orders.from)
	assert.Equal(t, "2025-06-13", orders.to)

	got, ok := store.Get("2025-06-10")
	require.True(t, ok)
	assert.Equal(t, uint(3), got.ID, "later duplicate wins")

	_, ok = store.Get("2025-06-11")
	assert.False(t, ok, "cancelled orders are not indexed")
	assert.Equal(t, days, store.Days())
}

func TestOrderStorePutGetRemove(t *testing.T) {
	store := NewOrderStore(&fakeOrders{})

	store.Put("2025-06-10", models.Order{ID: 1})
	got, ok := store.Get("2025-06-10")
	require.True(t, ok)
	assert.Equal(t, uint(1), got.ID)

	store.Put("2025-06-10", models.Order{ID: 2})
	got, _ = store.Get("2025-06-10")
	assert.Equal(t, uint(2), got.ID)

	store.Put("2025-06-09", models.Order{ID: 3, OrderDate: "2025-06-09"})
	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, uint(3), snap[0].ID)

	store.Remove("2025-06-10")
	_, ok = store.Get("2025-06-10")
	assert.False(t, ok)
}

func TestOrderStoreLoadFailureKeepsContents(t *testing.T) {
	orders := &fakeOrders{listErr: errors.New("timeout")}
	store := NewOrderStore(orders)
	store.Put("2025-06-10", models.Order{ID: 1})

	assert.Error(t, store.Load(context.Background(), []string{"2025-06-10"}))
	_, ok := store.Get("2025-06-10")
	assert.True(t, ok)
}
