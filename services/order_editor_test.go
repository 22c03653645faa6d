package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/client"
	"github.com/yeremiapane/lunchorder/models"
)

const tuesday = "2025-06-10"

func newEditorFixture() (*OrderEditor, *OrderStore, *fakeOrders) {
	soup := models.Menu{ID: 7, RestaurantID: 1, AvailableFrom: "2025-06-01", MenuText: "Soup, Salad"}
	restaurants := &fakeRestaurants{entries: []models.AvailableRestaurant{
		{Restaurant: restaurant(1, "R", models.Tuesday), Menu: &soup, MotdOption: strPtr("Tomato soup")},
		{Restaurant: restaurant(2, "A", models.Tuesday)},
	}}
	orders := &fakeOrders{}
	store := NewOrderStore(orders)
	resolver := NewAvailabilityResolver(restaurants, &fakeMenus{menus: []models.Menu{soup}})
	return NewOrderEditor(resolver, store, orders), store, orders
}

func TestEditorCreatesNewOrder(t *testing.T) {
	editor, store, orders := newEditorFixture()
	ctx := context.Background()

	_, err := editor.Open(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, EditorSelecting, editor.State())

	require.NoError(t, editor.SelectRestaurant(1))
	assert.Equal(t, EditorSelecting, editor.State())
	require.NoError(t, editor.SetText("  Soup "))
	assert.Equal(t, EditorReady, editor.State())

	order, err := editor.Submit(ctx)
	require.NoError(t, err)
	require.Len(t, orders.created, 1)
	assert.Equal(t, models.SimpleOrderInput{RestaurantID: 1, OrderDate: tuesday, OrderText: "Soup"}, orders.created[0])
	assert.Empty(t, orders.updated)

	stored, ok := store.Get(tuesday)
	require.True(t, ok)
	assert.Equal(t, order, stored)
	assert.Equal(t, models.OrderPending, stored.Status)
	assert.Equal(t, EditorClosed, editor.State())
}

func TestEditorUpdatesExistingOrder(t *testing.T) {
	editor, store, orders := newEditorFixture()
	ctx := context.Background()
	store.Put(tuesday, models.Order{ID: 42, RestaurantID: 2, OrderDate: tuesday, OrderText: "Pasta", Notes: "no cheese", Status: models.OrderPending})

	_, err := editor.Open(ctx, tuesday)
	require.NoError(t, err)
	draft := editor.Draft()
	assert.Equal(t, uint(2), draft.RestaurantID)
	assert.Equal(t, "Pasta", draft.OrderText)
	assert.Equal(t, "no cheese", draft.Notes)
	assert.Equal(t, EditorReady, editor.State())

	require.NoError(t, editor.SetText("Pasta arrabbiata"))
	_, err = editor.Submit(ctx)
	require.NoError(t, err)

	assert.Empty(t, orders.created)
	require.Contains(t, orders.updated, uint(42))
	assert.Equal(t, models.SimpleOrderInput{RestaurantID: 2, OrderText: "Pasta arrabbiata", Notes: "no cheese"}, orders.updated[42])
}

func TestEditorFailureKeepsDraft(t *testing.T) {
	editor, store, orders := newEditorFixture()
	ctx := context.Background()
	orders.writeErr = &client.APIError{StatusCode: 400, Messages: map[string][]string{"order_text": {"Too long."}}}

	_, err := editor.Open(ctx, tuesday)
	require.NoError(t, err)
	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.SetText("Soup"))

	_, err = editor.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, EditorReady, editor.State())
	assert.Equal(t, "order_text: Too long.", editor.FormError())
	assert.Equal(t, "Soup", editor.Draft().OrderText)
	_, ok := store.Get(tuesday)
	assert.False(t, ok)
}

func TestEditorValidation(t *testing.T) {
	editor, _, orders := newEditorFixture()
	ctx := context.Background()

	_, err := editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrEditorClosed)

	_, err = editor.Open(ctx, tuesday)
	require.NoError(t, err)
	assert.ErrorIs(t, editor.SelectRestaurant(99), ErrUnknownRestaurant)

	_, err = editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrRestaurantRequired)

	require.NoError(t, editor.SelectRestaurant(2))
	require.NoError(t, editor.SetText("   "))
	_, err = editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrOrderTextRequired)
	assert.Equal(t, ErrOrderTextRequired.Error(), editor.FormError())
	assert.Empty(t, orders.created)
}

func TestEditorNoRestaurantsNeverReady(t *testing.T) {
	orders := &fakeOrders{}
	store := NewOrderStore(orders)
	editor := NewOrderEditor(NewAvailabilityResolver(&fakeRestaurants{}, &fakeMenus{}), store, orders)

	_, err := editor.Open(context.Background(), tuesday)
	require.NoError(t, err)
	assert.ErrorIs(t, editor.Validate(), ErrNoRestaurants)
	assert.Equal(t, EditorSelecting, editor.State())
}

func TestApplyMotdIsIdempotent(t *testing.T) {
	editor, _, _ := newEditorFixture()
	_, err := editor.Open(context.Background(), tuesday)
	require.NoError(t, err)

	assert.ErrorIs(t, editor.ApplyMotd(), ErrRestaurantRequired)
	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.SetText("Bread"))

	require.NoError(t, editor.ApplyMotd())
	once := editor.Draft().OrderText
	assert.Equal(t, "Bread\nTomato soup", once)

	require.NoError(t, editor.ApplyMotd())
	assert.Equal(t, once, editor.Draft().OrderText)

	require.NoError(t, editor.SelectRestaurant(2))
	assert.ErrorIs(t, editor.ApplyMotd(), ErrNoMotd)
}

func TestAppendSuggestion(t *testing.T) {
	tests := []struct {
		text, suggestion, want string
	}{
		{"", "Soup", "Soup"},
		{"  ", " Soup ", "Soup"},
		{"Bread", "Soup", "Bread\nSoup"},
		{"Bread\nSoup", "Soup", "Bread\nSoup"},
		{"Bread", "  ", "Bread"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AppendSuggestion(tt.text, tt.suggestion), "%q + %q", tt.text, tt.suggestion)
	}
}

func TestEditorSecondSubmitWhileInFlight(t *testing.T) {
	editor, store, orders := newEditorFixture()
	ctx := context.Background()
	orders.gate = make(chan struct{})

	_, err := editor.Open(ctx, tuesday)
	require.NoError(t, err)
	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.SetText("Soup"))

	done := make(chan error, 1)
	go func() {
		_, err := editor.Submit(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return editor.State() == EditorSubmitting }, time.Second, 5*time.Millisecond)

	_, err = editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	// Closing and reopening the same date must not allow a parallel submit either.
	editor.Close()
	_, err = editor.Open(ctx, tuesday)
	require.NoError(t, err)
	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.SetText("Salad"))
	_, err = editor.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	editor.Close()

	close(orders.gate)
	require.NoError(t, <-done)

	_, ok := store.Get(tuesday)
	assert.True(t, ok, "late result still reaches the store")
	assert.Equal(t, EditorClosed, editor.State(), "late result does not reopen the editor")
	assert.Len(t, orders.created, 1)
}

func TestEditorLateResultDoesNotCloseReopenedEditor(t *testing.T) {
	editor, store, orders := newEditorFixture()
	ctx := context.Background()
	orders.gate = make(chan struct{})

	_, err := editor.Open(ctx, tuesday)
	require.NoError(t, err)
	require.NoError(t, editor.SelectRestaurant(1))
	require.NoError(t, editor.SetText("Soup"))

	done := make(chan error, 1)
	go func() {
		_, err := editor.Submit(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return editor.State() == EditorSubmitting }, time.Second, 5*time.Millisecond)

	editor.Close()
	_, err = editor.Open(ctx, "2025-06-11")
	require.NoError(t, err)

	close(orders.gate)
	require.NoError(t, <-done)

	_, ok := store.Get(tuesday)
	assert.True(t, ok)
	assert.Equal(t, "2025-06-11", editor.Draft().Date)
	assert.NotEqual(t, EditorClosed, editor.State())
}
