package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdaySetToggle(t *testing.T) {
	set := NewWeekdaySet(Friday, Monday, Monday)
	assert.Equal(t, WeekdaySet{Monday, Friday}, set)

	added := set.Toggle(Wednesday)
	assert.Equal(t, WeekdaySet{Monday, Wednesday, Friday}, added)
	assert.Equal(t, WeekdaySet{Monday, Friday}, set, "toggle must not mutate the receiver")

	removed := added.Toggle(Monday)
	assert.Equal(t, WeekdaySet{Wednesday, Friday}, removed)
	assert.True(t, removed.Toggle(Monday).Equal(added))
}

func TestWeekdayLabels(t *testing.T) {
	assert.Equal(t, "Wed", Wednesday.String())
	assert.Equal(t, "T", Thursday.Short())
	assert.False(t, Weekday(5).Valid())
	assert.Equal(t, "?", Weekday(6).String())
}

func TestAvailabilityMapDecodesStringKeys(t *testing.T) {
	var m AvailabilityMap
	require.NoError(t, json.Unmarshal([]byte(`{"1":[0,2],"7":[]}`), &m))
	assert.Equal(t, WeekdaySet{Monday, Wednesday}, m[1])
	assert.Empty(t, m[7])
}

func TestOrderStatusRules(t *testing.T) {
	assert.True(t, OrderPending.Cancellable())
	assert.True(t, OrderConfirmed.Cancellable())
	assert.False(t, OrderOrdered.Cancellable())
	assert.False(t, OrderSentToRestaurant.Cancellable())
	assert.False(t, OrderCancelled.Cancellable())

	assert.True(t, OrderPending.Editable())
	assert.False(t, OrderConfirmed.Editable())

	assert.False(t, OrderStatus("lost").Valid())
	assert.Equal(t, "Pending", OrderStatus("lost").Label())
	assert.Equal(t, "Sent", OrderSentToRestaurant.Label())
}
