package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/lunchorder/models"
)

var (
	ErrNoOrder        = errors.New("no order for this date")
	ErrNotCancellable = errors.New("order can no longer be cancelled")
)

type OrderCancelAPI interface {
	Cancel(ctx context.Context, id uint) error
}

// OrderCanceller cancels the order held in the store for a date and drops it
// from the store as soon as the server accepts.
type OrderCanceller struct {
	orders OrderCancelAPI
	store  *OrderStore
}

func NewOrderCanceller(orders OrderCancelAPI, store *OrderStore) *OrderCanceller {
	return &OrderCanceller{orders: orders, store: store}
}

func (c *OrderCanceller) Cancel(ctx context.Context, date string) (models.Order, error) {
	order, ok := c.store.Get(date)
	if !ok {
		return models.Order{}, ErrNoOrder
	}
	if !order.Status.Cancellable() {
		return order, fmt.Errorf("%s order: %w", order.Status, ErrNotCancellable)
	}
	if err := c.orders.Cancel(ctx, order.ID); err != nil {
		return order, err
	}
	c.store.Remove(date)
	order.Status = models.OrderCancelled
	return order, nil
}
