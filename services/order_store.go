package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

type OrderLister interface {
	List(ctx context.Context, dateFrom, dateTo string) ([]models.Order, error)
}

// OrderStore holds the committed orders of the visible window, one per date.
type OrderStore struct {
	orders OrderLister

	mu     sync.RWMutex
	days   []string
	byDate map[string]models.Order
}

func NewOrderStore(orders OrderLister) *OrderStore {
	return &OrderStore{orders: orders, byDate: make(map[string]models.Order)}
}

// Load replaces the index with the orders dated within days (ascending
// CalendarDates). Cancelled orders are left out. On failure the previous
// contents are kept.
func (s *OrderStore) Load(ctx context.Context, days []string) error {
	if len(days) == 0 {
		s.mu.Lock()
		s.days = nil
		s.byDate = make(map[string]models.Order)
		s.mu.Unlock()
		return nil
	}

	first, last := days[0], days[len(days)-1]
	orders, err := s.orders.List(ctx, first, last)
	if err != nil {
		return fmt.Errorf("load orders %s..%s: %w", first, last, err)
	}

	index := make(map[string]models.Order, len(orders))
	for _, o := range orders {
		if o.Status == models.OrderCancelled {
			continue
		}
		if prev, ok := index[o.OrderDate]; ok {
			utils.ErrorLogger.Warnf("duplicate orders %d and %d for %s, keeping %d", prev.ID, o.ID, o.OrderDate, o.ID)
		}
		index[o.OrderDate] = o
	}

	s.mu.Lock()
	s.days = append([]string(nil), days...)
	s.byDate = index
	s.mu.Unlock()
	return nil
}

func (s *OrderStore) Get(date string) (models.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.byDate[date]
	return o, ok
}

// Put upserts the order for date.
func (s *OrderStore) Put(date string, o models.Order) {
	s.mu.Lock()
	s.byDate[date] = o
	s.mu.Unlock()
}

func (s *OrderStore) Remove(date string) {
	s.mu.Lock()
	delete(s.byDate, date)
	s.mu.Unlock()
}

// Days is the window last loaded.
func (s *OrderStore) Days() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.days...)
}

// Snapshot returns the orders sorted by the date they are kept under.
func (s *OrderStore) Snapshot() []models.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]string, 0, len(s.byDate))
	for date := range s.byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	out := make([]models.Order, 0, len(dates))
	for _, date := range dates {
		out = append(out, s.byDate[date])
	}
	return out
}
