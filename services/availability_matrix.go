package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/yeremiapane/lunchorder/models"
	"github.com/yeremiapane/lunchorder/utils"
)

var (
	ErrInvalidWeekday = errors.New("weekday must be Monday to Friday")
	ErrTogglePending  = errors.New("availability update already in progress")
)

type CellKind int

const (
	CellConfirmed CellKind = iota
	CellPending
	CellFailed
)

func (k CellKind) String() string {
	switch k {
	case CellPending:
		return "pending"
	case CellFailed:
		return "failed"
	default:
		return "confirmed"
	}
}

// CellState is one restaurant's row of the matrix. Set is what is shown;
// Previous is the last set the server confirmed while a change is pending or failed.
type CellState struct {
	Kind     CellKind
	Set      models.WeekdaySet
	Previous models.WeekdaySet
	Err      error
}

func (c CellState) Available(w models.Weekday) bool {
	return c.Set.Contains(w)
}

// FailurePolicy decides what the matrix shows after a rejected toggle.
type FailurePolicy int

const (
	// KeepOnFailure leaves the flipped value shown alongside the error.
	KeepOnFailure FailurePolicy = iota
	RollbackOnFailure
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep":
		return KeepOnFailure, nil
	case "rollback":
		return RollbackOnFailure, nil
	default:
		return KeepOnFailure, fmt.Errorf("unknown availability failure policy %q", s)
	}
}

type AvailabilityAPI interface {
	Availability(ctx context.Context) (models.AvailabilityMap, error)
	PutAvailability(ctx context.Context, restaurantID uint, weekdays models.WeekdaySet) (models.WeekdaySet, error)
}

type AvailabilityMatrix struct {
	api    AvailabilityAPI
	policy FailurePolicy

	mu    sync.RWMutex
	cells map[uint]CellState
}

func NewAvailabilityMatrix(api AvailabilityAPI, policy FailurePolicy) *AvailabilityMatrix {
	return &AvailabilityMatrix{api: api, policy: policy, cells: make(map[uint]CellState)}
}

// Load replaces every cell with the server's confirmed sets.
func (m *AvailabilityMatrix) Load(ctx context.Context) error {
	avail, err := m.api.Availability(ctx)
	if err != nil {
		return fmt.Errorf("load availability: %w", err)
	}
	cells := make(map[uint]CellState, len(avail))
	for id, set := range avail {
		cells[id] = CellState{Kind: CellConfirmed, Set: models.NewWeekdaySet(set...)}
	}
	m.mu.Lock()
	m.cells = cells
	m.mu.Unlock()
	return nil
}

// Cell returns the row for restaurantID; unknown restaurants have an empty confirmed set.
func (m *AvailabilityMatrix) Cell(restaurantID uint) CellState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cells[restaurantID]
}

// Toggle flips one weekday locally, then sends the restaurant's complete new
// set to the server. The returned state is the cell after the server answered.
func (m *AvailabilityMatrix) Toggle(ctx context.Context, restaurantID uint, weekday models.Weekday) (CellState, error) {
	if !weekday.Valid() {
		return CellState{}, ErrInvalidWeekday
	}

	m.mu.Lock()
	current := m.cells[restaurantID]
	if current.Kind == CellPending {
		m.mu.Unlock()
		return current, ErrTogglePending
	}
	confirmed := current.Set
	if current.Kind == CellFailed && m.policy == KeepOnFailure {
		confirmed = current.Previous
	}
	next := current.Set.Toggle(weekday)
	m.cells[restaurantID] = CellState{Kind: CellPending, Set: next, Previous: confirmed}
	m.mu.Unlock()

	saved, err := m.api.PutAvailability(ctx, restaurantID, next)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		utils.ErrorLogger.Errorf("update availability for restaurant %d: %v", restaurantID, err)
		failed := CellState{Kind: CellFailed, Set: next, Previous: confirmed, Err: err}
		if m.policy == RollbackOnFailure {
			failed.Set = confirmed
		}
		m.cells[restaurantID] = failed
		return failed, err
	}

	if saved == nil {
		saved = next
	}
	cell := CellState{Kind: CellConfirmed, Set: models.NewWeekdaySet(saved...)}
	m.cells[restaurantID] = cell
	return cell, nil
}
