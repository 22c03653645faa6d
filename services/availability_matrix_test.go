package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/models"
)

type fakeAvailabilityAPI struct {
	current models.AvailabilityMap
	sent    []models.WeekdaySet
	putErr  error
}

func (f *fakeAvailabilityAPI) Availability(ctx context.Context) (models.AvailabilityMap, error) {
	return f.current, nil
}

func (f *fakeAvailabilityAPI) PutAvailability(ctx context.Context, id uint, set models.WeekdaySet) (models.WeekdaySet, error) {
	f.sent = append(f.sent, set)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return set, nil
}

func TestMatrixToggleSendsCompleteSet(t *testing.T) {
	api := &fakeAvailabilityAPI{current: models.AvailabilityMap{7: {models.Monday, models.Friday}}}
	m := NewAvailabilityMatrix(api, KeepOnFailure)
	require.NoError(t, m.Load(context.Background()))

	cell, err := m.Toggle(context.Background(), 7, models.Wednesday)
	require.NoError(t, err)
	assert.Equal(t, CellConfirmed, cell.Kind)
	assert.Equal(t, models.WeekdaySet{models.Monday, models.Wednesday, models.Friday}, api.sent[0])

	_, err = m.Toggle(context.Background(), 7, models.Monday)
	require.NoError(t, err)
	assert.Equal(t, models.WeekdaySet{models.Wednesday, models.Friday}, api.sent[1])
	assert.False(t, m.Cell(7).Available(models.Monday))
}

func TestMatrixFailureKeepsFlip(t *testing.T) {
	api := &fakeAvailabilityAPI{current: models.AvailabilityMap{}, putErr: errors.New("boom")}
	m := NewAvailabilityMatrix(api, KeepOnFailure)
	require.NoError(t, m.Load(context.Background()))

	cell, err := m.Toggle(context.Background(), 9, models.Wednesday)
	require.Error(t, err)
	assert.Equal(t, CellFailed, cell.Kind)
	assert.True(t, cell.Available(models.Wednesday), "flipped value stays visible")
	assert.Empty(t, cell.Previous)
	assert.Error(t, m.Cell(9).Err)
}

func TestMatrixFailureRollback(t *testing.T) {
	api := &fakeAvailabilityAPI{current: models.AvailabilityMap{9: {models.Monday}}, putErr: errors.New("boom")}
	m := NewAvailabilityMatrix(api, RollbackOnFailure)
	require.NoError(t, m.Load(context.Background()))

	cell, err := m.Toggle(context.Background(), 9, models.Wednesday)
	require.Error(t, err)
	assert.Equal(t, CellFailed, cell.Kind)
	assert.Equal(t, models.WeekdaySet{models.Monday}, cell.Set)
}

func TestMatrixRejectsWeekend(t *testing.T) {
	m := NewAvailabilityMatrix(&fakeAvailabilityAPI{}, KeepOnFailure)
	_, err := m.Toggle(context.Background(), 1, models.Weekday(5))
	assert.ErrorIs(t, err, ErrInvalidWeekday)
}

func TestParseFailurePolicy(t *testing.T) {
	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, KeepOnFailure, p)

	p, err = ParseFailurePolicy("Rollback")
	require.NoError(t, err)
	assert.Equal(t, RollbackOnFailure, p)

	_, err = ParseFailurePolicy("ignore")
	assert.Error(t, err)
}
