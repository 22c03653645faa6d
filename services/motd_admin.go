package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/models"
)

type MotdAPI interface {
	Motd(ctx context.Context, weekday models.Weekday) ([]models.MotdRow, error)
	PutMotd(ctx context.Context, in models.MotdInput) error
}

// MotdAdmin manages the suggested order of each restaurant per weekday.
type MotdAdmin struct {
	api MotdAPI
	now func() time.Time
}

func NewMotdAdmin(api MotdAPI) *MotdAdmin {
	return &MotdAdmin{api: api, now: time.Now}
}

// DefaultWeekday is today's weekday, Friday on weekends.
func (a *MotdAdmin) DefaultWeekday() models.Weekday {
	return calendar.DefaultMotdWeekday(a.now())
}

func (a *MotdAdmin) Rows(ctx context.Context, weekday models.Weekday) ([]models.MotdRow, error) {
	if !weekday.Valid() {
		return nil, ErrInvalidWeekday
	}
	return a.api.Motd(ctx, weekday)
}

// Save stores text for (restaurant, weekday); blank text clears the option.
func (a *MotdAdmin) Save(ctx context.Context, weekday models.Weekday, restaurantID uint, text string) error {
	if !weekday.Valid() {
		return ErrInvalidWeekday
	}
	return a.api.PutMotd(ctx, models.MotdInput{
		Weekday:      weekday,
		RestaurantID: restaurantID,
		OptionText:   strings.TrimSpace(text),
	})
}
