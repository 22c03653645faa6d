package services

import (
	"context"
	"time"

	"github.com/yeremiapane/lunchorder/calendar"
	"github.com/yeremiapane/lunchorder/models"
)

type Day struct {
	Date    string
	Weekday models.Weekday
	Order   *models.Order
}

type Week struct {
	Days []Day
	// Birthday is set when today is the user's birthday.
	Birthday bool
}

// WeekView builds the upcoming workdays with the user's order for each.
type WeekView struct {
	store    *OrderStore
	workdays int
	now      func() time.Time
}

func NewWeekView(store *OrderStore, workdays int) *WeekView {
	if workdays <= 0 {
		workdays = calendar.DefaultWorkdays
	}
	return &WeekView{store: store, workdays: workdays, now: time.Now}
}

// Load refreshes the store for the window starting today and returns it.
func (v *WeekView) Load(ctx context.Context, user models.User) (Week, error) {
	now := v.now()
	days := calendar.NextWorkdays(v.workdays, now)
	if err := v.store.Load(ctx, days); err != nil {
		return Week{}, err
	}
	return v.build(days, user, now), nil
}

// Current renders the store as it is, without fetching.
func (v *WeekView) Current(user models.User) Week {
	now := v.now()
	days := v.store.Days()
	if len(days) == 0 {
		days = calendar.NextWorkdays(v.workdays, now)
	}
	return v.build(days, user, now)
}

func (v *WeekView) build(days []string, user models.User, now time.Time) Week {
	week := Week{
		Days:     make([]Day, 0, len(days)),
		Birthday: calendar.IsBirthday(user.BirthDate, now),
	}
	for _, date := range days {
		day := Day{Date: date}
		day.Weekday, _ = calendar.WeekdayOf(date)
		if o, ok := v.store.Get(date); ok {
			day.Order = &o
		}
		week.Days = append(week.Days, day)
	}
	return week
}
