// Package calendar computes the ordering date axis and converts clock weekdays
// into the Monday-based numbering used by availability and MOTD records.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/yeremiapane/lunchorder/models"
)

// DateLayout is the wire and storage format of a CalendarDate.
const DateLayout = "2006-01-02"

// DefaultWorkdays is the size of the employee ordering window.
const DefaultWorkdays = 5

var (
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	ErrWeekend     = errors.New("date falls on a weekend")
)

// ParseDate parses a CalendarDate at local midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// FormatDate renders t as a CalendarDate in its own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Midnight truncates t to the start of its local calendar day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// IsWorkday reports whether the native weekday is Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// NextWorkdays returns count workdays starting at today (inclusive when today
// is itself a workday), ascending.
func NextWorkdays(count int, today time.Time) []string {
	if count <= 0 {
		return []string{}
	}
	days := make([]string, 0, count)
	cursor := Midnight(today)
	for len(days) < count {
		if IsWorkday(cursor) {
			days = append(days, FormatDate(cursor))
		}
		// AddDate keeps local midnight across DST changes, unlike adding 24h.
		cursor = cursor.AddDate(0, 0, 1)
	}
	return days
}

// MondayBased converts a clock weekday (0=Sun..6=Sat) to the stored numbering
// (0=Mon..4=Fri). Saturday and Sunday clamp to Friday: the admin MOTD picker has
// no weekend slot, so the clamp only chooses a default and says nothing about
// what stored data may contain.
func MondayBased(native time.Weekday) models.Weekday {
	mb := (int(native) + 6) % 7
	if mb > int(models.Friday) {
		mb = int(models.Friday)
	}
	return models.Weekday(mb)
}

// DefaultMotdWeekday is the weekday preselected on the MOTD admin screen.
func DefaultMotdWeekday(now time.Time) models.Weekday {
	return MondayBased(now.Weekday())
}

// WeekdayOf returns the Monday-based weekday of a CalendarDate. Weekend dates
// have no slot and return ErrWeekend.
func WeekdayOf(date string) (models.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	if !IsWorkday(t) {
		return 0, fmt.Errorf("%s: %w", date, ErrWeekend)
	}
	return MondayBased(t.Weekday()), nil
}

// IsBirthday reports whether birthDate (YYYY-MM-DD, year ignored) falls on the
// month and day of now.
func IsBirthday(birthDate string, now time.Time) bool {
	if len(birthDate) < 10 {
		return false
	}
	return birthDate[5:7] == now.Format("01") && birthDate[8:10] == now.Format("02")
}
