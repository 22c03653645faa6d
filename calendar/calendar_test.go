package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/lunchorder/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNextWorkdays(t *testing.T) {
	tests := []struct {
		name  string
		today string
		want  []string
	}{
		{
			name:  "tuesday is included",
			today: "2025-06-10",
			want:  []string{"2025-06-10", "2025-06-11", "2025-06-12", "2025-06-13", "2025-06-16"},
		},
		{
			name:  "saturday starts on monday",
			today: "2025-06-14",
			want:  []string{"2025-06-16", "2025-06-17", "2025-06-18", "2025-06-19", "2025-06-20"},
		},
		{
			name:  "sunday starts on monday",
			today: "2025-06-15",
			want:  []string{"2025-06-16", "2025-06-17", "2025-06-18", "2025-06-19", "2025-06-20"},
		},
		{
			name:  "friday spans the weekend",
			today: "2025-06-13",
			want:  []string{"2025-06-13", "2025-06-16", "2025-06-17", "2025-06-18", "2025-06-19"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextWorkdays(DefaultWorkdays, day(t, tt.today)))
		})
	}
}

func TestNextWorkdaysProperties(t *testing.T) {
	start := day(t, "2024-01-01")
	for i := 0; i < 400; i++ {
		today := start.AddDate(0, 0, i).Add(15 * time.Hour)
		got := NextWorkdays(DefaultWorkdays, today)
		require.Len(t, got, DefaultWorkdays)

		if IsWorkday(today) {
			assert.Equal(t, FormatDate(today), got[0])
		}
		for j, d := range got {
			parsed := day(t, d)
			assert.True(t, IsWorkday(parsed), "%s is not a workday", d)
			if j > 0 {
				assert.Less(t, got[j-1], d)
			}
		}
	}
}

func TestNextWorkdaysNonPositiveCount(t *testing.T) {
	assert.Empty(t, NextWorkdays(0, time.Now()))
	assert.Empty(t, NextWorkdays(-3, time.Now()))
}

func TestMondayBased(t *testing.T) {
	assert.Equal(t, models.Monday, MondayBased(time.Monday))
	assert.Equal(t, models.Wednesday, MondayBased(time.Wednesday))
	assert.Equal(t, models.Friday, MondayBased(time.Friday))
	assert.Equal(t, models.Friday, MondayBased(time.Saturday))
	assert.Equal(t, models.Friday, MondayBased(time.Sunday))

	for native := time.Sunday; native <= time.Saturday; native++ {
		want := (int(native) + 6) % 7
		if want > 4 {
			want = 4
		}
		got := MondayBased(native)
		assert.True(t, got.Valid())
		assert.Equal(t, want, int(got))
	}
}

func TestWeekdayOf(t *testing.T) {
	wd, err := WeekdayOf("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, models.Tuesday, wd)

	_, err = WeekdayOf("2025-06-14")
	assert.ErrorIs(t, err, ErrWeekend)

	_, err = WeekdayOf("10/06/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDefaultMotdWeekday(t *testing.T) {
	assert.Equal(t, models.Thursday, DefaultMotdWeekday(day(t, "2025-06-12")))
	assert.Equal(t, models.Friday, DefaultMotdWeekday(day(t, "2025-06-15")))
}

func TestIsBirthday(t *testing.T) {
	now := day(t, "2025-06-10").Add(9 * time.Hour)

	assert.True(t, IsBirthday("1990-06-10", now))
	assert.False(t, IsBirthday("1990-06-11", now))
	assert.False(t, IsBirthday("", now))
	assert.False(t, IsBirthday("1990-6", now))
}
