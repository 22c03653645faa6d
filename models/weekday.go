package models

import "sort"

// Weekday uses the Monday-based numbering of every stored and transmitted
// availability or MOTD record: 0=Mon .. 4=Fri (5 and 6 exist in the store but
// have no ordering slot).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

var weekdayNames = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri"}
var weekdayShort = [...]string{"M", "T", "W", "T", "F"}

// Workdays lists every weekday that has an ordering slot.
var Workdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

func (w Weekday) Valid() bool {
	return w >= Monday && w <= Friday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return "?"
	}
	return weekdayNames[w]
}

// Short is the single letter shown in the availability matrix header.
func (w Weekday) Short() string {
	if !w.Valid() {
		return "?"
	}
	return weekdayShort[w]
}

// WeekdaySet is a sorted set of weekdays without duplicates.
type WeekdaySet []Weekday

// NewWeekdaySet sorts and de-duplicates days.
func NewWeekdaySet(days ...Weekday) WeekdaySet {
	seen := make(map[Weekday]bool, len(days))
	set := make(WeekdaySet, 0, len(days))
	for _, d := range days {
		if seen[d] {
			continue
		}
		seen[d] = true
		set = append(set, d)
	}
	sort.Slice(set, func(i, j int) bool { return set[i] < set[j] })
	return set
}

func (s WeekdaySet) Contains(w Weekday) bool {
	for _, d := range s {
		if d == w {
			return true
		}
	}
	return false
}

// Toggle returns a new set with w flipped; s is left untouched.
func (s WeekdaySet) Toggle(w Weekday) WeekdaySet {
	next := make([]Weekday, 0, len(s)+1)
	for _, d := range s {
		if d != w {
			next = append(next, d)
		}
	}
	if !s.Contains(w) {
		next = append(next, w)
	}
	return NewWeekdaySet(next...)
}

func (s WeekdaySet) Equal(other WeekdaySet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// AvailabilityMap holds each restaurant's available weekdays, keyed by id.
type AvailabilityMap map[uint]WeekdaySet
