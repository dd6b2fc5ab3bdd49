package calendar

import (
	"fmt"
	"time"
)

const (
	// DaysPerWeek is the size of the weekday ring.
	DaysPerWeek = 7

	// DefaultRadius is the number of days shown on each side of the anchor.
	DefaultRadius = 5

	// MaxRadius bounds radius values accepted from users.
	MaxRadius = 7

	// DateLayout is the calendar date format accepted from users.
	DateLayout = "2006-01-02"
)

// DateKey identifies a row of a sales table by ISO week and weekday
// (0=Monday .. 6=Sunday).
type DateKey struct {
	Week    int `json:"week"`
	Weekday int `json:"weekday"`
}

// String renders the key as "week-weekday", the label used on chart axes.
func (k DateKey) String() string {
	return fmt.Sprintf("%d-%d", k.Week, k.Weekday)
}

// Valid reports whether the weekday is inside the ring and the week inside the
// ISO range.
func (k DateKey) Valid() bool {
	return k.Weekday >= 0 && k.Weekday < DaysPerWeek && k.Week >= 1 && k.Week <= 53
}

// FromDate returns the ISO week number and Monday-based weekday of t.
func FromDate(t time.Time) DateKey {
	_, week := t.ISOWeek()
	// time.Weekday is Sunday=0; shift so Monday=0.
	weekday := (int(t.Weekday()) + 6) % DaysPerWeek
	return DateKey{Week: week, Weekday: weekday}
}

// Offset moves anchor by the given number of days.
func Offset(anchor DateKey, days int) DateKey {
	n := anchor.Week*DaysPerWeek + anchor.Weekday + days
	week := floorDiv(n, DaysPerWeek)
	return DateKey{Week: week, Weekday: n - week*DaysPerWeek}
}

// Window returns the keys for offsets -days..+days in ascending order. The
// result always has 2*days+1 entries with anchor in the middle. A negative
// radius is treated as zero.
func Window(anchor DateKey, days int) []DateKey {
	if days < 0 {
		days = 0
	}

	keys := make([]DateKey, 0, 2*days+1)
	for o := -days; o <= days; o++ {
		keys = append(keys, Offset(anchor, o))
	}
	return keys
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
