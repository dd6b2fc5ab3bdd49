package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleStep is the one-step rollover rule the sales sheets were built with.
func singleStep(anchor DateKey, o int) DateKey {
	week, weekday := anchor.Week, anchor.Weekday+o
	switch {
	case weekday < 0:
		week--
		weekday += 7
	case weekday > 6:
		week++
		weekday -= 7
	}
	return DateKey{Week: week, Weekday: weekday}
}

func TestWindow_MiddleIsAnchor(t *testing.T) {
	anchor := DateKey{Week: 10, Weekday: 3}

	keys := Window(anchor, 5)

	require.Len(t, keys, 11)
	assert.Equal(t, anchor, keys[5])
	assert.Equal(t, DateKey{Week: 9, Weekday: 5}, keys[0])
	assert.Equal(t, DateKey{Week: 11, Weekday: 1}, keys[10])
}

func TestWindow_RollsBackAtWeekStart(t *testing.T) {
	keys := Window(DateKey{Week: 1, Weekday: 0}, 2)

	assert.Equal(t, []DateKey{
		{Week: 0, Weekday: 5},
		{Week: 0, Weekday: 6},
		{Week: 1, Weekday: 0},
		{Week: 1, Weekday: 1},
		{Week: 1, Weekday: 2},
	}, keys)
}

func TestWindow_RollsForwardAtWeekEnd(t *testing.T) {
	keys := Window(DateKey{Week: 52, Weekday: 6}, 1)

	assert.Equal(t, []DateKey{
		{Week: 52, Weekday: 5},
		{Week: 52, Weekday: 6},
		{Week: 53, Weekday: 0},
	}, keys)
}

func TestWindow_ZeroAndNegativeRadius(t *testing.T) {
	anchor := DateKey{Week: 20, Weekday: 2}

	assert.Equal(t, []DateKey{anchor}, Window(anchor, 0))
	assert.Equal(t, []DateKey{anchor}, Window(anchor, -3))
}

func TestWindow_WeekdayStaysInRing(t *testing.T) {
	for week := 1; week <= 53; week++ {
		for weekday := 0; weekday < DaysPerWeek; weekday++ {
			for _, k := range Window(DateKey{Week: week, Weekday: weekday}, 6) {
				assert.GreaterOrEqual(t, k.Weekday, 0)
				assert.LessOrEqual(t, k.Weekday, 6)
			}
		}
	}
}

func TestOffset_MatchesSingleStepRule(t *testing.T) {
	for weekday := 0; weekday < DaysPerWeek; weekday++ {
		anchor := DateKey{Week: 30, Weekday: weekday}
		for o := -7; o <= 7; o++ {
			assert.Equal(t, singleStep(anchor, o), Offset(anchor, o), "weekday=%d offset=%d", weekday, o)
		}
	}
}

func TestOffset_LargeOffsets(t *testing.T) {
	anchor := DateKey{Week: 10, Weekday: 0}

	assert.Equal(t, DateKey{Week: 8, Weekday: 6}, Offset(anchor, -8))
	assert.Equal(t, DateKey{Week: 12, Weekday: 1}, Offset(anchor, 15))
	assert.Equal(t, DateKey{Week: -1, Weekday: 0}, Offset(DateKey{Week: 1, Weekday: 0}, -14))
}

func TestFromDate(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want DateKey
	}{
		{"monday", time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), DateKey{Week: 10, Weekday: 0}},
		{"thursday", time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), DateKey{Week: 10, Weekday: 3}},
		{"sunday", time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), DateKey{Week: 10, Weekday: 6}},
		{"iso week 1 starts in december", time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), DateKey{Week: 1, Weekday: 0}},
		{"week 53", time.Date(2020, time.December, 31, 0, 0, 0, 0, time.UTC), DateKey{Week: 53, Weekday: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromDate(tt.date))
		})
	}
}

func TestDateKey_String(t *testing.T) {
	assert.Equal(t, "10-3", DateKey{Week: 10, Weekday: 3}.String())
	assert.Equal(t, "0-6", DateKey{Week: 0, Weekday: 6}.String())
}

func TestDateKey_Valid(t *testing.T) {
	assert.True(t, DateKey{Week: 1, Weekday: 0}.Valid())
	assert.True(t, DateKey{Week: 53, Weekday: 6}.Valid())
	assert.False(t, DateKey{Week: 0, Weekday: 6}.Valid())
	assert.False(t, DateKey{Week: 10, Weekday: 7}.Valid())
}

func TestWeekdayLabel(t *testing.T) {
	assert.Equal(t, "월", WeekdayLabel(0, "ko"))
	assert.Equal(t, "일", WeekdayLabel(6, "ko"))
	assert.Equal(t, "Thu", WeekdayLabel(3, "EN"))
	assert.Equal(t, "수", WeekdayLabel(2, "fr"))
	assert.Equal(t, "", WeekdayLabel(7, "ko"))
}
