package calendar

import "strings"

var weekdayLabels = map[string][DaysPerWeek]string{
	"ko": {"월", "화", "수", "목", "금", "토", "일"},
	"en": {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
}

// WeekdayLabel returns the short weekday name for lang ("ko" or "en").
// Unknown languages fall back to Korean; out-of-range weekdays return "".
func WeekdayLabel(weekday int, lang string) string {
	if weekday < 0 || weekday >= DaysPerWeek {
		return ""
	}
	labels, ok := weekdayLabels[strings.ToLower(lang)]
	if !ok {
		labels = weekdayLabels["ko"]
	}
	return labels[weekday]
}
