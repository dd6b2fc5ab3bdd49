package services

import (
	"fmt"
	"strconv"
)

// messages holds the user-facing sentences of a report in one language.
type messages struct {
	summary    string // week, weekday label
	value      string // week, weekday label, value
	noValue    string
	window     string // days
	noWindow   string // days
	chartTitle string // days, date
	seriesName string
	markerName string
	xAxisName  string
	yAxisName  string
}

var catalog = map[string]messages{
	"ko": {
		summary:    "선택한 날짜는 %d주차, %s요일에 해당합니다.",
		value:      "선택한 %d주차, %s요일의 평균 매출수량은 %s입니다.",
		noValue:    "선택한 날짜에 대한 데이터가 없습니다.",
		window:     "선택한 날짜 기준 전후 %d일간의 데이터를 그래프로 표시합니다.",
		noWindow:   "선택한 날짜 전후 %d일 간의 데이터가 없습니다.",
		chartTitle: "전후 %d일 간의 매출수량 (선택한 날짜: %s)",
		seriesName: "매출수량",
		markerName: "선택한 날짜",
		xAxisName:  "주차-요일",
		yAxisName:  "매출수량",
	},
	"en": {
		summary:    "The selected date falls in week %d, %s.",
		value:      "The average quantity for week %d, %s is %s.",
		noValue:    "There is no data for the selected date.",
		window:     "Showing the data for %d days before and after the selected date.",
		noWindow:   "There is no data within %d days of the selected date.",
		chartTitle: "Quantity within ±%d days (selected date: %s)",
		seriesName: "avg quantity",
		markerName: "selected date",
		xAxisName:  "week-weekday",
		yAxisName:  "avg quantity",
	},
}

func messagesFor(lang string) messages {
	if m, ok := catalog[lang]; ok {
		return m
	}
	return catalog["ko"]
}

// formatQuantity prints the shortest representation, 42 rather than 42.000000.
func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m messages) summaryLine(week int, label string) string {
	return fmt.Sprintf(m.summary, week, label)
}

func (m messages) valueLine(week int, label string, v float64) string {
	return fmt.Sprintf(m.value, week, label, formatQuantity(v))
}

func (m messages) windowLine(days int) string {
	return fmt.Sprintf(m.window, days)
}

func (m messages) noWindowLine(days int) string {
	return fmt.Sprintf(m.noWindow, days)
}

func (m messages) title(days int, date string) string {
	return fmt.Sprintf(m.chartTitle, days, date)
}
