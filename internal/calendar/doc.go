// Package calendar maps calendar dates onto the (ISO week, weekday) grid used by
// the sales history tables and computes the surrounding-day windows around an
// anchor coordinate.
//
// A DateKey is a logical coordinate, not a date: it carries no year and week
// numbers are allowed to leave the 1..53 range after a rollover (week 0 is the
// week before week 1 of the same table).
//
// # Window arithmetic
//
// Offsets are applied to the composite counter week*7 + weekday and split back
// with floor division. For |offset| <= 7 this is the same as moving the weekday
// and correcting the week by one step in either direction:
//
//	Window(DateKey{Week: 1, Weekday: 0}, 2)
//	// [{0 5} {0 6} {1 0} {1 1} {1 2}]
package calendar
