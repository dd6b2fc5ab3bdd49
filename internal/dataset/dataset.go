package dataset

import (
	"salesboard/internal/calendar"
)

// SalesRecord is one row of a weekly sales table.
type SalesRecord struct {
	Week        int     `json:"week"`
	Weekday     int     `json:"weekday"`
	AvgQuantity float64 `json:"avg_quantity"`
}

// Key returns the (week, weekday) coordinate of the record.
func (r SalesRecord) Key() calendar.DateKey {
	return calendar.DateKey{Week: r.Week, Weekday: r.Weekday}
}

// Dataset is an immutable, load-ordered set of sales records for one product.
type Dataset struct {
	source  string
	records []SalesRecord
	skipped int
}

// New builds a dataset from records in load order. The slice is copied.
func New(source string, records []SalesRecord) *Dataset {
	rs := make([]SalesRecord, len(records))
	copy(rs, records)
	return &Dataset{source: source, records: rs}
}

// Source is the object the dataset was decoded from.
func (d *Dataset) Source() string { return d.source }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Skipped returns how many source rows were dropped because a cell was blank.
func (d *Dataset) Skipped() int { return d.skipped }

// Records returns a copy of the records in load order.
func (d *Dataset) Records() []SalesRecord {
	rs := make([]SalesRecord, len(d.records))
	copy(rs, d.records)
	return rs
}

// Exact returns the first record in load order matching key. The boolean is
// false when the table has no row for key.
func (d *Dataset) Exact(key calendar.DateKey) (SalesRecord, bool) {
	for _, r := range d.records {
		if r.Week == key.Week && r.Weekday == key.Weekday {
			return r, true
		}
	}
	return SalesRecord{}, false
}

// Window returns every record whose key is in keys, ordered by the position of
// its key in keys. Records sharing a key keep their load order. Keys without
// rows are skipped, so the result may be shorter than keys or empty.
func (d *Dataset) Window(keys []calendar.DateKey) []SalesRecord {
	byKey := make(map[calendar.DateKey][]SalesRecord, len(keys))
	for _, k := range keys {
		byKey[k] = nil
	}
	for _, r := range d.records {
		k := r.Key()
		if rows, ok := byKey[k]; ok {
			byKey[k] = append(rows, r)
		}
	}

	out := make([]SalesRecord, 0, len(keys))
	seen := make(map[calendar.DateKey]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, byKey[k]...)
	}
	return out
}

// Keys returns the distinct (week, weekday) keys in first-seen order.
func (d *Dataset) Keys() []calendar.DateKey {
	seen := make(map[calendar.DateKey]bool, len(d.records))
	keys := make([]calendar.DateKey, 0, len(d.records))
	for _, r := range d.records {
		k := r.Key()
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
