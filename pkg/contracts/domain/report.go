package domain

// Product is one entry of the product catalog.
type Product struct {
	Name      string `json:"name"`
	ObjectKey string `json:"object_key"`
}

// Report is the result of a weekly sales lookup for one product and date.
type Report struct {
	Product      string `json:"product"`
	Date         string `json:"date"`
	Week         int    `json:"week"`
	Weekday      int    `json:"weekday"`
	WeekdayLabel string `json:"weekday_label"`
	Days         int    `json:"days"`

	// Value is the average quantity of the first matching row, nil when the
	// table has no row for the selected week and weekday.
	Value *float64 `json:"value"`

	// Window holds the rows inside the ±Days window in offset order.
	Window []WindowPoint `json:"window"`

	// Source is the object key the table was loaded from.
	Source   string   `json:"source"`
	Rows     int      `json:"rows"`
	Summary  string   `json:"summary"`
	Messages []string `json:"messages"`
}

// HasValue reports whether the exact lookup found a row.
func (r *Report) HasValue() bool {
	return r != nil && r.Value != nil
}

// HasWindow reports whether any row fell inside the window.
func (r *Report) HasWindow() bool {
	return r != nil && len(r.Window) > 0
}

// WindowPoint is one table row inside the window.
type WindowPoint struct {
	Week        int     `json:"week"`
	Weekday     int     `json:"weekday"`
	Label       string  `json:"label"`
	AvgQuantity float64 `json:"avg_quantity"`
	Selected    bool    `json:"selected"`
}
