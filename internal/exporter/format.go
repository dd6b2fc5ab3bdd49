package exporter

import (
	"fmt"
	"strconv"
)

// formatFloat formats a quantity with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an integer column value
func formatInt(i int) string {
	return strconv.Itoa(i)
}
