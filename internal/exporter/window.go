package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/xuri/excelize/v2"

	"salesboard/internal/calendar"
	"salesboard/internal/dataset"
)

// Format is a download format for window exports.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" and "xlsx".
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format: %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to CSV.
func FormatFromPath(p string) Format {
	if strings.EqualFold(path.Ext(p), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// WindowExport is the window of one report.
type WindowExport struct {
	Product  string
	Date     string
	Language string
	Anchor   calendar.DateKey
	Records  []dataset.SalesRecord
}

// Filename suggests a download name such as 550_2024-03-06.xlsx.
func (e WindowExport) Filename(f Format) string {
	return fmt.Sprintf("%s_%s.%s", e.Product, e.Date, f)
}

// Headers returns the column headers in the export language.
func (e WindowExport) Headers() []string {
	if e.Language == "en" {
		return []string{"week", "weekday", "day", "avg_quantity", "selected"}
	}
	return []string{"주차", "요일번호", "요일", dataset.DefaultQuantityColumn, "선택일"}
}

// Rows renders the records as string cells.
func (e WindowExport) Rows() [][]string {
	rows := make([][]string, 0, len(e.Records))
	for _, r := range e.Records {
		selected := ""
		if r.Key() == e.Anchor {
			selected = "*"
		}
		rows = append(rows, []string{
			formatInt(r.Week),
			formatInt(r.Weekday),
			calendar.WeekdayLabel(r.Weekday, e.Language),
			formatFloat(r.AvgQuantity),
			selected,
		})
	}
	return rows
}

// WindowExporter writes window exports as CSV or XLSX.
type WindowExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewWindowExporter creates an exporter.
func NewWindowExporter(logger *slog.Logger) *WindowExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WindowExporter{
		csv:    NewCSVWriter(logger),
		logger: logger.With(slog.String("component", "window_exporter")),
	}
}

// Write encodes e in format f to out.
func (x *WindowExporter) Write(out io.Writer, e WindowExport, f Format) error {
	x.logger.Debug("Exporting window",
		slog.String("product", e.Product),
		slog.String("date", e.Date),
		slog.String("format", string(f)),
		slog.Int("record_count", len(e.Records)))

	switch f {
	case FormatCSV:
		return x.csv.WriteCSV(out, WriteOptions{
			Headers:   e.Headers(),
			Records:   e.Rows(),
			BOMPrefix: true,
		})
	case FormatXLSX:
		return writeWorkbook(out, e)
	default:
		return fmt.Errorf("unsupported export format: %q", f)
	}
}

func writeWorkbook(out io.Writer, e WindowExport) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "window"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headers := e.Headers()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range e.Records {
		selected := ""
		if r.Key() == e.Anchor {
			selected = "*"
		}
		row := []interface{}{r.Week, r.Weekday, calendar.WeekdayLabel(r.Weekday, e.Language), r.AvgQuantity, selected}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
