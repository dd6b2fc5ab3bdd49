package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column names.
const (
	ColumnWeek        = "week"
	ColumnWeekday     = "weekday"
	ColumnAvgQuantity = "avg_quantity"

	// DefaultQuantityColumn is the header used by the ERP sales exports.
	DefaultQuantityColumn = "평균매출수량"
)

// Supported text encodings.
const (
	EncodingUTF8  = "utf-8"
	EncodingEUCKR = "euc-kr"
)

var (
	ErrEmpty               = errors.New("dataset is empty")
	ErrMissingColumn       = errors.New("missing column")
	ErrInvalidValue        = errors.New("invalid value")
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// DecodeOptions controls how raw object bytes become a Dataset.
type DecodeOptions struct {
	// QuantityColumn is the header holding the average quantity. The canonical
	// name avg_quantity is always accepted as well.
	QuantityColumn string
	// Encoding of delimited text: utf-8 (default) or euc-kr.
	Encoding string
	// Delimiter for delimited text, ',' when zero.
	Delimiter rune
}

// Decode parses body into a Dataset. Names ending in .xlsx are read as Excel
// workbooks (first sheet); everything else as delimited text.
func Decode(name string, body []byte, opts DecodeOptions) (*Dataset, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmpty)
	}

	var df dataframe.DataFrame
	if strings.EqualFold(path.Ext(name), ".xlsx") {
		records, err := readWorkbook(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		df = dataframe.LoadRecords(records,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
		)
	} else {
		r, err := textReader(body, opts.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		delim := opts.Delimiter
		if delim == 0 {
			delim = ','
		}
		df = dataframe.ReadCSV(r,
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.WithDelimiter(delim),
			dataframe.NaNValues([]string{}),
		)
	}
	if df.Err != nil {
		return nil, fmt.Errorf("%s: parse table: %w", name, df.Err)
	}

	ds, err := fromFrame(name, df, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return ds, nil
}

func fromFrame(name string, df dataframe.DataFrame, opts DecodeOptions) (*Dataset, error) {
	qty := opts.QuantityColumn
	if qty == "" {
		qty = DefaultQuantityColumn
	}

	cols, err := resolveColumns(df.Names(), []columnSpec{
		{canonical: ColumnWeek, names: []string{ColumnWeek}},
		{canonical: ColumnWeekday, names: []string{ColumnWeekday}},
		{canonical: ColumnAvgQuantity, names: []string{qty, ColumnAvgQuantity}},
	})
	if err != nil {
		return nil, err
	}

	df = df.Select([]string{cols[ColumnWeek], cols[ColumnWeekday], cols[ColumnAvgQuantity]})
	for _, canonical := range []string{ColumnWeek, ColumnWeekday, ColumnAvgQuantity} {
		if cols[canonical] != canonical {
			df = df.Rename(canonical, cols[canonical])
		}
	}
	if df.Err != nil {
		return nil, df.Err
	}

	weeks := df.Col(ColumnWeek).Records()
	weekdays := df.Col(ColumnWeekday).Records()
	quantities := df.Col(ColumnAvgQuantity).Records()

	ds := &Dataset{source: name, records: make([]SalesRecord, 0, df.Nrow())}
	for i := 0; i < df.Nrow(); i++ {
		// Row numbers are 1-based and count the header line.
		row := i + 2
		if blank(weeks[i]) || blank(weekdays[i]) || blank(quantities[i]) {
			ds.skipped++
			continue
		}

		week, err := parseInt(weeks[i])
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", row, ColumnWeek, err)
		}
		weekday, err := parseInt(weekdays[i])
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", row, ColumnWeekday, err)
		}
		if weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("row %d column %s: %w: weekday %d out of range", row, ColumnWeekday, ErrInvalidValue, weekday)
		}
		q, err := strconv.ParseFloat(strings.TrimSpace(quantities[i]), 64)
		if err != nil || math.IsNaN(q) || math.IsInf(q, 0) {
			return nil, fmt.Errorf("row %d column %s: %w: %q", row, ColumnAvgQuantity, ErrInvalidValue, quantities[i])
		}

		ds.records = append(ds.records, SalesRecord{Week: week, Weekday: weekday, AvgQuantity: q})
	}
	return ds, nil
}

type columnSpec struct {
	canonical string
	names     []string
}

// resolveColumns maps each canonical column to the first header matching one
// of its candidate names after normalization.
func resolveColumns(headers []string, specs []columnSpec) (map[string]string, error) {
	normalized := make(map[string]string, len(headers))
	for _, h := range headers {
		n := NormalizeHeader(h)
		if _, dup := normalized[n]; !dup {
			normalized[n] = h
		}
	}

	resolved := make(map[string]string, len(specs))
	var missing []string
	for _, spec := range specs {
		for _, name := range spec.names {
			if h, ok := normalized[NormalizeHeader(name)]; ok {
				resolved[spec.canonical] = h
				break
			}
		}
		if _, ok := resolved[spec.canonical]; !ok {
			missing = append(missing, spec.names[0])
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return resolved, nil
}

// NormalizeHeader folds a column header for comparison: NFKC (so decomposed
// Hangul from some spreadsheet exports matches), case folding, trimmed spaces.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	out, _, err := transform.String(transform.Chain(norm.NFKC, cases.Fold()), h)
	if err != nil {
		out = h
	}
	return strings.TrimSpace(out)
}

func textReader(body []byte, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", EncodingUTF8, "utf8":
		// BOMOverride strips a leading UTF-8 BOM written by Excel.
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		return transform.NewReader(bytes.NewReader(body), dec), nil
	case EncodingEUCKR, "cp949":
		return transform.NewReader(bytes.NewReader(body), korean.EUCKR.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, encoding)
	}
}

func readWorkbook(body []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) < 1 {
		return nil, ErrEmpty
	}

	// GetRows trims trailing empty cells; the frame needs rectangular input.
	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > width {
			row = row[:width]
		}
		padded := make([]string, width)
		copy(padded, row)
		records = append(records, padded)
	}
	return records, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	// Spreadsheet exports sometimes write integers as "10.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, s)
	}
	return int(f), nil
}

func blank(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "nan")
}
