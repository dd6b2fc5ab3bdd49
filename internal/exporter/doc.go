// Package exporter writes the records of a report window for download.
//
// CSVWriter is the low level writer: headers, records and an optional UTF-8
// BOM so Excel opens Korean headers correctly. WindowExporter turns a
// WindowExport into CSV or an XLSX workbook with a bold header row.
//
// Example usage:
//
//	x := exporter.NewWindowExporter(logger)
//	err := x.Write(w, exporter.WindowExport{
//	    Product:  "550",
//	    Date:     "2024-03-06",
//	    Language: "ko",
//	    Anchor:   anchor,
//	    Records:  records,
//	}, exporter.FormatXLSX)
package exporter
