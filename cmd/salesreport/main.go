// Command salesreport prints the weekly sales report for one product and
// date, and optionally writes the window chart and a window export.
//
//	salesreport -product 550 -date 2024-03-06 -days 5 -out chart.png -export window.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"salesboard/internal/calendar"
	"salesboard/internal/chart"
	"salesboard/internal/config"
	"salesboard/internal/exporter"
	"salesboard/internal/infrastructure"
	"salesboard/internal/services"
	"salesboard/internal/storage"
)

// openStore is replaced in tests.
var openStore = storage.Open

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	product   string
	date      string
	days      int
	chartOut  string
	exportOut string
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.product, "product", "", "product name from the catalog (defaults to the first one)")
	fs.StringVar(&opts.date, "date", time.Now().Format(calendar.DateLayout), "calendar date, YYYY-MM-DD")
	fs.IntVar(&opts.days, "days", cfg.Report.WindowDays, "days shown on each side of the date (0-7)")
	fs.StringVar(&opts.chartOut, "out", "", "write the window chart here (.png or .svg)")
	fs.StringVar(&opts.exportOut, "export", "", "write the window rows here (.csv or .xlsx)")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if opts.product == "" {
		if names := cfg.Storage.ProductNames(); len(names) > 0 {
			opts.product = names[0]
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	ctx = infrastructure.EnsureTraceID(ctx)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	opts, err := parseFlags(args, cfg, os.Stderr)
	if err != nil {
		return err
	}

	date, err := time.Parse(calendar.DateLayout, opts.date)
	if err != nil {
		return fmt.Errorf("invalid -date %q: want YYYY-MM-DD", opts.date)
	}

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	svc, err := services.NewReportService(store, cfg, nil, logger)
	if err != nil {
		return err
	}

	// One fetch serves the messages, the chart and the export.
	res, err := svc.Evaluate(ctx, services.LookupRequest{Product: opts.product, Date: date, Days: opts.days})
	if err != nil {
		if code, ok := storage.StatusCodeOf(err); ok {
			return fmt.Errorf("파일을 가져오지 못했습니다. HTTP 상태 코드: %d", code)
		}
		return err
	}
	report := res.Report

	for _, line := range report.Messages {
		fmt.Fprintln(stdout, line)
	}

	if !report.HasWindow() {
		if opts.chartOut != "" || opts.exportOut != "" {
			logger.Warn("Nothing to write, the window is empty",
				slog.String("chart", opts.chartOut),
				slog.String("export", opts.exportOut))
		}
		return nil
	}

	if opts.chartOut != "" {
		format := chart.PNG
		if strings.EqualFold(filepath.Ext(opts.chartOut), ".svg") {
			format = chart.SVG
		}
		img, err := svc.RenderChart(ctx, res, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.chartOut, img, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(stdout, "chart: %s\n", opts.chartOut)
	}

	if opts.exportOut != "" {
		file, err := svc.EncodeExport(res, exporter.FormatFromPath(opts.exportOut))
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.exportOut, file.Body, 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Fprintf(stdout, "export: %s\n", opts.exportOut)
	}

	return nil
}
