package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"openclaw/internal/analytics"
	"openclaw/internal/chart"
	"openclaw/internal/config"
	"openclaw/internal/core"
	applog "openclaw/internal/log"
	"openclaw/internal/source/factory"
)

// dashboardReport is printed by the dashboard subcommand.
type dashboardReport struct {
	Source    string          `json:"source"`
	Records   int             `json:"records"`
	LTV       float64         `json:"ltv"`
	ChurnRate float64         `json:"churnRate"`
	Revenue   json.RawMessage `json:"revenue"`
	Chart     json.RawMessage `json:"chart"`
}

func runDashboard(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer, logger *applog.Logger) int {
	fs := flag.NewFlagSet("openclaw-runner dashboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "Revenue by Month", "chart title")
	kindName := fs.String("chart", string(chart.KindBar), "chart kind: bar or records")
	seriesType := fs.String("series-type", chart.DefaultSeriesType, "bar chart series type: bar or line")
	dateField := fs.String("date-field", core.DefaultDateField, "record key holding the transaction date")
	amountField := fs.String("amount-field", core.AmountSpentField, "record key holding the amount")
	xKey := fs.String("x-key", "month", "record-array key for the month label")
	categoryKey := fs.String("category-key", "revenue", "record-array key for the value")
	fillGaps := fs.Bool("fill-gaps", cfg.RevenueFillGaps, "emit zero points for months without records")
	churnStart := fs.Int("churn-start", 0, "active customers at period start")
	churnLost := fs.Int("churn-lost", 0, "customers lost during the period")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	kind, err := chart.ParseKind(*kindName)
	if err != nil {
		fmt.Fprintf(stderr, "openclaw-runner dashboard: %v\n", err)
		return 2
	}

	if err := cfg.ValidateSources(); err != nil {
		logger.Error("Configuration validation failed",
			applog.NewFields().WithError(err, applog.ErrorTypeConfiguration).ToSlice()...)
		return 1
	}

	srcConfig, err := factory.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid source configuration",
			applog.NewFields().WithError(err, applog.ErrorTypeConfiguration).ToSlice()...)
		return 1
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.SourceTimeout)
	defer cancel()

	res, err := factory.NewFactory(logger).CreateSource(loadCtx, srcConfig)
	if err != nil {
		logger.Error("Failed to create record source",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err, applog.ErrorTypeConfiguration).ToSlice()...)
		return 1
	}
	defer res.Close()

	records, err := res.Source.Load(loadCtx)
	if err != nil {
		logger.Error("Failed to load records",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err, applog.ErrorTypeNetwork).ToSlice()...)
		return 1
	}
	logger.Info("Loaded records", applog.FieldSource, res.Source.Name(), applog.FieldRecords, len(records))

	analyzer := analytics.NewAnalyzer(logger)
	generator := chart.NewGenerator(logger)

	fields := core.RevenueFields{DateField: *dateField, AmountField: *amountField, FillGaps: *fillGaps}
	revenueJSON := analyzer.RevenueByMonthJSON(records, fields)
	doc := generator.Generate(kind, revenueJSON, chart.Options{
		Bar:  chart.BarOptions{Title: *title, SeriesType: *seriesType},
		Keys: core.RecordKeys{XKey: *xKey, CategoryKey: *categoryKey},
	})

	report := dashboardReport{
		Source:    res.Source.Name(),
		Records:   len(records),
		LTV:       analyzer.LTV(records),
		ChurnRate: analyzer.Churn(*churnStart, *churnLost),
		Revenue:   json.RawMessage(revenueJSON),
		Chart:     json.RawMessage(doc),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to encode dashboard report", applog.FieldError, err)
		return 1
	}
	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return 1
	}
	return 0
}
