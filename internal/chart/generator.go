package chart

import (
	"errors"
	"fmt"

	"openclaw/internal/core"
	applog "openclaw/internal/log"
)

// Generator turns JSON series text into chart documents without ever failing:
// any error is logged and replaced by the empty document of the requested kind.
type Generator struct {
	logger *applog.Logger
}

func NewGenerator(logger *applog.Logger) *Generator {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Generator{logger: logger.WithComponent(applog.ComponentChart)}
}

// BarChartJSON renders the Appsmith category chart, "{}" on failure.
func (g *Generator) BarChartJSON(dataJSON, title string) string {
	return g.Generate(KindBar, dataJSON, Options{Bar: BarOptions{Title: title}})
}

// RecordArrayJSON renders the Tremor record array, "[]" on failure.
func (g *Generator) RecordArrayJSON(dataJSON, xKey, categoryKey string) string {
	return g.Generate(KindRecords, dataJSON, Options{Keys: core.RecordKeys{XKey: xKey, CategoryKey: categoryKey}})
}

// Generate renders dataJSON as kind.
func (g *Generator) Generate(kind Kind, dataJSON string, opts Options) (out string) {
	defer func() {
		if r := recover(); r != nil {
			g.fail(kind, fmt.Errorf("panic: %v", r))
			out = kind.Empty()
		}
	}()

	b, err := RenderJSON(kind, []byte(dataJSON), opts)
	if err != nil {
		g.fail(kind, err)
		return kind.Empty()
	}
	return string(b)
}

// GenerateSeries renders an in-memory series as kind.
func (g *Generator) GenerateSeries(kind Kind, series core.Series, opts Options) string {
	b, err := Render(kind, series, opts)
	if err != nil {
		g.fail(kind, err)
		return kind.Empty()
	}
	return string(b)
}

func (g *Generator) fail(kind Kind, err error) {
	op := applog.OpBarChart
	if kind == KindRecords {
		op = applog.OpRecordArray
	}
	errType := applog.ErrorTypeInternal
	if errors.Is(err, core.ErrMalformedSeries) || errors.Is(err, core.ErrDuplicateKey) {
		errType = applog.ErrorTypeInput
	}
	fields := applog.NewFields().WithOperation(op).WithError(err, errType)
	g.logger.Error("Chart generation failed", append(fields.ToSlice(), applog.FieldKind, kind.String())...)
}
