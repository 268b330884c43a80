package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"openclaw/internal/core"
)

// Kind selects the output document of the chart adapter.
type Kind string

const (
	// KindBar is the category chart document read by Appsmith's ECharts widget.
	KindBar Kind = "bar"
	// KindRecords is the flat record array read by Tremor charts.
	KindRecords Kind = "records"
)

const (
	DefaultTitle      = "Chart"
	DefaultSeriesType = "bar"
)

var seriesTypes = map[string]bool{"bar": true, "line": true}

// ParseKind accepts a kind name or one of the front-end aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar", "appsmith", "echarts", "category":
		return KindBar, nil
	case "records", "tremor", "record-array":
		return KindRecords, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnknownKind, s)
	}
}

// Empty is the sentinel document returned when rendering fails.
func (k Kind) Empty() string {
	if k == KindRecords {
		return "[]"
	}
	return "{}"
}

func (k Kind) String() string {
	return string(k)
}

// BarOptions configures the category chart document.
type BarOptions struct {
	Title string
	// SeriesType is "bar" or "line".
	SeriesType string
}

func (o BarOptions) withDefaults() BarOptions {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.SeriesType == "" {
		o.SeriesType = DefaultSeriesType
	}
	return o
}

// Options carries the settings of both kinds; each kind reads its own part.
type Options struct {
	Bar  BarOptions
	Keys core.RecordKeys
}

type (
	// BarDocument is the ECharts option object for a single-series category chart.
	BarDocument struct {
		Title   TitleBlock   `json:"title"`
		Tooltip Tooltip      `json:"tooltip"`
		XAxis   CategoryAxis `json:"xAxis"`
		YAxis   ValueAxis    `json:"yAxis"`
		Series  []BarSeries  `json:"series"`
	}

	TitleBlock struct {
		Text string `json:"text"`
	}

	Tooltip struct {
		Trigger string `json:"trigger"`
	}

	CategoryAxis struct {
		Type string   `json:"type"`
		Data []string `json:"data"`
	}

	ValueAxis struct {
		Type string `json:"type"`
	}

	BarSeries struct {
		Data   []json.RawMessage `json:"data"`
		Type   string            `json:"type"`
		Smooth bool              `json:"smooth"`
	}
)

// Row is one object of a record-array chart. It encodes as
// {XKey: Label, CategoryKey: Value} with the keys in that order. Value is
// written verbatim.
type Row struct {
	XKey        string
	CategoryKey string
	Label       string
	Value       json.RawMessage
}

func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, v := range []any{r.XKey, r.Label, r.CategoryKey} {
		if i == 2 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		if i%2 == 0 {
			buf.WriteByte(':')
		}
	}
	if len(r.Value) == 0 {
		buf.WriteString("null")
	} else {
		buf.Write(r.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map returns the row as a plain map with the value decoded.
func (r Row) Map() map[string]any {
	var v any
	if err := json.Unmarshal(r.Value, &v); err != nil {
		v = nil
	}
	return map[string]any{r.XKey: r.Label, r.CategoryKey: v}
}
