package chart

import (
	"bytes"
	"encoding/json"
	"fmt"

	"openclaw/internal/core"
)

// BuildBar wraps the series into a category chart document. Labels and values
// keep the series order.
func BuildBar(series core.Series, opts BarOptions) (BarDocument, error) {
	opts = opts.withDefaults()
	if !seriesTypes[opts.SeriesType] {
		return BarDocument{}, fmt.Errorf("unsupported series type %q", opts.SeriesType)
	}

	labels := series.Labels()
	values, err := series.ValuesJSON()
	if err != nil {
		return BarDocument{}, err
	}

	return BarDocument{
		Title:   TitleBlock{Text: opts.Title},
		Tooltip: Tooltip{Trigger: "axis"},
		XAxis:   CategoryAxis{Type: "category", Data: labels},
		YAxis:   ValueAxis{Type: "value"},
		Series: []BarSeries{{
			Data:   values,
			Type:   opts.SeriesType,
			Smooth: true,
		}},
	}, nil
}

// BuildRecords re-keys every point under the caller's key names.
func BuildRecords(series core.Series, keys core.RecordKeys) ([]Row, error) {
	keys = keys.WithDefaults()
	if err := keys.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %q", err, keys.XKey)
	}

	out := make([]Row, 0, len(series))
	for _, p := range series {
		v, err := p.ValueJSON()
		if err != nil {
			return nil, err
		}
		out = append(out, Row{
			XKey:        keys.XKey,
			CategoryKey: keys.CategoryKey,
			Label:       p.Label,
			Value:       v,
		})
	}
	return out, nil
}

// Render builds the document selected by kind and encodes it as indented JSON.
func Render(kind Kind, series core.Series, opts Options) ([]byte, error) {
	switch kind {
	case KindBar:
		doc, err := BuildBar(series, opts.Bar)
		if err != nil {
			return nil, err
		}
		return encode(doc)
	case KindRecords:
		rows, err := BuildRecords(series, opts.Keys)
		if err != nil {
			return nil, err
		}
		return encode(rows)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
}

// RenderJSON decodes a raw JSON series and renders it. The category chart
// requires every item to carry label and value; the record array defaults
// missing ones.
func RenderJSON(kind Kind, data []byte, opts Options) ([]byte, error) {
	var (
		series core.Series
		err    error
	)
	switch kind {
	case KindBar:
		series, err = DecodeStrict(data)
	case KindRecords:
		series, err = DecodeLenient(data)
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, err
	}
	return Render(kind, series, opts)
}

// encode writes two-space indented JSON without HTML escaping or a trailing newline.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode chart: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
