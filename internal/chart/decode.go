package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"openclaw/internal/core"
)

// DecodeStrict parses a JSON array of {"label": string, "value": any}
// objects. Any item without both fields fails the whole decode. Values are
// kept verbatim, so numbers keep their exact digits and non-numeric values
// pass through unchanged.
func DecodeStrict(data []byte) (core.Series, error) {
	return decode(data, true)
}

// DecodeLenient parses the same shape as DecodeStrict but defaults a missing
// label to "" and a missing value to 0. A null label also reads as "".
func DecodeLenient(data []byte) (core.Series, error) {
	return decode(data, false)
}

func decode(data []byte, strict bool) (core.Series, error) {
	var items []map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedSeries, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", core.ErrMalformedSeries)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: expected an array", core.ErrMalformedSeries)
	}

	series := make(core.Series, 0, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: item %d is not an object", core.ErrMalformedSeries, i)
		}
		p, err := decodePoint(item, strict)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", core.ErrMalformedSeries, i, err)
		}
		series = append(series, p)
	}
	return series, nil
}

func decodePoint(item map[string]json.RawMessage, strict bool) (core.Point, error) {
	var p core.Point

	label, ok := item[core.DefaultXKey]
	switch {
	case !ok && strict:
		return p, fmt.Errorf("missing %q", core.DefaultXKey)
	case !ok:
	case isNull(label):
		if strict {
			return p, fmt.Errorf("field %q is null", core.DefaultXKey)
		}
	default:
		if err := json.Unmarshal(label, &p.Label); err != nil {
			return p, fmt.Errorf("field %q: %v", core.DefaultXKey, err)
		}
	}

	value, ok := item[core.DefaultCategoryKey]
	if !ok {
		if strict {
			return p, fmt.Errorf("missing %q", core.DefaultCategoryKey)
		}
		return p, nil
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return p, fmt.Errorf("field %q: %v", core.DefaultCategoryKey, err)
	}
	p.Raw = compact.String()
	p.Value = numericValue(p.Raw)
	return p, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// numericValue reads a JSON number as float64. Other JSON values read as 0.
func numericValue(raw string) float64 {
	if raw == "" || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}
