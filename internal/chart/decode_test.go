package chart

import (
	"errors"
	"testing"

	"openclaw/internal/core"
)

func TestDecodeStrict(t *testing.T) {
	got, err := DecodeStrict([]byte(`[{"label": "2026-01", "value": 350.0}, {"label": "2026-02", "value": 150, "extra": true}]`))
	if err != nil {
		t.Fatalf("DecodeStrict: %v", err)
	}
	want := core.Series{{Label: "2026-01", Value: 350, Raw: "350.0"}, {Label: "2026-02", Value: 150, Raw: "150"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	passthrough, err := DecodeStrict([]byte(`[{"label": "a", "value": null}, {"label": "b", "value": "1"}, {"label": "c", "value": 12345678901234567891}]`))
	if err != nil {
		t.Fatalf("DecodeStrict with non-numeric values: %v", err)
	}
	for i, raw := range []string{"null", `"1"`, "12345678901234567891"} {
		if passthrough[i].Raw != raw {
			t.Errorf("point %d raw = %s, want %s", i, passthrough[i].Raw, raw)
		}
	}
	if passthrough[0].Value != 0 || passthrough[1].Value != 0 {
		t.Errorf("non-numeric values should read as 0: %+v", passthrough)
	}

	bad := []string{
		``,
		`not json`,
		`{"label": "a", "value": 1}`,
		`null`,
		`[1, 2]`,
		`[null]`,
		`[{"label": "a"}]`,
		`[{"value": 1}]`,
		`[{"label": null, "value": 1}]`,
		`[{"label": 5, "value": 1}]`,
		`[{"label": "a", "value": 1}] []`,
	}
	for _, in := range bad {
		if _, err := DecodeStrict([]byte(in)); !errors.Is(err, core.ErrMalformedSeries) {
			t.Errorf("DecodeStrict(%q) expected ErrMalformedSeries, got %v", in, err)
		}
	}
}

func TestDecodeLenient(t *testing.T) {
	got, err := DecodeLenient([]byte(`[{"label": "a"}, {"value": 2}, {"label": null, "value": null}, {}]`))
	if err != nil {
		t.Fatalf("DecodeLenient: %v", err)
	}
	want := core.Series{{Label: "a"}, {Value: 2, Raw: "2"}, {Raw: "null"}, {}}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if empty, err := DecodeLenient([]byte(`[]`)); err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty array: %#v, %v", empty, err)
	}

	for _, in := range []string{`{}`, `[1]`, `[{"label": ["x"]}]`, `[{"label": 5, "value": 1}]`} {
		if _, err := DecodeLenient([]byte(in)); !errors.Is(err, core.ErrMalformedSeries) {
			t.Errorf("DecodeLenient(%q) expected ErrMalformedSeries, got %v", in, err)
		}
	}
}
