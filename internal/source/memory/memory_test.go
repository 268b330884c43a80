package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"openclaw/internal/analytics"
	"openclaw/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewFromFileJSON(t *testing.T) {
	path := writeFile(t, "tx.json", `[
		{"customer_id": 1, "amount_spent": 50, "date": "2026-01-15"},
		{"customer_id": 1, "amount_spent": 150, "date": "2026-01-20"},
		{"customer_id": 2, "amount_spent": 300, "date": "2026-02-10"}
	]`)

	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	records, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Load() returned %d records, want 3", len(records))
	}
	if _, ok := records[0][core.AmountSpentField].(json.Number); !ok {
		t.Errorf("amount type = %T, want json.Number", records[0][core.AmountSpentField])
	}

	ltv, err := analytics.AverageLTV(records)
	if err != nil {
		t.Fatalf("AverageLTV() error = %v", err)
	}
	if ltv != 250 {
		t.Errorf("AverageLTV() = %v, want 250", ltv)
	}
	if s.Name() != "memory:tx.json" {
		t.Errorf("Name() = %q", s.Name())
	}
}

func TestNewFromFileCSV(t *testing.T) {
	path := writeFile(t, "tx.csv", "customer_id,amount_spent,date\n"+
		"1,50,2026-01-15\n"+
		"\n"+
		"2, 300.5 ,2026-02-10\n"+
		"abc,,2026-03-01\n")

	s, err := NewFromFile(path)
	if err != nil {
		t.Fatalf("NewFromFile() error = %v", err)
	}
	records, _ := s.Load(context.Background())
	if len(records) != 3 {
		t.Fatalf("Load() returned %d records, want 3", len(records))
	}

	if records[0]["customer_id"] != 1.0 {
		t.Errorf("customer_id = %#v, want 1.0", records[0]["customer_id"])
	}
	if records[1]["amount_spent"] != 300.5 {
		t.Errorf("amount_spent = %#v, want 300.5", records[1]["amount_spent"])
	}
	if records[2]["customer_id"] != "abc" {
		t.Errorf("customer_id = %#v, want abc", records[2]["customer_id"])
	}
	if v, ok := records[2]["amount_spent"]; !ok || v != nil {
		t.Errorf("empty cell = %#v (present %v), want nil", v, ok)
	}
}

func TestNewFromFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unsupported extension", "tx.txt", "hello"},
		{"malformed json", "tx.json", `[{"customer_id": 1`},
		{"object instead of array", "tx.json", `{"customer_id": 1}`},
		{"null item", "tx.json", `[null]`},
		{"trailing data", "tx.json", `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFromFile(writeFile(t, tt.file, tt.content)); err == nil {
				t.Error("NewFromFile() expected error")
			}
		})
	}

	if _, err := NewFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("NewFromFile() expected error for missing file")
	}
}

func TestLoadReturnsCopies(t *testing.T) {
	s := New([]core.Record{{"customer_id": 1, "amount_spent": 10}})

	first, _ := s.Load(context.Background())
	first[0]["amount_spent"] = 999

	second, _ := s.Load(context.Background())
	if len(second) != 1 || second[0]["amount_spent"] != 10 {
		t.Errorf("store was mutated through Load result: %v", second)
	}

	s.Append(core.Record{"customer_id": 3})
	third, _ := s.Load(context.Background())
	if len(third) != 2 {
		t.Errorf("Load() after Append returned %d records, want 2", len(third))
	}
}

func TestParseCSVEmpty(t *testing.T) {
	records, err := ParseCSV(nil)
	if err != nil {
		t.Fatalf("ParseCSV() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ParseCSV() = %v, want empty", records)
	}
}
