package memory

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"openclaw/internal/core"
	"openclaw/internal/source"
)

// Store serves records held in memory, optionally seeded from a file.
type Store struct {
	mu    sync.Mutex
	name  string
	items []core.Record
}

var _ source.Source = (*Store)(nil)

func New(records []core.Record) *Store {
	s := &Store{name: "memory"}
	s.items = copyRecords(records)
	return s
}

// NewFromFile reads a .json array of objects or a .csv file with a header row.
func NewFromFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var records []core.Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		records, err = ParseJSON(data)
	case ".csv":
		records, err = ParseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported data file extension %q (want .json or .csv)", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &Store{name: "memory:" + filepath.Base(path), items: records}, nil
}

func (s *Store) Name() string { return s.name }

// Load returns a copy of the stored records.
func (s *Store) Load(ctx context.Context) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRecords(s.items), nil
}

// Append adds records to the store.
func (s *Store) Append(records ...core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, copyRecords(records)...)
}

// ParseJSON decodes an array of objects. Numbers stay json.Number so that
// amounts keep their exact text until they are coerced.
func ParseJSON(data []byte) ([]core.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	if dec.More() {
		return nil, errors.New("decode records: unexpected data after array")
	}
	if raw == nil {
		return nil, errors.New("decode records: expected an array of objects")
	}

	out := make([]core.Record, 0, len(raw))
	for i, r := range raw {
		if r == nil {
			return nil, fmt.Errorf("decode records: item %d is not an object", i)
		}
		out = append(out, core.Record(r))
	}
	return out, nil
}

// ParseCSV reads a header row followed by data rows. Cells that parse as
// numbers become float64, empty cells become nil and everything else stays a
// string. Short rows leave the trailing columns absent.
func ParseCSV(data []byte) ([]core.Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return []core.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV headers: %w", err)
	}
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	records := []core.Record{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row: %w", err)
		}
		if isBlank(row) {
			continue
		}

		rec := make(core.Record, len(keys))
		for i, val := range row {
			if i >= len(keys) || keys[i] == "" {
				continue
			}
			rec[keys[i]] = cellValue(val)
		}
		records = append(records, rec)
	}
	return records, nil
}

func cellValue(val string) any {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	// Try numeric first
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func copyRecords(in []core.Record) []core.Record {
	out := make([]core.Record, len(in))
	for i, r := range in {
		if r == nil {
			continue
		}
		c := make(core.Record, len(r))
		for k, v := range r {
			c[k] = v
		}
		out[i] = c
	}
	return out
}
