package sheets

import (
	"fmt"
	"strings"

	"openclaw/internal/core"
)

// parseRows turns a values matrix into records keyed by the header row.
// Blank rows are skipped; empty cells and short rows leave the key absent.
func parseRows(values [][]any) []core.Record {
	records := []core.Record{}
	if len(values) == 0 {
		return records
	}
	headers := toStrings(values[0])

	for _, row := range values[1:] {
		rec := make(core.Record, len(headers))
		for i, cell := range row {
			if i >= len(headers) || headers[i] == "" {
				continue
			}
			if v := cellValue(cell); v != nil {
				rec[headers[i]] = v
			}
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		return s
	default:
		return v
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}
