package nbastats

import (
	"fmt"
	"strconv"
	"strings"
)

// The stats API returns tables, not objects: each result set carries a header
// list and positional row values. rowReader rejoins them so callers read
// cells by header name.
type resultSetEnvelope struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

type rowReader struct {
	index map[string]int
	cells []any
}

func (e resultSetEnvelope) rows(name string) ([]rowReader, error) {
	for _, set := range e.ResultSets {
		if set.Name != name {
			continue
		}

		index := make(map[string]int, len(set.Headers))
		for i, header := range set.Headers {
			index[header] = i
		}

		out := make([]rowReader, 0, len(set.RowSet))
		for _, cells := range set.RowSet {
			out = append(out, rowReader{index: index, cells: cells})
		}
		return out, nil
	}

	return nil, fmt.Errorf("result set %q missing from payload", name)
}

func (r rowReader) cell(header string) any {
	idx, ok := r.index[header]
	if !ok || idx >= len(r.cells) {
		return nil
	}
	return r.cells[idx]
}

func (r rowReader) str(header string) string {
	switch v := r.cell(header).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// int64Str renders numeric ids as strings, the shape provider id mappings
// store.
func (r rowReader) int64Str(header string) string {
	switch v := r.cell(header).(type) {
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

func (r rowReader) intOr(header string, fallback int) int {
	switch v := r.cell(header).(type) {
	case float64:
		return int(v)
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return fallback
}

func (r rowReader) intPtr(header string) *int {
	switch v := r.cell(header).(type) {
	case float64:
		out := int(v)
		return &out
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &parsed
		}
	}
	return nil
}
