// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// WriteFinals writes the merged decision table (one row per record).
func WriteFinals(finals []Final, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write([]string{"ID", "DECISION", "SOURCE", "REASON"}); err != nil {
		return fmt.Errorf("writing merged header: %w", err)
	}
	for _, f := range finals {
		if err := w.Write([]string{f.ID, string(f.Decision), f.Source, f.Reason}); err != nil {
			return fmt.Errorf("writing merged row %s: %w", f.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding merged table: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ReadFinals loads a merged decision table written by WriteFinals.
func ReadFinals(path string) ([]Final, error) {
	rows, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	var out []Final
	for n, row := range rows[1:] {
		d, err := types.ParseDecision(strings.TrimSpace(field(row, "DECISION")))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		out = append(out, Final{
			ID:       field(row, "ID"),
			Decision: d,
			Source:   field(row, "SOURCE"),
			Reason:   field(row, "REASON"),
		})
	}
	return out, nil
}

// ReadAdjudications loads the tie-break reviewer's decisions from a
// delimited file with ID, DECISION, and optional REASON columns.
func ReadAdjudications(path string) (map[string]Adjudication, error) {
	rows, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	out := make(map[string]Adjudication)
	for n, row := range rows[1:] {
		id := field(row, "ID")
		if id == "" {
			return nil, fmt.Errorf("%s row %d: missing record ID", path, n+2)
		}
		d, err := types.ParseDecision(field(row, "DECISION"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, n+2, err)
		}
		if !d.Decided() {
			return nil, fmt.Errorf("%s row %d: adjudication for %s has no decision", path, n+2, id)
		}
		out[id] = Adjudication{Decision: d, Reason: field(row, "REASON")}
	}
	return out, nil
}
