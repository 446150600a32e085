// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// Progress files are written with ';' (the reference-manager convention the
// review started with); on read the ',' fallback accepts files touched by
// other tooling.
const (
	primaryDelimiter   = ';'
	secondaryDelimiter = ','
)

const (
	colID       = "ID"
	colTitle    = "Title"
	colAuthors  = "Authors"
	colAbstract = "Abstract"
	colKeywords = "Keywords"
	colYear     = "Year"
	colJournal  = "Journal"
	colDOI      = "DOI"
	colDecision = "DECISION"
	colComment  = "COMMENT"
)

var recordColumns = []string{
	colID, colTitle, colAuthors, colAbstract, colKeywords, colYear, colJournal, colDOI,
}

// columnAliases maps reference-manager export headers onto the canonical
// column names, so raw exports load without a rename pass.
var columnAliases = map[string]string{
	"Key":               colID,
	"Author":            colAuthors,
	"Abstract Note":     colAbstract,
	"Manual Tags":       colKeywords,
	"Publication Year":  colYear,
	"Publication Title": colJournal,
}

func canonicalColumn(name string) string {
	name = strings.TrimSpace(name)
	if alias, ok := columnAliases[name]; ok {
		return alias
	}
	return name
}

// decodeDelimited parses data with the primary delimiter and falls back to
// the secondary one when the result is unusable. A file neither delimiter
// can parse into a table with an ID column is an error, never silently
// treated as empty.
func decodeDelimited(data []byte) ([][]string, error) {
	var firstErr error
	for _, comma := range []rune{primaryDelimiter, secondaryDelimiter} {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = comma
		rows, err := r.ReadAll()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("file has no header row")
		}
		// The wrong delimiter leaves the whole header in one field.
		if len(rows[0]) >= 2 {
			return rows, nil
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("unparseable with %q or %q: %w",
			string(primaryDelimiter), string(secondaryDelimiter), firstErr)
	}
	return nil, fmt.Errorf("not a delimited table with %q or %q separators",
		string(primaryDelimiter), string(secondaryDelimiter))
}

// ReadCSVFile reads a delimited file with the ';' then ',' fallback and
// returns the raw rows, header included.
func ReadCSVFile(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	rows, err := decodeDelimited(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rows, nil
}

// LoadRecords reads a bibliographic export into records. Rows without an ID
// fall back to the DOI, then to a positional identifier, so reference-manager
// exports load without preprocessing.
func LoadRecords(path string) ([]types.Record, error) {
	rows, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[canonicalColumn(h)] = i
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	records := make([]types.Record, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := types.Record{
			ID:       field(row, colID),
			Title:    field(row, colTitle),
			Authors:  field(row, colAuthors),
			Abstract: field(row, colAbstract),
			Keywords: field(row, colKeywords),
			Journal:  field(row, colJournal),
			DOI:      field(row, colDOI),
		}
		if y := field(row, colYear); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid year %q", path, n+2, y)
			}
			rec.Year = year
		}
		if rec.ID == "" {
			rec.ID = rec.DOI
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("rec-%04d", n+1)
		}
		records = append(records, rec)
	}
	return records, nil
}

// LoadProgress reads a previously saved progress table. A missing file is
// not an error: it returns (nil, nil) and the session starts fresh. A file
// that is present but unparseable is fatal for the session.
//
// Criterion, decision, and comment columns the schema defines but the file
// predates are added with their defaults, so the schema can evolve without
// invalidating old progress files.
func LoadProgress(path string, sch schema.Schema) (*Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading progress file %s: %w", path, err)
	}

	rows, err := decodeDelimited(data)
	if err != nil {
		return nil, fmt.Errorf("malformed progress file %s: %w", path, err)
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[canonicalColumn(h)] = i
	}
	field := func(row []string, name string) (string, bool) {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return row[i], true
	}

	records := make([]types.Record, 0, len(rows)-1)
	classifications := make([]Classification, 0, len(rows)-1)
	for n, row := range rows[1:] {
		var rec types.Record
		rec.ID, _ = field(row, colID)
		rec.Title, _ = field(row, colTitle)
		rec.Authors, _ = field(row, colAuthors)
		rec.Abstract, _ = field(row, colAbstract)
		rec.Keywords, _ = field(row, colKeywords)
		rec.Journal, _ = field(row, colJournal)
		rec.DOI, _ = field(row, colDOI)
		if y, ok := field(row, colYear); ok && strings.TrimSpace(y) != "" {
			year, err := strconv.Atoi(strings.TrimSpace(y))
			if err != nil {
				return nil, fmt.Errorf("progress file %s row %d: invalid year %q", path, n+2, y)
			}
			rec.Year = year
		}

		c := Classification{
			Bool: make(map[string]bool),
			Text: make(map[string]string),
		}
		if v, ok := field(row, colDecision); ok {
			d, err := types.ParseDecision(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("progress file %s row %d: %w", path, n+2, err)
			}
			c.Decision = d
		}
		if v, ok := field(row, colComment); ok {
			c.Comment = v
		}
		for _, name := range sch.BoolCriteria {
			v, ok := field(row, name)
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("progress file %s row %d: invalid %s value %q", path, n+2, name, v)
			}
			c.Bool[name] = b
		}
		for _, tc := range sch.TextCriteria {
			if v, ok := field(row, tc.Name); ok {
				c.Text[tc.Name] = v
			}
		}

		records = append(records, rec)
		classifications = append(classifications, c)
	}

	t, err := New(sch, records)
	if err != nil {
		return nil, fmt.Errorf("progress file %s: %w", path, err)
	}
	for i, c := range classifications {
		if err := t.SetClassification(records[i].ID, c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// SaveProgress writes the full accumulated table, overwriting path. Callers
// always pass the complete table, never a delta.
func SaveProgress(t *Table, path string) error {
	header := append([]string{}, recordColumns...)
	header = append(header, t.sch.BoolCriteria...)
	for _, tc := range t.sch.TextCriteria {
		header = append(header, tc.Name)
	}
	header = append(header, colDecision, colComment)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = primaryDelimiter
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing progress header: %w", err)
	}

	for _, r := range t.rows {
		row := recordFields(r.Record)
		for _, name := range t.sch.BoolCriteria {
			row = append(row, strconv.FormatBool(r.Classification.Bool[name]))
		}
		for _, tc := range t.sch.TextCriteria {
			row = append(row, r.Classification.Text[tc.Name])
		}
		row = append(row, string(r.Classification.Decision), r.Classification.Comment)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing progress row %s: %w", r.Record.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding progress table: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating progress directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// SaveRecords writes records alone (no decision columns), e.g. the record
// set handed to the next phase.
func SaveRecords(records []types.Record, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = primaryDelimiter
	if err := w.Write(recordColumns); err != nil {
		return fmt.Errorf("writing record header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(recordFields(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func recordFields(rec types.Record) []string {
	year := ""
	if rec.Year != 0 {
		year = strconv.Itoa(rec.Year)
	}
	return []string{
		rec.ID, rec.Title, rec.Authors, rec.Abstract,
		rec.Keywords, year, rec.Journal, rec.DOI,
	}
}
