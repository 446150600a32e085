// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table holds the canonical in-memory table of candidate records and
// their screening state, and persists it as a delimited progress file.
//
// A progress file has exactly one writer: the active screening session for
// its (phase, reviewer) pair. Concurrent sessions against the same file are
// a documented misuse, not something the package defends against.
package table

import (
	"fmt"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// Classification is the outcome of one reviewer evaluating one record:
// the decision, an optional comment, and the phase's criteria answers.
type Classification struct {
	Decision types.Decision
	Comment  string

	// Bool holds one answer per boolean criterion of the schema.
	Bool map[string]bool

	// Text holds one answer per free-text criterion; the empty string
	// means the criterion was left unanswered.
	Text map[string]string
}

// Row pairs a record with its classification state.
type Row struct {
	Record         types.Record
	Classification Classification
}

// Table is an ordered set of rows keyed by stable record ID. Row order is
// the record store order and never changes; screening always presents
// pending records in this order.
type Table struct {
	sch   schema.Schema
	rows  []*Row
	index map[string]int
}

// New builds a table over records with every classification defaulted.
// Duplicate record IDs are rejected: persistence and reconciliation key on
// the identifier, so it must be unique.
func New(sch schema.Schema, records []types.Record) (*Table, error) {
	t := &Table{
		sch:   sch,
		rows:  make([]*Row, 0, len(records)),
		index: make(map[string]int, len(records)),
	}
	for _, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("record %q has no identifier", rec.Title)
		}
		if _, ok := t.index[rec.ID]; ok {
			return nil, fmt.Errorf("duplicate record identifier %q", rec.ID)
		}
		t.index[rec.ID] = len(t.rows)
		t.rows = append(t.rows, &Row{
			Record:         rec,
			Classification: t.defaultClassification(),
		})
	}
	return t, nil
}

func (t *Table) defaultClassification() Classification {
	c := Classification{
		Bool: make(map[string]bool, len(t.sch.BoolCriteria)),
		Text: make(map[string]string, len(t.sch.TextCriteria)),
	}
	for _, name := range t.sch.BoolCriteria {
		c.Bool[name] = false
	}
	for _, tc := range t.sch.TextCriteria {
		c.Text[tc.Name] = ""
	}
	return c
}

// Schema returns the criterion schema the table was built for.
func (t *Table) Schema() schema.Schema { return t.sch }

// Len returns the number of records.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the rows in record store order.
func (t *Table) Rows() []*Row { return t.rows }

// Get returns the row for a record ID.
func (t *Table) Get(id string) (*Row, bool) {
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return t.rows[i], true
}

// SetClassification replaces the classification for a record wholesale.
// Re-reviewing a record leaves nothing of the prior decision behind:
// criteria not present in c fall back to their schema defaults.
func (t *Table) SetClassification(id string, c Classification) error {
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("unknown record identifier %q", id)
	}
	fresh := t.defaultClassification()
	fresh.Decision = c.Decision
	fresh.Comment = c.Comment
	for _, name := range t.sch.BoolCriteria {
		if v, ok := c.Bool[name]; ok {
			fresh.Bool[name] = v
		}
	}
	for _, tc := range t.sch.TextCriteria {
		if v, ok := c.Text[tc.Name]; ok {
			fresh.Text[tc.Name] = v
		}
	}
	t.rows[i].Classification = fresh
	return nil
}

// Pending returns the rows without a decision, in order.
func (t *Table) Pending() []*Row {
	var out []*Row
	for _, r := range t.rows {
		if !r.Classification.Decision.Decided() {
			out = append(out, r)
		}
	}
	return out
}

// Classified returns the rows with a decision, in order.
func (t *Table) Classified() []*Row {
	var out []*Row
	for _, r := range t.rows {
		if r.Classification.Decision.Decided() {
			out = append(out, r)
		}
	}
	return out
}

// Decisions returns the decided records as an ID-to-decision map.
func (t *Table) Decisions() map[string]types.Decision {
	out := make(map[string]types.Decision)
	for _, r := range t.rows {
		if r.Classification.Decision.Decided() {
			out[r.Record.ID] = r.Classification.Decision
		}
	}
	return out
}

// CarryFrom copies the classified rows of prior into t for every record ID
// both tables share. Used when a session resumes: prior decisions stay
// immutable and only the pending subset is worked.
func (t *Table) CarryFrom(prior *Table) {
	if prior == nil {
		return
	}
	for _, r := range prior.Classified() {
		if _, ok := t.index[r.Record.ID]; ok {
			// Ignore the error: the ID was just checked.
			_ = t.SetClassification(r.Record.ID, r.Classification)
		}
	}
}
