// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile compares two reviewers' completed progress tables over
// the same record set: it measures inter-rater agreement, isolates the
// records the reviewers disagree on, and merges agreed and adjudicated
// decisions into one final decision table.
//
// The engine only reads finalized progress files and writes an independent
// output; it never updates either reviewer's file.
package reconcile

import (
	"fmt"

	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// Pair holds the two reviewers' decisions for one record.
type Pair struct {
	ID    string
	Title string
	A     types.Decision
	B     types.Decision
}

// Resolution is a discrepancy awaiting (or carrying) adjudication. Final is
// unset until a designated reviewer supplies the decision; the engine never
// fills it in on its own.
type Resolution struct {
	Pair
	Final  types.Decision
	Reason string
}

// Adjudication is one adjudicated decision keyed by record ID.
type Adjudication struct {
	Decision types.Decision
	Reason   string
}

// Final is one row of the merged decision table.
type Final struct {
	ID       string
	Decision types.Decision
	// Source records how the decision was reached: "agreement" or
	// "adjudication".
	Source string
	Reason string
}

const (
	SourceAgreement    = "agreement"
	SourceAdjudication = "adjudication"
)

// pairs aligns the two tables on record ID, in a's order, keeping only
// records both reviewers decided.
func pairs(a, b *table.Table) []Pair {
	if a == nil || b == nil {
		return nil
	}
	var out []Pair
	for _, ra := range a.Classified() {
		rb, ok := b.Get(ra.Record.ID)
		if !ok || !rb.Classification.Decision.Decided() {
			continue
		}
		out = append(out, Pair{
			ID:    ra.Record.ID,
			Title: ra.Record.Title,
			A:     ra.Classification.Decision,
			B:     rb.Classification.Decision,
		})
	}
	return out
}

// Agreement returns Cohen's kappa over the paired decisions of the two
// tables. Empty tables or disjoint identifier sets yield 0 (insufficient
// data), not an error.
func Agreement(a, b *table.Table) float64 {
	ps := pairs(a, b)
	da := make([]types.Decision, len(ps))
	db := make([]types.Decision, len(ps))
	for i, p := range ps {
		da[i] = p.A
		db[i] = p.B
	}
	return kappa(da, db)
}

// Discrepancies returns the records the two reviewers decided differently,
// in a's record order.
func Discrepancies(a, b *table.Table) []Pair {
	var out []Pair
	for _, p := range pairs(a, b) {
		if p.A != p.B {
			out = append(out, p)
		}
	}
	return out
}

// Resolve marks every discrepancy as needing adjudication. Final decisions
// are applied afterwards with Adjudicate; Merge refuses unresolved entries
// rather than picking a side.
func Resolve(discrepancies []Pair) []Resolution {
	out := make([]Resolution, 0, len(discrepancies))
	for _, p := range discrepancies {
		out = append(out, Resolution{Pair: p})
	}
	return out
}

// Adjudicate fills resolutions with the decisions of the tie-break reviewer.
// Every resolution must receive a valid decision; adjudications for unknown
// records are rejected.
func Adjudicate(resolutions []Resolution, decisions map[string]Adjudication) ([]Resolution, error) {
	byID := make(map[string]int, len(resolutions))
	for i, r := range resolutions {
		byID[r.ID] = i
	}
	for id := range decisions {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("adjudication for %q does not match any discrepancy", id)
		}
	}

	out := append([]Resolution(nil), resolutions...)
	for i, r := range out {
		adj, ok := decisions[r.ID]
		if !ok {
			continue
		}
		if !adj.Decision.Decided() || !adj.Decision.Valid() {
			return nil, fmt.Errorf("adjudication for %q has invalid decision %q", r.ID, adj.Decision)
		}
		out[i].Final = adj.Decision
		out[i].Reason = adj.Reason
	}
	return out, nil
}

// Merge builds the final decision table: agreed records carry the shared
// decision forward unchanged, discrepancies carry their adjudicated
// decision. Any discrepancy still lacking a final decision aborts the merge.
//
// The output identifier set is the union of agreements and resolutions, each
// record exactly once, in a's record order.
func Merge(a, b *table.Table, resolutions []Resolution) ([]Final, error) {
	resolved := make(map[string]Resolution, len(resolutions))
	for _, r := range resolutions {
		resolved[r.ID] = r
	}

	var out []Final
	seen := make(map[string]bool)
	for _, p := range pairs(a, b) {
		if p.A == p.B {
			out = append(out, Final{ID: p.ID, Decision: p.A, Source: SourceAgreement})
			seen[p.ID] = true
			continue
		}
		r, ok := resolved[p.ID]
		if !ok || !r.Final.Decided() {
			return nil, fmt.Errorf("record %s: reviewers disagree (%s vs %s) and no adjudicated decision was provided",
				p.ID, p.A, p.B)
		}
		out = append(out, Final{ID: p.ID, Decision: r.Final, Source: SourceAdjudication, Reason: r.Reason})
		seen[p.ID] = true
	}

	// Resolutions outside the paired set still belong to the output, in
	// input order, so the union invariant holds.
	for _, r := range resolutions {
		if seen[r.ID] {
			continue
		}
		if !r.Final.Decided() {
			return nil, fmt.Errorf("record %s: resolution has no adjudicated decision", r.ID)
		}
		out = append(out, Final{ID: r.ID, Decision: r.Final, Source: SourceAdjudication, Reason: r.Reason})
		seen[r.ID] = true
	}

	return out, nil
}
