// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prefilter scores records against weighted keyword categories to
// triage them before human review. The output is advisory metadata only: it
// orders reviewer attention and is never written into the decision column.
package prefilter

import (
	"strings"

	"github.com/pfortes/prisma-screen/internal/terms"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// Advice is the advisory label derived from the scores.
type Advice string

const (
	LikelyInclude Advice = "likely_include"
	LikelyExclude Advice = "likely_exclude"
	Uncertain     Advice = "uncertain"
)

// Result attaches the advisory scores to a record.
type Result struct {
	Record         types.Record
	InclusionScore float64
	ExclusionScore float64
	Advice         Advice
}

// Score computes the inclusion and exclusion scores for one record over its
// title and abstract. Each category contributes Weight per matched term,
// bounded by its Cap.
func Score(rec types.Record, t terms.Terms) (inclusion, exclusion float64) {
	text := strings.ToLower(rec.Title + " " + rec.Abstract)
	return scoreCategories(text, t.Inclusion), scoreCategories(text, t.Exclusion)
}

func scoreCategories(text string, categories []terms.Category) float64 {
	var total float64
	for _, cat := range categories {
		matched := 0
		for _, term := range cat.Terms {
			if term != "" && strings.Contains(text, strings.ToLower(term)) {
				matched++
			}
		}
		contribution := cat.Weight * float64(matched)
		if cat.Cap > 0 && contribution > cat.Cap {
			contribution = cat.Cap
		}
		total += contribution
	}
	return total
}

// Advise maps the scores onto an advisory label. Exclusion evidence wins
// over inclusion evidence, matching how the review protocol reads the two
// checklists.
func Advise(inclusion, exclusion float64, cfg types.PrefilterConfig) Advice {
	if cfg.ExclusionThreshold <= 0 {
		cfg.ExclusionThreshold = 3
	}
	if cfg.InclusionThreshold <= 0 {
		cfg.InclusionThreshold = 5
	}
	switch {
	case exclusion > cfg.ExclusionThreshold:
		return LikelyExclude
	case inclusion > cfg.InclusionThreshold:
		return LikelyInclude
	}
	return Uncertain
}

// Run scores a whole record set, preserving record order.
func Run(records []types.Record, t terms.Terms, cfg types.PrefilterConfig) []Result {
	out := make([]Result, 0, len(records))
	for _, rec := range records {
		inc, exc := Score(rec, t)
		out = append(out, Result{
			Record:         rec,
			InclusionScore: inc,
			ExclusionScore: exc,
			Advice:         Advise(inc, exc, cfg),
		})
	}
	return out
}
