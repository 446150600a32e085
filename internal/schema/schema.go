// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema defines the fixed criterion sets for each screening phase.
// Schemas are design-time constants: adding a criterion is a schema change
// here, not a session parameter. Progress files written before a criterion
// existed are reconciled at load time with the defaults below.
package schema

import (
	"fmt"

	"github.com/pfortes/prisma-screen/pkg/types"
)

// Phase identifies a screening phase.
type Phase string

const (
	// PhaseTIAB is the title/abstract screening phase with the detailed
	// criteria block.
	PhaseTIAB Phase = "tiab"

	// PhaseFullText is the full-text screening phase: decision plus a
	// mandatory reason on exclude or uncertain.
	PhaseFullText Phase = "fulltext"
)

// TextCriterion is a free-text criterion with the hint lines shown to the
// operator before the answer is collected.
type TextCriterion struct {
	Name  string
	Hints []string
}

// Schema is the criterion set one session collects per record.
type Schema struct {
	Phase Phase

	// BoolCriteria are answered yes/no, one per record. Column default
	// is false.
	BoolCriteria []string

	// TextCriteria are free text, optional. Column default is unset.
	TextCriteria []TextCriterion

	// RequiresReasonOn lists the decisions for which the final comment
	// prompt is mandatory rather than optional.
	RequiresReasonOn []types.Decision
}

// RequiresReason reports whether decision d needs a non-empty reason.
func (s Schema) RequiresReason(d types.Decision) bool {
	for _, r := range s.RequiresReasonOn {
		if r == d {
			return true
		}
	}
	return false
}

// TextCriterion returns the criterion with the given name, if present.
func (s Schema) TextCriterion(name string) (TextCriterion, bool) {
	for _, c := range s.TextCriteria {
		if c.Name == name {
			return c, true
		}
	}
	return TextCriterion{}, false
}

// ForPhase returns the fixed schema for a phase.
func ForPhase(p Phase) (Schema, error) {
	switch p {
	case PhaseTIAB:
		return Schema{
			Phase: PhaseTIAB,
			BoolCriteria: []string{
				"ADPKD?",
				"OMICS?",
				"BIOINFO?",
				"HUMAN DATA?",
			},
			TextCriteria: []TextCriterion{
				{
					Name: "BIOMARKER?",
					Hints: []string{
						"Biomarker categories: genetic, proteomic, metabolomic,",
						"imaging, functional, clinical, other (specify)",
					},
				},
				{
					Name: "TRASLATIONAL?",
					Hints: []string{
						"Translational aspects: diagnostic, prognostic, therapeutic,",
						"stratification, monitoring, other (specify)",
					},
				},
			},
		}, nil
	case PhaseFullText:
		return Schema{
			Phase: PhaseFullText,
			RequiresReasonOn: []types.Decision{
				types.DecisionExclude,
				types.DecisionUncertain,
			},
		}, nil
	}
	return Schema{}, fmt.Errorf("unknown screening phase %q: use %s or %s", p, PhaseTIAB, PhaseFullText)
}
