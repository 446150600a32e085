package schema

import (
	"testing"

	"github.com/pfortes/prisma-screen/pkg/types"
)

func TestForPhaseTIAB(t *testing.T) {
	sch, err := ForPhase(PhaseTIAB)
	if err != nil {
		t.Fatal(err)
	}
	if len(sch.BoolCriteria) != 4 {
		t.Errorf("boolean criteria = %d, want 4", len(sch.BoolCriteria))
	}
	if len(sch.TextCriteria) != 2 {
		t.Errorf("text criteria = %d, want 2", len(sch.TextCriteria))
	}
	for _, tc := range sch.TextCriteria {
		if len(tc.Hints) == 0 {
			t.Errorf("criterion %s has no hint lines", tc.Name)
		}
	}
	if sch.RequiresReason(types.DecisionExclude) {
		t.Error("tiab phase must not require a reason")
	}
}

func TestForPhaseFullText(t *testing.T) {
	sch, err := ForPhase(PhaseFullText)
	if err != nil {
		t.Fatal(err)
	}
	if len(sch.BoolCriteria) != 0 || len(sch.TextCriteria) != 0 {
		t.Error("fulltext phase has criteria, want decision-only")
	}
	if !sch.RequiresReason(types.DecisionExclude) {
		t.Error("exclude must require a reason in fulltext")
	}
	if !sch.RequiresReason(types.DecisionUncertain) {
		t.Error("uncertain must require a reason in fulltext")
	}
	if sch.RequiresReason(types.DecisionInclude) {
		t.Error("include must not require a reason")
	}
}

func TestForPhaseUnknown(t *testing.T) {
	if _, err := ForPhase("snowball"); err == nil {
		t.Fatal("expected error for unknown phase")
	}
}

func TestTextCriterionLookup(t *testing.T) {
	sch, err := ForPhase(PhaseTIAB)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sch.TextCriterion("BIOMARKER?"); !ok {
		t.Error("BIOMARKER? not found")
	}
	if _, ok := sch.TextCriterion("NOPE?"); ok {
		t.Error("unknown criterion reported as present")
	}
}
