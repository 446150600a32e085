package prefilter

import (
	"testing"

	"github.com/pfortes/prisma-screen/internal/terms"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// --- test helpers ---

func testVocabulary() terms.Terms {
	return terms.Terms{
		Inclusion: []terms.Category{
			{Name: "population", Terms: []string{"adpkd", "polycystic kidney"}, Weight: 2, Cap: 2},
			{Name: "biomarkers", Terms: []string{"biomarker", "creatinine", "gfr"}, Weight: 1, Cap: 3},
		},
		Exclusion: []terms.Category{
			{Name: "population", Terms: []string{"mouse", "rat", "in vitro"}, Weight: 3, Cap: 3},
			{Name: "study type", Terms: []string{"review", "editorial"}, Weight: 2, Cap: 2},
		},
	}
}

// --- scoring tests ---

func TestScoreCapsCategoryContribution(t *testing.T) {
	// Both population terms match, so the raw contribution (2x2=4) exceeds
	// the cap of 2.
	rec := types.Record{
		Title:    "ADPKD study",
		Abstract: "Patients with polycystic kidney disease were enrolled.",
	}
	inc, exc := Score(rec, testVocabulary())
	if inc != 2 {
		t.Errorf("inclusion = %.1f, want 2 (capped)", inc)
	}
	if exc != 0 {
		t.Errorf("exclusion = %.1f, want 0", exc)
	}
}

func TestScoreSumsAcrossCategories(t *testing.T) {
	rec := types.Record{
		Title:    "ADPKD biomarker study",
		Abstract: "Serum creatinine and GFR were measured.",
	}
	// population: 1 match x2 capped at 2 -> 2; biomarkers: 3 matches x1 -> 3.
	inc, _ := Score(rec, testVocabulary())
	if inc != 5 {
		t.Errorf("inclusion = %.1f, want 5", inc)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	lower := types.Record{Title: "adpkd biomarker"}
	upper := types.Record{Title: "ADPKD BIOMARKER"}
	li, le := Score(lower, testVocabulary())
	ui, ue := Score(upper, testVocabulary())
	if li != ui || le != ue {
		t.Errorf("case changed the scores: (%v,%v) vs (%v,%v)", li, le, ui, ue)
	}
}

func TestScoreEmptyRecord(t *testing.T) {
	inc, exc := Score(types.Record{}, testVocabulary())
	if inc != 0 || exc != 0 {
		t.Errorf("empty record scored (%v, %v), want (0, 0)", inc, exc)
	}
}

// --- advice tests ---

func TestAdvise(t *testing.T) {
	cfg := types.PrefilterConfig{InclusionThreshold: 5, ExclusionThreshold: 3}

	tests := []struct {
		name      string
		inclusion float64
		exclusion float64
		want      Advice
	}{
		{"high inclusion", 6, 0, LikelyInclude},
		{"high exclusion", 0, 4, LikelyExclude},
		{"exclusion wins over inclusion", 6, 4, LikelyExclude},
		{"at inclusion threshold", 5, 0, Uncertain},
		{"at exclusion threshold", 0, 3, Uncertain},
		{"no evidence", 0, 0, Uncertain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Advise(tt.inclusion, tt.exclusion, cfg); got != tt.want {
				t.Errorf("Advise(%.0f, %.0f) = %s, want %s", tt.inclusion, tt.exclusion, got, tt.want)
			}
		})
	}
}

func TestAdviseZeroConfigUsesDefaults(t *testing.T) {
	if got := Advise(6, 0, types.PrefilterConfig{}); got != LikelyInclude {
		t.Errorf("Advise with zero config = %s, want likely_include", got)
	}
	if got := Advise(0, 4, types.PrefilterConfig{}); got != LikelyExclude {
		t.Errorf("Advise with zero config = %s, want likely_exclude", got)
	}
}

// --- run tests ---

func TestRunPreservesOrderAndNeverDecides(t *testing.T) {
	records := []types.Record{
		{ID: "rec-1", Title: "A mouse model review"},
		{ID: "rec-2", Title: "ADPKD biomarker creatinine GFR cohort"},
		{ID: "rec-3", Title: "Unrelated topic"},
	}
	results := Run(records, testVocabulary(), types.PrefilterConfig{InclusionThreshold: 4, ExclusionThreshold: 3})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, r := range results {
		if r.Record.ID != records[i].ID {
			t.Errorf("result %d = %s, want %s", i, r.Record.ID, records[i].ID)
		}
	}
	// mouse (3) + review (2) = 5 > 3.
	if results[0].Advice != LikelyExclude {
		t.Errorf("rec-1 advice = %s, want likely_exclude", results[0].Advice)
	}
	// adpkd (2 capped) + 3 biomarker terms = 5 > 4.
	if results[1].Advice != LikelyInclude {
		t.Errorf("rec-2 advice = %s, want likely_include", results[1].Advice)
	}
	if results[2].Advice != Uncertain {
		t.Errorf("rec-3 advice = %s, want uncertain", results[2].Advice)
	}
}
