package extraction

import (
	"path/filepath"
	"testing"

	"github.com/pfortes/prisma-screen/pkg/types"
)

// --- test helpers ---

func sampleStudy(id string) Study {
	return Study{
		ArticleID:       id,
		Author:          "Smith, J.",
		Year:            2021,
		Title:           "Urinary proteomic biomarkers in ADPKD",
		Journal:         "Kidney Int",
		DOI:             "10.1/x",
		StudyDesign:     "prospective cohort",
		SampleADPKD:     "120",
		SampleControl:   "60",
		OmicsTechniques: "LC-MS/MS",
		MainFindings:    "Three urinary proteins track progression",
	}
}

func sampleBiomarker(id string) Biomarker {
	return Biomarker{
		ArticleID:          id,
		Name:               "uromodulin",
		Type:               "proteomic",
		SampleType:         "urine",
		DetectionTechnique: "ELISA",
		DiseaseStage:       "early",
		ValidationStatus:   "validated in cohort",
	}
}

func testRecordSet() []types.Record {
	return []types.Record{
		{ID: "rec-1", Authors: "Smith, J.; Doe, A.", Year: 2021, Title: "First"},
		{ID: "rec-2", Authors: "Smith, T.", Year: 2021, Title: "Second"},
		{ID: "rec-3", Authors: "Lee, K.", Year: 2022, Title: "Third"},
	}
}

// --- table persistence tests ---

func TestLoadStudiesMissingFile(t *testing.T) {
	studies, err := LoadStudies(filepath.Join(t.TempDir(), "nope.csv"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if studies != nil {
		t.Error("missing file should yield an empty table")
	}
}

func TestAppendStudyRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extraction", "studies_extraction.csv")

	studies, err := AppendStudy(path, sampleStudy("rec-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(studies) != 1 {
		t.Fatalf("got %d studies, want 1", len(studies))
	}

	studies, err = AppendStudy(path, sampleStudy("rec-2"))
	if err != nil {
		t.Fatal(err)
	}
	if len(studies) != 2 {
		t.Fatalf("got %d studies, want 2", len(studies))
	}

	loaded, err := LoadStudies(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d studies, want 2", len(loaded))
	}
	if loaded[0] != sampleStudy("rec-1") {
		t.Errorf("study 0 = %+v", loaded[0])
	}
	if loaded[1].ArticleID != "rec-2" {
		t.Errorf("study 1 id = %q, want rec-2", loaded[1].ArticleID)
	}
}

func TestAppendBiomarkerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "biomarkers_extraction.csv")

	if _, err := AppendBiomarker(path, sampleBiomarker("rec-1")); err != nil {
		t.Fatal(err)
	}
	biomarkers, err := AppendBiomarker(path, sampleBiomarker("rec-1"))
	if err != nil {
		t.Fatal(err)
	}
	if len(biomarkers) != 2 {
		t.Fatalf("got %d biomarkers, want 2", len(biomarkers))
	}

	loaded, err := LoadBiomarkers(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded[0] != sampleBiomarker("rec-1") {
		t.Errorf("biomarker 0 = %+v", loaded[0])
	}
}

// --- study selection tests ---

func TestChooseStudy(t *testing.T) {
	rec, err := ChooseStudy(testRecordSet(), "rec-2")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Title != "Second" {
		t.Errorf("Title = %q, want Second", rec.Title)
	}

	if _, err := ChooseStudy(testRecordSet(), "rec-99"); err == nil {
		t.Fatal("expected error for unknown identifier")
	}
}

func TestFindByAuthorYear(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		year    int
		wantIDs []string
		wantErr bool
	}{
		{"unique match", "lee", 2022, []string{"rec-3"}, false},
		{"case insensitive", "LEE", 2022, []string{"rec-3"}, false},
		{"ambiguous prefix", "smith", 2021, []string{"rec-1", "rec-2"}, false},
		{"wrong year", "lee", 1999, nil, true},
		{"no match", "jones", 2021, nil, true},
		{"empty prefix", "", 2021, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := FindByAuthorYear(testRecordSet(), tt.prefix, tt.year)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(matches) != len(tt.wantIDs) {
				t.Fatalf("got %d matches, want %d", len(matches), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if matches[i].ID != want {
					t.Errorf("match %d = %s, want %s", i, matches[i].ID, want)
				}
			}
		})
	}
}
