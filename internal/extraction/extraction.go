// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extraction maintains the structured data tables filled in for
// studies that survive full-text screening: one row per included study and
// one row per reported biomarker. Tables are delimited files that append a
// row at a time and are rewritten in full on every change.
package extraction

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

// Study is one row of the studies extraction table.
type Study struct {
	ArticleID         string
	Author            string
	Year              int
	Title             string
	Journal           string
	DOI               string
	StudyDesign       string
	SampleADPKD       string
	SampleControl     string
	InclusionCriteria string
	OmicsTechniques   string
	MainFindings      string
	TranslationalApps string
	Notes             string
}

// Biomarker is one row of the biomarkers extraction table.
type Biomarker struct {
	ArticleID           string
	Name                string
	Type                string
	SampleType          string
	DetectionTechnique  string
	DiseaseStage        string
	Advantages          string
	Limitations         string
	ValidationStatus    string
	ClinicalApplication string
}

// StudiesPath returns the studies table path under the extraction directory.
func StudiesPath(cfg types.ExtractionConfig) string {
	return filepath.Join(cfg.ResultsDir, "studies_extraction.csv")
}

// BiomarkersPath returns the biomarkers table path.
func BiomarkersPath(cfg types.ExtractionConfig) string {
	return filepath.Join(cfg.ResultsDir, "biomarkers_extraction.csv")
}

var studyColumns = []string{
	"article_id", "author", "year", "title", "journal", "doi",
	"study_design", "sample_size_adpkd", "sample_size_control",
	"inclusion_criteria", "omics_technique", "main_findings",
	"translational_apps", "notes",
}

var biomarkerColumns = []string{
	"article_id", "biomarker_name", "biomarker_type", "sample_type",
	"detection_technique", "disease_stage", "advantages", "limitations",
	"validation_status", "clinical_application",
}

// LoadStudies reads the studies table. A missing file is an empty table.
func LoadStudies(path string) ([]Study, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	rows, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	cols := headerIndex(rows[0])
	var out []Study
	for n, row := range rows[1:] {
		get := func(name string) string { return cell(row, cols, name) }
		s := Study{
			ArticleID:         get("article_id"),
			Author:            get("author"),
			Title:             get("title"),
			Journal:           get("journal"),
			DOI:               get("doi"),
			StudyDesign:       get("study_design"),
			SampleADPKD:       get("sample_size_adpkd"),
			SampleControl:     get("sample_size_control"),
			InclusionCriteria: get("inclusion_criteria"),
			OmicsTechniques:   get("omics_technique"),
			MainFindings:      get("main_findings"),
			TranslationalApps: get("translational_apps"),
			Notes:             get("notes"),
		}
		if y := strings.TrimSpace(get("year")); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				return nil, fmt.Errorf("%s row %d: invalid year %q", path, n+2, y)
			}
			s.Year = year
		}
		out = append(out, s)
	}
	return out, nil
}

// SaveStudies writes the full studies table, overwriting path.
func SaveStudies(studies []Study, path string) error {
	rows := make([][]string, 0, len(studies))
	for _, s := range studies {
		year := ""
		if s.Year != 0 {
			year = strconv.Itoa(s.Year)
		}
		rows = append(rows, []string{
			s.ArticleID, s.Author, year, s.Title, s.Journal, s.DOI,
			s.StudyDesign, s.SampleADPKD, s.SampleControl,
			s.InclusionCriteria, s.OmicsTechniques, s.MainFindings,
			s.TranslationalApps, s.Notes,
		})
	}
	return writeTable(path, studyColumns, rows)
}

// AppendStudy loads the table, appends one study, and saves it back.
func AppendStudy(path string, s Study) ([]Study, error) {
	studies, err := LoadStudies(path)
	if err != nil {
		return nil, err
	}
	studies = append(studies, s)
	if err := SaveStudies(studies, path); err != nil {
		return nil, err
	}
	return studies, nil
}

// LoadBiomarkers reads the biomarkers table. A missing file is an empty table.
func LoadBiomarkers(path string) ([]Biomarker, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	rows, err := table.ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	cols := headerIndex(rows[0])
	var out []Biomarker
	for _, row := range rows[1:] {
		get := func(name string) string { return cell(row, cols, name) }
		out = append(out, Biomarker{
			ArticleID:           get("article_id"),
			Name:                get("biomarker_name"),
			Type:                get("biomarker_type"),
			SampleType:          get("sample_type"),
			DetectionTechnique:  get("detection_technique"),
			DiseaseStage:        get("disease_stage"),
			Advantages:          get("advantages"),
			Limitations:         get("limitations"),
			ValidationStatus:    get("validation_status"),
			ClinicalApplication: get("clinical_application"),
		})
	}
	return out, nil
}

// SaveBiomarkers writes the full biomarkers table, overwriting path.
func SaveBiomarkers(biomarkers []Biomarker, path string) error {
	rows := make([][]string, 0, len(biomarkers))
	for _, b := range biomarkers {
		rows = append(rows, []string{
			b.ArticleID, b.Name, b.Type, b.SampleType,
			b.DetectionTechnique, b.DiseaseStage, b.Advantages,
			b.Limitations, b.ValidationStatus, b.ClinicalApplication,
		})
	}
	return writeTable(path, biomarkerColumns, rows)
}

// AppendBiomarker loads the table, appends one biomarker, and saves it back.
func AppendBiomarker(path string, b Biomarker) ([]Biomarker, error) {
	biomarkers, err := LoadBiomarkers(path)
	if err != nil {
		return nil, err
	}
	biomarkers = append(biomarkers, b)
	if err := SaveBiomarkers(biomarkers, path); err != nil {
		return nil, err
	}
	return biomarkers, nil
}

// ChooseStudy selects a record by its stable identifier. Zero matches is a
// validation failure: extraction must never proceed on an empty selection.
func ChooseStudy(records []types.Record, id string) (types.Record, error) {
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return types.Record{}, fmt.Errorf("no record with identifier %q", id)
}

// FindByAuthorYear is the operator-convenience fallback when the identifier
// is not at hand: a case-insensitive author prefix plus the publication
// year. Zero matches is a validation failure; multiple matches are returned
// for the caller to disambiguate.
func FindByAuthorYear(records []types.Record, authorPrefix string, year int) ([]types.Record, error) {
	prefix := strings.ToLower(strings.TrimSpace(authorPrefix))
	if prefix == "" {
		return nil, fmt.Errorf("author prefix is required")
	}
	var matches []types.Record
	for _, rec := range records {
		if rec.Year == year && strings.HasPrefix(strings.ToLower(rec.Authors), prefix) {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no record matches author %q and year %d: check the input", authorPrefix, year)
	}
	return matches, nil
}

// --- delimited table helpers ---

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func writeTable(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding table: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating extraction directory: %w", err)
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
