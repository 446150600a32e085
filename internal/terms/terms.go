// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package terms loads and saves the screening terms file: the keywords
// highlighted during interactive screening and the weighted categories the
// advisory prefilter scores against. The reviewer can tune the file between
// sessions without touching code.
package terms

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Category is one weighted keyword group. Each matched term contributes
// Weight to the category score, capped at Cap so no single category
// dominates the total.
type Category struct {
	Name   string   `yaml:"name"`
	Terms  []string `yaml:"terms"`
	Weight float64  `yaml:"weight"`
	Cap    float64  `yaml:"cap"`
}

// Terms is the on-disk representation of the screening vocabulary.
type Terms struct {
	// Highlight lists the keywords flagged in rendered abstracts.
	Highlight []string `yaml:"highlight"`

	// Inclusion and Exclusion are the prefilter scoring categories.
	Inclusion []Category `yaml:"inclusion"`
	Exclusion []Category `yaml:"exclusion"`
}

// Read loads a terms file from disk.
func Read(path string) (Terms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Terms{}, fmt.Errorf("reading terms file: %w", err)
	}
	var t Terms
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Terms{}, fmt.Errorf("parsing terms file %s: %w", path, err)
	}
	return t, nil
}

// Write saves a terms file to disk.
func Write(path string, t Terms) error {
	data, err := yaml.Marshal(&t)
	if err != nil {
		return fmt.Errorf("marshaling terms file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load returns the terms at path, or the built-in defaults when path is
// empty or the file does not exist.
func Load(path string) (Terms, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Read(path)
}

// Default returns the review's built-in vocabulary for ADPKD biomarker
// screening.
func Default() Terms {
	return Terms{
		Highlight: []string{
			"ADPKD", "polycystic kidney", "biomarker", "proteomic",
			"metabolomic", "transcriptomic", "htTKV", "total kidney volume",
			"GFR", "creatinine", "proteinuria",
		},
		Inclusion: []Category{
			{
				Name: "population",
				Terms: []string{
					"adpkd", "autosomal dominant polycystic kidney",
					"polycystic kidney disease",
				},
				Weight: 2, Cap: 2,
			},
			{
				Name: "biomarkers",
				Terms: []string{
					"biomarker", "marker", "creatinine", "gfr",
					"proteinuria", "httkv",
				},
				Weight: 1, Cap: 3,
			},
			{
				Name: "study design",
				Terms: []string{
					"cohort", "longitudinal", "prospective", "clinical trial",
				},
				Weight: 1, Cap: 1,
			},
			{
				Name: "outcomes",
				Terms: []string{
					"progression", "prognosis", "diagnosis", "monitoring",
				},
				Weight: 1, Cap: 1,
			},
		},
		Exclusion: []Category{
			{
				Name: "study type",
				Terms: []string{
					"review", "editorial", "case report", "letter",
				},
				Weight: 2, Cap: 2,
			},
			{
				Name: "population",
				Terms: []string{
					"animal", "mouse", "rat", "in vitro", "cell culture",
				},
				Weight: 3, Cap: 3,
			},
			{
				Name: "genetics only",
				Terms: []string{
					"genetic testing only", "mutation analysis", "genotype only",
				},
				Weight: 1, Cap: 1,
			},
		},
	}
}
