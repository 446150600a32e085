// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ScreeningConfig holds settings for interactive screening sessions.
type ScreeningConfig struct {
	// ProgressDir is the directory holding per-phase, per-reviewer
	// progress files (e.g. "review/progress").
	ProgressDir string `json:"progress_dir" yaml:"progress_dir"`

	// TermsFile is the path to the screening terms YAML file
	// (highlight keywords and prefilter categories).
	TermsFile string `json:"terms_file" yaml:"terms_file"`

	// TopCategories is how many values to report per free-text
	// criterion in the session statistics (default 5).
	TopCategories int `json:"top_categories" yaml:"top_categories"`
}

// PrefilterConfig holds thresholds for the advisory pre-screening filter.
type PrefilterConfig struct {
	// InclusionThreshold is the score above which a record is flagged
	// likely_include (default 5).
	InclusionThreshold float64 `json:"inclusion_threshold" yaml:"inclusion_threshold"`

	// ExclusionThreshold is the score above which a record is flagged
	// likely_exclude (default 3).
	ExclusionThreshold float64 `json:"exclusion_threshold" yaml:"exclusion_threshold"`
}

// ArchiveConfig holds settings for the review archive.
type ArchiveConfig struct {
	// ArchiveDir is the base directory for the archive database
	// (contains index/).
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ExtractionConfig holds settings for structured data extraction.
type ExtractionConfig struct {
	// ResultsDir is the directory holding the studies and biomarkers
	// extraction tables (e.g. "review/extraction").
	ResultsDir string `json:"results_dir" yaml:"results_dir"`
}

// ReviewConfig groups all stage configurations for the review pipeline.
type ReviewConfig struct {
	Screening  ScreeningConfig  `json:"screening" yaml:"screening"`
	Prefilter  PrefilterConfig  `json:"prefilter" yaml:"prefilter"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
}
