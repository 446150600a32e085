// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the prisma-screen CLI: interactive
// multi-phase screening and reconciliation for a PRISMA-ScR scoping review.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pfortes/prisma-screen/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the prisma-screen CLI.
var rootCmd = &cobra.Command{
	Use:   "prisma-screen",
	Short: "Interactive screening workflow for a scoping literature review",
	Long: `prisma-screen drives the screening phases of a PRISMA-ScR scoping review:
advisory keyword pre-filtering, interactive title/abstract and full-text
screening with resumable per-reviewer progress files, reconciliation of two
reviewers' decisions with Cohen's kappa, structured data extraction for
included studies, and a searchable archive of the final decision sets.

Each stage is a subcommand: prefilter, screen, reconcile, extract, archive,
and stats. Progress files are delimited tables saved after every decision,
so an interrupted session never loses confirmed work.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./prisma-screen.yaml or ~/.config/prisma-screen/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("prisma-screen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "prisma-screen"))
		}
	}

	viper.SetEnvPrefix("PRISMA_SCREEN")
	viper.AutomaticEnv()

	viper.SetDefault("screening.progress_dir", "review/progress")
	viper.SetDefault("screening.terms_file", "")
	viper.SetDefault("screening.top_categories", 5)
	viper.SetDefault("prefilter.inclusion_threshold", 5.0)
	viper.SetDefault("prefilter.exclusion_threshold", 3.0)
	viper.SetDefault("archive.archive_dir", "review/archive")
	viper.SetDefault("archive.max_results", 20)
	viper.SetDefault("extraction.results_dir", "review/extraction")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// reviewConfig resolves the pipeline configuration from viper.
func reviewConfig() types.ReviewConfig {
	return types.ReviewConfig{
		Screening: types.ScreeningConfig{
			ProgressDir:   viper.GetString("screening.progress_dir"),
			TermsFile:     viper.GetString("screening.terms_file"),
			TopCategories: viper.GetInt("screening.top_categories"),
		},
		Prefilter: types.PrefilterConfig{
			InclusionThreshold: viper.GetFloat64("prefilter.inclusion_threshold"),
			ExclusionThreshold: viper.GetFloat64("prefilter.exclusion_threshold"),
		},
		Archive: types.ArchiveConfig{
			ArchiveDir: viper.GetString("archive.archive_dir"),
			MaxResults: viper.GetInt("archive.max_results"),
		},
		Extraction: types.ExtractionConfig{
			ResultsDir: viper.GetString("extraction.results_dir"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
