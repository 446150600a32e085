// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/prefilter"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/internal/terms"
)

var prefilterCmd = &cobra.Command{
	Use:   "prefilter",
	Short: "Score records against keyword categories before human review",
	Long: `Prefilter computes advisory inclusion and exclusion scores for every
record from weighted keyword categories, and labels each record
likely_include, likely_exclude, or uncertain.

The labels order reviewer attention only. They are never written into the
decision column and never override a human decision.`,
	RunE: runPrefilter,
}

func runPrefilter(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	recordsPath, _ := cmd.Flags().GetString("records")
	if recordsPath == "" {
		return fmt.Errorf("records file is required")
	}
	records, err := table.LoadRecords(recordsPath)
	if err != nil {
		return err
	}

	termsPath, _ := cmd.Flags().GetString("terms")
	if termsPath == "" {
		termsPath = cfg.Screening.TermsFile
	}
	vocab, err := terms.Load(termsPath)
	if err != nil {
		return err
	}

	results := prefilter.Run(records, vocab, cfg.Prefilter)

	counts := make(map[prefilter.Advice]int)
	fmt.Fprintf(os.Stdout, "%-12s  %-7s  %-7s  %-14s  %s\n",
		"ID", "INCL", "EXCL", "ADVICE", "TITLE")
	for _, r := range results {
		counts[r.Advice]++
		title := r.Record.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-7.1f  %-7.1f  %-14s  %s\n",
			r.Record.ID, r.InclusionScore, r.ExclusionScore, r.Advice, title)
	}
	fmt.Fprintf(os.Stdout, "\n%d records: %d likely_include, %d likely_exclude, %d uncertain\n",
		len(results), counts[prefilter.LikelyInclude], counts[prefilter.LikelyExclude],
		counts[prefilter.Uncertain])

	outPath, _ := cmd.Flags().GetString("out")
	if outPath != "" {
		if err := writePrefilterCSV(results, outPath); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", outPath)
	}
	return nil
}

func writePrefilterCSV(results []prefilter.Result, path string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write([]string{"ID", "Title", "INCLUSION_SCORE", "EXCLUSION_SCORE", "ADVICE"}); err != nil {
		return fmt.Errorf("writing prefilter header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.Record.ID, r.Record.Title,
			strconv.FormatFloat(r.InclusionScore, 'f', 1, 64),
			strconv.FormatFloat(r.ExclusionScore, 'f', 1, 64),
			string(r.Advice),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing prefilter row %s: %w", r.Record.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("encoding prefilter table: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func init() {
	prefilterCmd.Flags().String("records", "", "delimited record set to score (required)")
	prefilterCmd.Flags().String("terms", "", "screening terms YAML file (default: built-in vocabulary)")
	prefilterCmd.Flags().String("out", "", "write scores and advice to a delimited file")

	rootCmd.AddCommand(prefilterCmd)
}
