// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/session"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/internal/terms"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run an interactive screening session for one phase",
	Long: `Screen runs one reviewer's interactive screening session over a record
set. The tiab phase collects the detailed criteria block per record; the
fulltext phase collects a decision with a mandatory reason on exclude or
uncertain.

Progress is saved after every record to a per-phase, per-reviewer file. If
the file already holds decisions, the session offers to resume with only the
pending records or to restart from scratch. Answer s at the decision prompt
to stop; confirmed decisions survive the interruption.`,
	RunE: runScreen,
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	phaseName, _ := cmd.Flags().GetString("phase")
	sch, err := schema.ForPhase(schema.Phase(phaseName))
	if err != nil {
		return err
	}

	reviewer, _ := cmd.Flags().GetString("reviewer")
	if reviewer == "" {
		return fmt.Errorf("reviewer name is required: each reviewer has their own progress file")
	}

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

	progressPath, _ := cmd.Flags().GetString("progress")
	if progressPath == "" {
		progressPath = filepath.Join(cfg.Screening.ProgressDir,
			fmt.Sprintf("%s_%s_progress.csv", phaseName, reviewer))
	}

	s, err := session.New(session.Config{
		Schema:        sch,
		Records:       records,
		ProgressPath:  progressPath,
		Keywords:      vocab.Highlight,
		TopCategories: cfg.Screening.TopCategories,
		Input:         os.Stdin,
		Output:        os.Stdout,
	})
	if err != nil {
		return err
	}

	res, err := s.Run()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "session %s (%d classified, %d pending): %s\n",
		res.State, res.Stats.Classified, res.Stats.Pending, progressPath)
	return nil
}

func init() {
	screenCmd.Flags().String("phase", string(schema.PhaseTIAB), "screening phase: tiab or fulltext")
	screenCmd.Flags().String("reviewer", "", "reviewer name (required)")
	screenCmd.Flags().String("records", "", "delimited record set to screen (required)")
	screenCmd.Flags().String("progress", "", "progress file (default: <progress_dir>/<phase>_<reviewer>_progress.csv)")
	screenCmd.Flags().String("terms", "", "screening terms YAML file (default: built-in vocabulary)")

	rootCmd.AddCommand(screenCmd)
}
