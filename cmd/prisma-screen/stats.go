// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/session"
	"github.com/pfortes/prisma-screen/internal/table"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a progress file without opening a session",
	Long: `Stats prints the same end-of-session report a screening session prints:
decision counts, per-criterion yes counts, and the most frequent values of
each free-text category.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	phaseName, _ := cmd.Flags().GetString("phase")
	sch, err := schema.ForPhase(schema.Phase(phaseName))
	if err != nil {
		return err
	}

	progressPath, _ := cmd.Flags().GetString("progress")
	if progressPath == "" {
		return fmt.Errorf("progress file is required")
	}
	t, err := table.LoadProgress(progressPath, sch)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("progress file %s does not exist", progressPath)
	}

	stats := session.Compute(t, cfg.Screening.TopCategories)
	stats.Print(os.Stdout, sch)
	return nil
}

func init() {
	statsCmd.Flags().String("phase", string(schema.PhaseTIAB), "screening phase: tiab or fulltext")
	statsCmd.Flags().String("progress", "", "progress file to summarize (required)")

	rootCmd.AddCommand(statsCmd)
}
