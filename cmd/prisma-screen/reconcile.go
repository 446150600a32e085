// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/reconcile"
	"github.com/pfortes/prisma-screen/internal/schema"
	"github.com/pfortes/prisma-screen/internal/table"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare two reviewers' decisions and merge them",
	Long: `Reconcile reads two reviewers' completed progress files for the same
phase. Use subcommands to measure inter-rater agreement, list the records
the reviewers disagree on, or merge the two decision sets into one final
table.

Merging never auto-resolves: every discrepancy needs an adjudicated decision
from the tie-break reviewer, supplied via --adjudications.`,
}

// --- kappa subcommand ---

var reconcileKappaCmd = &cobra.Command{
	Use:   "kappa",
	Short: "Compute Cohen's kappa over the paired decisions",
	RunE:  runReconcileKappa,
}

func runReconcileKappa(cmd *cobra.Command, args []string) error {
	a, b, err := loadReviewerTables(cmd)
	if err != nil {
		return err
	}
	k := reconcile.Agreement(a, b)
	fmt.Fprintf(os.Stdout, "Cohen's kappa: %.3f (%s)\n", k, reconcile.Interpret(k))
	return nil
}

// --- discrepancies subcommand ---

var reconcileDiscrepanciesCmd = &cobra.Command{
	Use:   "discrepancies",
	Short: "List the records the two reviewers decided differently",
	RunE:  runReconcileDiscrepancies,
}

func runReconcileDiscrepancies(cmd *cobra.Command, args []string) error {
	a, b, err := loadReviewerTables(cmd)
	if err != nil {
		return err
	}
	discrepancies := reconcile.Discrepancies(a, b)
	if len(discrepancies) == 0 {
		fmt.Fprintln(os.Stdout, "No discrepancies: the reviewers agree on every paired record.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-10s  %-10s  %s\n", "ID", "REVIEWER A", "REVIEWER B", "TITLE")
	for _, p := range discrepancies {
		title := p.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-10s  %-10s  %s\n", p.ID, p.A, p.B, title)
	}
	fmt.Fprintf(os.Stdout, "\n%d discrepancy(ies) need adjudication\n", len(discrepancies))
	return nil
}

// --- merge subcommand ---

var reconcileMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge the two decision sets into one final table",
	Long: `Merge carries every agreed decision forward unchanged and applies the
adjudicated decision to every discrepancy. The adjudications file is a
delimited table with ID, DECISION, and optional REASON columns. The merge
fails if any discrepancy lacks an adjudicated decision.`,
	RunE: runReconcileMerge,
}

func runReconcileMerge(cmd *cobra.Command, args []string) error {
	a, b, err := loadReviewerTables(cmd)
	if err != nil {
		return err
	}

	resolutions := reconcile.Resolve(reconcile.Discrepancies(a, b))
	adjPath, _ := cmd.Flags().GetString("adjudications")
	if adjPath != "" {
		adjudications, err := reconcile.ReadAdjudications(adjPath)
		if err != nil {
			return err
		}
		resolutions, err = reconcile.Adjudicate(resolutions, adjudications)
		if err != nil {
			return err
		}
	}

	finals, err := reconcile.Merge(a, b, resolutions)
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return fmt.Errorf("output file is required")
	}
	if err := reconcile.WriteFinals(finals, outPath); err != nil {
		return err
	}

	k := reconcile.Agreement(a, b)
	fmt.Fprintf(os.Stdout, "Merged %d decision(s) to %s\n", len(finals), outPath)
	fmt.Fprintf(os.Stdout, "Cohen's kappa: %.3f (%s)\n", k, reconcile.Interpret(k))
	return nil
}

// --- shared helpers ---

// loadReviewerTables loads the two progress files named by --a and --b.
// Unlike a session start, a missing file here is an error: reconciliation
// needs two completed tables.
func loadReviewerTables(cmd *cobra.Command) (*table.Table, *table.Table, error) {
	phaseName, _ := cmd.Flags().GetString("phase")
	sch, err := schema.ForPhase(schema.Phase(phaseName))
	if err != nil {
		return nil, nil, err
	}

	pathA, _ := cmd.Flags().GetString("a")
	pathB, _ := cmd.Flags().GetString("b")
	if pathA == "" || pathB == "" {
		return nil, nil, fmt.Errorf("both reviewer progress files are required (--a and --b)")
	}

	a, err := table.LoadProgress(pathA, sch)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, fmt.Errorf("progress file %s does not exist", pathA)
	}
	b, err := table.LoadProgress(pathB, sch)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return nil, nil, fmt.Errorf("progress file %s does not exist", pathB)
	}
	return a, b, nil
}

func init() {
	reconcileCmd.PersistentFlags().String("phase", string(schema.PhaseTIAB), "screening phase: tiab or fulltext")
	reconcileCmd.PersistentFlags().String("a", "", "reviewer A progress file")
	reconcileCmd.PersistentFlags().String("b", "", "reviewer B progress file")

	reconcileMergeCmd.Flags().String("adjudications", "", "delimited file of adjudicated decisions (ID, DECISION, REASON)")
	reconcileMergeCmd.Flags().String("out", "", "output file for the merged decision table")

	reconcileCmd.AddCommand(reconcileKappaCmd)
	reconcileCmd.AddCommand(reconcileDiscrepanciesCmd)
	reconcileCmd.AddCommand(reconcileMergeCmd)

	rootCmd.AddCommand(reconcileCmd)
}
