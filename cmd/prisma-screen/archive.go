// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/archive"
	"github.com/pfortes/prisma-screen/internal/reconcile"
	"github.com/pfortes/prisma-screen/internal/table"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the review archive (store, retrieve, export)",
	Long: `Archive manages a local SQLite database of candidate records and the
final decision per phase. Use subcommands to store a phase's merged
decisions, search records with full-text search, or export a phase's
included records as the next phase's input.`,
}

// --- store subcommand ---

var archiveStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Store records and a phase's merged decisions",
	RunE:  runArchiveStore,
}

func runArchiveStore(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	a, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()

	recordsPath, _ := cmd.Flags().GetString("records")
	if recordsPath != "" {
		records, err := table.LoadRecords(recordsPath)
		if err != nil {
			return err
		}
		if _, err := a.StoreRecords(ctx, records, os.Stdout); err != nil {
			return err
		}
	}

	mergedPath, _ := cmd.Flags().GetString("merged")
	if mergedPath != "" {
		phase, _ := cmd.Flags().GetString("phase")
		if phase == "" {
			return fmt.Errorf("phase is required when storing merged decisions")
		}
		finals, err := reconcile.ReadFinals(mergedPath)
		if err != nil {
			return err
		}
		if _, err := a.StoreDecisions(ctx, phase, finals, os.Stdout); err != nil {
			return err
		}
	}

	if recordsPath == "" && mergedPath == "" {
		return fmt.Errorf("nothing to store: provide --records, --merged, or both")
	}
	return nil
}

// --- retrieve subcommand ---

var archiveRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Search archived records with full-text search",
	RunE:  runArchiveRetrieve,
}

func runArchiveRetrieve(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if query == "" {
		return fmt.Errorf("search query is required")
	}

	a, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := a.Search(context.Background(), query, limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-50s  %s\n", "Rank", "ID", "Title", "Decisions")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for i, r := range results {
		title := r.Record.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		var decisions []string
		for phase, d := range r.Decisions {
			decisions = append(decisions, fmt.Sprintf("%s=%s", phase, d))
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-50s  %s\n",
			i+1, r.Record.ID, title, strings.Join(decisions, " "))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var archiveExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a phase's included records as the next phase's input",
	RunE:  runArchiveExport,
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	phase, _ := cmd.Flags().GetString("phase")
	if phase == "" {
		return fmt.Errorf("phase is required")
	}
	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		return fmt.Errorf("output file is required")
	}

	a, err := archive.New(cfg.Archive)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.ExportIncluded(context.Background(), phase, outPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Exported %d included record(s) to %s\n", n, outPath)
	return nil
}

func init() {
	archiveStoreCmd.Flags().String("records", "", "delimited record set to store")
	archiveStoreCmd.Flags().String("merged", "", "merged decision table to store")
	archiveStoreCmd.Flags().String("phase", "", "phase the merged decisions belong to")

	archiveRetrieveCmd.Flags().String("query", "", "full-text search query over titles and abstracts")
	archiveRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	archiveRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	archiveExportCmd.Flags().String("phase", "", "phase whose included records to export")
	archiveExportCmd.Flags().String("out", "", "output file for the record set")

	archiveCmd.AddCommand(archiveStoreCmd)
	archiveCmd.AddCommand(archiveRetrieveCmd)
	archiveCmd.AddCommand(archiveExportCmd)

	rootCmd.AddCommand(archiveCmd)
}
