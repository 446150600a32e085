// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfortes/prisma-screen/internal/extraction"
	"github.com/pfortes/prisma-screen/internal/table"
	"github.com/pfortes/prisma-screen/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Record structured data for an included study",
	Long: `Extract appends rows to the structured extraction tables filled in for
studies that survive full-text screening: one table of study characteristics
and one table of reported biomarkers.

Studies are selected by their stable record identifier. The author-plus-year
lookup is a convenience fallback; when it matches more than one record the
candidates are listed and the identifier must be used instead.`,
}

// --- study subcommand ---

var extractStudyCmd = &cobra.Command{
	Use:   "study",
	Short: "Add one included study to the studies extraction table",
	RunE:  runExtractStudy,
}

func runExtractStudy(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	rec, err := selectRecord(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "\nTitle: %s\nAuthors: %s\nYear: %d\n", rec.Title, rec.Authors, rec.Year)

	in := bufio.NewScanner(os.Stdin)
	ask := func(label string) string {
		fmt.Fprintf(os.Stdout, "%s: ", label)
		if !in.Scan() {
			return ""
		}
		return strings.TrimSpace(in.Text())
	}

	study := extraction.Study{
		ArticleID:         rec.ID,
		Author:            rec.Authors,
		Year:              rec.Year,
		Title:             rec.Title,
		Journal:           rec.Journal,
		DOI:               rec.DOI,
		StudyDesign:       ask("Study design"),
		SampleADPKD:       ask("n ADPKD patients"),
		SampleControl:     ask("n controls"),
		InclusionCriteria: ask("Inclusion criteria"),
		OmicsTechniques:   ask("Omics/bioinformatic techniques"),
		MainFindings:      ask("Main findings"),
		TranslationalApps: ask("Translational applications"),
		Notes:             ask("Notes (optional)"),
	}

	path := extraction.StudiesPath(cfg.Extraction)
	studies, err := extraction.AppendStudy(path, study)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Study %q added (%d studies extracted).\n", rec.ID, len(studies))
	return nil
}

// --- biomarker subcommand ---

var extractBiomarkerCmd = &cobra.Command{
	Use:   "biomarker",
	Short: "Add one reported biomarker to the biomarkers extraction table",
	RunE:  runExtractBiomarker,
}

func runExtractBiomarker(cmd *cobra.Command, args []string) error {
	cfg := reviewConfig()

	rec, err := selectRecord(cmd)
	if err != nil {
		return err
	}

	in := bufio.NewScanner(os.Stdin)
	ask := func(label string) string {
		fmt.Fprintf(os.Stdout, "%s: ", label)
		if !in.Scan() {
			return ""
		}
		return strings.TrimSpace(in.Text())
	}

	name := ask("Biomarker name")
	if name == "" {
		return fmt.Errorf("biomarker name is required")
	}
	biomarker := extraction.Biomarker{
		ArticleID:           rec.ID,
		Name:                name,
		Type:                ask("Type (genetic, proteomic, metabolomic, imaging, ...)"),
		SampleType:          ask("Sample type (blood, urine, tissue, ...)"),
		DetectionTechnique:  ask("Detection technique"),
		DiseaseStage:        ask("Disease stage"),
		Advantages:          ask("Advantages"),
		Limitations:         ask("Limitations"),
		ValidationStatus:    ask("Validation status"),
		ClinicalApplication: ask("Clinical application"),
	}

	path := extraction.BiomarkersPath(cfg.Extraction)
	biomarkers, err := extraction.AppendBiomarker(path, biomarker)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Biomarker %q added for study %s (%d biomarkers extracted).\n",
		name, rec.ID, len(biomarkers))
	return nil
}

// selectRecord resolves the record named by --id, or by the --author/--year
// fallback when the identifier is not at hand.
func selectRecord(cmd *cobra.Command) (types.Record, error) {
	recordsPath, _ := cmd.Flags().GetString("records")
	if recordsPath == "" {
		return types.Record{}, fmt.Errorf("records file is required")
	}
	records, err := table.LoadRecords(recordsPath)
	if err != nil {
		return types.Record{}, err
	}

	id, _ := cmd.Flags().GetString("id")
	if id != "" {
		return extraction.ChooseStudy(records, id)
	}

	author, _ := cmd.Flags().GetString("author")
	year, _ := cmd.Flags().GetInt("year")
	if author == "" || year == 0 {
		return types.Record{}, fmt.Errorf("select a study with --id, or with --author and --year")
	}

	matches, err := extraction.FindByAuthorYear(records, author, year)
	if err != nil {
		return types.Record{}, err
	}
	if len(matches) > 1 {
		fmt.Fprintln(os.Stderr, "Multiple records match; re-run with --id:")
		for _, m := range matches {
			fmt.Fprintf(os.Stderr, "  %s  %s (%d)\n", m.ID, m.Title, m.Year)
		}
		return types.Record{}, fmt.Errorf("ambiguous selection: %d records match author %q and year %d",
			len(matches), author, year)
	}
	return matches[0], nil
}

func init() {
	for _, c := range []*cobra.Command{extractStudyCmd, extractBiomarkerCmd} {
		c.Flags().String("records", "", "delimited record set the study belongs to (required)")
		c.Flags().String("id", "", "stable record identifier")
		c.Flags().String("author", "", "author prefix fallback (with --year)")
		c.Flags().Int("year", 0, "publication year fallback (with --author)")
	}

	extractCmd.AddCommand(extractStudyCmd)
	extractCmd.AddCommand(extractBiomarkerCmd)

	rootCmd.AddCommand(extractCmd)
}
