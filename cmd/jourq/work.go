package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/doi"
	"github.com/jourq/jourq/internal/pdf"
	"github.com/jourq/jourq/internal/stats"
	"github.com/spf13/cobra"
)

var workPDF string

var workCmd = &cobra.Command{
	Use:   "work [doi]",
	Short: "Resolve one work's record by DOI",
	Long: `Resolve one work's record by DOI.

Crossref is queried first; on a miss the DOI falls through to OpenAlex,
which also supplies institution and country affiliations. With --pdf the
DOI is extracted from the file's first pages instead of the argument.

Examples:
  jourq work 10.1093/sysbio/syy032
  jourq work https://doi.org/10.1093/sysbio/syy032 --human
  jourq work --pdf paper.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWork,
}

func init() {
	rootCmd.AddCommand(workCmd)
	workCmd.Flags().StringVar(&workPDF, "pdf", "", "Extract the DOI from this PDF file")
}

func runWork(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()
	metrics := stats.New()

	var d string
	switch {
	case workPDF != "":
		extracted, err := pdf.ExtractDOI(workPDF)
		if err != nil {
			exitWithError(ExitError, "reading %s: %v", workPDF, err)
		}
		if extracted == "" {
			exitWithError(ExitDataError, "no DOI found in %s", workPDF)
		}
		d = extracted
	case len(args) == 1:
		d = doi.Normalize(args[0])
	default:
		exitWithError(ExitError, "a DOI argument or --pdf is required")
	}
	if !doi.Valid(d) {
		exitWithError(ExitDataError, "invalid DOI: %s", d)
	}

	cr := newCrossrefClient(logger, metrics)
	oa := newOpenAlexClient(logger, metrics)

	w, err := cr.GetWork(ctx, d)
	switch {
	case err == nil:
		if ow, oerr := oa.ResolveDOI(ctx, d); oerr == nil {
			w = mergeWork(w, ow)
		} else if !catalog.IsNotFound(oerr) {
			logger.Warn("open catalog enrichment failed", "doi", d, "error", oerr)
		}
	case catalog.IsNotFound(err):
		w, err = oa.ResolveDOI(ctx, d)
		if catalog.IsNotFound(err) {
			exitWithError(ExitDataError, "work %s not found in any catalog", d)
		}
		if err != nil {
			exitWithError(ExitError, "resolving %s: %v", d, err)
		}
	case catalog.IsRateLimited(err):
		exitWithError(ExitError, "rate limited: %v", err)
	default:
		exitWithError(ExitError, "resolving %s: %v", d, err)
	}

	if humanOutput {
		printWorkHuman(w)
		return nil
	}
	return outputJSON(w)
}

// mergeWork fills gaps in the Crossref record from the open-catalog one.
func mergeWork(w, o catalog.Work) catalog.Work {
	w.ID = o.ID
	if len(w.Institutions) == 0 {
		w.Institutions = o.Institutions
	}
	if len(w.Countries) == 0 {
		w.Countries = o.Countries
	}
	if w.PublicationYear == 0 {
		w.PublicationYear = o.PublicationYear
	}
	if w.JournalName == "" {
		w.JournalName = o.JournalName
	}
	if len(w.JournalISSNs) == 0 {
		w.JournalISSNs = o.JournalISSNs
	}
	if len(w.ReferencedWorks) == 0 {
		w.ReferencedWorks = o.ReferencedWorks
	}
	if o.CitedByCount > w.CitedByCount {
		w.CitedByCount = o.CitedByCount
	}
	return w
}

func printWorkHuman(w catalog.Work) {
	fmt.Printf("%s\n", w.DOI)
	if w.Title != "" {
		fmt.Printf("  Title:    %s\n", w.Title)
	}
	if w.PublicationYear != 0 {
		fmt.Printf("  Year:     %d\n", w.PublicationYear)
	}
	if w.JournalName != "" {
		fmt.Printf("  Journal:  %s", w.JournalName)
		if len(w.JournalISSNs) > 0 {
			fmt.Printf(" (%s)", strings.Join(w.JournalISSNs, ", "))
		}
		fmt.Println()
	}
	if labels := w.AuthorLabels(); len(labels) > 0 {
		fmt.Printf("  Authors:  %s\n", formatAuthors(labels, 5))
	}
	if len(w.Institutions) > 0 {
		fmt.Printf("  Institutions: %s\n", strings.Join(w.Institutions, "; "))
	}
	if len(w.Countries) > 0 {
		fmt.Printf("  Countries: %s\n", strings.Join(w.Countries, ", "))
	}
	if w.CitedByCount > 0 {
		fmt.Printf("  Cited by: %d\n", w.CitedByCount)
	}
	if len(w.ReferencedWorks) > 0 {
		fmt.Printf("  References: %d\n", len(w.ReferencedWorks))
	}
}
