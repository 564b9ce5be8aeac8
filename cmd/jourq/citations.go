package main

import (
	"context"
	"fmt"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/citations"
	"github.com/jourq/jourq/internal/doi"
	"github.com/jourq/jourq/internal/stats"
	"github.com/spf13/cobra"
)

var citationsYear int

var citationsCmd = &cobra.Command{
	Use:   "citations <doi>",
	Short: "List the works citing a given work",
	Long: `List the works citing a given work.

Resolves the DOI through OpenAlex, then walks every page of citing
works. With --year only citations published in that year are kept; the
pages still walk in full.

Examples:
  jourq citations 10.1093/sysbio/syy032
  jourq citations 10.1093/sysbio/syy032 --year 2024 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runCitations,
}

func init() {
	rootCmd.AddCommand(citationsCmd)
	citationsCmd.Flags().IntVar(&citationsYear, "year", 0, "Keep only citations published in this year")
}

// CitationsResult is the JSON output for the citations command.
type CitationsResult struct {
	DOI     string         `json:"doi"`
	WorkID  string         `json:"work_id"`
	Year    int            `json:"year,omitempty"`
	Total   int            `json:"total"`
	Pages   int            `json:"pages"`
	Partial bool           `json:"partial,omitempty"`
	Works   []catalog.Work `json:"works"`
}

func runCitations(cmd *cobra.Command, args []string) error {
	d := doi.Normalize(args[0])
	ctx := context.Background()
	logger := newLogger()
	metrics := stats.New()

	oa := newOpenAlexClient(logger, metrics)

	w, err := oa.ResolveDOI(ctx, d)
	if err != nil {
		if catalog.IsNotFound(err) {
			exitWithError(ExitDataError, "work %s not found", d)
		}
		exitWithError(ExitError, "resolving %s: %v", d, err)
	}
	if w.ID == "" {
		exitWithError(ExitDataError, "work %s has no catalog id to walk citations from", d)
	}

	collector := citations.New(oa, citations.WithLogger(logger))
	res, err := collector.Collect(ctx, w.ID, citationsYear)
	if err != nil {
		exitWithError(ExitError, "collecting citations: %v", err)
	}

	out := CitationsResult{
		DOI:     d,
		WorkID:  w.ID,
		Year:    citationsYear,
		Total:   len(res.Works),
		Pages:   res.Pages,
		Partial: res.Partial,
		Works:   res.Works,
	}

	if humanOutput {
		printCitationsHuman(out)
		return nil
	}
	return outputJSON(out)
}

func printCitationsHuman(res CitationsResult) {
	fmt.Printf("Works citing %s", res.DOI)
	if res.Year != 0 {
		fmt.Printf(" in %d", res.Year)
	}
	fmt.Printf(": %d over %d pages\n\n", res.Total, res.Pages)

	for _, w := range res.Works {
		fmt.Printf("  %s (%d)\n", w.DOI, w.PublicationYear)
		if w.Title != "" {
			fmt.Printf("    %s\n", w.Title)
		}
		if w.JournalName != "" {
			fmt.Printf("    %s\n", w.JournalName)
		}
	}
	if res.Partial {
		fmt.Println()
		fmt.Println("(partial: the walk ended early)")
	}
}
