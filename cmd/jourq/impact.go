package main

import (
	"context"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/citations"
	"github.com/jourq/jourq/internal/impact"
	"github.com/jourq/jourq/internal/stats"
	"github.com/spf13/cobra"
)

var impactCmd = &cobra.Command{
	Use:   "impact <issn>",
	Short: "Compute a journal's current impact factor",
	Long: `Compute a journal's impact factor for the most recent complete window:
citations received last year by works the journal published in the two
years before, divided by the count of those works.

Works without a DOI still count as citable items; their citations are
simply unresolvable and contribute zero.

Examples:
  jourq impact 0028-0836
  jourq impact 1476-4687 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runImpact,
}

func init() {
	rootCmd.AddCommand(impactCmd)
}

// ImpactResult is the JSON output for the impact command.
type ImpactResult struct {
	ISSN   string         `json:"issn"`
	Result *impact.Result `json:"impact_factor"`
}

func runImpact(cmd *cobra.Command, args []string) error {
	issn := args[0]
	ctx := context.Background()

	logger := newLogger()
	metrics := stats.New()

	oa := newOpenAlexClient(logger, metrics)
	calc := impact.New(
		newCrossrefClient(logger, metrics),
		oa,
		citations.New(oa, citations.WithLogger(logger)),
		impact.WithLogger(logger),
	)

	res, err := calc.Calculate(ctx, issn)
	if err != nil {
		switch {
		case catalog.IsNotFound(err):
			exitWithError(ExitDataError, "journal not found: %v", err)
		case catalog.IsRateLimited(err):
			exitWithError(ExitError, "rate limited: %v", err)
		default:
			exitWithError(ExitError, "computing impact factor: %v", err)
		}
	}

	if humanOutput {
		outputHuman("Impact factor for %s: %.2f\n", issn, res.Value)
		outputHuman("  %s\n", res.Window)
		outputHuman("  %d citations over %d citable items\n", res.Citations, res.CitableItems)
		for _, year := range []int{res.Window.PublicationYears[0], res.Window.PublicationYears[1]} {
			outputHuman("  %d publications: %d citations\n", year, res.ByYear[year])
		}
		if res.Partial {
			outputHuman("  (partial: some citation walks did not complete)\n")
		}
		return nil
	}

	return outputJSON(ImpactResult{ISSN: issn, Result: res})
}
