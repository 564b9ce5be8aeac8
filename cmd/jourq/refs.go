package main

import (
	"context"
	"math"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/doi"
	"github.com/jourq/jourq/internal/refquality"
	"github.com/jourq/jourq/internal/stats"
	"github.com/spf13/cobra"
)

var refsCmd = &cobra.Command{
	Use:   "refs <doi>",
	Short: "Report reference-quality stats for one work",
	Long: `Report reference-quality stats for one work: how many references it
carries and how many of those carry DOIs.

Crossref reference lists are used when present; otherwise the count
falls back to the OpenAlex record, whose referenced works always carry
resolvable identifiers.

Examples:
  jourq refs 10.1093/sysbio/syy032
  jourq refs 10.1093/sysbio/syy032 --human`,
	Args: cobra.ExactArgs(1),
	RunE: runRefs,
}

func init() {
	rootCmd.AddCommand(refsCmd)
}

// RefsResult is the JSON output for the refs command.
type RefsResult struct {
	DOI            string  `json:"doi"`
	Total          int     `json:"total"`
	WithDOI        int     `json:"with_doi"`
	WithoutDOI     int     `json:"without_doi"`
	WithDOIPercent float64 `json:"with_doi_percent"`
}

func runRefs(cmd *cobra.Command, args []string) error {
	d := doi.Normalize(args[0])
	ctx := context.Background()
	logger := newLogger()
	metrics := stats.New()

	analyzer := refquality.New(
		newCrossrefClient(logger, metrics),
		newOpenAlexClient(logger, metrics),
		refquality.WithLogger(logger),
	)

	st, err := analyzer.Analyze(ctx, d)
	if err != nil {
		if catalog.IsNotFound(err) {
			exitWithError(ExitDataError, "work %s not found", d)
		}
		exitWithError(ExitError, "analyzing references: %v", err)
	}

	out := RefsResult{
		DOI:        st.DOI,
		Total:      st.Total,
		WithDOI:    st.WithDOI,
		WithoutDOI: st.WithoutDOI,
	}
	if st.Total > 0 {
		out.WithDOIPercent = math.Round(10000*float64(st.WithDOI)/float64(st.Total)) / 100
	}

	if humanOutput {
		outputHuman("References for %s: %d\n", out.DOI, out.Total)
		outputHuman("  with DOI:    %d (%.2f%%)\n", out.WithDOI, out.WithDOIPercent)
		outputHuman("  without DOI: %d\n", out.WithoutDOI)
		return nil
	}
	return outputJSON(out)
}
