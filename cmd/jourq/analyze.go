package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jourq/jourq/internal/analyze"
	"github.com/jourq/jourq/internal/archive"
	"github.com/jourq/jourq/internal/cache"
	"github.com/jourq/jourq/internal/config"
	"github.com/jourq/jourq/internal/export"
	"github.com/jourq/jourq/internal/period"
	"github.com/jourq/jourq/internal/stats"
	"github.com/spf13/cobra"
)

var (
	analyzePeriod      string
	analyzeCSVDir      string
	analyzeSave        bool
	analyzeConcurrency int
	analyzeNoCache     bool
	analyzeMetricsAddr string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <issn>",
	Short: "Run the full bibliometric analysis for a journal",
	Long: `Run the full bibliometric analysis for a journal.

Lists the journal's articles in the period from Crossref, enriches them
through OpenAlex, walks every citing work, and reports impact factor,
per-year self-citation rates, reference quality, and ranked author,
journal, institution, and country tables.

Examples:
  jourq analyze 0028-0836 --period 2022-2023
  jourq analyze 1476-4687 --period 2020,2021,2023 --csv-dir reports/
  jourq analyze 0036-8075 --period 2022 --save --human`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&analyzePeriod, "period", "", "Analysis period: range 2020-2023, list 2020,2022, or single year")
	analyzeCmd.MarkFlagRequired("period")
	analyzeCmd.Flags().StringVar(&analyzeCSVDir, "csv-dir", "", "Write the five CSV reports into this directory")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Archive the run in the local SQLite database")
	analyzeCmd.Flags().IntVar(&analyzeConcurrency, "concurrency", 0, "Worker count for enrichment and citation walks")
	analyzeCmd.Flags().BoolVar(&analyzeNoCache, "no-cache", false, "Disable the in-memory resolved-work cache")
	analyzeCmd.Flags().StringVar(&analyzeMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	issn := args[0]

	p, err := period.Parse(analyzePeriod)
	if err != nil {
		exitWithError(ExitConfigError, "invalid period: %v", err)
	}

	logger := newLogger()
	metrics := stats.New()

	if analyzeMetricsAddr != "" {
		go serveMetrics(analyzeMetricsAddr, metrics, logger)
	}

	opts := []analyze.Option{
		analyze.WithLogger(logger),
		analyze.WithMetrics(metrics),
	}
	if n := resolveConcurrency(analyzeConcurrency); n > 0 {
		opts = append(opts, analyze.WithWorkers(n))
	}
	if analyzeNoCache {
		opts = append(opts, analyze.WithCache(cache.None{}))
	} else if size := config.GetCacheSize(); size > 0 {
		opts = append(opts, analyze.WithCache(cache.NewLRU(size, config.GetCacheTTL())))
	}
	if humanOutput {
		opts = append(opts, analyze.WithProgress(progressPrinter()))
	} else {
		opts = append(opts, analyze.WithProgress(progressLogger(logger)))
	}

	orch := analyze.New(
		newCrossrefClient(logger, metrics),
		newOpenAlexClient(logger, metrics),
		opts...,
	)

	bundle, err := orch.Run(context.Background(), issn, p)
	if err != nil {
		if errors.Is(err, analyze.ErrNoWorks) {
			exitWithError(ExitDataError, "%v", err)
		}
		if bundle == nil {
			exitWithError(ExitError, "analysis failed: %v", err)
		}
		// A partial bundle is still worth emitting before failing.
		writeOutputs(bundle, logger)
		fmt.Fprintf(os.Stderr, "error: analysis incomplete: %v\n", err)
		os.Exit(ExitError)
	}

	writeOutputs(bundle, logger)
	return nil
}

// writeOutputs emits the bundle plus any side outputs the flags request.
func writeOutputs(b *analyze.Bundle, logger *slog.Logger) {
	if analyzeCSVDir != "" {
		paths, err := export.WriteAll(b, analyzeCSVDir)
		if err != nil {
			exitWithError(ExitError, "writing CSV reports: %v", err)
		}
		logger.Info("wrote CSV reports", "dir", analyzeCSVDir, "files", len(paths))
	}

	if analyzeSave {
		store, err := archive.Open(config.GetArchivePath())
		if err != nil {
			exitWithError(ExitError, "opening archive: %v", err)
		}
		id, err := store.SaveBundle(b)
		store.Close()
		if err != nil {
			exitWithError(ExitError, "archiving run: %v", err)
		}
		logger.Info("archived run", "id", id)
	}

	if humanOutput {
		printBundleHuman(b)
	} else {
		outputJSON(b)
	}
}

// progressPrinter renders engine progress on stderr for human mode.
func progressPrinter() analyze.ProgressFunc {
	return func(e analyze.Event) {
		switch e.Kind {
		case analyze.EventStageStarted:
			if e.Total > 0 {
				fmt.Fprintf(os.Stderr, "==> %s (%d items)\n", e.Stage, e.Total)
			} else {
				fmt.Fprintf(os.Stderr, "==> %s\n", e.Stage)
			}
		case analyze.EventWorkCompleted:
			fmt.Fprintf(os.Stderr, "    [%d/%d] %s\n", e.Done, e.Total, e.DOI)
		case analyze.EventStageDone:
			fmt.Fprintf(os.Stderr, "    %s done\n", e.Stage)
		}
	}
}

// progressLogger forwards engine progress to slog for JSON mode.
func progressLogger(logger *slog.Logger) analyze.ProgressFunc {
	return func(e analyze.Event) {
		switch e.Kind {
		case analyze.EventStageStarted, analyze.EventStageDone:
			logger.Info(string(e.Kind), "stage", string(e.Stage), "done", e.Done, "total", e.Total)
		case analyze.EventWorkCompleted:
			logger.Debug("work completed", "stage", string(e.Stage), "doi", e.DOI, "done", e.Done, "total", e.Total)
		}
	}
}

// printBundleHuman renders a bundle as a readable report.
func printBundleHuman(b *analyze.Bundle) {
	name := b.JournalName
	if name == "" {
		name = "journal"
	}
	fmt.Printf("%s (%s)\n", name, b.ISSN)
	fmt.Printf("Period %s, generated %s\n", b.Period.String(), b.GeneratedAt.Format("2006-01-02 15:04 MST"))
	if b.Partial {
		fmt.Printf("PARTIAL RESULTS, incomplete stages: %v\n", b.PartialStages)
	}
	fmt.Println()

	if ifr := b.ImpactFactor; ifr != nil {
		fmt.Printf("Impact factor: %.2f (%s)\n", ifr.Value, ifr.Window)
		fmt.Printf("  %d citations over %d citable items\n", ifr.Citations, ifr.CitableItems)
		fmt.Println()
	}

	s := b.Summary
	fmt.Printf("Articles analyzed: %d (%d with DOI, %d with institutions)\n",
		s.ArticlesAnalyzed, s.ArticlesWithDOI, s.ArticlesWithInstitutions)
	fmt.Printf("Citations: %d total, %d self (%.2f%%)\n",
		s.TotalCitations, s.SelfCitations, s.SelfCitationRate)
	fmt.Println()

	if len(b.SelfCitations) > 0 {
		fmt.Println("Self-citations by publication year:")
		for _, y := range b.Years() {
			row := b.SelfCitations[y]
			fmt.Printf("  %d: %d/%d (%.2f%%)\n", y, row.SelfCitations, row.TotalCitations, row.SelfCitationRate)
		}
		fmt.Println()
	}

	if r := b.References; r.Works > 0 {
		fmt.Printf("References: %d over %d articles (%.2f avg), %.2f%% with DOI\n",
			r.TotalReferences, r.Works, r.AveragePerWork, r.WithDOIPercent)
		fmt.Println()
	}

	printFrequencyTable("Top authors", b.Primary.Authors, analyze.TopPrimary)
	printFrequencyTable("Top institutions", b.Primary.Institutions, analyze.TopPrimary)
	printFrequencyTable("Top countries", b.Primary.Countries, analyze.TopCiting)
	printFrequencyTable("Top citing authors", b.Citing.Authors, analyze.TopCiting)
	printFrequencyTable("Top citing journals", b.Citing.Journals, analyze.TopCiting)
	printFrequencyTable("Top citing institutions", b.Citing.Institutions, analyze.TopCiting)
	printFrequencyTable("Top citing countries", b.Citing.Countries, analyze.TopCiting)
}
