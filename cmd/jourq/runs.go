package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jourq/jourq/internal/analyze"
	"github.com/jourq/jourq/internal/archive"
	"github.com/jourq/jourq/internal/config"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage archived analysis runs",
	Long: `Manage analysis runs archived with jourq analyze --save.

Runs live in a local SQLite database under the XDG data directory, or
wherever archive_path in the config points.`,
}

var runsListLimit int

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one archived run's full bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsListCmd.Flags().IntVarP(&runsListLimit, "limit", "n", 20, "Maximum runs to list")
}

// openArchive opens the run archive or exits.
func openArchive() *archive.Store {
	store, err := archive.Open(config.GetArchivePath())
	if err != nil {
		exitWithError(ExitError, "opening archive: %v", err)
	}
	return store
}

// parseRunID parses a run id argument or exits.
func parseRunID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		exitWithError(ExitError, "invalid run id: %s", arg)
	}
	return id
}

// RunsListResult is the JSON output for the runs list command.
type RunsListResult struct {
	Runs  []archive.Run `json:"runs"`
	Total int           `json:"total"`
}

func runRunsList(cmd *cobra.Command, args []string) error {
	store := openArchive()
	defer store.Close()

	runs, err := store.ListRuns(runsListLimit)
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}

	if humanOutput {
		if len(runs) == 0 {
			outputHuman("No archived runs.\n")
			return nil
		}
		for _, r := range runs {
			line := fmt.Sprintf("%4d  %s  %s  period %s",
				r.ID, r.CreatedAt.Format("2006-01-02"), r.ISSN, r.Period)
			if r.ImpactFactor != nil {
				line += fmt.Sprintf("  IF %.2f", *r.ImpactFactor)
			}
			if r.Partial {
				line += "  (partial)"
			}
			outputHuman("%s\n", line)
		}
		return nil
	}

	if runs == nil {
		runs = []archive.Run{}
	}
	return outputJSON(RunsListResult{Runs: runs, Total: len(runs)})
}

// RunsShowResult is the JSON output for the runs show command.
type RunsShowResult struct {
	Run    *archive.Run    `json:"run"`
	Bundle *analyze.Bundle `json:"bundle"`
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	id := parseRunID(args[0])
	store := openArchive()
	defer store.Close()

	run, bundle, err := store.GetRun(id)
	if err != nil {
		if errors.Is(err, archive.ErrRunNotFound) {
			exitWithError(ExitDataError, "run %d not found", id)
		}
		exitWithError(ExitError, "loading run: %v", err)
	}

	if humanOutput {
		outputHuman("Run %d, archived %s\n\n", run.ID, run.CreatedAt.Format("2006-01-02 15:04 MST"))
		printBundleHuman(bundle)
		return nil
	}
	return outputJSON(RunsShowResult{Run: run, Bundle: bundle})
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	id := parseRunID(args[0])
	store := openArchive()
	defer store.Close()

	if err := store.DeleteRun(id); err != nil {
		if errors.Is(err, archive.ErrRunNotFound) {
			exitWithError(ExitDataError, "run %d not found", id)
		}
		exitWithError(ExitError, "deleting run: %v", err)
	}

	if humanOutput {
		outputHuman("Deleted run %d.\n", id)
		return nil
	}
	return outputJSON(StatusResponse{Status: "deleted", ID: id})
}
