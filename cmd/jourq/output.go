package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jourq/jourq/internal/frequency"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	ID     int64  `json:"id,omitempty"`
	Path   string `json:"path,omitempty"`
}

// printFrequencyTable prints the first depth entries of a ranked table.
func printFrequencyTable(title string, entries []frequency.Entry, depth int) {
	if len(entries) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	if depth > 0 && depth < len(entries) {
		entries = entries[:depth]
	}
	for _, e := range entries {
		fmt.Printf("  %5d  %s\n", e.Count, e.Label)
	}
	fmt.Println()
}

// formatAuthors renders author labels as a comma-separated string with
// "et al." past maxCount.
func formatAuthors(labels []string, maxCount int) string {
	if len(labels) == 0 {
		return ""
	}
	out := ""
	for i, l := range labels {
		if i >= maxCount {
			out += ", et al."
			break
		}
		if i > 0 {
			out += ", "
		}
		out += l
	}
	return out
}
