// Package export writes analysis bundles out as CSV reports.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jourq/jourq/internal/analyze"
	"github.com/jourq/jourq/internal/frequency"
)

// File names written by WriteAll.
const (
	AuthorFrequencyFile  = "author_frequency.csv"
	InstitutionFile      = "institution_frequency.csv"
	SelfCitationFile     = "self_citation_analysis.csv"
	ReferenceFile        = "reference_analysis.csv"
	CitationAnalysisFile = "citation_analysis.csv"
)

// WriteAll writes the five CSV reports into dir, creating it when
// missing, and returns the paths written.
func WriteAll(b *analyze.Bundle, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	files := []struct {
		name string
		rows [][]string
	}{
		{AuthorFrequencyFile, AuthorFrequencyRows(b)},
		{InstitutionFile, InstitutionFrequencyRows(b)},
		{SelfCitationFile, SelfCitationRows(b)},
		{ReferenceFile, ReferenceRows(b)},
		{CitationAnalysisFile, CitationAnalysisRows(b)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeCSV(path, f.rows); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// AuthorFrequencyRows renders the full primary author table.
func AuthorFrequencyRows(b *analyze.Bundle) [][]string {
	rows := [][]string{{"Author", "Frequency"}}
	for _, e := range b.Primary.Authors {
		rows = append(rows, []string{e.Label, strconv.Itoa(e.Count)})
	}
	return rows
}

// InstitutionFrequencyRows renders the full primary institution table.
func InstitutionFrequencyRows(b *analyze.Bundle) [][]string {
	rows := [][]string{{"Institution", "Frequency"}}
	for _, e := range b.Primary.Institutions {
		rows = append(rows, []string{e.Label, strconv.Itoa(e.Count)})
	}
	return rows
}

// SelfCitationRows renders the per-year self-citation table in ascending
// year order.
func SelfCitationRows(b *analyze.Bundle) [][]string {
	rows := [][]string{{"Year", "Total Citations", "Self Citations", "Self Citation Rate (%)"}}
	for _, y := range b.Years() {
		row := b.SelfCitations[y]
		rows = append(rows, []string{
			strconv.Itoa(y),
			strconv.Itoa(row.TotalCitations),
			strconv.Itoa(row.SelfCitations),
			formatFloat(row.SelfCitationRate),
		})
	}
	return rows
}

// ReferenceRows renders the reference-quality summary as metric/value
// pairs.
func ReferenceRows(b *analyze.Bundle) [][]string {
	r := b.References
	return [][]string{
		{"Metric", "Value"},
		{"Articles Analyzed", strconv.Itoa(r.Works)},
		{"Total References", strconv.Itoa(r.TotalReferences)},
		{"Average References per Article", formatFloat(r.AveragePerWork)},
		{"References with DOI (%)", formatFloat(r.WithDOIPercent)},
		{"References without DOI (%)", formatFloat(r.WithoutDOIPercent)},
	}
}

// CitationAnalysisRows renders the four citing tables side by side,
// trimmed to the display depth and padded to equal length with at least
// one data row.
func CitationAnalysisRows(b *analyze.Bundle) [][]string {
	cols := [][]string{
		formatEntries(b.Citing.Authors, analyze.TopCiting),
		formatEntries(b.Citing.Journals, analyze.TopCiting),
		formatEntries(b.Citing.Institutions, analyze.TopCiting),
		formatEntries(b.Citing.Countries, analyze.TopCiting),
	}
	depth := 1
	for _, col := range cols {
		if len(col) > depth {
			depth = len(col)
		}
	}

	rows := [][]string{{"Top Citing Authors", "Top Citing Journals", "Top Citing Institutions", "Top Citing Countries"}}
	for i := 0; i < depth; i++ {
		row := make([]string, len(cols))
		for j, col := range cols {
			if i < len(col) {
				row[j] = col[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// formatEntries renders up to n entries as "label (count)".
func formatEntries(entries []frequency.Entry, n int) []string {
	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s (%d)", e.Label, e.Count)
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
