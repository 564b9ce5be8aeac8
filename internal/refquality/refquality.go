// Package refquality measures how much of works' reference lists carry
// resolvable DOIs.
package refquality

import (
	"context"
	"log/slog"
	"math"

	"github.com/jourq/jourq/internal/catalog"
)

// ReferenceLister fetches a work's reference list from the publication
// catalog.
type ReferenceLister interface {
	References(ctx context.Context, doi string) (catalog.ReferenceList, error)
}

// Resolver maps a DOI onto an enriched record in the citation catalog.
type Resolver interface {
	ResolveDOI(ctx context.Context, doi string) (catalog.Work, error)
}

// Stats is the reference tally for one work.
type Stats struct {
	DOI        string `json:"doi"`
	Total      int    `json:"total"`
	WithDOI    int    `json:"with_doi"`
	WithoutDOI int    `json:"without_doi"`
}

// Aggregate sums per-work stats into the headline reference-quality
// figures.
type Aggregate struct {
	Works             int     `json:"works"`
	TotalReferences   int     `json:"total_references"`
	WithDOI           int     `json:"with_doi"`
	WithoutDOI        int     `json:"without_doi"`
	AveragePerWork    float64 `json:"average_per_work"`
	WithDOIPercent    float64 `json:"with_doi_percent"`
	WithoutDOIPercent float64 `json:"without_doi_percent"`
}

// Analyzer tallies reference lists, falling back from the publication
// catalog to the citation catalog.
type Analyzer struct {
	primary  ReferenceLister
	fallback Resolver
	logger   *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Analyzer. fallback may be nil to disable the second
// catalog.
func New(primary ReferenceLister, fallback Resolver, opts ...Option) *Analyzer {
	a := &Analyzer{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze tallies one work's reference list. Any primary-catalog failure
// falls back to the citation catalog's referenced-works list, where each
// entry carries a resolvable identifier and therefore counts as
// DOI-bearing. The error is non-nil only when both catalogs fail.
func (a *Analyzer) Analyze(ctx context.Context, d string) (Stats, error) {
	stats := Stats{DOI: d}

	list, err := a.primary.References(ctx, d)
	if err == nil {
		stats.Total = list.Total
		stats.WithDOI = list.WithDOI
		stats.WithoutDOI = list.WithoutDOI
		return stats, nil
	}
	if a.fallback == nil {
		return stats, err
	}
	a.logger.Debug("reference list unavailable, using citation catalog",
		"doi", d, "err", err)

	work, ferr := a.fallback.ResolveDOI(ctx, d)
	if ferr != nil {
		return stats, err
	}
	stats.Total = len(work.ReferencedWorks)
	stats.WithDOI = stats.Total
	return stats, nil
}

// Sum aggregates per-work stats. Percentages and the average are rounded
// to two decimals; empty input yields all zeros.
func Sum(stats []Stats) Aggregate {
	agg := Aggregate{Works: len(stats)}
	for _, s := range stats {
		agg.TotalReferences += s.Total
		agg.WithDOI += s.WithDOI
		agg.WithoutDOI += s.WithoutDOI
	}
	if agg.Works > 0 {
		agg.AveragePerWork = round2(float64(agg.TotalReferences) / float64(agg.Works))
	}
	if agg.TotalReferences > 0 {
		agg.WithDOIPercent = round2(100 * float64(agg.WithDOI) / float64(agg.TotalReferences))
		agg.WithoutDOIPercent = round2(100 * float64(agg.WithoutDOI) / float64(agg.TotalReferences))
	}
	return agg
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
