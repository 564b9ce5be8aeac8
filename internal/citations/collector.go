// Package citations walks the pages of works citing a target work and
// gathers them into a single result, with no caps on pages or works.
package citations

import (
	"context"
	"log/slog"

	"github.com/jourq/jourq/internal/catalog"
)

// Source fetches one page of a citing-works walk. An empty cursor opens
// the walk; an empty returned cursor ends it.
type Source interface {
	CitingPage(ctx context.Context, workID, cursor string) ([]catalog.Work, string, error)
}

// Result is the outcome of one citing-works walk.
type Result struct {
	// Works are the citing works kept by the walk, in page order.
	Works []catalog.Work
	// Edges pair each kept work's DOI with its publication year.
	Edges []catalog.CitationEdge
	// Pages counts the pages fetched.
	Pages int
	// Partial is set when the walk ended before the cursor was exhausted.
	Partial bool
}

// Collector drives citing-works walks against a Source.
type Collector struct {
	source Source
	logger *slog.Logger
	onPage func(pages, works int)
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets the logger for partial-walk warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithPageHook registers a callback invoked after each fetched page with
// cumulative page and kept-work counts.
func WithPageHook(fn func(pages, works int)) Option {
	return func(c *Collector) {
		c.onPage = fn
	}
}

// New creates a Collector reading from source.
func New(source Source, opts ...Option) *Collector {
	c := &Collector{
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect gathers the works citing workID. When targetYear is non-zero,
// only citing works published in that year are kept; zero keeps every
// year. Citing works without a DOI are skipped.
//
// A failed page ends the walk with the works already gathered and the
// Partial flag set. Cancellation also returns the context error so the
// caller can distinguish it from a server-side failure.
func (c *Collector) Collect(ctx context.Context, workID string, targetYear int) (*Result, error) {
	res := &Result{}
	cursor := ""

	for {
		works, next, err := c.source.CitingPage(ctx, workID, cursor)
		if err != nil {
			res.Partial = true
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			c.logger.Warn("citing page fetch failed, keeping partial walk",
				"work_id", workID, "pages", res.Pages, "works", len(res.Works), "err", err)
			return res, nil
		}

		res.Pages++
		for _, w := range works {
			if w.DOI == "" {
				continue
			}
			if targetYear != 0 && w.PublicationYear != targetYear {
				continue
			}
			res.Works = append(res.Works, w)
			res.Edges = append(res.Edges, catalog.CitationEdge{
				CitingDOI:  w.DOI,
				CitingYear: w.PublicationYear,
			})
		}
		if c.onPage != nil {
			c.onPage(res.Pages, len(res.Works))
		}

		// A missing or repeated cursor ends the walk.
		if next == "" || next == cursor {
			return res, nil
		}
		cursor = next
	}
}
