// Package impact computes the two-year impact factor: citations received
// in the last full calendar year by works the journal published in the
// two years before it, divided by the number of those works.
package impact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/citations"
)

// DefaultWorkers is the seed-walk pool size.
const DefaultWorkers = 4

// Window is the measurement window derived from a clock time.
type Window struct {
	CitationYear     int    `json:"citation_year"`
	PublicationYears [2]int `json:"publication_years"`
}

// WindowFor derives the window from now: citations are counted in the
// last full calendar year, over works published in the two years before
// it.
func WindowFor(now time.Time) Window {
	cy := now.Year() - 1
	return Window{
		CitationYear:     cy,
		PublicationYears: [2]int{cy - 2, cy - 1},
	}
}

// String renders the window for human output.
func (w Window) String() string {
	return fmt.Sprintf("citations in %d to works published %d-%d",
		w.CitationYear, w.PublicationYears[0], w.PublicationYears[1])
}

// Contains reports whether year falls in the publication window.
func (w Window) Contains(year int) bool {
	return year >= w.PublicationYears[0] && year <= w.PublicationYears[1]
}

// Lister pages through a journal's works in a date window.
type Lister interface {
	ListWorks(ctx context.Context, issn, from, until string) (*catalog.Listing, error)
}

// Resolver maps a DOI onto an enriched catalog record.
type Resolver interface {
	ResolveDOI(ctx context.Context, doi string) (catalog.Work, error)
}

// Collector walks the works citing a work ID.
type Collector interface {
	Collect(ctx context.Context, workID string, targetYear int) (*citations.Result, error)
}

// SeedCitations is the citation count for one publication-window work.
type SeedCitations struct {
	DOI       string `json:"doi"`
	Year      int    `json:"year"`
	Citations int    `json:"citations"`
}

// Result is a computed impact factor with its inputs.
type Result struct {
	Window       Window          `json:"window"`
	Value        float64         `json:"value"`
	Citations    int             `json:"citations"`
	CitableItems int             `json:"citable_items"`
	PerSeed      []SeedCitations `json:"per_seed,omitempty"`
	ByYear       map[int]int     `json:"by_year,omitempty"`
	Partial      bool            `json:"partial,omitempty"`
}

// Calculator computes impact factors.
type Calculator struct {
	lister    Lister
	resolver  Resolver
	collector Collector
	logger    *slog.Logger
	now       func() time.Time
	workers   int
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Calculator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithNow pins the clock the window derives from.
func WithNow(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWorkers sets the seed-walk pool size, clamped to [1, 16].
func WithWorkers(n int) Option {
	return func(c *Calculator) {
		if n < 1 {
			n = 1
		}
		if n > 16 {
			n = 16
		}
		c.workers = n
	}
}

// New creates a Calculator over the given catalog surfaces.
func New(lister Lister, resolver Resolver, collector Collector, opts ...Option) *Calculator {
	c := &Calculator{
		lister:    lister,
		resolver:  resolver,
		collector: collector,
		logger:    slog.Default(),
		now:       time.Now,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calculate computes the impact factor for the journal identified by
// issn. A journal with no publication-window works yields a zero value,
// not an error. Per-seed failures degrade the result to partial instead
// of aborting it; cancellation returns the partial result with the
// context error.
func (c *Calculator) Calculate(ctx context.Context, issn string) (*Result, error) {
	window := WindowFor(c.now())
	res := &Result{
		Window: window,
		ByYear: map[int]int{
			window.PublicationYears[0]: 0,
			window.PublicationYears[1]: 0,
		},
	}

	from := fmt.Sprintf("%d-01-01", window.PublicationYears[0])
	until := fmt.Sprintf("%d-12-31", window.PublicationYears[1])

	listing, err := c.lister.ListWorks(ctx, issn, from, until)
	if err != nil {
		return nil, fmt.Errorf("listing %s publication window: %w", issn, err)
	}
	res.Partial = listing.Partial

	// The server filters by publication date; the year check drops works
	// whose recorded year still falls outside the window.
	var seeds []catalog.Work
	for _, w := range listing.Works {
		if !window.Contains(w.PublicationYear) {
			continue
		}
		res.CitableItems++
		if w.DOI != "" {
			seeds = append(seeds, w)
		}
	}

	if res.CitableItems == 0 {
		return res, nil
	}

	perSeed := make([]SeedCitations, len(seeds))
	var (
		mu      sync.Mutex
		partial bool
	)
	markPartial := func() {
		mu.Lock()
		partial = true
		mu.Unlock()
	}

	jobs := make(chan int, len(seeds))
	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				seed := seeds[idx]
				perSeed[idx] = SeedCitations{DOI: seed.DOI, Year: seed.PublicationYear}
				count, complete := c.seedCitations(ctx, seed, window.CitationYear)
				perSeed[idx].Citations = count
				if !complete {
					markPartial()
				}
			}
		}()
	}

feed:
	for i := range seeds {
		select {
		case jobs <- i:
		case <-ctx.Done():
			markPartial()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for _, s := range perSeed {
		res.Citations += s.Citations
		res.ByYear[s.Year] += s.Citations
	}
	res.PerSeed = perSeed
	res.Value = float64(res.Citations) / float64(res.CitableItems)
	if partial {
		res.Partial = true
	}

	if err := ctx.Err(); err != nil {
		res.Partial = true
		return res, err
	}
	return res, nil
}

// seedCitations counts the citations one seed received in citationYear.
// The bool reports whether the count is complete. A seed missing from
// the citation catalog counts zero and stays complete.
func (c *Calculator) seedCitations(ctx context.Context, seed catalog.Work, citationYear int) (int, bool) {
	work, err := c.resolver.ResolveDOI(ctx, seed.DOI)
	if err != nil {
		if catalog.IsNotFound(err) {
			c.logger.Debug("seed work not in citation catalog", "doi", seed.DOI)
			return 0, true
		}
		c.logger.Warn("seed resolution failed", "doi", seed.DOI, "err", err)
		return 0, false
	}
	if work.ID == "" {
		return 0, true
	}

	cres, err := c.collector.Collect(ctx, work.ID, citationYear)
	if cres == nil {
		return 0, false
	}
	if err != nil {
		c.logger.Warn("citation walk failed", "doi", seed.DOI, "err", err)
		return len(cres.Works), false
	}
	return len(cres.Works), !cres.Partial
}
