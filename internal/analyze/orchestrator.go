// Package analyze orchestrates a full journal analysis run: impact
// factor, publication listing, primary-corpus aggregation, citation and
// self-citation analysis, and reference quality, assembled into one
// Bundle.
package analyze

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jourq/jourq/internal/cache"
	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/citations"
	"github.com/jourq/jourq/internal/doi"
	"github.com/jourq/jourq/internal/frequency"
	"github.com/jourq/jourq/internal/impact"
	"github.com/jourq/jourq/internal/period"
	"github.com/jourq/jourq/internal/refquality"
	"github.com/jourq/jourq/internal/selfcite"
	"github.com/jourq/jourq/internal/stats"
)

// ErrNoWorks means the journal published nothing in the analysis period.
var ErrNoWorks = errors.New("no works found for journal in period")

// DefaultWorkers is the per-stage worker pool size.
const DefaultWorkers = 6

// CrossrefSource is the publication-catalog surface the orchestrator
// needs.
type CrossrefSource interface {
	ListWorks(ctx context.Context, issn, from, until string) (*catalog.Listing, error)
	References(ctx context.Context, doi string) (catalog.ReferenceList, error)
}

// OpenCatalogSource is the citation-catalog surface the orchestrator
// needs.
type OpenCatalogSource interface {
	ResolveDOI(ctx context.Context, doi string) (catalog.Work, error)
	CitingPage(ctx context.Context, workID, cursor string) ([]catalog.Work, string, error)
}

// Orchestrator runs analyses against a pair of catalog adapters.
type Orchestrator struct {
	crossref CrossrefSource
	opencat  OpenCatalogSource
	resolver *cachedResolver
	cache    cache.Works
	logger   *slog.Logger
	metrics  *stats.Metrics
	progress ProgressFunc
	workers  int
	now      func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics attaches instrumentation.
func WithMetrics(m *stats.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithCache replaces the work-resolution cache.
func WithCache(c cache.Works) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) {
		o.progress = fn
	}
}

// WithWorkers sets the worker pool size, clamped to [1, 16].
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n < 1 {
			n = 1
		}
		if n > 16 {
			n = 16
		}
		o.workers = n
	}
}

// WithNow pins the clock used for timestamps and the impact window.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an Orchestrator over the two catalog adapters.
func New(crossref CrossrefSource, opencat OpenCatalogSource, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		crossref: crossref,
		opencat:  opencat,
		cache:    cache.NewLRU(cache.DefaultSize, cache.DefaultTTL),
		logger:   slog.Default(),
		workers:  DefaultWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.resolver = &cachedResolver{source: o.opencat, cache: o.cache, metrics: o.metrics}
	return o
}

// run carries the mutable state of one analysis.
type run struct {
	bundle   *Bundle
	detector *selfcite.Detector

	primaryAuthors      *frequency.Table
	primaryInstitutions *frequency.Table
	primaryCountries    *frequency.Table
	citingAuthors       *frequency.Table
	citingJournals      *frequency.Table
	citingInstitutions  *frequency.Table
	citingCountries     *frequency.Table

	mu                  sync.Mutex
	partialStages       map[Stage]bool
	withInstitutions    int
	institutionMentions int
	refStats            []refquality.Stats
}

func (r *run) markPartial(s Stage) {
	r.mu.Lock()
	r.partialStages[s] = true
	r.mu.Unlock()
}

func (r *run) addInstitutionCoverage(n int) {
	r.mu.Lock()
	r.withInstitutions++
	r.institutionMentions += n
	r.mu.Unlock()
}

func (r *run) addRefStats(s refquality.Stats) {
	r.mu.Lock()
	r.refStats = append(r.refStats, s)
	r.mu.Unlock()
}

// row returns the self-citation row for year, creating it when the year
// fell outside the zero-initialized set.
func (r *run) row(year int) *YearCitations {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.bundle.SelfCitations[year]
	if !ok {
		row = &YearCitations{}
		r.bundle.SelfCitations[year] = row
	}
	return row
}

func (r *run) countCitation(row *YearCitations, self bool) {
	r.mu.Lock()
	row.TotalCitations++
	if self {
		row.SelfCitations++
	}
	r.mu.Unlock()
}

// Run analyzes one journal over the given period. Failures inside a
// stage degrade the bundle to partial instead of aborting the run;
// cancellation returns the partial bundle together with the context
// error. ErrNoWorks is returned when the listing comes back empty.
func (o *Orchestrator) Run(ctx context.Context, issn string, p period.Period) (*Bundle, error) {
	r := &run{
		bundle: &Bundle{
			ISSN:          issn,
			Period:        p,
			GeneratedAt:   o.now(),
			SelfCitations: make(map[int]*YearCitations),
		},
		partialStages:       make(map[Stage]bool),
		primaryAuthors:      frequency.NewTable(),
		primaryInstitutions: frequency.NewTable(),
		primaryCountries:    frequency.NewTable(),
		citingAuthors:       frequency.NewTable(),
		citingJournals:      frequency.NewTable(),
		citingInstitutions:  frequency.NewTable(),
		citingCountries:     frequency.NewTable(),
	}

	// The impact factor is anchored to the current date, independent of
	// the requested analysis period, and is always computed.
	o.emit(Event{Kind: EventStageStarted, Stage: StageImpactFactor})
	o.runImpact(ctx, issn, r)
	o.emit(Event{Kind: EventStageDone, Stage: StageImpactFactor})
	if err := ctx.Err(); err != nil {
		return o.assemble(r), err
	}

	o.emit(Event{Kind: EventStageStarted, Stage: StageListing})
	listing, err := o.crossref.ListWorks(ctx, issn, p.From, p.Until)
	if err != nil {
		r.markPartial(StageListing)
		return o.assemble(r), err
	}
	if listing.Partial {
		r.markPartial(StageListing)
	}
	o.emit(Event{Kind: EventStageDone, Stage: StageListing, Done: listing.Pages, Total: len(listing.Works)})
	if len(listing.Works) == 0 {
		if listing.Partial {
			return o.assemble(r), errors.New("listing failed before any works were fetched")
		}
		return nil, ErrNoWorks
	}

	r.bundle.Summary.ArticlesAnalyzed = len(listing.Works)
	for _, w := range listing.Works {
		if w.DOI != "" {
			r.bundle.Summary.ArticlesWithDOI++
		}
		if r.bundle.JournalName == "" && w.JournalName != "" {
			r.bundle.JournalName = w.JournalName
		}
	}
	r.detector = selfcite.New(issn, r.bundle.JournalName)

	// Zero-initialize the self-citation table over the analysis years
	// and the impact window's publication years, so every reported year
	// has a row even when no citations arrive.
	for _, y := range p.Years {
		r.bundle.SelfCitations[y] = &YearCitations{}
	}
	if ifr := r.bundle.ImpactFactor; ifr != nil {
		for y, n := range ifr.ByYear {
			row, ok := r.bundle.SelfCitations[y]
			if !ok {
				row = &YearCitations{}
				r.bundle.SelfCitations[y] = row
			}
			row.CitationsInTargetYear = n
		}
	}

	o.enrichStage(ctx, listing.Works, r)
	if err := ctx.Err(); err != nil {
		r.markPartial(StagePrimary)
		return o.assemble(r), err
	}

	o.referenceStage(ctx, listing.Works, r)
	if err := ctx.Err(); err != nil {
		r.markPartial(StageReferences)
		return o.assemble(r), err
	}
	return o.assemble(r), nil
}

// runImpact computes the impact factor, degrading to a partial bundle on
// failure rather than aborting the whole run.
func (o *Orchestrator) runImpact(ctx context.Context, issn string, r *run) {
	collector := citations.New(o.opencat, citations.WithLogger(o.logger))
	calc := impact.New(o.crossref, o.resolver, collector,
		impact.WithLogger(o.logger),
		impact.WithNow(o.now),
		impact.WithWorkers(o.workers))

	ifr, err := calc.Calculate(ctx, issn)
	if ifr != nil {
		r.bundle.ImpactFactor = ifr
		if ifr.Partial {
			r.markPartial(StageImpactFactor)
		}
	}
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Warn("impact factor unavailable", "issn", issn, "err", err)
		}
		r.markPartial(StageImpactFactor)
	}
}

// enrichStage resolves each listed work in the citation catalog, folds
// the merged author/institution/country data into the primary tables,
// and walks citations for works published inside the analysis period.
func (o *Orchestrator) enrichStage(ctx context.Context, works []catalog.Work, r *run) {
	o.emit(Event{Kind: EventStageStarted, Stage: StagePrimary, Total: len(works)})

	collector := citations.New(o.opencat,
		citations.WithLogger(o.logger),
		citations.WithPageHook(func(pages, kept int) {
			o.emit(Event{Kind: EventPageFetched, Stage: StageCitations, Done: pages, Total: kept})
		}))

	var done atomic.Int64
	o.runJobs(ctx, len(works), func(idx int) {
		o.enrichWork(ctx, works[idx], collector, r)
		o.emit(Event{Kind: EventWorkCompleted, Stage: StagePrimary, DOI: works[idx].DOI,
			Done: int(done.Add(1)), Total: len(works)})
	})
	o.emit(Event{Kind: EventStageDone, Stage: StagePrimary, Done: int(done.Load()), Total: len(works)})
}

func (o *Orchestrator) enrichWork(ctx context.Context, w catalog.Work, collector *citations.Collector, r *run) {
	if ctx.Err() != nil {
		return
	}
	o.metrics.EnrichmentStarted()
	defer o.metrics.EnrichmentDone()

	r.primaryAuthors.AddAll(w.AuthorLabels())

	institutions := w.Institutions
	var countries []string
	year := w.PublicationYear
	var enriched catalog.Work

	if w.DOI != "" {
		got, err := o.resolver.ResolveDOI(ctx, w.DOI)
		switch {
		case err == nil:
			enriched = got
			institutions = mergeUnique(institutions, got.Institutions)
			countries = got.Countries
			if got.PublicationYear != 0 {
				year = got.PublicationYear
			}
		case catalog.IsNotFound(err):
			o.logger.Debug("work not in citation catalog", "doi", w.DOI)
		case ctx.Err() != nil:
			return
		default:
			o.logger.Warn("work enrichment failed", "doi", w.DOI, "err", err)
			r.markPartial(StagePrimary)
		}
	}

	r.primaryInstitutions.AddUnique(institutions)
	r.primaryCountries.AddUnique(countries)
	if len(institutions) > 0 {
		r.addInstitutionCoverage(len(institutions))
	}

	if enriched.ID == "" || !r.bundle.Period.Contains(year) {
		return
	}
	o.walkCitations(ctx, enriched, year, collector, r)
}

// walkCitations collects every work citing w and folds it into the
// citing tables and the self-citation row for year. Citing works without
// a resolvable venue name contribute to the author, institution and
// country tables but not to the citation counts.
func (o *Orchestrator) walkCitations(ctx context.Context, w catalog.Work, year int, collector *citations.Collector, r *run) {
	start := time.Now()
	res, err := collector.Collect(ctx, w.ID, 0)
	o.metrics.ObserveWalk(time.Since(start).Seconds())
	if res == nil {
		r.markPartial(StageCitations)
		return
	}
	if err != nil || res.Partial {
		r.markPartial(StageCitations)
	}

	row := r.row(year)
	for i := range res.Works {
		cw := &res.Works[i]
		if cw.JournalName != "" {
			r.citingJournals.Add(cw.JournalName)
			self := r.detector.IsSelf(*cw)
			r.countCitation(row, self)
			if self {
				o.emit(Event{Kind: EventSelfCitation, Stage: StageCitations, DOI: cw.DOI})
			}
		}
		r.citingAuthors.AddAll(cw.AuthorLabels())
		r.citingInstitutions.AddUnique(cw.Institutions)
		r.citingCountries.AddUnique(cw.Countries)
	}
}

// referenceStage tallies reference DOI coverage for every DOI-bearing
// work. Works whose references are unavailable from both catalogs are
// skipped with a warning.
func (o *Orchestrator) referenceStage(ctx context.Context, works []catalog.Work, r *run) {
	var dois []string
	for _, w := range works {
		if w.DOI != "" {
			dois = append(dois, w.DOI)
		}
	}
	o.emit(Event{Kind: EventStageStarted, Stage: StageReferences, Total: len(dois)})

	analyzer := refquality.New(o.crossref, o.resolver, refquality.WithLogger(o.logger))
	var done atomic.Int64
	o.runJobs(ctx, len(dois), func(idx int) {
		if ctx.Err() != nil {
			return
		}
		s, err := analyzer.Analyze(ctx, dois[idx])
		if err != nil {
			if ctx.Err() == nil {
				o.logger.Warn("reference analysis failed", "doi", dois[idx], "err", err)
			}
			r.markPartial(StageReferences)
			return
		}
		r.addRefStats(s)
		o.emit(Event{Kind: EventWorkCompleted, Stage: StageReferences, DOI: dois[idx],
			Done: int(done.Add(1)), Total: len(dois)})
	})
	o.emit(Event{Kind: EventStageDone, Stage: StageReferences, Done: int(done.Load()), Total: len(dois)})
}

// assemble freezes the run state into the bundle.
func (o *Orchestrator) assemble(r *run) *Bundle {
	b := r.bundle

	b.Primary = Tables{
		Authors:      r.primaryAuthors.TopN(0),
		Institutions: r.primaryInstitutions.TopN(0),
		Countries:    r.primaryCountries.TopN(0),
	}
	b.Citing = Tables{
		Authors:      r.citingAuthors.TopN(0),
		Journals:     r.citingJournals.TopN(0),
		Institutions: r.citingInstitutions.TopN(0),
		Countries:    r.citingCountries.TopN(0),
	}
	b.References = refquality.Sum(r.refStats)

	total, self := 0, 0
	for _, row := range b.SelfCitations {
		row.SelfCitationRate = ratePercent(row.SelfCitations, row.TotalCitations)
		total += row.TotalCitations
		self += row.SelfCitations
	}

	s := &b.Summary
	s.DistinctAuthors = len(b.Primary.Authors)
	s.DistinctInstitutions = len(b.Primary.Institutions)
	s.DistinctCountries = len(b.Primary.Countries)
	s.DistinctCitingJournals = len(b.Citing.Journals)
	s.DistinctCitingInstitutions = len(b.Citing.Institutions)
	s.DistinctCitingCountries = len(b.Citing.Countries)
	s.ArticlesWithInstitutions = r.withInstitutions
	if r.withInstitutions > 0 {
		s.AvgInstitutionsPerArticle = round2(float64(r.institutionMentions) / float64(r.withInstitutions))
	}
	s.TotalCitations = total
	s.SelfCitations = self
	s.SelfCitationRate = ratePercent(self, total)

	b.PartialStages = nil
	for _, stage := range stageOrder {
		if r.partialStages[stage] {
			b.PartialStages = append(b.PartialStages, stage)
		}
	}
	b.Partial = len(b.PartialStages) > 0
	return b
}

// runJobs feeds n indexed jobs to a bounded worker pool and waits for
// them. Cancellation stops the feed; in-flight jobs run to completion.
func (o *Orchestrator) runJobs(ctx context.Context, n int, fn func(idx int)) {
	workers := o.workers
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				fn(idx)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

func (o *Orchestrator) emit(e Event) {
	if o.progress != nil {
		o.progress(e)
	}
}

// cachedResolver fronts the citation catalog with the run cache, keyed
// by normalized DOI.
type cachedResolver struct {
	source  OpenCatalogSource
	cache   cache.Works
	metrics *stats.Metrics
}

func (r *cachedResolver) ResolveDOI(ctx context.Context, d string) (catalog.Work, error) {
	key := doi.Normalize(d)
	if w, ok := r.cache.Get(key); ok {
		r.metrics.RecordCacheHit()
		return w, nil
	}
	r.metrics.RecordCacheMiss()
	w, err := r.source.ResolveDOI(ctx, key)
	if err != nil {
		return catalog.Work{}, err
	}
	r.cache.Add(key, w)
	return w, nil
}

// mergeUnique appends extra onto base, keeping first occurrences only.
func mergeUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, s := range base {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, s := range extra {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func ratePercent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(10000*float64(part)/float64(whole)) / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
