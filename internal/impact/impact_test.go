package impact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/citations"
)

type fakeLister struct {
	listing  *catalog.Listing
	err      error
	gotFrom  string
	gotUntil string
}

func (l *fakeLister) ListWorks(ctx context.Context, issn, from, until string) (*catalog.Listing, error) {
	l.gotFrom, l.gotUntil = from, until
	if l.err != nil {
		return nil, l.err
	}
	return l.listing, nil
}

type fakeResolver struct {
	mu    sync.Mutex
	works map[string]catalog.Work
	errs  map[string]error
}

func (r *fakeResolver) ResolveDOI(ctx context.Context, doi string) (catalog.Work, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.errs[doi]; ok {
		return catalog.Work{}, err
	}
	w, ok := r.works[doi]
	if !ok {
		return catalog.Work{}, catalog.ErrNotFound
	}
	return w, nil
}

type fakeCollector struct {
	mu       sync.Mutex
	counts   map[string]int
	partial  map[string]bool
	gotYears map[string]int
}

func (f *fakeCollector) Collect(ctx context.Context, workID string, targetYear int) (*citations.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gotYears == nil {
		f.gotYears = make(map[string]int)
	}
	f.gotYears[workID] = targetYear

	res := &citations.Result{Partial: f.partial[workID]}
	for i := 0; i < f.counts[workID]; i++ {
		res.Works = append(res.Works, catalog.Work{
			DOI:             fmt.Sprintf("10.9/%s-%d", workID, i),
			PublicationYear: targetYear,
		})
	}
	return res, nil
}

func testNow() time.Time {
	return time.Date(2025, time.August, 25, 12, 0, 0, 0, time.UTC)
}

func newTestCalculator(lister Lister, resolver Resolver, collector Collector, opts ...Option) *Calculator {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithNow(testNow),
		WithWorkers(2),
	}
	return New(lister, resolver, collector, append(base, opts...)...)
}

func TestWindowFor(t *testing.T) {
	w := WindowFor(testNow())

	if w.CitationYear != 2024 {
		t.Errorf("expected citation year 2024, got %d", w.CitationYear)
	}
	if w.PublicationYears != [2]int{2022, 2023} {
		t.Errorf("expected publication years [2022 2023], got %v", w.PublicationYears)
	}
	if !w.Contains(2022) || !w.Contains(2023) || w.Contains(2024) || w.Contains(2021) {
		t.Errorf("unexpected window membership")
	}
}

func TestCalculateZeroWithoutCitableItems(t *testing.T) {
	lister := &fakeLister{listing: &catalog.Listing{}}
	c := newTestCalculator(lister, &fakeResolver{}, &fakeCollector{})

	res, err := c.Calculate(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Value != 0.0 {
		t.Errorf("expected value 0.0, got %v", res.Value)
	}
	if res.CitableItems != 0 || res.Citations != 0 {
		t.Errorf("expected empty counts, got %d items, %d citations", res.CitableItems, res.Citations)
	}
	if lister.gotFrom != "2022-01-01" || lister.gotUntil != "2023-12-31" {
		t.Errorf("expected window dates 2022-01-01..2023-12-31, got %s..%s", lister.gotFrom, lister.gotUntil)
	}
}

func TestCalculateValue(t *testing.T) {
	// 10 citable works; 25 citations in the citation year across them.
	var works []catalog.Work
	resolver := &fakeResolver{works: map[string]catalog.Work{}}
	collector := &fakeCollector{counts: map[string]int{}}
	for i := 0; i < 10; i++ {
		year := 2022
		count := 2
		if i >= 5 {
			year = 2023
			count = 3
		}
		d := fmt.Sprintf("10.1/s%d", i)
		id := fmt.Sprintf("W%d", i)
		works = append(works, catalog.Work{DOI: d, PublicationYear: year})
		resolver.works[d] = catalog.Work{ID: id, DOI: d}
		collector.counts[id] = count
	}

	c := newTestCalculator(&fakeLister{listing: &catalog.Listing{Works: works}}, resolver, collector, WithWorkers(4))
	res, err := c.Calculate(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.CitableItems != 10 {
		t.Errorf("expected 10 citable items, got %d", res.CitableItems)
	}
	if res.Citations != 25 {
		t.Errorf("expected 25 citations, got %d", res.Citations)
	}
	if res.Value != 2.5 {
		t.Errorf("expected impact factor 2.5, got %v", res.Value)
	}
	if res.ByYear[2022] != 10 || res.ByYear[2023] != 15 {
		t.Errorf("expected per-year split 10/15, got %v", res.ByYear)
	}
	if res.Partial {
		t.Errorf("expected complete result")
	}
	for _, id := range []string{"W0", "W9"} {
		if collector.gotYears[id] != 2024 {
			t.Errorf("expected citation walks filtered to 2024, got %d for %s", collector.gotYears[id], id)
		}
	}
}

func TestCalculateFiltersWindowYears(t *testing.T) {
	lister := &fakeLister{listing: &catalog.Listing{Works: []catalog.Work{
		{DOI: "10.1/in", PublicationYear: 2022},
		{DOI: "10.1/early", PublicationYear: 2021},
		{DOI: "10.1/late", PublicationYear: 2024},
		{DOI: "10.1/unknown", PublicationYear: 0},
	}}}
	resolver := &fakeResolver{works: map[string]catalog.Work{
		"10.1/in": {ID: "W1", DOI: "10.1/in"},
	}}
	collector := &fakeCollector{counts: map[string]int{"W1": 4}}

	c := newTestCalculator(lister, resolver, collector)
	res, err := c.Calculate(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.CitableItems != 1 {
		t.Errorf("expected 1 citable item, got %d", res.CitableItems)
	}
	if res.Value != 4.0 {
		t.Errorf("expected value 4.0, got %v", res.Value)
	}
}

func TestCalculateCountsDOIlessInDenominator(t *testing.T) {
	lister := &fakeLister{listing: &catalog.Listing{Works: []catalog.Work{
		{DOI: "10.1/a", PublicationYear: 2023},
		{DOI: "", PublicationYear: 2023},
	}}}
	resolver := &fakeResolver{works: map[string]catalog.Work{
		"10.1/a": {ID: "W1", DOI: "10.1/a"},
	}}
	collector := &fakeCollector{counts: map[string]int{"W1": 3}}

	c := newTestCalculator(lister, resolver, collector)
	res, err := c.Calculate(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.CitableItems != 2 {
		t.Errorf("expected DOI-less work in denominator, got %d items", res.CitableItems)
	}
	if res.Value != 1.5 {
		t.Errorf("expected value 1.5, got %v", res.Value)
	}
	if len(res.PerSeed) != 1 {
		t.Errorf("expected 1 walked seed, got %d", len(res.PerSeed))
	}
}

func TestCalculateSeedFailures(t *testing.T) {
	lister := &fakeLister{listing: &catalog.Listing{Works: []catalog.Work{
		{DOI: "10.1/ok", PublicationYear: 2023},
		{DOI: "10.1/missing", PublicationYear: 2023},
		{DOI: "10.1/broken", PublicationYear: 2023},
	}}}
	resolver := &fakeResolver{
		works: map[string]catalog.Work{
			"10.1/ok": {ID: "W1", DOI: "10.1/ok"},
		},
		errs: map[string]error{
			"10.1/broken": &catalog.APIError{Catalog: "openalex", StatusCode: 500, Message: "HTTP 500"},
		},
	}
	collector := &fakeCollector{counts: map[string]int{"W1": 6}}

	c := newTestCalculator(lister, resolver, collector, WithWorkers(1))
	res, err := c.Calculate(context.Background(), "1234-5678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Citations != 6 {
		t.Errorf("expected 6 citations from the healthy seed, got %d", res.Citations)
	}
	if res.Value != 2.0 {
		t.Errorf("expected value 2.0, got %v", res.Value)
	}
	// A missing seed counts zero and stays complete; a failed one
	// degrades the result to partial.
	if !res.Partial {
		t.Errorf("expected partial result after a seed failure")
	}
}

func TestCalculateCancelledContext(t *testing.T) {
	lister := &fakeLister{listing: &catalog.Listing{Works: []catalog.Work{
		{DOI: "10.1/a", PublicationYear: 2023},
	}}}
	resolver := &fakeResolver{works: map[string]catalog.Work{
		"10.1/a": {ID: "W1", DOI: "10.1/a"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestCalculator(lister, resolver, &fakeCollector{counts: map[string]int{"W1": 2}})
	res, err := c.Calculate(ctx, "1234-5678")
	if err == nil {
		t.Fatalf("expected context error")
	}
	if res == nil || !res.Partial {
		t.Fatalf("expected partial result on cancellation, got %+v", res)
	}
}
