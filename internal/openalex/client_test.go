package openalex

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/jourq/jourq/internal/catalog"
)

const testBaseURL = "https://openalex.test"

func newTestClient(t *testing.T, transport *httpmock.MockTransport, opts ...ClientOption) *Client {
	t.Helper()
	t.Setenv("JOURQ_MAILTO", "")
	base := []ClientOption{
		WithHTTPClient(&http.Client{Transport: transport}),
		WithBaseURL(testBaseURL),
		WithRateLimit(0),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewClient(append(base, opts...)...)
}

func TestResolveDOIMapsWork(t *testing.T) {
	body := `{
		"id": "https://openalex.org/W2741809807",
		"doi": "https://doi.org/10.1234/jq.001",
		"display_name": "Bibliometrics at Scale",
		"publication_year": 2022,
		"cited_by_count": 41,
		"authorships": [
			{"author": {"display_name": "Ada Lovelace"},
			 "institutions": [{"display_name": "Analytical Engine Institute", "country_code": "GB"}]},
			{"author": {"display_name": "Charles Babbage"},
			 "institutions": [{"display_name": "Analytical Engine Institute", "country_code": "GB"},
			                  {"display_name": "Royal Society", "country_code": "", "country": "United Kingdom"}]}
		],
		"primary_location": {"source": {"display_name": "Journal of Tests", "issn": ["1234-5678"], "issn_l": "1234-5678"}},
		"referenced_works": ["https://openalex.org/W1", "https://openalex.org/W2"]
	}`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/works/https://doi.org/10.1234/jq.001",
		httpmock.NewStringResponder(200, body))

	c := newTestClient(t, transport)
	w, err := c.ResolveDOI(context.Background(), "10.1234/jq.001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.ID != "W2741809807" {
		t.Errorf("expected bare work ID, got %q", w.ID)
	}
	if w.DOI != "10.1234/jq.001" {
		t.Errorf("expected normalized DOI, got %q", w.DOI)
	}
	if w.JournalName != "Journal of Tests" {
		t.Errorf("expected venue name, got %q", w.JournalName)
	}
	if len(w.JournalISSNs) != 1 || w.JournalISSNs[0] != "1234-5678" {
		t.Errorf("expected deduplicated ISSN set, got %v", w.JournalISSNs)
	}
	if len(w.Authors) != 2 || w.Authors[0].Label() != "Lovelace A." {
		t.Errorf("expected mapped authors, got %v", w.Authors)
	}
	if len(w.Institutions) != 2 {
		t.Errorf("expected 2 unique institutions, got %v", w.Institutions)
	}
	wantCountries := []string{"GB", "United Kingdom"}
	if len(w.Countries) != len(wantCountries) {
		t.Fatalf("expected countries %v, got %v", wantCountries, w.Countries)
	}
	for i := range wantCountries {
		if w.Countries[i] != wantCountries[i] {
			t.Errorf("country %d: expected %q, got %q", i, wantCountries[i], w.Countries[i])
		}
	}
	if len(w.ReferencedWorks) != 2 {
		t.Errorf("expected 2 referenced works, got %d", len(w.ReferencedWorks))
	}
}

func TestResolveDOIErrors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/works/https://doi.org/10.1234/missing",
		httpmock.NewStringResponder(404, "not found"))

	c := newTestClient(t, transport)

	if _, err := c.ResolveDOI(context.Background(), "10.1234/missing"); !catalog.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if _, err := c.ResolveDOI(context.Background(), ""); !catalog.IsNotFound(err) {
		t.Errorf("expected not-found for empty DOI, got %v", err)
	}
}

func TestCitingPageCursorWalk(t *testing.T) {
	page1 := `{"meta": {"count": 3, "next_cursor": "cp2"}, "results": [
		{"id": "https://openalex.org/W10", "doi": "https://doi.org/10.1/c1", "publication_year": 2023},
		{"id": "https://openalex.org/W11", "publication_year": 2023}
	]}`
	page2 := `{"meta": {"count": 3, "next_cursor": null}, "results": [
		{"id": "https://openalex.org/W12", "doi": "https://doi.org/10.1/c3", "publication_year": 2024}
	]}`

	var gotFilter, firstCursor string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/works",
		func(req *http.Request) (*http.Response, error) {
			cursor := req.URL.Query().Get("cursor")
			if cursor == "*" {
				gotFilter = req.URL.Query().Get("filter")
				firstCursor = cursor
				return httpmock.NewStringResponse(200, page1), nil
			}
			if cursor == "cp2" {
				return httpmock.NewStringResponse(200, page2), nil
			}
			return httpmock.NewStringResponse(500, "unexpected cursor"), nil
		})

	c := newTestClient(t, transport)

	// An empty cursor opens the walk.
	works, next, err := c.CitingPage(context.Background(), "W1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if firstCursor != "*" {
		t.Errorf("expected opening cursor *, got %q", firstCursor)
	}
	if gotFilter != "cites:W1" {
		t.Errorf("expected filter cites:W1, got %q", gotFilter)
	}
	if len(works) != 2 {
		t.Errorf("expected 2 works on first page, got %d", len(works))
	}
	if next != "cp2" {
		t.Fatalf("expected next cursor cp2, got %q", next)
	}

	works, next, err = c.CitingPage(context.Background(), "W1", next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(works) != 1 || works[0].ID != "W12" {
		t.Errorf("expected single work W12, got %v", works)
	}
	if next != "" {
		t.Errorf("expected exhausted cursor, got %q", next)
	}
}

func TestCitingPageError(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/works",
		httpmock.NewStringResponder(429, "slow down"))

	c := newTestClient(t, transport)
	if _, _, err := c.CitingPage(context.Background(), "W1", ""); !catalog.IsRateLimited(err) {
		t.Errorf("expected rate-limited error, got %v", err)
	}
}
