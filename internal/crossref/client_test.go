package crossref

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/jourq/jourq/internal/catalog"
)

const testBaseURL = "https://crossref.test/works"

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

func TestListWorksWalksCursorPages(t *testing.T) {
	page1 := `{"status":"ok","message":{"total-results":3,"next-cursor":"cur-2","items":[
		{"DOI":"10.1234/jq.001","title":["First"],"container-title":["Journal of Tests"],"ISSN":["1234-5678"],"published":{"date-parts":[[2022,3,1]]}},
		{"DOI":"10.1234/jq.002","title":["Second"],"published":{"date-parts":[[2022,7]]}}
	]}}`
	page2 := `{"status":"ok","message":{"total-results":3,"items":[
		{"DOI":"10.1234/jq.003","title":["Third"],"published":{"date-parts":[[2023,1,15]]}}
	]}}`

	var gotFilter string
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL,
		func(req *http.Request) (*http.Response, error) {
			cursor := req.URL.Query().Get("cursor")
			if cursor == "*" {
				gotFilter = req.URL.Query().Get("filter")
				return httpmock.NewStringResponse(200, page1), nil
			}
			if cursor == "cur-2" {
				return httpmock.NewStringResponse(200, page2), nil
			}
			return httpmock.NewStringResponse(500, "unexpected cursor"), nil
		})

	c := newTestClient(t, transport)
	listing, err := c.ListWorks(context.Background(), "1234-5678", "2022-01-01", "2023-12-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listing.Partial {
		t.Errorf("expected complete listing, got partial")
	}
	if listing.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", listing.Pages)
	}
	if len(listing.Works) != 3 {
		t.Fatalf("expected 3 works, got %d", len(listing.Works))
	}
	if listing.Works[0].DOI != "10.1234/jq.001" {
		t.Errorf("expected first DOI 10.1234/jq.001, got %q", listing.Works[0].DOI)
	}
	if listing.Works[2].PublicationYear != 2023 {
		t.Errorf("expected third work year 2023, got %d", listing.Works[2].PublicationYear)
	}

	wantFilter := "issn:1234-5678,from-pub-date:2022-01-01,until-pub-date:2023-12-31"
	if gotFilter != wantFilter {
		t.Errorf("expected filter %q, got %q", wantFilter, gotFilter)
	}
}

func TestListWorksStopsOnEmptyPage(t *testing.T) {
	page1 := `{"status":"ok","message":{"next-cursor":"cur-2","items":[
		{"DOI":"10.1234/jq.001","title":["Only"],"published":{"date-parts":[[2022]]}}
	]}}`
	// Terminal pages can still carry a cursor; emptiness ends the walk.
	page2 := `{"status":"ok","message":{"next-cursor":"cur-3","items":[]}}`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL,
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Query().Get("cursor") == "*" {
				return httpmock.NewStringResponse(200, page1), nil
			}
			return httpmock.NewStringResponse(200, page2), nil
		})

	c := newTestClient(t, transport)
	listing, err := c.ListWorks(context.Background(), "1234-5678", "2022-01-01", "2022-12-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(listing.Works) != 1 {
		t.Errorf("expected 1 work, got %d", len(listing.Works))
	}
	if listing.Pages != 2 {
		t.Errorf("expected 2 pages, got %d", listing.Pages)
	}
}

func TestListWorksKeepsPartialOnPageError(t *testing.T) {
	page1 := `{"status":"ok","message":{"next-cursor":"cur-2","items":[
		{"DOI":"10.1234/jq.001","published":{"date-parts":[[2022]]}},
		{"DOI":"10.1234/jq.002","published":{"date-parts":[[2022]]}}
	]}}`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL,
		func(req *http.Request) (*http.Response, error) {
			if req.URL.Query().Get("cursor") == "*" {
				return httpmock.NewStringResponse(200, page1), nil
			}
			return httpmock.NewStringResponse(500, "boom"), nil
		})

	c := newTestClient(t, transport)
	listing, err := c.ListWorks(context.Background(), "1234-5678", "2022-01-01", "2022-12-31")
	if err != nil {
		t.Fatalf("expected partial listing without error, got %v", err)
	}
	if !listing.Partial {
		t.Errorf("expected partial flag after page failure")
	}
	if len(listing.Works) != 2 {
		t.Errorf("expected 2 retained works, got %d", len(listing.Works))
	}
	if listing.Pages != 1 {
		t.Errorf("expected 1 completed page, got %d", listing.Pages)
	}
}

func TestListWorksCancelledContext(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL,
		httpmock.NewStringResponder(200, `{"status":"ok","message":{"items":[]}}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, transport)
	listing, err := c.ListWorks(ctx, "1234-5678", "2022-01-01", "2022-12-31")
	if err == nil {
		t.Fatalf("expected context error")
	}
	if !listing.Partial {
		t.Errorf("expected partial flag on cancellation")
	}
}

func TestGetWorkMapsItem(t *testing.T) {
	body := `{"status":"ok","message":{
		"DOI":"10.1234/jq.001",
		"title":["Bibliometrics at Scale"],
		"container-title":["Journal of Tests"],
		"ISSN":["1234-5678","8765-4321"],
		"author":[
			{"given":"Ada","family":"Lovelace","affiliation":[{"name":"Analytical Engine Institute"}]},
			{"given":"Charles","family":"Babbage","affiliation":[{"name":"Analytical Engine Institute"},{"name":"Royal Society"}]}
		],
		"published":{"date-parts":[[2022,3,1]]},
		"is-referenced-by-count":41
	}}`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/10.1234/jq.001",
		httpmock.NewStringResponder(200, body))

	c := newTestClient(t, transport)
	w, err := c.GetWork(context.Background(), "https://doi.org/10.1234/jq.001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if w.DOI != "10.1234/jq.001" {
		t.Errorf("expected normalized DOI, got %q", w.DOI)
	}
	if w.Title != "Bibliometrics at Scale" {
		t.Errorf("expected title from first element, got %q", w.Title)
	}
	if w.JournalName != "Journal of Tests" {
		t.Errorf("expected journal name %q, got %q", "Journal of Tests", w.JournalName)
	}
	if len(w.JournalISSNs) != 2 {
		t.Errorf("expected 2 ISSNs, got %v", w.JournalISSNs)
	}
	if w.PublicationYear != 2022 {
		t.Errorf("expected year 2022, got %d", w.PublicationYear)
	}
	if w.CitedByCount != 41 {
		t.Errorf("expected cited-by 41, got %d", w.CitedByCount)
	}
	if len(w.Authors) != 2 || w.Authors[0].Label() != "Lovelace A." {
		t.Errorf("expected authors with short labels, got %v", w.Authors)
	}
	want := []string{"Analytical Engine Institute", "Royal Society"}
	if len(w.Institutions) != len(want) {
		t.Fatalf("expected %d unique institutions, got %v", len(want), w.Institutions)
	}
	for i, name := range want {
		if w.Institutions[i] != name {
			t.Errorf("institution %d: expected %q, got %q", i, name, w.Institutions[i])
		}
	}
}

func TestGetWorkErrors(t *testing.T) {
	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/10.1234/missing",
		httpmock.NewStringResponder(404, "not found"))
	transport.RegisterResponder("GET", testBaseURL+"/10.1234/throttled",
		httpmock.NewStringResponder(429, "slow down"))

	c := newTestClient(t, transport)

	if _, err := c.GetWork(context.Background(), "10.1234/missing"); !catalog.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
	if _, err := c.GetWork(context.Background(), "10.1234/throttled"); !catalog.IsRateLimited(err) {
		t.Errorf("expected rate-limited error, got %v", err)
	}
	if _, err := c.GetWork(context.Background(), ""); !catalog.IsNotFound(err) {
		t.Errorf("expected not-found for empty DOI, got %v", err)
	}
}

func TestReferencesTally(t *testing.T) {
	body := `{"status":"ok","message":{
		"DOI":"10.1234/jq.001",
		"reference":[
			{"key":"r1","DOI":"10.1/a"},
			{"key":"r2"},
			{"key":"r3","DOI":"10.1/b"},
			{"key":"r4","DOI":"10.1/c"},
			{"key":"r5"}
		]
	}}`

	transport := httpmock.NewMockTransport()
	transport.RegisterResponder("GET", testBaseURL+"/10.1234/jq.001",
		httpmock.NewStringResponder(200, body))

	c := newTestClient(t, transport)
	list, err := c.References(context.Background(), "10.1234/jq.001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if list.Total != 5 || list.WithDOI != 3 || list.WithoutDOI != 2 {
		t.Errorf("expected tally (5,3,2), got (%d,%d,%d)", list.Total, list.WithDOI, list.WithoutDOI)
	}
}
