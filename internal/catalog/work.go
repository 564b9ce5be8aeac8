// Package catalog defines the normalized work model shared by the
// bibliographic source adapters, plus the error taxonomy they report
// through.
package catalog

// Author is one entry of a work's author list, reduced to the label parts
// the frequency tables aggregate on.
type Author struct {
	Surname string `json:"surname"`
	Initial string `json:"initial,omitempty"`
}

// Label renders the aggregation key, "Surname I.". Authors without a
// recorded initial render as the bare surname.
func (a Author) Label() string {
	if a.Initial == "" {
		return a.Surname
	}
	return a.Surname + " " + a.Initial + "."
}

// Work is one scholarly publication, normalized across catalogs.
// An empty DOI means the record carries no usable identifier; such
// records cannot be enriched and contribute only what they already hold.
type Work struct {
	DOI             string   `json:"doi,omitempty"`
	ID              string   `json:"id,omitempty"` // catalog-internal id, when known
	Title           string   `json:"title,omitempty"`
	PublicationYear int      `json:"publication_year,omitempty"`
	Authors         []Author `json:"authors,omitempty"`
	Institutions    []string `json:"institutions,omitempty"` // deduplicated per work
	Countries       []string `json:"countries,omitempty"`    // deduplicated per work
	JournalName     string   `json:"journal_name,omitempty"`
	JournalISSNs    []string `json:"journal_issns,omitempty"`
	CitedByCount    int      `json:"cited_by_count,omitempty"`
	ReferencedWorks []string `json:"referenced_works,omitempty"` // open-catalog reference ids
}

// AuthorLabels returns every author label in list order.
func (w *Work) AuthorLabels() []string {
	labels := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		labels = append(labels, a.Label())
	}
	return labels
}

// HasISSN reports whether issn appears in the work's resolved ISSN set.
func (w *Work) HasISSN(issn string) bool {
	for _, s := range w.JournalISSNs {
		if s == issn {
			return true
		}
	}
	return false
}

// CitationEdge is one citing-work → seed-work relation, produced while
// walking a seed's citing pages.
type CitationEdge struct {
	CitingDOI  string `json:"citing_doi"`
	CitingYear int    `json:"citing_year,omitempty"`
}

// Listing is the outcome of one publication-listing walk. Partial is set
// when a page fetch failed and the walk stopped early; the works gathered
// before the failure are always retained.
type Listing struct {
	Works   []Work `json:"works"`
	Pages   int    `json:"pages"`
	Partial bool   `json:"partial,omitempty"`
}

// ReferenceList is one work's reference-list DOI coverage as reported by
// the publication catalog.
type ReferenceList struct {
	Total      int `json:"total"`
	WithDOI    int `json:"with_doi"`
	WithoutDOI int `json:"without_doi"`
}
