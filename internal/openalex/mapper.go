package openalex

import (
	"strings"

	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/doi"
)

const idPrefix = "https://openalex.org/"

// toWork maps one result onto the normalized model.
func (w workJSON) toWork() catalog.Work {
	rawDOI := w.DOI
	if rawDOI == "" {
		rawDOI = w.IDs.DOI
	}

	out := catalog.Work{
		ID:              strings.TrimPrefix(w.ID, idPrefix),
		DOI:             doi.Normalize(rawDOI),
		Title:           w.DisplayName,
		PublicationYear: w.PublicationYear,
		CitedByCount:    w.CitedByCount,
		ReferencedWorks: w.ReferencedWorks,
	}
	out.JournalName = w.venueName()
	out.JournalISSNs = w.venueISSNs()
	out.Authors = mapAuthorships(w.Authorships)
	out.Institutions, out.Countries = uniqueInstitutions(w.Authorships)
	return out
}

// venueName resolves the publishing venue's display name, preferring the
// primary location's source over the legacy host venue.
func (w workJSON) venueName() string {
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil && w.PrimaryLocation.Source.DisplayName != "" {
		return w.PrimaryLocation.Source.DisplayName
	}
	if w.HostVenue != nil {
		return w.HostVenue.DisplayName
	}
	return ""
}

// venueISSNs resolves the venue's ISSN set along the same chain. The name
// and ISSN chains are independent: a primary source with a name but no
// ISSNs still falls through to the host venue for ISSNs.
func (w workJSON) venueISSNs() []string {
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		if issns := w.PrimaryLocation.Source.issnSet(); len(issns) > 0 {
			return issns
		}
	}
	return w.HostVenue.issnSet()
}

// mapAuthorships converts author display names into surname-plus-initial
// records. Single-token names are kept as bare surnames.
func mapAuthorships(authorships []authorship) []catalog.Author {
	var authors []catalog.Author
	for _, as := range authorships {
		if a, ok := authorFromDisplayName(as.Author.DisplayName); ok {
			authors = append(authors, a)
		}
	}
	return authors
}

// authorFromDisplayName splits a display name into surname and first
// initial. The last whitespace-separated token is the surname; the
// initial is the first rune of the first token.
func authorFromDisplayName(name string) (catalog.Author, bool) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return catalog.Author{}, false
	}
	if len(parts) == 1 {
		return catalog.Author{Surname: parts[0]}, true
	}
	return catalog.Author{
		Surname: parts[len(parts)-1],
		Initial: string([]rune(parts[0])[0]),
	}, true
}

// uniqueInstitutions collects institution names and countries across all
// authorships, deduplicated per work so shared affiliations count once.
// The country falls back to the spelled-out name when the code is absent.
func uniqueInstitutions(authorships []authorship) (institutions, countries []string) {
	seenInst := make(map[string]bool)
	seenCountry := make(map[string]bool)
	for _, as := range authorships {
		for _, inst := range as.Institutions {
			if name := inst.DisplayName; name != "" && !seenInst[name] {
				seenInst[name] = true
				institutions = append(institutions, name)
			}
			country := inst.CountryCode
			if country == "" {
				country = inst.Country
			}
			if country != "" && !seenCountry[country] {
				seenCountry[country] = true
				countries = append(countries, country)
			}
		}
	}
	return institutions, countries
}
