package crossref

import (
	"github.com/jourq/jourq/internal/catalog"
	"github.com/jourq/jourq/internal/doi"
)

// toWork maps one message item onto the normalized model.
func (it workItem) toWork() catalog.Work {
	w := catalog.Work{
		DOI:             doi.Normalize(it.DOI),
		PublicationYear: it.Published.year(),
		CitedByCount:    it.ReferencedBy,
		JournalISSNs:    it.ISSN,
	}
	if len(it.Title) > 0 {
		w.Title = it.Title[0]
	}
	if len(it.ContainerTitle) > 0 {
		w.JournalName = it.ContainerTitle[0]
	}
	w.Authors = mapAuthors(it.Author)
	w.Institutions = uniqueAffiliations(it.Author)
	return w
}

// mapAuthors keeps only authors with a recorded family name; the initial
// comes from the first rune of the given name. Records without a family
// name contribute nothing to any aggregate.
func mapAuthors(items []authorItem) []catalog.Author {
	var authors []catalog.Author
	for _, a := range items {
		if a.Family == "" {
			continue
		}
		author := catalog.Author{Surname: a.Family}
		if a.Given != "" {
			author.Initial = string([]rune(a.Given)[0])
		}
		authors = append(authors, author)
	}
	return authors
}

// uniqueAffiliations collects affiliation names deduplicated across the
// whole author list, so an institution shared by co-authors counts once
// per work.
func uniqueAffiliations(items []authorItem) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range items {
		for _, aff := range a.Affiliation {
			if aff.Name == "" || seen[aff.Name] {
				continue
			}
			seen[aff.Name] = true
			names = append(names, aff.Name)
		}
	}
	return names
}
