package analyze

import (
	"sort"
	"time"

	"github.com/jourq/jourq/internal/frequency"
	"github.com/jourq/jourq/internal/impact"
	"github.com/jourq/jourq/internal/period"
	"github.com/jourq/jourq/internal/refquality"
)

// Display depths for ranked tables. The bundle itself carries the full
// ranked tables; renderers and exports trim to these. TopCiting also
// covers the primary country table.
const (
	TopPrimary = 50
	TopCiting  = 20
)

// YearCitations is one self-citation table row, keyed by the cited
// work's publication year.
type YearCitations struct {
	// TotalCitations counts citing works with a resolvable venue name.
	TotalCitations int `json:"total_citations"`
	// SelfCitations counts the subset classified as self-citations.
	SelfCitations int `json:"self_citations"`
	// CitationsInTargetYear counts citations received in the impact
	// window's citation year by works published this year.
	CitationsInTargetYear int `json:"citations_in_target_year"`
	// SelfCitationRate is SelfCitations over TotalCitations, as a
	// percentage rounded to two decimals.
	SelfCitationRate float64 `json:"self_citation_rate"`
}

// Tables groups the ranked frequency tables for one corpus. Counts sort
// descending with ties in first-encounter order; no table is truncated
// here.
type Tables struct {
	Authors      []frequency.Entry `json:"authors,omitempty"`
	Journals     []frequency.Entry `json:"journals,omitempty"`
	Institutions []frequency.Entry `json:"institutions,omitempty"`
	Countries    []frequency.Entry `json:"countries,omitempty"`
}

// Summary carries the headline counts of one run.
type Summary struct {
	ArticlesAnalyzed           int     `json:"articles_analyzed"`
	ArticlesWithDOI            int     `json:"articles_with_doi"`
	ArticlesWithInstitutions   int     `json:"articles_with_institutions"`
	AvgInstitutionsPerArticle  float64 `json:"avg_institutions_per_article"`
	DistinctAuthors            int     `json:"distinct_authors"`
	DistinctInstitutions       int     `json:"distinct_institutions"`
	DistinctCountries          int     `json:"distinct_countries"`
	DistinctCitingJournals     int     `json:"distinct_citing_journals"`
	DistinctCitingInstitutions int     `json:"distinct_citing_institutions"`
	DistinctCitingCountries    int     `json:"distinct_citing_countries"`
	TotalCitations             int     `json:"total_citations"`
	SelfCitations              int     `json:"self_citations"`
	SelfCitationRate           float64 `json:"self_citation_rate"`
}

// Bundle is the complete outcome of one analysis run.
type Bundle struct {
	ISSN          string                 `json:"issn"`
	JournalName   string                 `json:"journal_name,omitempty"`
	Period        period.Period          `json:"period"`
	GeneratedAt   time.Time              `json:"generated_at"`
	ImpactFactor  *impact.Result         `json:"impact_factor,omitempty"`
	SelfCitations map[int]*YearCitations `json:"self_citations"`
	Primary       Tables                 `json:"primary"`
	Citing        Tables                 `json:"citing"`
	References    refquality.Aggregate   `json:"references"`
	Summary       Summary                `json:"summary"`
	Partial       bool                   `json:"partial,omitempty"`
	PartialStages []Stage                `json:"partial_stages,omitempty"`
}

// Years returns the self-citation table's years in ascending order.
func (b *Bundle) Years() []int {
	years := make([]int, 0, len(b.SelfCitations))
	for y := range b.SelfCitations {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
