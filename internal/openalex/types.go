package openalex

import "encoding/json"

// Response envelopes for the works API. Only the fields the engine reads
// are declared.

type listResponse struct {
	Meta    meta       `json:"meta"`
	Results []workJSON `json:"results"`
}

type meta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

type workJSON struct {
	ID              string       `json:"id"`
	DOI             string       `json:"doi"`
	DisplayName     string       `json:"display_name"`
	PublicationYear int          `json:"publication_year"`
	CitedByCount    int          `json:"cited_by_count"`
	IDs             idsJSON      `json:"ids"`
	Authorships     []authorship `json:"authorships"`
	PrimaryLocation *location    `json:"primary_location"`
	HostVenue       *venue       `json:"host_venue"`
	ReferencedWorks []string     `json:"referenced_works"`
}

type idsJSON struct {
	DOI string `json:"doi"`
}

type authorship struct {
	Author       authorJSON        `json:"author"`
	Institutions []institutionJSON `json:"institutions"`
}

type authorJSON struct {
	DisplayName string `json:"display_name"`
}

type institutionJSON struct {
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
}

type location struct {
	Source *venue `json:"source"`
}

type venue struct {
	DisplayName string   `json:"display_name"`
	ISSN        issnList `json:"issn"`
	ISSNL       string   `json:"issn_l"`
}

// issnSet merges the venue's ISSN list with its linking ISSN, deduplicated
// in encounter order.
func (v *venue) issnSet() []string {
	if v == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, issn := range v.ISSN {
		if issn == "" || seen[issn] {
			continue
		}
		seen[issn] = true
		out = append(out, issn)
	}
	if v.ISSNL != "" && !seen[v.ISSNL] {
		out = append(out, v.ISSNL)
	}
	return out
}

// issnList tolerates both encodings the API emits for venue ISSNs: a
// plain string and an array of strings.
type issnList []string

func (l *issnList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one != "" {
		*l = issnList{one}
	}
	return nil
}
