package crossref

// Response envelopes for the works API. Only the fields the engine reads
// are declared.

type worksResponse struct {
	Status  string       `json:"status"`
	Message worksMessage `json:"message"`
}

type worksMessage struct {
	Items        []workItem `json:"items"`
	NextCursor   string     `json:"next-cursor"`
	TotalResults int        `json:"total-results"`
}

type workResponse struct {
	Status  string   `json:"status"`
	Message workItem `json:"message"`
}

type workItem struct {
	DOI            string          `json:"DOI"`
	Title          []string        `json:"title"`
	ContainerTitle []string        `json:"container-title"`
	ISSN           []string        `json:"ISSN"`
	Author         []authorItem    `json:"author"`
	Published      dateParts       `json:"published"`
	ReferencedBy   int             `json:"is-referenced-by-count"`
	Reference      []referenceItem `json:"reference"`
}

type authorItem struct {
	Given       string            `json:"given"`
	Family      string            `json:"family"`
	Affiliation []affiliationItem `json:"affiliation"`
}

type affiliationItem struct {
	Name string `json:"name"`
}

type referenceItem struct {
	Key string `json:"key"`
	DOI string `json:"DOI"`
}

// dateParts is the nested [[year, month, day]] date encoding.
type dateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// year returns the first date's year, or zero when absent.
func (d dateParts) year() int {
	if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
		return d.DateParts[0][0]
	}
	return 0
}
