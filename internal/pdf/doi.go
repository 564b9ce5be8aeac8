// Package pdf extracts DOIs from article PDFs.
package pdf

import (
	"regexp"
	"strings"

	idoi "github.com/jourq/jourq/internal/doi"
	"github.com/ledongthuc/pdf"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// maxSearchPages bounds the scan; the DOI is almost always on page one.
const maxSearchPages = 3

// ExtractDOI extracts a DOI from a PDF file.
// It searches the first few pages for DOI patterns. A PDF without a
// recognizable DOI yields an empty string, not an error.
func ExtractDOI(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	maxPages := maxSearchPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if d := FindDOI(text); d != "" {
			return d, nil
		}
	}

	return "", nil
}

// FindDOI returns the first valid DOI in text, empty when none matches.
func FindDOI(text string) string {
	matches := doiPattern.FindAllString(text, -1)
	for _, match := range matches {
		// Remove trailing punctuation picked up by the pattern
		match = strings.TrimRight(match, ".,;:)")
		if idoi.Valid(match) {
			return match
		}
	}
	return ""
}
