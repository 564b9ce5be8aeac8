// Package selfcite classifies citing works as journal self-citations.
package selfcite

import (
	"strings"

	"github.com/jourq/jourq/internal/catalog"
)

// Method identifies which tier classified a citing work.
type Method string

const (
	// MethodISSN means the target ISSN appeared in the citing venue's
	// ISSN set.
	MethodISSN Method = "issn"
	// MethodName means the target journal name was contained in the
	// citing venue's name.
	MethodName Method = "name"
	// MethodNone means the citing work is not a self-citation.
	MethodNone Method = "none"
)

// Detector classifies citing works against a target journal. The ISSN
// tier is authoritative; the name tier is consulted only when the ISSN
// tier does not match.
type Detector struct {
	targetISSN string
	targetName string
}

// New creates a detector for the target journal. Name matching is
// case-insensitive.
func New(issn, name string) *Detector {
	return &Detector{
		targetISSN: strings.TrimSpace(issn),
		targetName: strings.ToLower(strings.TrimSpace(name)),
	}
}

// Classify reports which tier, if any, marks the citing work as a
// self-citation of the target journal.
func (d *Detector) Classify(citing catalog.Work) Method {
	if d.targetISSN != "" {
		for _, issn := range citing.JournalISSNs {
			if issn == d.targetISSN {
				return MethodISSN
			}
		}
	}
	if d.targetName != "" && citing.JournalName != "" {
		if strings.Contains(strings.ToLower(citing.JournalName), d.targetName) {
			return MethodName
		}
	}
	return MethodNone
}

// IsSelf reports whether the citing work is a self-citation.
func (d *Detector) IsSelf(citing catalog.Work) bool {
	return d.Classify(citing) != MethodNone
}
