package selfcite

import (
	"testing"

	"github.com/jourq/jourq/internal/catalog"
)

func TestClassify(t *testing.T) {
	d := New("1234-5678", "Journal of Tests")

	tests := []struct {
		name   string
		citing catalog.Work
		want   Method
	}{
		{
			name:   "issn match",
			citing: catalog.Work{JournalName: "Unrelated Venue", JournalISSNs: []string{"0000-0000", "1234-5678"}},
			want:   MethodISSN,
		},
		{
			name:   "issn tier wins over name tier",
			citing: catalog.Work{JournalName: "Journal of Tests", JournalISSNs: []string{"1234-5678"}},
			want:   MethodISSN,
		},
		{
			name:   "name containment",
			citing: catalog.Work{JournalName: "The Journal of Tests Archive"},
			want:   MethodName,
		},
		{
			name:   "name match is case-insensitive",
			citing: catalog.Work{JournalName: "JOURNAL OF TESTS"},
			want:   MethodName,
		},
		{
			name:   "no match",
			citing: catalog.Work{JournalName: "Annals of Other Work", JournalISSNs: []string{"9999-9999"}},
			want:   MethodNone,
		},
		{
			name:   "venueless work",
			citing: catalog.Work{},
			want:   MethodNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Classify(tt.citing); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestClassifyWithoutTargetName(t *testing.T) {
	d := New("1234-5678", "")

	w := catalog.Work{JournalName: "Journal of Tests"}
	if got := d.Classify(w); got != MethodNone {
		t.Errorf("expected no name tier without a target name, got %q", got)
	}

	w = catalog.Work{JournalISSNs: []string{"1234-5678"}}
	if !d.IsSelf(w) {
		t.Errorf("expected ISSN tier to still apply")
	}
}

func TestIsSelf(t *testing.T) {
	d := New("1234-5678", "Journal of Tests")

	if !d.IsSelf(catalog.Work{JournalISSNs: []string{"1234-5678"}}) {
		t.Errorf("expected self-citation via ISSN")
	}
	if d.IsSelf(catalog.Work{JournalName: "Annals of Other Work"}) {
		t.Errorf("expected non-self classification")
	}
}
