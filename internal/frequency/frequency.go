// Package frequency provides thread-safe frequency tables with stable
// top-N selection: counts sort descending and ties keep first-encounter
// order.
package frequency

import (
	"sort"
	"sync"
)

// Entry is one labelled count.
type Entry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Table accumulates label counts. The zero value is not usable; use
// NewTable. All methods are safe for concurrent use.
type Table struct {
	mu     sync.Mutex
	counts map[string]int
	order  map[string]int
	next   int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		counts: make(map[string]int),
		order:  make(map[string]int),
	}
}

// Add counts one occurrence of label. Empty labels are ignored.
func (t *Table) Add(label string) {
	if label == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.add(label)
}

// AddAll counts one occurrence per element.
func (t *Table) AddAll(labels []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, label := range labels {
		if label == "" {
			continue
		}
		t.add(label)
	}
}

// AddUnique counts each distinct label in labels once, so a repeated
// label contributes one occurrence per call.
func (t *Table) AddUnique(labels []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		t.add(label)
	}
}

// add must be called with the lock held.
func (t *Table) add(label string) {
	if _, ok := t.counts[label]; !ok {
		t.order[label] = t.next
		t.next++
	}
	t.counts[label]++
}

// Len returns the number of distinct labels.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.counts)
}

// Total returns the sum of all counts.
func (t *Table) Total() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, c := range t.counts {
		total += c
	}
	return total
}

// TopN returns the n highest-count entries, counts descending and ties
// in first-encounter order. Non-positive n returns the whole table.
func (t *Table) TopN(n int) []Entry {
	t.mu.Lock()
	entries := make([]Entry, 0, len(t.counts))
	ranks := make(map[string]int, len(t.counts))
	for label, count := range t.counts {
		entries = append(entries, Entry{Label: label, Count: count})
		ranks[label] = t.order[label]
	}
	t.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return ranks[entries[i].Label] < ranks[entries[j].Label]
	})

	if n > 0 && n < len(entries) {
		entries = entries[:n]
	}
	return entries
}
