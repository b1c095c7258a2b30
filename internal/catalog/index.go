// Package catalog holds the in-memory index over the loaded corpus and
// the query service that answers all lookups. The corpus is immutable
// after Build, so everything here is safe for concurrent readers
// without locking.
package catalog

import (
	"strings"

	"tipdex/internal/domain"
)

// Index is the lookup structure built once over the loaded entries.
type Index struct {
	byID   map[int]domain.Entry
	order  []int            // load order
	byTag  map[string][]int // tag -> entry ids, insertion order
	tags   []string         // first-seen order
	search map[int]string   // id -> lowercased title+body
}

// Build constructs an Index from entries in load order. The loader
// guarantees unique ids, so Build cannot fail.
func Build(entries []domain.Entry) *Index {
	ix := &Index{
		byID:   make(map[int]domain.Entry, len(entries)),
		byTag:  make(map[string][]int),
		search: make(map[int]string, len(entries)),
	}

	for _, e := range entries {
		ix.byID[e.ID] = e
		ix.order = append(ix.order, e.ID)
		ix.search[e.ID] = strings.ToLower(e.Title + "\n" + e.Body)

		for _, tag := range e.Tags {
			if _, known := ix.byTag[tag]; !known {
				ix.tags = append(ix.tags, tag)
			}
			ix.byTag[tag] = append(ix.byTag[tag], e.ID)
		}
	}

	return ix
}

// Lookup returns the entries carrying the given tag, in load order.
// An unknown tag yields an empty result, not an error.
func (ix *Index) Lookup(tag string) []domain.Entry {
	ids := ix.byTag[strings.ToLower(strings.TrimSpace(tag))]
	entries := make([]domain.Entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, ix.byID[id])
	}
	return entries
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.order)
}
