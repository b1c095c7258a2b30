package catalog

import (
	"errors"
	"strings"

	"tipdex/internal/domain"
)

// ErrNotFound marks a lookup for an id that is not in the catalog.
// Callers recover locally; it is never fatal.
var ErrNotFound = errors.New("entry not found")

// TagCount pairs a tag with the number of entries carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Service answers all catalog queries. Pure reads over the Index.
type Service struct {
	ix *Index
}

func NewService(ix *Index) *Service {
	return &Service{ix: ix}
}

// ByID returns the entry with the given id, or ErrNotFound.
func (s *Service) ByID(id int) (domain.Entry, error) {
	e, ok := s.ix.byID[id]
	if !ok {
		return domain.Entry{}, ErrNotFound
	}
	return e, nil
}

// ByTag returns the entries tagged with tag, in load order.
func (s *Service) ByTag(tag string) []domain.Entry {
	return s.ix.Lookup(tag)
}

// Search returns entries whose title or body contains keyword,
// case-insensitively. The empty keyword matches everything.
func (s *Service) Search(keyword string) []domain.Entry {
	keyword = strings.ToLower(keyword)

	var entries []domain.Entry
	for _, id := range s.ix.order {
		if keyword == "" || strings.Contains(s.ix.search[id], keyword) {
			entries = append(entries, s.ix.byID[id])
		}
	}
	return entries
}

// All returns every entry in load order.
func (s *Service) All() []domain.Entry {
	return s.Search("")
}

// Tags lists every tag with its entry count, in first-seen order.
func (s *Service) Tags() []TagCount {
	counts := make([]TagCount, 0, len(s.ix.tags))
	for _, tag := range s.ix.tags {
		counts = append(counts, TagCount{Name: tag, Count: len(s.ix.byTag[tag])})
	}
	return counts
}

// Len returns the catalog size.
func (s *Service) Len() int {
	return s.ix.Len()
}
