// Package search provides fuzzy lookup over the loaded catalog.
package search

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/drake/gamevault/internal/domain"
)

// Service indexes the current snapshot's items by lowercase name for
// case-insensitive fuzzy matching.
type Service struct {
	logger *slog.Logger

	mu    sync.RWMutex
	items map[string]domain.ItemSummary // lowercase name -> item
}

// New creates an empty search service.
func New(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		items:  make(map[string]domain.ItemSummary),
	}
}

// Index replaces the search index with the given items.
func (s *Service) Index(items []domain.ItemSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]domain.ItemSummary, len(items))
	for _, item := range items {
		s.items[strings.ToLower(item.Name)] = item
	}
	s.logger.Debug("indexed items", "count", len(s.items))
}

// Search returns items fuzzy-matching query, best matches first.
func (s *Service) Search(query string) []domain.ItemSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.items))
	for name := range s.items {
		names = append(names, name)
	}

	matches := fuzzy.RankFindFold(query, names)
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Target < matches[j].Target
	})

	results := make([]domain.ItemSummary, 0, len(matches))
	for _, m := range matches {
		if item, ok := s.items[m.Target]; ok {
			results = append(results, item)
		}
	}
	return results
}

// Clear empties the index.
func (s *Service) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]domain.ItemSummary)
}

// Len returns the number of indexed items.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
