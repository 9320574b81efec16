package search

import "log"

// Service is the facade that tries Meilisearch first and falls back to a
// linear scan of the in-memory knowledge base.
type Service struct {
	meili    *Meili
	fallback Fallback
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, fallback Fallback) *Service {
	return &Service{meili: meili, fallback: fallback}
}

// Search tries Meilisearch if healthy, otherwise scans the knowledge base.
func (s *Service) Search(query string, limit int) []Result {
	if limit <= 0 {
		limit = defaultLimit
	}

	if s.meili != nil && s.meili.Healthy() {
		results, err := s.meili.Search(query, limit)
		if err == nil {
			return nonNil(results)
		}
		log.Printf("search: meilisearch error, falling back to scan: %v", err)
	}

	return nonNil(s.fallback.SearchKnowledge(query, limit))
}

// IndexEntry indexes a learned answer (fire-and-forget to Meilisearch).
func (s *Service) IndexEntry(question, answer string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexEntry(question, answer); err != nil {
			log.Printf("search: index entry: %v", err)
		}
	}()
}

// ReindexAll pushes the whole knowledge base to Meilisearch, called during
// startup so restored state is searchable.
func (s *Service) ReindexAll(entries []Result) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	if err := s.meili.IndexEntries(entries); err != nil {
		log.Printf("search: reindex knowledge: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
