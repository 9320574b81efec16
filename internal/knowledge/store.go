// Package knowledge holds the learned question/answer base the agent
// consults before escalating to a supervisor.
package knowledge

import (
	"sort"
	"strings"
)

// Entry is one learned answer, keyed by the normalized question.
type Entry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Store maps lowercase question text to its canonical answer. It only grows
// or overwrites; there is no delete. Store is not safe for concurrent use;
// the escalation service serializes access to it.
type Store struct {
	answers map[string]string
}

func NewStore() *Store {
	return &Store{answers: make(map[string]string)}
}

// NewStoreFrom seeds a store from a persisted mapping. Keys are
// re-normalized so hand-edited snapshots cannot smuggle in mixed-case keys.
func NewStoreFrom(answers map[string]string) *Store {
	s := NewStore()
	for question, answer := range answers {
		s.Upsert(question, answer)
	}
	return s
}

// Lookup returns the stored answer for a question, matching
// case-insensitively. It never mutates the store.
func (s *Store) Lookup(question string) (string, bool) {
	answer, ok := s.answers[normalize(question)]
	return answer, ok
}

// Upsert records an answer, overwriting any prior answer for the same
// normalized question (last write wins).
func (s *Store) Upsert(question, answer string) {
	s.answers[normalize(question)] = answer
}

// Len reports the number of learned entries.
func (s *Store) Len() int {
	return len(s.answers)
}

// Mapping returns a copy of the underlying mapping for persistence.
func (s *Store) Mapping() map[string]string {
	out := make(map[string]string, len(s.answers))
	for question, answer := range s.answers {
		out[question] = answer
	}
	return out
}

// Entries returns all learned entries sorted by question for a stable
// supervisor-facing listing.
func (s *Store) Entries() []Entry {
	entries := make([]Entry, 0, len(s.answers))
	for question, answer := range s.answers {
		entries = append(entries, Entry{Question: question, Answer: answer})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Question < entries[j].Question
	})
	return entries
}

func normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}
