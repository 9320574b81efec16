// Package search provides supervisor-facing search over the learned
// knowledge base, via Meilisearch when available with a linear-scan
// fallback.
package search

// Result is one knowledge entry matching a search query.
type Result struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Fallback answers queries directly from the in-memory knowledge base when
// Meilisearch is not configured or unreachable.
type Fallback interface {
	SearchKnowledge(query string, limit int) []Result
}

const defaultLimit = 20
