package search

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxKnowledge = "frontdesk_knowledge"

type knowledgeRecord struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Meili indexes and searches knowledge entries via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the knowledge index.
// An unreachable server is tolerated; a background loop keeps probing it.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{
		Uid:        idxKnowledge,
		PrimaryKey: "id",
	}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxKnowledge, err)
	}

	searchable := []string{"question", "answer"}
	if _, err := m.client.Index(idxKnowledge).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxKnowledge, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexEntry upserts one knowledge entry. The document id is derived from
// the question so re-answering the same question overwrites the old record.
func (m *Meili) IndexEntry(question, answer string) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	record := knowledgeRecord{
		ID:       recordID(question),
		Question: question,
		Answer:   answer,
	}
	if _, err := m.client.Index(idxKnowledge).AddDocuments([]knowledgeRecord{record}, nil); err != nil {
		return fmt.Errorf("index knowledge entry: %w", err)
	}
	return nil
}

// IndexEntries bulk-indexes knowledge entries, used on startup reindex.
func (m *Meili) IndexEntries(records []Result) error {
	if !m.healthy.Load() {
		return fmt.Errorf("meilisearch unhealthy")
	}
	docs := make([]knowledgeRecord, 0, len(records))
	for _, r := range records {
		docs = append(docs, knowledgeRecord{
			ID:       recordID(r.Question),
			Question: r.Question,
			Answer:   r.Answer,
		})
	}
	if len(docs) == 0 {
		return nil
	}
	if _, err := m.client.Index(idxKnowledge).AddDocuments(docs, nil); err != nil {
		return fmt.Errorf("index knowledge entries: %w", err)
	}
	return nil
}

// Search queries the knowledge index.
func (m *Meili) Search(query string, limit int) ([]Result, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	resp, err := m.client.Index(idxKnowledge).Search(query, &meili.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("search knowledge: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, Result{
			Question: decodeString(hit, "question"),
			Answer:   decodeString(hit, "answer"),
		})
	}
	return results, nil
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func recordID(question string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(question))))
	return hex.EncodeToString(sum[:])
}
