// Package ledger tracks help requests escalated to a human supervisor and
// their pending/resolved lifecycle.
package ledger

import (
	"sort"
	"strings"
	"time"
)

// Status is the lifecycle state of a help request. The only transition is
// pending to resolved, exactly once per request.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// HelpRequest is one escalated question. IDs are assigned at creation,
// monotonically increasing, and never reused.
type HelpRequest struct {
	ID         int64      `json:"id"`
	CallerID   string     `json:"caller_id"`
	Question   string     `json:"question"`
	Status     Status     `json:"status"`
	Answer     string     `json:"answer,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Ledger is an append-only-by-id collection of help requests. Entries are
// never removed; resolution mutates an entry in place. Not safe for
// concurrent use; the escalation service serializes access.
type Ledger struct {
	entries []HelpRequest
	nextID  int64
	now     func() time.Time
}

func New() *Ledger {
	return NewFrom(nil)
}

// NewFrom restores a ledger from persisted entries. The id counter starts at
// len(entries)+1 so fresh ids never collide with restored ones.
func NewFrom(entries []HelpRequest) *Ledger {
	restored := make([]HelpRequest, len(entries))
	copy(restored, entries)
	return &Ledger{
		entries: restored,
		nextID:  int64(len(restored)) + 1,
		now:     time.Now,
	}
}

// Create appends a new pending request for the trimmed question and returns
// it. Duplicate pending entries for the same question text are allowed; each
// ask gets its own entry.
func (l *Ledger) Create(callerID, question string) HelpRequest {
	req := HelpRequest{
		ID:        l.nextID,
		CallerID:  callerID,
		Question:  strings.TrimSpace(question),
		Status:    StatusPending,
		CreatedAt: l.now(),
	}
	l.nextID++
	l.entries = append(l.entries, req)
	return req
}

// Len reports the number of entries, pending and resolved.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Entries returns all entries in storage order for persistence.
func (l *Ledger) Entries() []HelpRequest {
	out := make([]HelpRequest, len(l.entries))
	copy(out, l.entries)
	return out
}

// ListNewestFirst returns every entry, pending and resolved, ordered by
// creation time descending. The supervisor view surfaces newest activity
// first; it does not filter by status.
func (l *Ledger) ListNewestFirst() []HelpRequest {
	out := l.Entries()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ResolveFirstPending scans entries in storage order for the first pending
// entry whose question matches exactly (case-sensitive) and marks it
// resolved with the given answer. Later duplicates stay pending until
// separately matched. Returns false when nothing matches.
func (l *Ledger) ResolveFirstPending(question, answer string) (HelpRequest, bool) {
	for i := range l.entries {
		if l.entries[i].Question != question || l.entries[i].Status != StatusPending {
			continue
		}
		resolvedAt := l.now()
		l.entries[i].Status = StatusResolved
		l.entries[i].Answer = answer
		l.entries[i].ResolvedAt = &resolvedAt
		return l.entries[i], true
	}
	return HelpRequest{}, false
}
