package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"frontdesk/api/internal/config"
	"frontdesk/api/internal/knowledge"
	"frontdesk/api/internal/ledger"
	"frontdesk/api/internal/search"
	"frontdesk/api/internal/session"
	"frontdesk/api/internal/store"
	"frontdesk/api/internal/util"
)

// AskResult is the outcome of a caller question: either a known answer or
// an escalation to the supervisor queue.
type AskResult struct {
	Known   bool
	Answer  string
	Request ledger.HelpRequest
}

// Service orchestrates ask and resolve against the knowledge base and the
// help request ledger. All reads and mutations of that state, together with
// the snapshot save that follows a mutation, run under one mutex so the
// read-modify-write-persist sequence is atomic with respect to other
// callers.
type Service struct {
	cfg     config.Config
	guard   *session.Guard
	gateway store.Gateway
	search  *search.Service

	mu        sync.Mutex
	knowledge *knowledge.Store
	ledger    *ledger.Ledger

	userMu       sync.Mutex
	userSessions map[string]string
}

// New restores state from the persistence gateway and builds the service.
// A gateway read error is logged and recovered with empty state; startup
// never fails on a bad snapshot. meili may be nil; knowledge search then
// runs on the in-memory fallback scan.
func New(ctx context.Context, cfg config.Config, guard *session.Guard, gateway store.Gateway, meili *search.Meili) *Service {
	snapshot, err := gateway.Load(ctx)
	if err != nil {
		log.Printf("app: snapshot load failed, starting empty: %v", err)
		snapshot = store.Empty()
	}

	s := &Service{
		cfg:          cfg,
		guard:        guard,
		gateway:      gateway,
		knowledge:    knowledge.NewStoreFrom(snapshot.Knowledge),
		ledger:       ledger.NewFrom(snapshot.Requests),
		userSessions: make(map[string]string),
	}
	s.search = search.NewService(meili, s)
	s.search.ReindexAll(s.knowledgeResults())
	return s
}

// Ask answers a caller question from the knowledge base, or escalates it as
// a new pending help request. Every miss creates its own entry; pending
// duplicates for the same question text are allowed.
func (s *Service) Ask(ctx context.Context, callerID, question string) (AskResult, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return AskResult{}, errInvalidInput("question is required")
	}
	if callerID == "" {
		callerID = "anonymous"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if answer, ok := s.knowledge.Lookup(q); ok {
		log.Printf("app: known answer for caller %s", callerID)
		return AskResult{Known: true, Answer: answer}, nil
	}

	req := s.ledger.Create(callerID, q)
	if err := s.gateway.Save(ctx, s.snapshotLocked()); err != nil {
		// In-memory state stays ahead of disk; the next successful
		// save catches it up.
		return AskResult{}, fmt.Errorf("persist escalation: %w", err)
	}

	log.Printf("app: supervisor alert: need help answering %q (request %d)", q, req.ID)
	return AskResult{Request: req}, nil
}

// Resolve marks the first pending request matching the question (exact,
// case-sensitive) as resolved, learns the answer, and persists. A miss
// mutates nothing and saves nothing.
func (s *Service) Resolve(ctx context.Context, question, answer string) (ledger.HelpRequest, error) {
	if strings.TrimSpace(answer) == "" {
		return ledger.HelpRequest{}, errInvalidInput("answer is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.ledger.ResolveFirstPending(question, answer)
	if !ok {
		return ledger.HelpRequest{}, errNotFound("no pending request found")
	}

	s.knowledge.Upsert(req.Question, answer)
	if err := s.gateway.Save(ctx, s.snapshotLocked()); err != nil {
		return ledger.HelpRequest{}, fmt.Errorf("persist resolution: %w", err)
	}

	s.search.IndexEntry(req.Question, answer)
	log.Printf("app: resolved request %d", req.ID)
	return req, nil
}

// Requests returns every help request, newest first, for the supervisor
// view.
func (s *Service) Requests(ctx context.Context) []ledger.HelpRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ListNewestFirst()
}

// KnowledgeEntries lists all learned answers for the supervisor view.
func (s *Service) KnowledgeEntries(ctx context.Context) []knowledge.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knowledge.Entries()
}

// Search answers a supervisor knowledge query through the search facade.
func (s *Service) Search(query string, limit int) []search.Result {
	return s.search.Search(query, limit)
}

// SearchKnowledge is the linear-scan fallback behind the search facade: a
// case-insensitive substring match over questions and answers.
func (s *Service) SearchKnowledge(query string, limit int) []search.Result {
	needle := strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]search.Result, 0, limit)
	for _, entry := range s.knowledge.Entries() {
		if needle != "" &&
			!strings.Contains(entry.Question, needle) &&
			!strings.Contains(strings.ToLower(entry.Answer), needle) {
			continue
		}
		results = append(results, search.Result{Question: entry.Question, Answer: entry.Answer})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// Login authenticates the supervisor password and mints a session token.
func (s *Service) Login(ctx context.Context, password string) (session.Token, error) {
	token, err := s.guard.Authenticate(ctx, password)
	if errors.Is(err, session.ErrPasswordRequired) {
		return session.Token{}, errInvalidInput("password required")
	}
	if errors.Is(err, session.ErrInvalidPassword) {
		return session.Token{}, errUnauthorized("invalid password")
	}
	if err != nil {
		return session.Token{}, err
	}
	return token, nil
}

// Logout invalidates a supervisor token; unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, token string) {
	s.guard.Invalidate(ctx, token)
}

// Authorized checks a supervisor token immediately before a gated
// operation. Results are never cached across calls.
func (s *Service) Authorized(ctx context.Context, token string) bool {
	return s.guard.Validate(ctx, token)
}

// UserLogin registers a named caller session and returns its id. Sessions
// are in-memory only; they exist so escalations can carry a display name.
func (s *Service) UserLogin(ctx context.Context, name string) (string, error) {
	display := strings.TrimSpace(name)
	if display == "" {
		return "", errInvalidInput("name or email required")
	}

	userID := util.NewID("usr")
	s.userMu.Lock()
	s.userSessions[userID] = display
	s.userMu.Unlock()
	return userID, nil
}

// CallerName resolves a caller session id to its display name, or "guest"
// for unknown ids.
func (s *Service) CallerName(userID string) string {
	s.userMu.Lock()
	defer s.userMu.Unlock()
	if name, ok := s.userSessions[userID]; ok {
		return name
	}
	return "guest"
}

// UserAsk is Ask on behalf of a registered caller session.
func (s *Service) UserAsk(ctx context.Context, userID, question string) (AskResult, error) {
	callerID := userID
	if callerID == "" {
		callerID = "guest"
	}
	result, err := s.Ask(ctx, callerID, question)
	if err == nil && !result.Known {
		log.Printf("app: new question from user %s", s.CallerName(userID))
	}
	return result, err
}

// Ping reports whether the persistence gateway is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.gateway.Ping(ctx)
}

func (s *Service) snapshotLocked() store.Snapshot {
	return store.Snapshot{
		Requests:  s.ledger.Entries(),
		Knowledge: s.knowledge.Mapping(),
	}
}

func (s *Service) knowledgeResults() []search.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.knowledge.Entries()
	results := make([]search.Result, 0, len(entries))
	for _, entry := range entries {
		results = append(results, search.Result{Question: entry.Question, Answer: entry.Answer})
	}
	return results
}
