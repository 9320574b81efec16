package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"frontdesk/api/internal/media"
)

const supervisorTokenHeader = "X-Supervisor-Token"

type HTTPServer struct {
	service    *Service
	media      *media.Issuer
	corsOrigin string
}

func NewHTTPServer(service *Service, mediaIssuer *media.Issuer, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, media: mediaIssuer, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/" {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Frontdesk API is running"})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}

		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}

		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/login" {
		var body struct {
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		token, err := s.service.Login(r.Context(), body.Password)
		if err != nil {
			status, code, message := mapError(err)
			writeError(w, status, code, message)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":     token.Value,
			"expiresIn": int(token.ExpiresIn.Seconds()),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/logout" {
		s.service.Logout(r.Context(), supervisorToken(r))
		writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/ask" {
		var body struct {
			Question string `json:"question"`
			CallerID string `json:"callerId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		result, err := s.service.Ask(r.Context(), body.CallerID, body.Question)
		if err != nil {
			status, code, message := mapError(err)
			writeError(w, status, code, message)
			return
		}
		writeAskResult(w, result)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/user/login" {
		var body struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		name := body.Name
		if strings.TrimSpace(name) == "" {
			name = body.Email
		}
		userID, err := s.service.UserLogin(r.Context(), name)
		if err != nil {
			status, code, message := mapError(err)
			writeError(w, status, code, message)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"userId": userID,
			"name":   s.service.CallerName(userID),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/user/ask" {
		var body struct {
			UserID   string `json:"userId"`
			Question string `json:"question"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		result, err := s.service.UserAsk(r.Context(), body.UserID, body.Question)
		if err != nil {
			status, code, message := mapError(err)
			writeError(w, status, code, message)
			return
		}
		writeAskResult(w, result)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/livekit/token" {
		if s.media == nil || !s.media.Configured() {
			writeError(w, http.StatusServiceUnavailable, "MEDIA_UNAVAILABLE", "LiveKit is not configured")
			return
		}
		identity := strings.TrimSpace(r.URL.Query().Get("identity"))
		token, url, err := s.media.RoomToken(identity)
		if err != nil {
			if errors.Is(err, media.ErrIdentityRequired) {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "identity is required")
				return
			}
			writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Token generation failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "url": url})
		return
	}

	// Everything below is supervisor-only; the token is re-checked on
	// every request, never cached.
	if !s.requireSupervisor(w, r) {
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/requests" {
		writeJSON(w, http.StatusOK, map[string]any{
			"requests": s.service.Requests(r.Context()),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/respond" {
		var body struct {
			Question string `json:"question"`
			Answer   string `json:"answer"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
			return
		}
		req, err := s.service.Resolve(r.Context(), body.Question, body.Answer)
		if err != nil {
			status, code, message := mapError(err)
			writeError(w, status, code, message)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message":   "Resolved and saved to knowledge base.",
			"requestId": req.ID,
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/knowledge" {
		writeJSON(w, http.StatusOK, map[string]any{
			"entries": s.service.KnowledgeEntries(r.Context()),
		})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/knowledge/search" {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := 20
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "limit must be an integer")
				return
			}
			limit = parsed
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"results": s.service.Search(query, limit),
			"query":   query,
		})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
}

func (s *HTTPServer) requireSupervisor(w http.ResponseWriter, r *http.Request) bool {
	token := supervisorToken(r)
	if !s.service.Authorized(r.Context(), token) {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or missing supervisor token")
		return false
	}
	return true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, "+supervisorTokenHeader)
	header.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeAskResult(w http.ResponseWriter, result AskResult) {
	if result.Known {
		writeJSON(w, http.StatusOK, map[string]any{
			"known":  true,
			"answer": result.Answer,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"known":     false,
		"reply":     "Let me check with my supervisor and get back to you.",
		"requestId": result.Request.ID,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":  code,
		"error": message,
	})
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func supervisorToken(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(supervisorTokenHeader))
}

func mapError(err error) (status int, code, message string) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
}
