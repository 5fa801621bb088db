package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
	"github.com/mkarrio/deepsea-sim-go/internal/store"
)

// Server handles HTTP requests. Live sessions are kept in an in-memory
// registry; finished sessions are recorded to the store.
type Server struct {
	db     store.DB
	logger zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*sessionHandle
}

// sessionHandle serializes access to one session. The engine itself is
// single-threaded; the handle's lock is the only concurrency control a
// session needs.
type sessionHandle struct {
	mu       sync.Mutex
	session  *game.GameSession
	recorded bool
}

// NewServer creates a new API server
func NewServer(db store.DB, logger zerolog.Logger) *Server {
	return &Server{
		db:       db,
		logger:   logger,
		sessions: make(map[string]*sessionHandle),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoveryHandler)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/dives", s.handleStartDive)
			r.Post("/decisions", s.handleSubmitDecision)
			r.Get("/snapshot", s.handleSnapshot)
			r.Get("/result", s.handleDiveResult)
			r.Get("/standings", s.handleStandings)
		})
	})

	return r
}

// lookup fetches a live session handle by id.
func (s *Server) lookup(id string) (*sessionHandle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.sessions[id]
	return h, ok
}

// register adds a session to the registry.
func (s *Server) register(session *game.GameSession) *sessionHandle {
	h := &sessionHandle{session: session}
	s.mu.Lock()
	s.sessions[session.ID] = h
	s.mu.Unlock()
	return h
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeError writes a structured error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, errType, message string, context map[string]interface{}) {
	engineErr := EngineError{
		Type:      errType,
		Message:   message,
		Context:   context,
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	event := s.logger.Warn()
	if status >= 500 {
		event = s.logger.Error()
	}
	event.
		Str("type", errType).
		Str("category", string(GetErrorCategory(errType))).
		Int("status", status).
		Str("request_id", engineErr.RequestID).
		Str("path", r.URL.Path).
		Str("message", message).
		Msg("request_failed")

	w.Header().Set("X-Error-Type", errType)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(errType)))
	s.writeJSON(w, status, engineErr)
}

// recoveryHandler provides panic recovery with structured error logging
func (s *Server) recoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.logger.Error().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Interface("panic", rvr).
					Msg("panic_recovered")

				s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal,
					"Internal server error", map[string]interface{}{
						"panic": fmt.Sprintf("%v", rvr),
					})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
