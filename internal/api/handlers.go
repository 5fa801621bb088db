package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkarrio/deepsea-sim-go/internal/game"
	"github.com/mkarrio/deepsea-sim-go/internal/store"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		EngineVersion: EngineVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCreateSession creates a session and registers it.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"invalid request body", map[string]interface{}{"cause": err.Error()})
		return
	}

	cfg := game.SessionConfig{
		Players:   req.Players,
		OxygenMax: req.OxygenMax,
		Rounds:    req.Rounds,
		Seed:      req.Seed,
	}
	if cfg.OxygenMax == 0 {
		cfg.OxygenMax = game.DefaultOxygen
	}
	if cfg.Rounds == 0 {
		cfg.Rounds = game.DefaultRounds
	}

	session, err := game.NewSession(cfg)
	if err != nil {
		s.handleGameError(w, r, err)
		return
	}
	s.register(session)

	divers := make([]DiverInfo, 0, len(session.Divers()))
	for _, d := range session.Divers() {
		divers = append(divers, DiverInfo{ID: d.ID, Name: d.Name})
	}

	s.logger.Info().
		Str("session_id", session.ID).
		Int("players", len(divers)).
		Uint64("seed", session.Config().Seed).
		Msg("session_created")

	s.writeJSON(w, http.StatusCreated, SessionResponse{
		SessionID:     session.ID,
		Config:        session.Config(),
		Divers:        divers,
		EngineVersion: EngineVersion,
	})
}

// handleStartDive starts the next round's dive.
func (s *Server) handleStartDive(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		s.writeSessionNotFound(w, r)
		return
	}

	var req StartDiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"invalid request body", map[string]interface{}{"cause": err.Error()})
		return
	}

	h.mu.Lock()
	snap, err := h.session.StartDive(req.Round)
	sessionID := h.session.ID
	h.mu.Unlock()
	if err != nil {
		s.handleGameError(w, r, err)
		return
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("round", req.Round).
		Msg("dive_started")

	s.writeJSON(w, http.StatusOK, SnapshotResponse{
		SessionID:     sessionID,
		Snapshot:      snap,
		EngineVersion: EngineVersion,
	})
}

// handleSubmitDecision forwards one decision to the session's running dive
// and records finished dives and sessions.
func (s *Server) handleSubmitDecision(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		s.writeSessionNotFound(w, r)
		return
	}

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"invalid request body", map[string]interface{}{"cause": err.Error()})
		return
	}
	if req.DiverID == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation,
			"diver_id is required", nil)
		return
	}

	h.mu.Lock()
	snap, err := h.session.SubmitDecision(req.DiverID, game.Decision{
		Action:   game.Action(req.Action),
		TakeTile: req.TakeTile,
	})
	if err != nil {
		h.mu.Unlock()
		s.handleGameError(w, r, err)
		return
	}
	completed := h.session.Completed()
	if snap.State == game.StateEnded {
		s.recordDive(h)
	}
	if completed {
		s.recordSession(h)
	}
	sessionID := h.session.ID
	h.mu.Unlock()

	s.writeJSON(w, http.StatusOK, SnapshotResponse{
		SessionID:     sessionID,
		Snapshot:      snap,
		Completed:     completed,
		EngineVersion: EngineVersion,
	})
}

// handleSnapshot returns the current dive snapshot.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		s.writeSessionNotFound(w, r)
		return
	}

	h.mu.Lock()
	snap, err := h.session.Snapshot()
	completed := h.session.Completed()
	sessionID := h.session.ID
	h.mu.Unlock()
	if err != nil {
		s.handleGameError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SnapshotResponse{
		SessionID:     sessionID,
		Snapshot:      snap,
		Completed:     completed,
		EngineVersion: EngineVersion,
	})
}

// handleDiveResult returns the most recent dive's outcome.
func (s *Server) handleDiveResult(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		s.writeSessionNotFound(w, r)
		return
	}

	h.mu.Lock()
	result, err := h.session.DiveResult()
	sessionID := h.session.ID
	h.mu.Unlock()
	if err != nil {
		s.handleGameError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, DiveResultResponse{
		SessionID:     sessionID,
		Result:        result,
		EngineVersion: EngineVersion,
	})
}

// handleStandings returns the final standings.
func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	h, ok := s.lookup(chi.URLParam(r, "sessionID"))
	if !ok {
		s.writeSessionNotFound(w, r)
		return
	}

	h.mu.Lock()
	standings, err := h.session.Standings()
	sessionID := h.session.ID
	h.mu.Unlock()
	if err != nil {
		s.handleGameError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, StandingsResponse{
		SessionID:     sessionID,
		Standings:     standings,
		EngineVersion: EngineVersion,
	})
}

func (s *Server) writeSessionNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, ErrTypeSessionNotFound,
		"session not found", nil)
}

// handleGameError maps engine errors onto the structured error envelope.
func (s *Server) handleGameError(w http.ResponseWriter, r *http.Request, err error) {
	var actionErr game.InvalidActionError
	var cfgErr game.ConfigurationError

	switch {
	case errors.As(err, &actionErr):
		s.writeError(w, r, http.StatusConflict, ErrTypeInvalidAction, actionErr.Error(),
			map[string]interface{}{"action": string(actionErr.Action)})
	case errors.As(err, &cfgErr):
		s.writeError(w, r, http.StatusBadRequest, ErrTypeConfiguration, cfgErr.Error(), nil)
	case errors.Is(err, game.ErrDiveNotOver):
		s.writeError(w, r, http.StatusConflict, ErrTypeDiveNotOver, err.Error(), nil)
	case errors.Is(err, game.ErrSessionNotOver):
		s.writeError(w, r, http.StatusConflict, ErrTypeSessionNotOver, err.Error(), nil)
	case errors.Is(err, game.ErrNoActiveDive):
		s.writeError(w, r, http.StatusConflict, ErrTypeInvalidAction, err.Error(), nil)
	default:
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, err.Error(), nil)
	}
}

// recordDive persists the finished dive. Storage failures are logged, not
// surfaced; play continues regardless.
func (s *Server) recordDive(h *sessionHandle) {
	if s.db == nil {
		return
	}
	result, err := h.session.DiveResult()
	if err != nil {
		return
	}

	resultJSON, err := json.Marshal(result.Divers)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", h.session.ID).Msg("dive_encode_failed")
		return
	}
	record := &store.DiveRecord{
		SessionID:  h.session.ID,
		Round:      result.Round,
		Turns:      result.Turns,
		OxygenLeft: result.OxygenLeft,
		ResultJSON: string(resultJSON),
	}
	if err := s.db.SaveDive(record); err != nil {
		s.logger.Error().Err(err).Str("session_id", h.session.ID).Msg("dive_save_failed")
		return
	}

	s.logger.Info().
		Str("session_id", h.session.ID).
		Int("round", result.Round).
		Int("turns", result.Turns).
		Int("oxygen_left", result.OxygenLeft).
		Msg("dive_ended")
}

// recordSession persists the completed session exactly once.
func (s *Server) recordSession(h *sessionHandle) {
	if s.db == nil || h.recorded {
		return
	}
	standings, err := h.session.Standings()
	if err != nil {
		return
	}

	cfg := h.session.Config()
	playersJSON, err := json.Marshal(cfg.Players)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", h.session.ID).Msg("session_encode_failed")
		return
	}
	standingsJSON, err := json.Marshal(standings)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", h.session.ID).Msg("session_encode_failed")
		return
	}

	record := &store.SessionRecord{
		ID:            h.session.ID,
		PlayersJSON:   string(playersJSON),
		OxygenMax:     cfg.OxygenMax,
		Rounds:        cfg.Rounds,
		Seed:          cfg.Seed,
		WinnerID:      standings.WinnerID,
		WinnerName:    standings.Winner,
		Draw:          standings.Draw,
		StandingsJSON: string(standingsJSON),
	}
	if err := s.db.SaveSession(record); err != nil {
		s.logger.Error().Err(err).Str("session_id", h.session.ID).Msg("session_save_failed")
		return
	}
	h.recorded = true

	s.logger.Info().
		Str("session_id", h.session.ID).
		Str("winner", standings.Winner).
		Bool("draw", standings.Draw).
		Msg("session_completed")
}
