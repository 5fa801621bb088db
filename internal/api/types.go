package api

import (
	"github.com/mkarrio/deepsea-sim-go/internal/game"
)

// EngineVersion identifies the engine build in responses and headers.
const EngineVersion = "1.0.0"

// EngineError represents a structured error response with context
type EngineError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface
func (e EngineError) Error() string {
	return e.Message
}

// Error types with proper categorization
const (
	// Input validation errors
	ErrTypeValidation = "validation_error"

	// Game-related errors
	ErrTypeInvalidAction   = "invalid_action"
	ErrTypeConfiguration   = "configuration_error"
	ErrTypeSessionNotFound = "session_not_found"
	ErrTypeDiveNotOver     = "dive_not_over"
	ErrTypeSessionNotOver  = "session_not_over"

	// System errors
	ErrTypeInternal = "internal_error"
)

// ErrorCategory represents error categories for monitoring
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryGame       ErrorCategory = "game"
	CategorySystem     ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeConfiguration:
		return CategoryValidation
	case ErrTypeInvalidAction, ErrTypeSessionNotFound, ErrTypeDiveNotOver, ErrTypeSessionNotOver:
		return CategoryGame
	default:
		return CategorySystem
	}
}

// CreateSessionRequest creates a new game session
type CreateSessionRequest struct {
	Players   []string `json:"players"`
	OxygenMax int      `json:"oxygen_max,omitempty"`
	Rounds    int      `json:"rounds,omitempty"`
	Seed      uint64   `json:"seed,omitempty"`
}

// SessionResponse describes a created session
type SessionResponse struct {
	SessionID     string             `json:"session_id"`
	Config        game.SessionConfig `json:"config"`
	Divers        []DiverInfo        `json:"divers"`
	EngineVersion string             `json:"engine_version"`
}

// DiverInfo pairs a diver id with its player name
type DiverInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StartDiveRequest starts the next round's dive
type StartDiveRequest struct {
	Round int `json:"round"`
}

// DecisionRequest submits one turn for the acting diver
type DecisionRequest struct {
	DiverID  string `json:"diver_id"`
	Action   string `json:"action"`
	TakeTile bool   `json:"take_tile,omitempty"`
}

// SnapshotResponse wraps the current dive snapshot
type SnapshotResponse struct {
	SessionID     string        `json:"session_id"`
	Snapshot      game.Snapshot `json:"snapshot"`
	Completed     bool          `json:"completed"`
	EngineVersion string        `json:"engine_version"`
}

// DiveResultResponse wraps a finished dive's outcome
type DiveResultResponse struct {
	SessionID     string          `json:"session_id"`
	Result        game.DiveResult `json:"result"`
	EngineVersion string          `json:"engine_version"`
}

// StandingsResponse wraps the final session standings
type StandingsResponse struct {
	SessionID     string         `json:"session_id"`
	Standings     game.Standings `json:"standings"`
	EngineVersion string         `json:"engine_version"`
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status        string `json:"status"`
	EngineVersion string `json:"engine_version"`
	Timestamp     string `json:"timestamp"`
}
