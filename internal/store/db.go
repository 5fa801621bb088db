package store

import (
	"time"
)

// DB represents the results database interface
type DB interface {
	Close() error
	Migrate() error
	SaveSession(session *SessionRecord) error
	SaveDive(dive *DiveRecord) error
	GetSession(id string) (*SessionRecord, error)
	GetDives(sessionID string) ([]DiveRecord, error)
	ListSessions(query SessionsQuery) (*SessionsList, error)
}

// SessionsQuery represents query parameters for listing sessions
type SessionsQuery struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// SessionsList represents a paginated sessions response
type SessionsList struct {
	Sessions   []SessionRecord `json:"sessions"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PerPage    int             `json:"perPage"`
	TotalPages int             `json:"totalPages"`
}

// SessionRecord is one completed game session
type SessionRecord struct {
	ID            string    `json:"id" db:"id"`
	PlayersJSON   string    `json:"players_json" db:"players_json"`
	OxygenMax     int       `json:"oxygen_max" db:"oxygen_max"`
	Rounds        int       `json:"rounds" db:"rounds"`
	Seed          uint64    `json:"seed" db:"seed"`
	WinnerID      string    `json:"winner_id" db:"winner_id"`
	WinnerName    string    `json:"winner_name" db:"winner_name"`
	Draw          bool      `json:"draw" db:"draw"`
	StandingsJSON string    `json:"standings_json" db:"standings_json"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// DiveRecord is the outcome of one dive within a session
type DiveRecord struct {
	ID         int64  `json:"id" db:"id"`
	SessionID  string `json:"session_id" db:"session_id"`
	Round      int    `json:"round" db:"round"`
	Turns      int    `json:"turns" db:"turns"`
	OxygenLeft int    `json:"oxygen_left" db:"oxygen_left"`
	ResultJSON string `json:"result_json" db:"result_json"` // JSON string of per-diver banked tiles
}
