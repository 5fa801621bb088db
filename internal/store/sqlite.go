package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements the DB interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations
func (s *SQLiteDB) Migrate() error {
	baseMigrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			players_json TEXT NOT NULL,
			oxygen_max INTEGER NOT NULL,
			rounds INTEGER NOT NULL,
			seed INTEGER NOT NULL,
			winner_id TEXT NOT NULL DEFAULT '',
			winner_name TEXT NOT NULL DEFAULT '',
			draw INTEGER NOT NULL DEFAULT 0,
			standings_json TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS dives (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			oxygen_left INTEGER NOT NULL,
			result_json TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_dives_session_id ON dives(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_dives_session_round ON dives(session_id, round)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at DESC)`,
	}

	for _, migration := range baseMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	// Columns added after the initial schema shipped
	alterMigrations := []string{
		`ALTER TABLE sessions ADD COLUMN standings_json TEXT NOT NULL DEFAULT '{}'`,
	}

	for _, migration := range alterMigrations {
		if _, err := s.db.Exec(migration); err != nil {
			if !isDuplicateColumnError(err) {
				return fmt.Errorf("alter migration failed: %w", err)
			}
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error is a duplicate column error
func isDuplicateColumnError(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// SaveSession saves a completed session to the database
func (s *SQLiteDB) SaveSession(session *SessionRecord) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	query := `INSERT INTO sessions (
		id, players_json, oxygen_max, rounds, seed,
		winner_id, winner_name, draw, standings_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	drawInt := 0
	if session.Draw {
		drawInt = 1
	}

	_, err := s.db.Exec(query,
		session.ID, session.PlayersJSON, session.OxygenMax, session.Rounds, session.Seed,
		session.WinnerID, session.WinnerName, drawInt, session.StandingsJSON,
	)

	return err
}

// SaveDive saves one dive outcome to the database
func (s *SQLiteDB) SaveDive(dive *DiveRecord) error {
	query := `INSERT INTO dives (session_id, round, turns, oxygen_left, result_json)
		VALUES (?, ?, ?, ?, ?)`

	res, err := s.db.Exec(query,
		dive.SessionID, dive.Round, dive.Turns, dive.OxygenLeft, dive.ResultJSON,
	)
	if err != nil {
		return err
	}

	if id, err := res.LastInsertId(); err == nil {
		dive.ID = id
	}
	return nil
}

// GetSession retrieves a session by ID
func (s *SQLiteDB) GetSession(id string) (*SessionRecord, error) {
	query := `SELECT
		id, players_json, oxygen_max, rounds, seed,
		winner_id, winner_name, draw, standings_json, created_at
		FROM sessions WHERE id = ?`

	var session SessionRecord
	var drawInt int
	var standingsJSON sql.NullString

	err := s.db.QueryRow(query, id).Scan(
		&session.ID, &session.PlayersJSON, &session.OxygenMax, &session.Rounds, &session.Seed,
		&session.WinnerID, &session.WinnerName, &drawInt, &standingsJSON, &session.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if standingsJSON.Valid {
		session.StandingsJSON = standingsJSON.String
	} else {
		session.StandingsJSON = "{}"
	}
	session.Draw = drawInt == 1

	return &session, nil
}

// GetDives retrieves every dive of a session in round order
func (s *SQLiteDB) GetDives(sessionID string) ([]DiveRecord, error) {
	query := `SELECT id, session_id, round, turns, oxygen_left, result_json
		FROM dives WHERE session_id = ?
		ORDER BY round`

	rows, err := s.db.Query(query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dives []DiveRecord
	for rows.Next() {
		var dive DiveRecord
		var resultJSON sql.NullString

		err := rows.Scan(&dive.ID, &dive.SessionID, &dive.Round, &dive.Turns,
			&dive.OxygenLeft, &resultJSON)
		if err != nil {
			return nil, err
		}

		if resultJSON.Valid {
			dive.ResultJSON = resultJSON.String
		}

		dives = append(dives, dive)
	}

	return dives, rows.Err()
}

// ListSessions retrieves sessions with pagination, newest first
func (s *SQLiteDB) ListSessions(query SessionsQuery) (*SessionsList, error) {
	var totalCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("failed to get total count: %w", err)
	}

	if query.PerPage <= 0 {
		query.PerPage = 50 // Default page size
	}
	if query.Page <= 0 {
		query.Page = 1
	}

	totalPages := (totalCount + query.PerPage - 1) / query.PerPage
	offset := (query.Page - 1) * query.PerPage

	mainQuery := `SELECT
		id, players_json, oxygen_max, rounds, seed,
		winner_id, winner_name, draw, standings_json, created_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`

	rows, err := s.db.Query(mainQuery, query.PerPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var session SessionRecord
		var drawInt int
		var standingsJSON sql.NullString

		err := rows.Scan(
			&session.ID, &session.PlayersJSON, &session.OxygenMax, &session.Rounds, &session.Seed,
			&session.WinnerID, &session.WinnerName, &drawInt, &standingsJSON, &session.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		if standingsJSON.Valid {
			session.StandingsJSON = standingsJSON.String
		} else {
			session.StandingsJSON = "{}"
		}
		session.Draw = drawInt == 1

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return &SessionsList{
		Sessions:   sessions,
		TotalCount: totalCount,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: totalPages,
	}, nil
}
