package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/logimind/advisor/internal/domain"
	"github.com/logimind/advisor/internal/logging"
)

// migration is a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "create conversations and messages",
		SQL: `
			CREATE TABLE conversations (
				session_id  TEXT PRIMARY KEY,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL,
				context     TEXT
			);

			CREATE TABLE messages (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				session_id  TEXT NOT NULL REFERENCES conversations(session_id) ON DELETE CASCADE,
				role        TEXT NOT NULL,
				content     TEXT NOT NULL,
				timestamp   TEXT NOT NULL,
				metadata    TEXT
			);

			CREATE INDEX idx_messages_session ON messages (session_id, id);
		`,
	},
}

// SQLiteBackend is a durable Backend over a SQLite database.
type SQLiteBackend struct {
	sql *sql.DB
	log *logging.Logger
}

// OpenSQLite opens (or creates) a SQLite database at the given path and
// runs migrations. Use ":memory:" for tests.
func OpenSQLite(path string, log *logging.Logger) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	b := &SQLiteBackend{sql: db, log: log.Sub("store.sqlite")}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	b.log.Info().Str("path", path).Msg("database opened")
	return b, nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.sql.Close()
}

func (b *SQLiteBackend) migrate() error {
	if _, err := b.sql.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (datetime('now'))
		)
	`); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := b.sql.QueryRow(
			"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.Version,
		).Scan(&count); err != nil {
			return fmt.Errorf("checking migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		b.log.Info().Int("version", m.Version).Str("name", m.Name).Msg("applying migration")

		tx, err := b.sql.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// Load reads the session record, or returns ErrNotFound.
func (b *SQLiteBackend) Load(sessionID string) (*domain.Conversation, error) {
	conv := &domain.Conversation{SessionID: sessionID}
	var createdAt, updatedAt string
	var contextJSON sql.NullString

	err := b.sql.QueryRow(
		`SELECT created_at, updated_at, context FROM conversations WHERE session_id = ?`,
		sessionID,
	).Scan(&createdAt, &updatedAt, &contextJSON)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}

	conv.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	conv.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if contextJSON.Valid && contextJSON.String != "" {
		_ = json.Unmarshal([]byte(contextJSON.String), &conv.Context)
	}

	rows, err := b.sql.Query(
		`SELECT role, content, timestamp, metadata FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.Message
		var ts string
		var metaJSON sql.NullString
		if err := rows.Scan(&msg.Role, &msg.Content, &ts, &metaJSON); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msg.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if metaJSON.Valid && metaJSON.String != "" {
			_ = json.Unmarshal([]byte(metaJSON.String), &msg.Metadata)
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

// Save upserts the conversation row and appends any messages past the
// persisted tail. Messages are append-only, so the tail insert is enough.
func (b *SQLiteBackend) Save(conv *domain.Conversation) error {
	var contextJSON sql.NullString
	if len(conv.Context) > 0 {
		if data, err := json.Marshal(conv.Context); err == nil {
			contextJSON = sql.NullString{String: string(data), Valid: true}
		}
	}

	tx, err := b.sql.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO conversations (session_id, created_at, updated_at, context)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   updated_at = excluded.updated_at,
		   context = excluded.context`,
		conv.SessionID,
		conv.CreatedAt.UTC().Format(time.RFC3339Nano),
		conv.UpdatedAt.UTC().Format(time.RFC3339Nano),
		contextJSON,
	); err != nil {
		return fmt.Errorf("upserting conversation: %w", err)
	}

	var persisted int
	if err := tx.QueryRow(
		`SELECT COUNT(*) FROM messages WHERE session_id = ?`, conv.SessionID,
	).Scan(&persisted); err != nil {
		return fmt.Errorf("counting messages: %w", err)
	}

	for _, msg := range conv.Messages[persisted:] {
		var metaJSON sql.NullString
		if len(msg.Metadata) > 0 {
			if data, err := json.Marshal(msg.Metadata); err == nil {
				metaJSON = sql.NullString{String: string(data), Valid: true}
			}
		}
		if _, err := tx.Exec(
			`INSERT INTO messages (session_id, role, content, timestamp, metadata)
			 VALUES (?, ?, ?, ?, ?)`,
			conv.SessionID, msg.Role, msg.Content,
			msg.Timestamp.UTC().Format(time.RFC3339Nano), metaJSON,
		); err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}

	return tx.Commit()
}

// Delete removes the session record and its messages.
func (b *SQLiteBackend) Delete(sessionID string) error {
	_, err := b.sql.Exec(`DELETE FROM conversations WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}
