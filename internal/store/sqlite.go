package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/botlink/botlink/internal/model"
)

// schema creates the two tables and the log retrieval index.
// Attribution and query-parameter payloads are stored as JSON blobs;
// only the columns needed for lookups get their own fields.
const schema = `
CREATE TABLE IF NOT EXISTS code_mappings (
	code         TEXT PRIMARY KEY,
	bot_username TEXT NOT NULL,
	attribution  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	resolved     INTEGER NOT NULL DEFAULT 0,
	resolved_at  TEXT
);

CREATE TABLE IF NOT EXISTS click_logs (
	id         TEXT PRIMARY KEY,
	request_id TEXT NOT NULL,
	slug       TEXT NOT NULL,
	ts         TEXT NOT NULL,
	ip_hash    TEXT NOT NULL,
	user_agent TEXT NOT NULL,
	target     TEXT NOT NULL,
	code       TEXT,
	params     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_click_logs_slug_ts ON click_logs (slug, ts DESC);
`

// timeLayout is a fixed-width RFC3339 variant. RFC3339Nano trims trailing
// fractional-second zeros, which breaks the lexicographic ordering the
// click-log queries rely on (".1Z" would sort after ".12Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore is the durable file-backed backend. WAL mode tolerates
// concurrent readers while SQLite serializes writes internally.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at path and applies
// the schema.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Ping checks database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// StoreCode persists a new code mapping.
func (s *SQLiteStore) StoreCode(ctx context.Context, m *model.CodeMapping) error {
	attribution, err := json.Marshal(m.Attribution)
	if err != nil {
		return fmt.Errorf("marshal attribution: %w", err)
	}

	query := `
		INSERT INTO code_mappings (code, bot_username, attribution, created_at, resolved, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		m.Code,
		m.BotUsername,
		string(attribution),
		m.CreatedAt.UTC().Format(timeLayout),
		boolToInt(m.Resolved),
		nullableTime(m.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("insert code mapping: %w", err)
	}

	return nil
}

// GetCode returns the mapping for a code, or ErrNotFound.
func (s *SQLiteStore) GetCode(ctx context.Context, code string) (*model.CodeMapping, error) {
	query := `
		SELECT code, bot_username, attribution, created_at, resolved, resolved_at
		FROM code_mappings
		WHERE code = ?
	`

	var (
		m           model.CodeMapping
		attribution string
		createdAt   string
		resolved    int
		resolvedAt  sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, code).Scan(
		&m.Code, &m.BotUsername, &attribution, &createdAt, &resolved, &resolvedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query code mapping: %w", err)
	}

	if err := json.Unmarshal([]byte(attribution), &m.Attribution); err != nil {
		return nil, fmt.Errorf("unmarshal attribution: %w", err)
	}
	if m.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	m.Resolved = resolved != 0
	if resolvedAt.Valid {
		at, err := time.Parse(timeLayout, resolvedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse resolved_at: %w", err)
		}
		m.ResolvedAt = &at
	}

	return &m, nil
}

// MarkResolved sets the resolved flag. COALESCE keeps the first resolvedAt
// even when two racing resolutions both issue the update.
func (s *SQLiteStore) MarkResolved(ctx context.Context, code string, at time.Time) error {
	query := `
		UPDATE code_mappings
		SET resolved = 1, resolved_at = COALESCE(resolved_at, ?)
		WHERE code = ?
	`

	res, err := s.db.ExecContext(ctx, query, at.UTC().Format(timeLayout), code)
	if err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark resolved rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteCode removes a mapping. Absent codes are a no-op.
func (s *SQLiteStore) DeleteCode(ctx context.Context, code string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM code_mappings WHERE code = ?`, code); err != nil {
		return fmt.Errorf("delete code mapping: %w", err)
	}
	return nil
}

// LogClick appends one entry to the click log.
func (s *SQLiteStore) LogClick(ctx context.Context, e *model.ClickLogEntry) error {
	params, err := json.Marshal(e.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `
		INSERT INTO click_logs (id, request_id, slug, ts, ip_hash, user_agent, target, code, params)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		e.ID,
		e.RequestID,
		e.Slug,
		e.Timestamp.UTC().Format(timeLayout),
		e.IPHash,
		e.UserAgent,
		e.Target,
		nullableString(e.Code),
		string(params),
	)
	if err != nil {
		return fmt.Errorf("insert click log: %w", err)
	}

	return nil
}

// GetClickLogs returns up to limit entries for a slug, most recent first.
// Non-positive limits return nothing; a negative SQL LIMIT would mean
// unbounded, which the Store contract does not allow.
func (s *SQLiteStore) GetClickLogs(ctx context.Context, slug string, limit int) ([]*model.ClickLogEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, request_id, slug, ts, ip_hash, user_agent, target, code, params
		FROM click_logs
		WHERE slug = ?
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, slug, limit)
	if err != nil {
		return nil, fmt.Errorf("query click logs: %w", err)
	}
	defer rows.Close()

	var entries []*model.ClickLogEntry
	for rows.Next() {
		var (
			e      model.ClickLogEntry
			ts     string
			code   sql.NullString
			params string
		)
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Slug, &ts, &e.IPHash, &e.UserAgent, &e.Target, &code, &params); err != nil {
			return nil, fmt.Errorf("scan click log: %w", err)
		}
		if e.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parse click log ts: %w", err)
		}
		e.Code = code.String
		if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
			return nil, fmt.Errorf("unmarshal click log params: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
