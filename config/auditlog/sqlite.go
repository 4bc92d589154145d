package auditlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/kastheco/craftdeck/log"
)

const activitySchema = `
CREATE TABLE IF NOT EXISTS activity_events (
	id          INTEGER PRIMARY KEY,
	kind        TEXT    NOT NULL,
	timestamp   TEXT    NOT NULL,
	instance_id TEXT    NOT NULL DEFAULT '',
	project_id  TEXT    NOT NULL DEFAULT '',
	file_name   TEXT    NOT NULL DEFAULT '',
	message     TEXT    NOT NULL DEFAULT '',
	detail      TEXT    NOT NULL DEFAULT '',
	level       TEXT    NOT NULL DEFAULT 'info'
);

CREATE INDEX IF NOT EXISTS idx_activity_instance_ts ON activity_events(instance_id, timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_activity_project ON activity_events(project_id, timestamp DESC);
`

const maxQueryLimit = 500

// SQLiteLogger is a Logger backed by a SQLite database. It can share a file
// with the launcher store; the tables do not overlap.
type SQLiteLogger struct {
	db *sql.DB
}

// NewSQLiteLogger opens (or creates) a SQLite database at dbPath, runs the
// activity_events schema, and returns a ready-to-use logger.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteLogger(dbPath string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db for activity log: %w", err)
	}
	if dbPath == ":memory:" {
		// every new connection would get its own empty database
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(activitySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run activity log schema: %w", err)
	}

	return &SQLiteLogger{db: db}, nil
}

// Emit records e, stamping it with the current time when Timestamp is zero.
// Write failures are logged and otherwise ignored; the activity feed is
// best effort.
func (l *SQLiteLogger) Emit(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Level == "" {
		e.Level = "info"
	}
	_, err := l.db.Exec(`INSERT INTO activity_events
		(kind, timestamp, instance_id, project_id, file_name, message, detail, level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Kind), formatTime(e.Timestamp), e.Instance, e.Project, e.File, e.Message, e.Detail, e.Level)
	if err != nil {
		log.WarningLog.Printf("record %s event: %v", e.Kind, err)
	}
}

// where turns f into a WHERE clause and its arguments.
func (f QueryFilter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if f.Instance != "" {
		add("instance_id = ?", f.Instance)
	}
	if f.Project != "" {
		add("project_id = ?", f.Project)
	}
	if len(f.Kinds) > 0 {
		kinds := make([]any, len(f.Kinds))
		for i, k := range f.Kinds {
			kinds[i] = string(k)
		}
		add("kind IN (?"+strings.Repeat(", ?", len(kinds)-1)+")", kinds...)
	}
	if !f.After.IsZero() {
		add("timestamp > ?", formatTime(f.After))
	}
	if !f.Before.IsZero() {
		add("timestamp < ?", formatTime(f.Before))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Query returns events matching the filter, newest first. Limit is capped at
// maxQueryLimit.
func (l *SQLiteLogger) Query(f QueryFilter) ([]Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	where, args := f.where()
	q := `SELECT id, kind, timestamp, instance_id, project_id, file_name, message, detail, level
		FROM activity_events` + where + ` ORDER BY timestamp DESC, id DESC LIMIT ?`

	rows, err := l.db.Query(q, append(args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query activity events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			ts string
		)
		if err := rows.Scan(&e.ID, (*string)(&e.Kind), &ts, &e.Instance, &e.Project,
			&e.File, &e.Message, &e.Detail, &e.Level); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		e.Timestamp = parseTime(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune deletes events older than cutoff and returns how many were removed.
func (l *SQLiteLogger) Prune(cutoff time.Time) (int64, error) {
	res, err := l.db.Exec(`DELETE FROM activity_events WHERE timestamp < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("prune activity events: %w", err)
	}
	return res.RowsAffected()
}

// Close releases the database connection.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

// formatTime stores times as UTC RFC3339Nano so they sort as text.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
