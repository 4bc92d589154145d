package launcher

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS instances (
	id             TEXT    PRIMARY KEY,
	name           TEXT    NOT NULL,
	slug           TEXT    NOT NULL UNIQUE,
	game_version   TEXT    NOT NULL,
	loader         TEXT    NOT NULL DEFAULT 'vanilla',
	loader_version TEXT    NOT NULL DEFAULT '',
	memory_mb      INTEGER NOT NULL DEFAULT 0,
	fullscreen     INTEGER,
	stage          TEXT    NOT NULL DEFAULT 'installing',
	created_at     TEXT    NOT NULL DEFAULT '',
	modified_at    TEXT    NOT NULL DEFAULT '',
	last_played    TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS accounts (
	id         TEXT PRIMARY KEY,
	username   TEXT NOT NULL UNIQUE,
	created_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS installed_files (
	instance_id TEXT NOT NULL REFERENCES instances(id) ON DELETE CASCADE,
	sha1        TEXT NOT NULL,
	project_id  TEXT NOT NULL DEFAULT '',
	version_id  TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (instance_id, sha1)
);
`

// FileMeta is what Modrinth told us about a file we downloaded.
type FileMeta struct {
	ProjectID string
	VersionID string
}

// Store persists instances, accounts and installed-file metadata.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and runs schema
// migrations. Use ":memory:" for an in-memory database (useful in tests).
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		// Enable WAL mode for better concurrent read performance.
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set busy timeout: %w", err)
		}
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run schema migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const instanceColumns = `id, name, slug, game_version, loader, loader_version, memory_mb,
	fullscreen, stage, created_at, modified_at, last_played`

// CreateInstance inserts inst. A duplicate slug is reported as such so the
// caller can pick another directory name.
func (s *Store) CreateInstance(inst Instance) error {
	q := `INSERT INTO instances (` + instanceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(q,
		inst.ID,
		inst.Name,
		inst.Slug,
		inst.GameVersion,
		string(inst.Loader),
		inst.LoaderVersion,
		inst.MemoryMB,
		nullBool(inst.Fullscreen),
		string(inst.Stage),
		formatTime(inst.Created),
		formatTime(inst.Modified),
		formatTime(inst.LastPlayed),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("instance directory already in use: %s", inst.Slug)
		}
		return fmt.Errorf("create instance: %w", err)
	}
	return nil
}

// GetInstance returns the instance with id or ErrInstanceNotFound.
func (s *Store) GetInstance(id string) (Instance, error) {
	row := s.db.QueryRow(`SELECT `+instanceColumns+` FROM instances WHERE id = ?`, id)
	inst, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return inst, err
}

// ListInstances returns every instance, oldest first.
func (s *Store) ListInstances() ([]Instance, error) {
	rows, err := s.db.Query(`SELECT ` + instanceColumns + ` FROM instances ORDER BY created_at ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var out []Instance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate instances: %w", err)
	}
	return out, nil
}

// SlugTaken reports whether slug is used by any instance.
func (s *Store) SlugTaken(slug string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM instances WHERE slug = ?`, slug).Scan(&n); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

// UpdateInstance replaces every mutable field of inst.
func (s *Store) UpdateInstance(inst Instance) error {
	const q = `
		UPDATE instances
		SET name = ?, game_version = ?, loader = ?, loader_version = ?, memory_mb = ?,
		    fullscreen = ?, stage = ?, modified_at = ?, last_played = ?
		WHERE id = ?
	`
	result, err := s.db.Exec(q,
		inst.Name,
		inst.GameVersion,
		string(inst.Loader),
		inst.LoaderVersion,
		inst.MemoryMB,
		nullBool(inst.Fullscreen),
		string(inst.Stage),
		formatTime(inst.Modified),
		formatTime(inst.LastPlayed),
		inst.ID,
	)
	if err != nil {
		return fmt.Errorf("update instance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update instance rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, inst.ID)
	}
	return nil
}

// DeleteInstance removes the instance and its file metadata.
func (s *Store) DeleteInstance(id string) error {
	result, err := s.db.Exec(`DELETE FROM instances WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete instance: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete instance rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, id)
	}
	return nil
}

// CreateAccount inserts acct or returns ErrAccountExists.
func (s *Store) CreateAccount(acct Account) error {
	_, err := s.db.Exec(`INSERT INTO accounts (id, username, created_at) VALUES (?, ?, ?)`,
		acct.ID, acct.Username, formatTime(acct.Added))
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", ErrAccountExists, acct.Username)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// ListAccounts returns accounts in the order they were added.
func (s *Store) ListAccounts() ([]Account, error) {
	rows, err := s.db.Query(`SELECT id, username, created_at FROM accounts ORDER BY created_at ASC, username ASC`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		var added string
		if err := rows.Scan(&a.ID, &a.Username, &added); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Added = parseTime(added)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

// DeleteAccount removes the account with username.
func (s *Store) DeleteAccount(username string) error {
	result, err := s.db.Exec(`DELETE FROM accounts WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, username)
	}
	return nil
}

// PutFileMeta records where the file with sha1 came from.
func (s *Store) PutFileMeta(instanceID, sha1 string, meta FileMeta) error {
	const q = `
		INSERT INTO installed_files (instance_id, sha1, project_id, version_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(instance_id, sha1) DO UPDATE SET project_id = excluded.project_id, version_id = excluded.version_id
	`
	if _, err := s.db.Exec(q, instanceID, sha1, meta.ProjectID, meta.VersionID); err != nil {
		return fmt.Errorf("record file metadata: %w", err)
	}
	return nil
}

// FileMetas returns every recorded file of an instance keyed by sha1.
func (s *Store) FileMetas(instanceID string) (map[string]FileMeta, error) {
	rows, err := s.db.Query(`SELECT sha1, project_id, version_id FROM installed_files WHERE instance_id = ?`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("list file metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[string]FileMeta)
	for rows.Next() {
		var sha string
		var m FileMeta
		if err := rows.Scan(&sha, &m.ProjectID, &m.VersionID); err != nil {
			return nil, fmt.Errorf("scan file metadata: %w", err)
		}
		out[sha] = m
	}
	return out, rows.Err()
}

// DeleteFileMeta forgets a file's metadata. Missing rows are not an error.
func (s *Store) DeleteFileMeta(instanceID, sha1 string) error {
	if _, err := s.db.Exec(`DELETE FROM installed_files WHERE instance_id = ? AND sha1 = ?`, instanceID, sha1); err != nil {
		return fmt.Errorf("delete file metadata: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInstance(row scanner) (Instance, error) {
	var inst Instance
	var loader, stage, created, modified, played string
	var fullscreen sql.NullBool
	err := row.Scan(
		&inst.ID,
		&inst.Name,
		&inst.Slug,
		&inst.GameVersion,
		&loader,
		&inst.LoaderVersion,
		&inst.MemoryMB,
		&fullscreen,
		&stage,
		&created,
		&modified,
		&played,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Instance{}, err
		}
		return Instance{}, fmt.Errorf("scan instance: %w", err)
	}
	inst.Loader = Loader(loader)
	inst.Stage = InstallStage(stage)
	if fullscreen.Valid {
		v := fullscreen.Bool
		inst.Fullscreen = &v
	}
	inst.Created = parseTime(created)
	inst.Modified = parseTime(modified)
	inst.LastPlayed = parseTime(played)
	return inst, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

// storedTime is RFC3339 with fixed-width nanoseconds so that stored values
// sort the same as the instants they encode.
const storedTime = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime formats a time.Time for storage.
// Zero time returns empty string.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTime)
}

// parseTime parses an RFC3339Nano string.
// Returns zero time on empty or invalid input.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// isUniqueConstraintError returns true if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
