package tcc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SystemDBPath is the machine-wide TCC database.
const SystemDBPath = "/Library/Application Support/com.apple.TCC/TCC.db"

// UserDBPath returns the per-user TCC database path, which holds the
// Photos, Camera and Microphone decisions.
func UserDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Library", "Application Support", "com.apple.TCC", "TCC.db"), nil
}

// ErrNoAccess is returned when a TCC database exists but cannot be read,
// which usually means the process lacks Full Disk Access.
var ErrNoAccess = errors.New("tcc: database not readable (Full Disk Access required)")

// Auth values stored in the access table.
const (
	AuthDenied  = 0
	AuthUnknown = 1
	AuthAllowed = 2
	AuthLimited = 3
)

// Entry is one row of the access table.
type Entry struct {
	Service      string    `json:"service"`
	Client       string    `json:"client"`
	ClientType   int       `json:"client_type"`
	Auth         int       `json:"auth_value"`
	AuthReason   int       `json:"auth_reason"`
	LastModified time.Time `json:"last_modified,omitempty"`
	Allowed      bool      `json:"allowed"`
}

// AuthString names the entry's auth value.
func (e Entry) AuthString() string {
	switch e.Auth {
	case AuthDenied:
		return "denied"
	case AuthUnknown:
		return "unknown"
	case AuthAllowed:
		return "allowed"
	case AuthLimited:
		return "limited"
	}
	return fmt.Sprintf("auth(%d)", e.Auth)
}

// Filter narrows ListEntries. Empty fields match everything.
type Filter struct {
	Service string // full service name, e.g. kTCCServicePhotos
	Client  string // bundle id or path; matched exactly or by base name
}

// DB is a read-only connection to a TCC database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the database at path read-only.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrPermission) {
			return nil, fmt.Errorf("%w: %s", ErrNoAccess, path)
		}
		return nil, fmt.Errorf("tcc: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("tcc: failed to open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrNoAccess, path, err)
	}
	return &DB{db: db, path: path}, nil
}

// Path returns the file the DB was opened from.
func (d *DB) Path() string { return d.path }

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// ListEntries returns access rows ordered by service and client.
func (d *DB) ListEntries(ctx context.Context, f Filter) ([]Entry, error) {
	query := `
		SELECT service, client, client_type, auth_value, auth_reason,
		       COALESCE(last_modified, 0)
		FROM access
		WHERE (?1 = '' OR service = ?1)
		  AND (?2 = '' OR client = ?2 OR client LIKE ?3)
		ORDER BY service, client
	`
	pattern := ""
	if f.Client != "" {
		pattern = "%" + filepath.Base(f.Client) + "%"
	}

	rows, err := d.db.QueryContext(ctx, query, f.Service, f.Client, pattern)
	if err != nil {
		if isUnreadable(err) {
			return nil, fmt.Errorf("%w: %v", ErrNoAccess, err)
		}
		return nil, fmt.Errorf("tcc: failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var modified int64
		if err := rows.Scan(&e.Service, &e.Client, &e.ClientType, &e.Auth, &e.AuthReason, &modified); err != nil {
			return nil, fmt.Errorf("tcc: failed to scan row: %w", err)
		}
		if modified > 0 {
			e.LastModified = time.Unix(modified, 0)
		}
		e.Allowed = e.Auth >= AuthAllowed
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// isUnreadable matches the errors sqlite reports when TCC blocks the read.
func isUnreadable(err error) bool {
	return errors.Is(err, os.ErrPermission) ||
		containsAny(err.Error(), "authorization denied", "unable to open database", "not authorized")
}
