// Package history keeps an audit trail of size resolutions in SQLite. The
// trail is write-only from the resolver's point of view: lookups are never
// answered from it.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/mipsize/autosize"
)

// Custom errors for lookup history operations
var (
	ErrLookupNotFound = errors.New("lookup not found")
)

// LookupStore manages recorded resolutions using SQLite.
type LookupStore struct {
	db *sql.DB
}

// Lookup is one recorded resolution. Size is set on success; ErrorKind and
// Error are set on failure.
type Lookup struct {
	LookupID   uuid.UUID `json:"lookup_id" yaml:"lookup_id"`
	Path       string    `json:"path" yaml:"path"`
	Model      *string   `json:"model,omitempty" yaml:"model,omitempty"`
	URL        *string   `json:"url,omitempty" yaml:"url,omitempty"`
	Size       *int      `json:"size,omitempty" yaml:"size,omitempty"`
	ErrorKind  *string   `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error      *string   `json:"error,omitempty" yaml:"error,omitempty"`
	ResolvedAt time.Time `json:"resolved_at" yaml:"resolved_at"`
}

// Succeeded returns true if the lookup produced a size.
func (l *Lookup) Succeeded() bool {
	return l.Size != nil
}

// LookupFilter represents filtering options for listing lookups.
type LookupFilter struct {
	Model  *string // Filter by derived model name
	Failed *bool   // Filter by outcome
	Limit  int     // Pagination limit
	Offset int     // Pagination offset
}

// NewLookupStore creates a new lookup store with the given database path.
func NewLookupStore(dbPath string) (*LookupStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &LookupStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the lookups table if it doesn't exist.
func (s *LookupStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		lookup_id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		model TEXT,
		url TEXT,
		size INTEGER,
		error_kind TEXT,
		error TEXT,
		resolved_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_lookups_model ON lookups(model);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *LookupStore) Close() error {
	return s.db.Close()
}

// Record stores the outcome of resolving path. Exactly one of res and
// resolveErr is expected to be non-nil.
func (s *LookupStore) Record(path string, res *autosize.Resolution, resolveErr error) (*Lookup, error) {
	lookup := &Lookup{
		LookupID:   uuid.New(),
		Path:       path,
		ResolvedAt: time.Now().Truncate(0),
	}

	if res != nil {
		lookup.Model = &res.Model
		lookup.URL = &res.URL
		lookup.Size = &res.Size
	} else {
		if model := autosize.ModelNameFromPath(path); model != "" {
			lookup.Model = &model
		}
		if u := failedURL(resolveErr); u != "" {
			lookup.URL = &u
		}
	}

	if resolveErr != nil {
		kind := string(autosize.KindOf(resolveErr))
		message := resolveErr.Error()
		lookup.ErrorKind = &kind
		lookup.Error = &message
	}

	query := `
		INSERT INTO lookups (
			lookup_id, path, model, url, size, error_kind, error, resolved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		lookup.LookupID.String(),
		lookup.Path,
		lookup.Model,
		lookup.URL,
		lookup.Size,
		lookup.ErrorKind,
		lookup.Error,
		formatTime(lookup.ResolvedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lookup: %w", err)
	}

	return lookup, nil
}

// Get retrieves a lookup by ID.
func (s *LookupStore) Get(lookupID uuid.UUID) (*Lookup, error) {
	query := `
		SELECT lookup_id, path, model, url, size, error_kind, error, resolved_at
		FROM lookups
		WHERE lookup_id = ?
	`

	lookup, err := scanLookup(s.db.QueryRow(query, lookupID.String()))
	if err == sql.ErrNoRows {
		return nil, ErrLookupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query lookup: %w", err)
	}

	return lookup, nil
}

// List lists lookups, newest first, with optional filtering.
func (s *LookupStore) List(filter LookupFilter) ([]Lookup, error) {
	query := `
		SELECT lookup_id, path, model, url, size, error_kind, error, resolved_at
		FROM lookups
	`

	where, args := filter.where()
	query += where
	query += " ORDER BY resolved_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer rows.Close()

	lookups := []Lookup{}
	for rows.Next() {
		lookup, err := scanLookup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}
		lookups = append(lookups, *lookup)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lookups: %w", err)
	}

	return lookups, nil
}

// Count returns the number of lookups matching filter, ignoring pagination.
func (s *LookupStore) Count(filter LookupFilter) (int, error) {
	where, args := filter.where()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM lookups"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}

	return count, nil
}

// Delete removes a lookup by ID.
func (s *LookupStore) Delete(lookupID uuid.UUID) error {
	result, err := s.db.Exec("DELETE FROM lookups WHERE lookup_id = ?", lookupID.String())
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrLookupNotFound
	}

	return nil
}

// Clear removes every lookup and returns how many were removed.
func (s *LookupStore) Clear() (int64, error) {
	result, err := s.db.Exec("DELETE FROM lookups")
	if err != nil {
		return 0, fmt.Errorf("failed to clear lookups: %w", err)
	}

	return result.RowsAffected()
}

func (f LookupFilter) where() (string, []any) {
	var whereClauses []string
	var args []any

	if f.Model != nil {
		whereClauses = append(whereClauses, "model = ?")
		args = append(args, *f.Model)
	}

	if f.Failed != nil {
		if *f.Failed {
			whereClauses = append(whereClauses, "error_kind IS NOT NULL")
		} else {
			whereClauses = append(whereClauses, "error_kind IS NULL")
		}
	}

	if len(whereClauses) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(whereClauses, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLookup(row rowScanner) (*Lookup, error) {
	var lookupIDStr, path, resolvedAtStr string
	var model, url, errorKind, errorMessage sql.NullString
	var size sql.NullInt64

	err := row.Scan(
		&lookupIDStr, &path, &model, &url,
		&size, &errorKind, &errorMessage, &resolvedAtStr,
	)
	if err != nil {
		return nil, err
	}

	lookupID, err := uuid.Parse(lookupIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid lookup_id: %w", err)
	}

	lookup := &Lookup{
		LookupID:   lookupID,
		Path:       path,
		ResolvedAt: parseTime(resolvedAtStr),
	}

	if model.Valid {
		lookup.Model = &model.String
	}
	if url.Valid {
		lookup.URL = &url.String
	}
	if size.Valid {
		n := int(size.Int64)
		lookup.Size = &n
	}
	if errorKind.Valid {
		lookup.ErrorKind = &errorKind.String
	}
	if errorMessage.Valid {
		lookup.Error = &errorMessage.String
	}

	return lookup, nil
}

// failedURL returns the catalog URL named by a resolution error, if any.
func failedURL(err error) string {
	var lookupErr *autosize.RemoteLookupError
	var transportErr *autosize.TransportError
	var notFoundErr *autosize.SizeNotFoundError

	switch {
	case errors.As(err, &lookupErr):
		return lookupErr.URL
	case errors.As(err, &transportErr):
		return transportErr.URL
	case errors.As(err, &notFoundErr):
		return notFoundErr.URL
	}
	return ""
}

// timeLayout is fixed-width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	// Try RFC3339Nano first, fall back to RFC3339 for compatibility
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
