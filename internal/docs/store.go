package docs

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/bddkit/internal/scenario"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema
// 1 - Added index on docs.status
const currentSchemaVersion = 1

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("doc not found")

// Store is a Publisher that persists records in SQLite.
//
// Thread-safety: the connection pool is limited to one connection, so
// concurrent Appends from many scenarios are serialized by database/sql.
// Seq is assigned inside the INSERT, so several processes may write to the
// same database file.
type Store struct {
	db  *sql.DB
	ids IDGenerator
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Status  *TestStatus
	Feature string
}

// Summary counts stored records per status.
type Summary struct {
	Passed int `json:"passed" yaml:"passed"`
	Failed int `json:"failed" yaml:"failed"`
	Total  int `json:"total" yaml:"total"`
}

// OpenStore creates or opens a doc store at path (":memory:" for tests).
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func OpenStore(path string, opts ...Option) (*Store, error) {
	o := applyOptions(opts)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db, ids: o.ids}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append stores the scenario under a freshly generated ID.
func (s *Store) Append(ctx context.Context, sc scenario.Scenario, status TestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec := Record{ID: s.ids.Generate(), Scenario: sc, Status: status}
	if _, err := s.insert(ctx, rec); err != nil {
		return fmt.Errorf("store append: %w", err)
	}
	return nil
}

// Import stores a record keeping its ID (e.g. one read from a journal).
// Importing an ID that already exists is a no-op and reports inserted=false.
func (s *Store) Import(ctx context.Context, rec Record) (inserted bool, err error) {
	if rec.ID == "" {
		return false, errors.New("store import: id is required")
	}
	inserted, err = s.insert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("store import: %w", err)
	}
	return inserted, nil
}

func (s *Store) insert(ctx context.Context, rec Record) (bool, error) {
	if !rec.Status.Valid() {
		return false, fmt.Errorf("invalid status %d", int(rec.Status))
	}
	if err := rec.Scenario.Validate(); err != nil {
		return false, fmt.Errorf("invalid scenario: %w", err)
	}
	stepsJSON, err := marshalSteps(rec.Scenario.Steps)
	if err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO docs (id, seq, feature, title, steps, status)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM docs), ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		rec.Scenario.Feature,
		rec.Scenario.Title,
		stepsJSON,
		rec.Status.String(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// List returns records matching f, ordered by seq.
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	query := "SELECT id, seq, feature, title, steps, status FROM docs"
	var (
		clauses []string
		args    []any
	)
	if f.Status != nil {
		clauses = append(clauses, "status = ?")
		args = append(args, f.Status.String())
	}
	if f.Feature != "" {
		clauses = append(clauses, "feature = ?")
		args = append(args, f.Feature)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY seq ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query docs: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate docs: %w", err)
	}
	return records, nil
}

// Get returns the record with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, seq, feature, title, steps, status FROM docs WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Summary counts records per status.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM docs GROUP BY status")
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var sum Summary
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("scan summary: %w", err)
		}
		switch status {
		case "passed":
			sum.Passed = count
		case "failed":
			sum.Failed = count
		}
		sum.Total += count
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("iterate summary: %w", err)
	}
	return sum, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var (
		rec       Record
		stepsJSON string
		status    string
	)
	err := row.Scan(&rec.ID, &rec.Seq, &rec.Scenario.Feature, &rec.Scenario.Title, &stepsJSON, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan doc: %w", err)
	}
	if err := json.Unmarshal([]byte(stepsJSON), &rec.Scenario.Steps); err != nil {
		return Record{}, fmt.Errorf("doc %s: unmarshal steps: %w", rec.ID, err)
	}
	if rec.Status, err = ParseStatus(status); err != nil {
		return Record{}, fmt.Errorf("doc %s: %w", rec.ID, err)
	}
	return rec, nil
}

func marshalSteps(steps []scenario.Step) (string, error) {
	list := make([]any, len(steps))
	for i, st := range steps {
		list[i] = map[string]any{
			"kind":        string(st.Kind),
			"description": st.Description,
		}
	}
	data, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("marshal steps: %w", err)
	}
	return string(data), nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_docs_status ON docs(status, seq)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
