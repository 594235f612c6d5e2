// Package store persists indexes in SQLite and answers definition and
// reference queries against the most recent run.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/phobologic/pyscip/internal/model"
	"github.com/phobologic/pyscip/internal/symbol"
)

const driverName = "sqlite"

// ErrLocalSymbol is returned when a query names a file-local symbol, which
// has no meaning across documents.
var ErrLocalSymbol = errors.New("local symbols cannot be queried across files")

// ErrNoRuns is returned by queries against an empty store.
var ErrNoRuns = errors.New("store has no index runs")

// Store is a SQLite-backed index store.
type Store struct {
	db *sql.DB
}

// Run describes one saved index.
type Run struct {
	ID             string
	ProjectName    string
	ProjectVersion string
	PythonVersion  string
	Created        time.Time
	Documents      int
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}

	dsn := "file::memory:?_pragma=foreign_keys(ON)"
	if clean != ":memory:" {
		if info, err := os.Stat(clean); err == nil && info.IsDir() {
			return nil, fmt.Errorf("store path %q is a directory, expected file", clean)
		}
		if dir := filepath.Dir(clean); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create store directory %q: %w", dir, err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", clean)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", clean, err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", clean, err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveIndex stores idx as a new run and returns the run id.
func (s *Store) SaveIndex(ctx context.Context, idx *model.Index) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin save tx: %w", err)
	}
	if err := saveIndex(ctx, tx, id, idx); err != nil {
		_ = tx.Rollback()
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit save tx: %w", err)
	}
	return id, nil
}

func saveIndex(ctx context.Context, tx *sql.Tx, id string, idx *model.Index) error {
	md := idx.Metadata
	_, err := tx.ExecContext(ctx, `INSERT INTO runs (id, project_root, project_name, project_version, python_version, tool_version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, md.ProjectRoot, md.ProjectName, md.ProjectVersion, md.PythonVersion, md.ToolVersion,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	docStmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (run_id, path, module) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare document insert: %w", err)
	}
	defer docStmt.Close()
	symStmt, err := tx.PrepareContext(ctx, `INSERT INTO symbols (run_id, path, symbol, documentation) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbol insert: %w", err)
	}
	defer symStmt.Close()
	occStmt, err := tx.PrepareContext(ctx, `INSERT INTO occurrences (run_id, path, symbol, start_line, start_char, end_line, end_char, role)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare occurrence insert: %w", err)
	}
	defer occStmt.Close()

	for _, doc := range idx.Documents {
		if _, err := docStmt.ExecContext(ctx, id, doc.RelativePath, doc.Module); err != nil {
			return fmt.Errorf("insert document %s: %w", doc.RelativePath, err)
		}
		for _, si := range doc.Symbols {
			blob, err := json.Marshal(si.Documentation)
			if err != nil {
				return fmt.Errorf("marshal documentation: %w", err)
			}
			if _, err := symStmt.ExecContext(ctx, id, doc.RelativePath, si.Symbol, string(blob)); err != nil {
				return fmt.Errorf("insert symbol %s: %w", si.Symbol, err)
			}
		}
		for _, occ := range doc.Occurrences {
			r := occ.Range
			if _, err := occStmt.ExecContext(ctx, id, doc.RelativePath, occ.Symbol,
				r.Start.Line, r.Start.Character, r.End.Line, r.End.Character, int(occ.Role)); err != nil {
				return fmt.Errorf("insert occurrence: %w", err)
			}
		}
	}

	for _, f := range idx.Failures {
		if _, err := tx.ExecContext(ctx, `INSERT INTO failures (run_id, path, reason) VALUES (?, ?, ?)`, id, f.Path, f.Reason); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}
	return nil
}

// LatestRun returns the most recently saved run.
func (s *Store) LatestRun(ctx context.Context) (Run, error) {
	var (
		r       Run
		created string
	)
	err := s.db.QueryRowContext(ctx, `SELECT r.id, r.project_name, r.project_version, r.python_version, r.created_at,
  (SELECT COUNT(*) FROM documents d WHERE d.run_id = r.id)
FROM runs r ORDER BY r.seq DESC LIMIT 1`).Scan(&r.ID, &r.ProjectName, &r.ProjectVersion, &r.PythonVersion, &created, &r.Documents)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRuns
	}
	if err != nil {
		return Run{}, fmt.Errorf("query latest run: %w", err)
	}
	r.Created, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, fmt.Errorf("parse run time %q: %w", created, err)
	}
	return r, nil
}

// References returns every occurrence of sym in the latest run, in path and
// position order.
func (s *Store) References(ctx context.Context, sym string) ([]model.Location, error) {
	return s.locations(ctx, sym, false)
}

// Definitions returns the definition occurrences of sym in the latest run.
func (s *Store) Definitions(ctx context.Context, sym string) ([]model.Location, error) {
	return s.locations(ctx, sym, true)
}

func (s *Store) locations(ctx context.Context, sym string, defsOnly bool) ([]model.Location, error) {
	if symbol.IsLocalString(sym) {
		return nil, ErrLocalSymbol
	}
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT path, start_line, start_char, end_line, end_char, role
FROM occurrences WHERE run_id = ? AND symbol = ?`
	if defsOnly {
		query += fmt.Sprintf(" AND (role & %d) != 0", int(model.Definition))
	}
	query += " ORDER BY path, start_line, start_char"

	rows, err := s.db.QueryContext(ctx, query, run.ID, sym)
	if err != nil {
		return nil, fmt.Errorf("query occurrences: %w", err)
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		var (
			loc  model.Location
			role int
		)
		r := &loc.Range
		if err := rows.Scan(&loc.Path, &r.Start.Line, &r.Start.Character, &r.End.Line, &r.End.Character, &role); err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		loc.Role = model.Role(role)
		out = append(out, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrences: %w", err)
	}
	return out, nil
}

// Documentation returns the documentation recorded for sym in the latest
// run, from its first symbol information record that has any.
func (s *Store) Documentation(ctx context.Context, sym string) ([]string, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT documentation FROM symbols WHERE run_id = ? AND symbol = ? ORDER BY path, rowid`, run.ID, sym)
	if err != nil {
		return nil, fmt.Errorf("query documentation: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("scan documentation: %w", err)
		}
		var docs []string
		if err := json.Unmarshal([]byte(blob), &docs); err != nil {
			return nil, fmt.Errorf("unmarshal documentation: %w", err)
		}
		if len(docs) > 0 {
			return docs, nil
		}
	}
	return nil, rows.Err()
}

// Failures returns the files aborted in the latest run.
func (s *Store) Failures(ctx context.Context) ([]model.Failure, error) {
	run, err := s.LatestRun(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT path, reason FROM failures WHERE run_id = ? ORDER BY path`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()
	var out []model.Failure
	for rows.Next() {
		var f model.Failure
		if err := rows.Scan(&f.Path, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
