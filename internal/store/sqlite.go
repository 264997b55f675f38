package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/latwalk/internal/simulation"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteRunStore implements RunStore using SQLite for persistence.
type SQLiteRunStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// NewSQLiteRunStore opens (creating if needed) the run database under
// <projectRoot>/.latwalk/latwalk.db.
func NewSQLiteRunStore(projectRoot string) (*SQLiteRunStore, error) {
	if _, err := EnsureLocalDataDir(projectRoot); err != nil {
		return nil, err
	}
	return OpenSQLiteRunStore(DatabasePath(projectRoot))
}

// OpenSQLiteRunStore opens the run database at dbPath.
func OpenSQLiteRunStore(dbPath string) (*SQLiteRunStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteRunStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteRunStore) Path() string {
	return s.dbPath
}

// SaveRun stores the run and all of its positions in one transaction.
func (s *SQLiteRunStore) SaveRun(ctx context.Context, run *Run) (int64, error) {
	if run == nil || run.Table == nil {
		return 0, fmt.Errorf("run with a position table is required")
	}
	if run.Table.Rows() != run.Config.Steps+1 || run.Table.Walkers() != run.Config.Walkers {
		return 0, fmt.Errorf("table shape %dx%d does not match config %d steps, %d walkers",
			run.Table.Rows(), run.Table.Walkers(), run.Config.Steps, run.Config.Walkers)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	summary := Summarize(run)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			created_at, label, seed, walkers, steps, frame_interval,
			record_origin, export_frames, export_trajectory, export_distance,
			final_mean, max_deviation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		createdAt.Format(time.RFC3339Nano),
		nullString(run.Label),
		strconv.FormatUint(run.Seed, 10),
		run.Config.Walkers,
		run.Config.Steps,
		run.Config.FrameInterval,
		boolToInt(run.Config.RecordOrigin),
		boolToInt(run.Config.ExportFrames),
		boolToInt(run.Config.ExportTrajectory),
		boolToInt(run.Config.ExportDistance),
		summary.FinalMean,
		summary.MaxDeviation,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO positions (run_id, step, walker, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare position insert: %w", err)
	}
	defer stmt.Close()

	for step := 0; step < run.Table.Rows(); step++ {
		for w := 0; w < run.Table.Walkers(); w++ {
			p := run.Table.At(step, w)
			if _, err := stmt.ExecContext(ctx, id, step, w, p.X, p.Y); err != nil {
				return 0, fmt.Errorf("failed to insert position (step %d, walker %d): %w", step, w, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	run.CreatedAt = createdAt
	return id, nil
}

// GetRun loads a run and rebuilds its position table.
func (s *SQLiteRunStore) GetRun(ctx context.Context, id int64) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, label, seed, walkers, steps, frame_interval,
		       record_origin, export_frames, export_trajectory, export_distance
		FROM runs WHERE id = ?`, id)

	var (
		run                                    Run
		createdAt, seed                        string
		label                                  sql.NullString
		recordOrigin, exFrames, exTraj, exDist int
	)
	err := row.Scan(&run.ID, &createdAt, &label, &seed,
		&run.Config.Walkers, &run.Config.Steps, &run.Config.FrameInterval,
		&recordOrigin, &exFrames, &exTraj, &exDist)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %d: %w", id, err)
	}

	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("run %d: bad created_at %q: %w", id, createdAt, err)
	}
	if run.Seed, err = strconv.ParseUint(seed, 10, 64); err != nil {
		return nil, fmt.Errorf("run %d: bad seed %q: %w", id, seed, err)
	}
	run.Label = label.String
	run.Config.RecordOrigin = recordOrigin != 0
	run.Config.ExportFrames = exFrames != 0
	run.Config.ExportTrajectory = exTraj != 0
	run.Config.ExportDistance = exDist != 0

	table, err := s.loadTable(ctx, id, run.Config.Steps+1, run.Config.Walkers)
	if err != nil {
		return nil, err
	}
	run.Table = table

	return &run, nil
}

// loadTable reads every position row of a run into a new table.
func (s *SQLiteRunStore) loadTable(ctx context.Context, id int64, rows, walkers int) (*simulation.PositionTable, error) {
	table := simulation.NewPositionTable(rows, walkers)

	posRows, err := s.db.QueryContext(ctx,
		`SELECT step, walker, x, y FROM positions WHERE run_id = ? ORDER BY step, walker`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions for run %d: %w", id, err)
	}
	defer posRows.Close()

	count := 0
	for posRows.Next() {
		var step, w, x, y int
		if err := posRows.Scan(&step, &w, &x, &y); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		if step < 0 || step >= rows || w < 0 || w >= walkers {
			return nil, fmt.Errorf("run %d: position (step %d, walker %d) outside %dx%d table", id, step, w, rows, walkers)
		}
		table.X[step][w] = x
		table.Y[step][w] = y
		count++
	}
	if err := posRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read positions for run %d: %w", id, err)
	}
	if count != rows*walkers {
		return nil, fmt.Errorf("run %d: found %d positions, want %d", id, count, rows*walkers)
	}

	return table, nil
}

// ListRuns returns run summaries, newest first.
func (s *SQLiteRunStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, created_at, label, seed, walkers, steps, frame_interval,
		       record_origin, final_mean, max_deviation
		FROM runs ORDER BY id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			sum             RunSummary
			createdAt, seed string
			label           sql.NullString
			recordOrigin    int
		)
		if err := rows.Scan(&sum.ID, &createdAt, &label, &seed, &sum.Walkers, &sum.Steps,
			&sum.FrameInterval, &recordOrigin, &sum.FinalMean, &sum.MaxDeviation); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		sum.Seed, _ = strconv.ParseUint(seed, 10, 64)
		sum.Label = label.String
		sum.RecordOrigin = recordOrigin != 0
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	return out, nil
}

// DeleteRun removes a run; positions are removed by cascade.
func (s *SQLiteRunStore) DeleteRun(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteRunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
