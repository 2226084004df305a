// Package store keeps run history in Postgres. History is best-effort
// bookkeeping for dashboards and the posting side; manifest.json on disk
// stays the source of truth for a run.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carecontent/batchgen/internal/batch"
	"carecontent/batchgen/internal/logx"
)

type Store struct {
	pool *pgxpool.Pool
}

// RunSummary is one row of run history.
type RunSummary struct {
	RunID       string
	GeneratedAt time.Time
	Total       int
	Successful  int
	Failed      int
	SizeBytes   int64
}

func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the history tables when they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	logx.Info("db migrate")
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS batch_runs (
			run_id       text PRIMARY KEY,
			generated_at timestamptz NOT NULL,
			total        integer NOT NULL,
			successful   integer NOT NULL,
			failed       integer NOT NULL,
			size_bytes   bigint NOT NULL,
			created_at   timestamptz NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS batch_items (
			run_id       text NOT NULL REFERENCES batch_runs(run_id) ON DELETE CASCADE,
			task_id      text NOT NULL,
			content_type text NOT NULL,
			output_path  text NOT NULL,
			success      boolean NOT NULL,
			error        text,
			duration_ms  bigint NOT NULL,
			size_bytes   bigint NOT NULL,
			meta         jsonb,
			PRIMARY KEY (run_id, task_id)
		);
	`)
	return err
}

// RecordRun inserts the run and all of its items in one transaction.
func (s *Store) RecordRun(ctx context.Context, m batch.RunManifest) error {
	logx.Debug("db record run", "run_id", m.RunID, "items", len(m.Results))
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO batch_runs (run_id, generated_at, total, successful, failed, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, m.RunID, m.GeneratedAt, m.Total, m.Successful, m.Failed, m.TotalSizeBytes)
	if err != nil {
		return err
	}

	for _, r := range m.Results {
		var meta []byte
		if len(r.Metadata) > 0 {
			meta, err = json.Marshal(r.Metadata)
			if err != nil {
				return err
			}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO batch_items (run_id, task_id, content_type, output_path, success, error, duration_ms, size_bytes, meta)
			VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)
		`, m.RunID, r.TaskID, r.ContentType, r.OutputPath, r.Success, r.Error, r.Duration.Milliseconds(), r.FileSize, meta)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// RecentRuns returns the newest runs first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, generated_at, total, successful, failed, size_bytes
		FROM batch_runs
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunID, &r.GeneratedAt, &r.Total, &r.Successful, &r.Failed, &r.SizeBytes); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}
