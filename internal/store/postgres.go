package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/jobmerge/internal/model"
)

// PostgresStore keeps curated job postings in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and ensures the jobs table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the jobs table and index if they are missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createJobsTable, createJobsIndex} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("creating jobs schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, f model.StoreFilter) ([]model.Job, error) {
	query, args := buildFindQuery(postgresDialect, f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return jobs, nil
}

const postgresUpsert = `INSERT INTO jobs (` + jobColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		location = EXCLUDED.location,
		salary = EXCLUDED.salary,
		job_type = EXCLUDED.job_type,
		requirements = EXCLUDED.requirements,
		company_id = EXCLUDED.company_id,
		company_name = EXCLUDED.company_name,
		company_location = EXCLUDED.company_location,
		company_logo = EXCLUDED.company_logo,
		url = EXCLUDED.url,
		created_at = EXCLUDED.created_at`

func (s *PostgresStore) Insert(ctx context.Context, jobs []model.Job) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, job := range jobs {
		args, err := insertArgs(job)
		if err != nil {
			return fmt.Errorf("encoding job %s: %w", job.ID, err)
		}
		if _, err := tx.Exec(ctx, postgresUpsert, args...); err != nil {
			return fmt.Errorf("inserting job %s: %w", job.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
