package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Lineage/internal/domain"
)

// RecordRepo — репозиторий индекса provenance-хэшей.
//
// Схема:
//
//	CREATE TABLE hash_records (
//	    id           UUID PRIMARY KEY,
//	    workflow     TEXT NOT NULL,
//	    job_id       TEXT NOT NULL,
//	    digest       TEXT NOT NULL,
//	    algo_version TEXT NOT NULL,
//	    computed_at  TIMESTAMPTZ NOT NULL,
//	    UNIQUE (workflow, job_id, digest)
//	);
type RecordRepo struct {
	pool *pgxpool.Pool
}

// NewRecordRepo создаёт новый RecordRepo.
func NewRecordRepo(pool *pgxpool.Pool) *RecordRepo {
	return &RecordRepo{pool: pool}
}

// Create сохраняет запись индекса.
// Повторная запись того же digest для пары (workflow, job_id)
// возвращает ErrAlreadyExists.
func (r *RecordRepo) Create(ctx context.Context, rec *domain.HashRecord) error {
	query := `
		INSERT INTO hash_records (id, workflow, job_id, digest, algo_version, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (workflow, job_id, digest) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.Workflow,
		rec.JobID,
		rec.Digest,
		rec.AlgoVersion,
		rec.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("insert hash record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// GetByDigest возвращает запись по digest.
func (r *RecordRepo) GetByDigest(ctx context.Context, digest string) (*domain.HashRecord, error) {
	query := `
		SELECT id, workflow, job_id, digest, algo_version, computed_at
		FROM hash_records
		WHERE digest = $1
	`
	rec := &domain.HashRecord{}
	err := r.pool.QueryRow(ctx, query, digest).Scan(
		&rec.ID,
		&rec.Workflow,
		&rec.JobID,
		&rec.Digest,
		&rec.AlgoVersion,
		&rec.ComputedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get hash record by digest: %w", err)
	}
	return rec, nil
}

// ListByWorkflow возвращает записи workflow, новые первыми.
func (r *RecordRepo) ListByWorkflow(ctx context.Context, workflow string, limit int) ([]domain.HashRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, workflow, job_id, digest, algo_version, computed_at
		FROM hash_records
		WHERE workflow = $1
		ORDER BY computed_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, workflow, limit)
	if err != nil {
		return nil, fmt.Errorf("list hash records: %w", err)
	}
	defer rows.Close()

	var records []domain.HashRecord
	for rows.Next() {
		var rec domain.HashRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Workflow,
			&rec.JobID,
			&rec.Digest,
			&rec.AlgoVersion,
			&rec.ComputedAt,
		); err != nil {
			return nil, fmt.Errorf("scan hash record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListWorkflows возвращает сводку по всем workflows в индексе.
func (r *RecordRepo) ListWorkflows(ctx context.Context) ([]domain.WorkflowSummary, error) {
	query := `
		SELECT workflow, COUNT(*), MAX(computed_at)
		FROM hash_records
		GROUP BY workflow
		ORDER BY workflow
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var summaries []domain.WorkflowSummary
	for rows.Next() {
		var s domain.WorkflowSummary
		if err := rows.Scan(&s.Workflow, &s.Records, &s.LastComputedAt); err != nil {
			return nil, fmt.Errorf("scan workflow summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteByVersion удаляет все записи с указанной версией алгоритма.
// Используется при bump'е версии: старые digests невалидны по построению.
func (r *RecordRepo) DeleteByVersion(ctx context.Context, algoVersion string) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM hash_records WHERE algo_version = $1`, algoVersion)
	if err != nil {
		return 0, fmt.Errorf("delete hash records by version: %w", err)
	}
	return tag.RowsAffected(), nil
}
