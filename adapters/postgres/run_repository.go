// Package postgres persists evaluation runs.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goclue/domain/core"
	"goclue/domain/enrichment"
	"goclue/domain/evaluation"
	"goclue/domain/partition"
	"goclue/ports"
)

// runRepository implements the RunRepository interface
type runRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a new evaluation-run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &runRepository{db: db}
}

// Connect opens the database and ensures the runs table exists
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS evaluation_runs (
		run_id TEXT PRIMARY KEY,
		selected_k INTEGER NOT NULL,
		method TEXT NOT NULL,
		repeats INTEGER NOT NULL,
		evaluation JSONB NOT NULL,
		best_partition JSONB,
		enrichment JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create evaluation_runs table: %w", err)
	}
	return nil
}

// upsertRunQuery refreshes every run-derived column on conflict, so re-saving
// a run after re-optimization replaces the whole stored record, not just the
// partition columns.
const upsertRunQuery = `INSERT INTO evaluation_runs (
	run_id, selected_k, method, repeats, evaluation, best_partition, enrichment, created_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
) ON CONFLICT (run_id) DO UPDATE SET
	selected_k = EXCLUDED.selected_k,
	method = EXCLUDED.method,
	repeats = EXCLUDED.repeats,
	evaluation = EXCLUDED.evaluation,
	best_partition = EXCLUDED.best_partition,
	enrichment = EXCLUDED.enrichment`

// Save inserts or replaces a completed run
func (r *runRepository) Save(ctx context.Context, record *ports.RunRecord) error {
	evalJSON, err := json.Marshal(record.Evaluation)
	if err != nil {
		return fmt.Errorf("failed to marshal evaluation: %w", err)
	}
	var bestJSON, enrichmentJSON []byte
	if record.Best != nil {
		if bestJSON, err = json.Marshal(record.Best); err != nil {
			return fmt.Errorf("failed to marshal partition: %w", err)
		}
	}
	if record.Enrichment != nil {
		if enrichmentJSON, err = json.Marshal(record.Enrichment); err != nil {
			return fmt.Errorf("failed to marshal enrichment: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, upsertRunQuery,
		record.RunID, record.Evaluation.SelectedK, record.Evaluation.Method,
		record.Evaluation.Repeats, evalJSON, bestJSON, enrichmentJSON, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID
func (r *runRepository) GetByID(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	query := `SELECT run_id, evaluation, best_partition, enrichment, created_at
	FROM evaluation_runs WHERE run_id = $1`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return record, nil
}

// List retrieves runs newest first with pagination
func (r *runRepository) List(ctx context.Context, limit, offset int) ([]*ports.RunRecord, error) {
	query := `SELECT run_id, evaluation, best_partition, enrichment, created_at
	FROM evaluation_runs
	ORDER BY created_at DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*ports.RunRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*ports.RunRecord, error) {
	var record ports.RunRecord
	var evalJSON, bestJSON, enrichmentJSON []byte

	if err := row.Scan(&record.RunID, &evalJSON, &bestJSON, &enrichmentJSON, &record.CreatedAt); err != nil {
		return nil, err
	}

	record.Evaluation = &evaluation.Evaluation{}
	if err := json.Unmarshal(evalJSON, record.Evaluation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal evaluation: %w", err)
	}
	if len(bestJSON) > 0 {
		record.Best = &partition.Partition{}
		if err := json.Unmarshal(bestJSON, record.Best); err != nil {
			return nil, fmt.Errorf("failed to unmarshal partition: %w", err)
		}
	}
	if len(enrichmentJSON) > 0 {
		record.Enrichment = &enrichment.Result{}
		if err := json.Unmarshal(enrichmentJSON, record.Enrichment); err != nil {
			return nil, fmt.Errorf("failed to unmarshal enrichment: %w", err)
		}
	}
	return &record, nil
}
