package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"leads-dashboard/models"
)

// PostgresArchive stores a snapshot of each run's cleaned leads, so the last
// good dataset can still be reported when the sheet is unreachable.
type PostgresArchive struct {
	db *sql.DB
}

// NewPostgresArchive opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresArchive.
func NewPostgresArchive(ctx context.Context, dsn string) (*PostgresArchive, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 5; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pa := &PostgresArchive{db: db}
	if err := pa.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pa, nil
}

func (pa *PostgresArchive) migrate(ctx context.Context) error {
	_, err := pa.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS lead_snapshots (
			id            SERIAL PRIMARY KEY,
			run_id        UUID         NOT NULL,
			position      INTEGER      NOT NULL,
			lead_at       TIMESTAMPTZ,
			name          TEXT         NOT NULL DEFAULT '',
			phone         TEXT         NOT NULL DEFAULT '',
			reference     TEXT         NOT NULL DEFAULT '',
			interest      BOOLEAN      NOT NULL DEFAULT FALSE,
			interest_raw  TEXT         NOT NULL DEFAULT '',
			property_type VARCHAR(32)  NOT NULL,
			status        TEXT         NOT NULL,
			origin        TEXT         NOT NULL DEFAULT '',
			archived_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (run_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_lead_snapshots_run      ON lead_snapshots(run_id);
		CREATE INDEX IF NOT EXISTS idx_lead_snapshots_archived ON lead_snapshots(archived_at);
	`)
	return err
}

// leadColumns is the number of bound parameters per inserted lead.
const leadColumns = 11

// Write batch-inserts one run's leads inside a transaction.
func (pa *PostgresArchive) Write(ctx context.Context, runID string, leads []*models.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := pa.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const batchSize = 50
	for i := 0; i < len(leads); i += batchSize {
		end := i + batchSize
		if end > len(leads) {
			end = len(leads)
		}
		query, args := insertBatch(runID, i, leads[i:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("postgres: insert batch at %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

// insertBatch builds one multi-row INSERT; offset is the position of batch[0]
// within the run.
func insertBatch(runID string, offset int, batch []*models.Lead) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*leadColumns)

	for idx, l := range batch {
		base := idx * leadColumns
		placeholders := make([]string, leadColumns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")

		var leadAt interface{}
		if l.HasTimestamp() {
			leadAt = *l.Timestamp
		}
		valueArgs = append(valueArgs,
			runID, offset+idx, leadAt, l.Name, l.Phone, l.Reference,
			l.Interest, l.InterestRaw, string(l.PropertyType), l.Status, l.Origin)
	}

	query := fmt.Sprintf(`
		INSERT INTO lead_snapshots
			(run_id, position, lead_at, name, phone, reference, interest, interest_raw, property_type, status, origin)
		VALUES %s
		ON CONFLICT (run_id, position) DO NOTHING
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// FetchLatest returns the leads of the most recently archived run, in their
// original order. It returns models.ErrEmptyDataset when nothing is archived.
func (pa *PostgresArchive) FetchLatest(ctx context.Context, loc *time.Location) ([]*models.Lead, error) {
	rows, err := pa.db.QueryContext(ctx, `
		SELECT lead_at, name, phone, reference, interest, interest_raw, property_type, status, origin
		FROM lead_snapshots
		WHERE run_id = (
			SELECT run_id FROM lead_snapshots ORDER BY archived_at DESC, id DESC LIMIT 1
		)
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch latest: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l := &models.Lead{}
		var leadAt sql.NullTime
		var kind string
		if err := rows.Scan(
			&leadAt, &l.Name, &l.Phone, &l.Reference, &l.Interest,
			&l.InterestRaw, &kind, &l.Status, &l.Origin,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		if leadAt.Valid {
			ts := leadAt.Time.In(loc)
			l.Timestamp = &ts
		}
		l.PropertyType = models.PropertyType(kind)
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", err)
	}
	if len(leads) == 0 {
		return nil, fmt.Errorf("postgres: no archived run: %w", models.ErrEmptyDataset)
	}
	return leads, nil
}

func (pa *PostgresArchive) Close() error {
	return pa.db.Close()
}
