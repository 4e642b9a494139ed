// Package repository persists batches and their classified rows in
// SQLite. Batches are immutable once written: the store supports create,
// read, list and whole-batch delete, nothing else.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"feedback-service/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// BatchRepository is the batch store backed by a single SQLite file.
type BatchRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewBatchRepository opens (or creates) the database and applies pending
// migrations.
func NewBatchRepository(dbPath string, logger *zap.Logger) (*BatchRepository, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer; serializing through a single connection
	// avoids SQLITE_BUSY under the low concurrency we expect.
	db.SetMaxOpenConns(1)

	repo := &BatchRepository{db: db, logger: logger}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Batch repository initialized", zap.String("db_path", dbPath))
	return repo, nil
}

func (r *BatchRepository) migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := sqlite.WithInstance(r.db.DB, &sqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

type batchRecord struct {
	ID         string    `db:"id"`
	Filename   string    `db:"filename"`
	Headers    string    `db:"headers"`
	TotalCount int       `db:"total_count"`
	UploadedAt time.Time `db:"uploaded_at"`
}

type rowRecord struct {
	BatchID  string `db:"batch_id"`
	RowIndex int    `db:"row_index"`
	Content  string `db:"content"`
	UserType string `db:"user_type"`
	Category string `db:"category"`
	Raw      string `db:"raw_fields"`
}

// CreateBatch writes batch metadata and all rows in one transaction, so
// a reader either sees the whole batch or none of it. An existing ID is
// models.ErrDuplicateID.
func (r *BatchRepository) CreateBatch(ctx context.Context, batch *models.Batch) error {
	headersJSON, err := json.Marshal(batch.Headers)
	if err != nil {
		return fmt.Errorf("failed to encode headers: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.GetContext(ctx, &exists, "SELECT COUNT(*) FROM batches WHERE id = ?", batch.ID)
	if err != nil {
		return fmt.Errorf("failed to check batch id: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", models.ErrDuplicateID, batch.ID)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO batches (id, filename, headers, total_count, uploaded_at) VALUES (?, ?, ?, ?, ?)",
		batch.ID, batch.SourceFilename, string(headersJSON), batch.TotalCount, batch.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, row := range batch.Rows {
		rawJSON, err := json.Marshal(row.Raw)
		if err != nil {
			return fmt.Errorf("failed to encode row fields: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO feedback_rows (batch_id, row_index, content, user_type, category, raw_fields) VALUES (?, ?, ?, ?, ?, ?)",
			batch.ID, row.Index, row.Content, row.UserType, string(row.Category), string(rawJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to insert row %d: %w", row.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	r.logger.Info("Batch stored",
		zap.String("batch_id", batch.ID),
		zap.Int("rows", len(batch.Rows)))
	return nil
}

// GetBatch returns one batch with all rows in original upload order, or
// models.ErrNotFound.
func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	var rec batchRecord
	err := r.db.GetContext(ctx, &rec, "SELECT id, filename, headers, total_count, uploaded_at FROM batches WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	var headers []string
	if err := json.Unmarshal([]byte(rec.Headers), &headers); err != nil {
		return nil, fmt.Errorf("failed to decode headers: %w", err)
	}

	var rowRecs []rowRecord
	err = r.db.SelectContext(ctx, &rowRecs,
		"SELECT batch_id, row_index, content, user_type, category, raw_fields FROM feedback_rows WHERE batch_id = ? ORDER BY row_index",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}

	batch := &models.Batch{
		ID:             rec.ID,
		SourceFilename: rec.Filename,
		Headers:        headers,
		UploadedAt:     rec.UploadedAt,
		TotalCount:     rec.TotalCount,
		Rows:           make([]models.FeedbackRow, 0, len(rowRecs)),
	}

	for _, rr := range rowRecs {
		var raw []string
		if err := json.Unmarshal([]byte(rr.Raw), &raw); err != nil {
			return nil, fmt.Errorf("failed to decode row %d fields: %w", rr.RowIndex, err)
		}
		batch.Rows = append(batch.Rows, models.FeedbackRow{
			Index:    rr.RowIndex,
			Raw:      raw,
			Content:  rr.Content,
			UserType: rr.UserType,
			Category: models.Category(rr.Category),
		})
	}

	return batch, nil
}

// ListBatches returns metadata for every stored batch, most recent first.
func (r *BatchRepository) ListBatches(ctx context.Context) ([]models.BatchMeta, error) {
	var metas []models.BatchMeta
	err := r.db.SelectContext(ctx, &metas,
		"SELECT id, filename, total_count, uploaded_at FROM batches ORDER BY uploaded_at DESC, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return metas, nil
}

// DeleteBatch removes a batch and all its rows in one transaction.
// Missing ID is models.ErrNotFound; rows are never orphaned.
func (r *BatchRepository) DeleteBatch(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM feedback_rows WHERE batch_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete rows: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM batches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	r.logger.Info("Batch deleted", zap.String("batch_id", id))
	return nil
}

// Close closes the database connection.
func (r *BatchRepository) Close() error {
	return r.db.Close()
}
