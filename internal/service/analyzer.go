package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"feedback-service/internal/classifier"
	"feedback-service/internal/ingest"
	"feedback-service/internal/models"
	"feedback-service/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BatchStore is the persistence contract the analyzer depends on.
type BatchStore interface {
	CreateBatch(ctx context.Context, batch *models.Batch) error
	GetBatch(ctx context.Context, id string) (*models.Batch, error)
	ListBatches(ctx context.Context) ([]models.BatchMeta, error)
	DeleteBatch(ctx context.Context, id string) error
}

// Analyzer runs the ingestion pipeline and serves aggregated batch views.
type Analyzer struct {
	store      BatchStore
	classifier *classifier.Classifier
	logger     *zap.Logger
}

// NewAnalyzer creates the analyzer with the default classification policy.
func NewAnalyzer(store BatchStore, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		store:      store,
		classifier: classifier.New(),
		logger:     logger,
	}
}

// Ingest runs the full upload pipeline: decode, parse, infer columns,
// classify every row, then persist the batch atomically. Any failure
// before the store call leaves the store untouched; there is no partial
// batch.
func (a *Analyzer) Ingest(ctx context.Context, filename string, raw []byte) (*models.BatchView, error) {
	text, err := ingest.DecodeText(raw)
	if err != nil {
		return nil, err
	}

	table, err := ingest.Parse(text)
	if err != nil {
		return nil, err
	}

	roles := ingest.DetectColumns(table.Headers)

	// Column inference happens once per batch; every row below is
	// resolved with the same decision.
	contentIdx := roles.ContentIndex
	if contentIdx < 0 {
		// No recognizable content header: fall back to the first column
		// rather than rejecting the file.
		contentIdx = 0
	}

	rows := make([]models.FeedbackRow, 0, len(table.Records))
	for _, rec := range table.Records {
		if len(rec) <= contentIdx {
			continue
		}
		content := strings.TrimSpace(rec[contentIdx])
		if content == "" {
			continue
		}

		userType := models.UserTypeUnknown
		if roles.UserTypeIndex >= 0 && len(rec) > roles.UserTypeIndex {
			if v := strings.TrimSpace(rec[roles.UserTypeIndex]); v != "" {
				userType = v
			}
		}

		rows = append(rows, models.FeedbackRow{
			Index:    len(rows),
			Raw:      rec,
			Content:  content,
			UserType: userType,
			Category: a.classifier.Classify(content),
		})
	}

	batch := &models.Batch{
		ID:             uuid.NewString(),
		SourceFilename: filename,
		Headers:        table.Headers,
		UploadedAt:     time.Now().UTC(),
		TotalCount:     len(rows),
		Rows:           rows,
	}

	if err := a.store.CreateBatch(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to store batch: %w", err)
	}

	a.logger.Info("Batch ingested",
		zap.String("batch_id", batch.ID),
		zap.String("filename", filename),
		zap.Int("rows", len(rows)),
		zap.String("content_column", roles.ContentName),
		zap.String("user_type_column", roles.UserTypeName))

	return a.view(batch), nil
}

// View returns the aggregated view of one stored batch.
func (a *Analyzer) View(ctx context.Context, id string) (*models.BatchView, error) {
	batch, err := a.store.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}
	return a.view(batch), nil
}

// Latest returns the most recently uploaded batch's view, or nil when
// the store is empty.
func (a *Analyzer) Latest(ctx context.Context) (*models.BatchView, error) {
	metas, err := a.store.ListBatches(ctx)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, nil
	}
	return a.View(ctx, metas[0].ID)
}

// List returns batch metadata, most recent first.
func (a *Analyzer) List(ctx context.Context) ([]models.BatchMeta, error) {
	return a.store.ListBatches(ctx)
}

// Delete removes a batch and all its rows.
func (a *Analyzer) Delete(ctx context.Context, id string) error {
	return a.store.DeleteBatch(ctx, id)
}

// CategoryRows returns the drill-down rows of one category within one
// batch, in original upload order. An unknown label is
// models.ErrInvalidCategory; a valid category with no rows is an empty
// slice, not an error.
func (a *Analyzer) CategoryRows(ctx context.Context, id, category string) ([]models.FeedbackRow, error) {
	cat, err := models.ParseCategory(category)
	if err != nil {
		return nil, err
	}

	batch, err := a.store.GetBatch(ctx, id)
	if err != nil {
		return nil, err
	}

	return stats.Grouped(batch.Rows)[cat], nil
}

// ExportCSV writes a batch's classified rows as CSV, grouped by category
// in canonical order.
func (a *Analyzer) ExportCSV(ctx context.Context, id string, w io.Writer) error {
	batch, err := a.store.GetBatch(ctx, id)
	if err != nil {
		return err
	}

	grouped := stats.Grouped(batch.Rows)
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"category", "content", "user_type"}); err != nil {
		return err
	}
	for _, cat := range models.Categories {
		for _, row := range grouped[cat] {
			if err := writer.Write([]string{string(cat), row.Content, row.UserType}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Categories returns the fixed category vocabulary.
func (a *Analyzer) Categories() []models.Category {
	return models.Categories
}

func (a *Analyzer) view(batch *models.Batch) *models.BatchView {
	roles := ingest.DetectColumns(batch.Headers)
	return &models.BatchView{
		Batch:          batch.Meta(),
		Headers:        batch.Headers,
		ContentColumn:  roles.ContentName,
		UserTypeColumn: roles.UserTypeName,
		Stats:          stats.Summarize(batch.Rows),
		Grouped:        stats.Grouped(batch.Rows),
	}
}
