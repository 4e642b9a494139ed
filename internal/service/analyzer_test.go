package service

import (
	"context"
	"fmt"
	"testing"

	"feedback-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

type fakeStore struct {
	batches map[string]*models.Batch
	order   []string
	err     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{batches: make(map[string]*models.Batch)}
}

func (f *fakeStore) CreateBatch(ctx context.Context, batch *models.Batch) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.batches[batch.ID]; ok {
		return models.ErrDuplicateID
	}
	f.batches[batch.ID] = batch
	f.order = append(f.order, batch.ID)
	return nil
}

func (f *fakeStore) GetBatch(ctx context.Context, id string) (*models.Batch, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.batches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return b, nil
}

func (f *fakeStore) ListBatches(ctx context.Context) ([]models.BatchMeta, error) {
	if f.err != nil {
		return nil, f.err
	}
	metas := make([]models.BatchMeta, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		metas = append(metas, f.batches[f.order[i]].Meta())
	}
	return metas, nil
}

func (f *fakeStore) DeleteBatch(ctx context.Context, id string) error {
	if _, ok := f.batches[id]; !ok {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	delete(f.batches, id)
	return nil
}

const sampleCSV = "用户类型,内容,时间\n会员,希望能增加夜间模式功能,2024-01-01\n普通,登录时经常闪退,2024-01-02\n会员,,2024-01-03\n"

func TestIngest(t *testing.T) {
	store := newFakeStore()
	a := NewAnalyzer(store, zap.NewNop())

	view, err := a.Ingest(context.Background(), "feedback.csv", []byte(sampleCSV))
	require.NoError(t, err)

	// Column inference ran once for the batch.
	assert.Equal(t, "内容", view.ContentColumn)
	assert.Equal(t, "用户类型", view.UserTypeColumn)

	// The empty-content row was skipped.
	assert.Equal(t, 2, view.Stats.Total)

	features := view.Grouped[models.FeatureRequest]
	require.Len(t, features, 1)
	assert.Equal(t, "希望能增加夜间模式功能", features[0].Content)
	assert.Equal(t, "会员", features[0].UserType)

	bugs := view.Grouped[models.BugReport]
	require.Len(t, bugs, 1)
	assert.Equal(t, "登录时经常闪退", bugs[0].Content)

	// The batch was persisted with the same rows.
	stored, ok := store.batches[view.Batch.ID]
	require.True(t, ok)
	assert.Len(t, stored.Rows, 2)
	assert.Equal(t, []string{"用户类型", "内容", "时间"}, stored.Headers)
}

func TestIngestGBK(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(sampleCSV))
	require.NoError(t, err)

	a := NewAnalyzer(newFakeStore(), zap.NewNop())
	view, err := a.Ingest(context.Background(), "feedback.csv", raw)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.Total)
}

func TestIngestNoContentColumnFallsBackToFirst(t *testing.T) {
	store := newFakeStore()
	a := NewAnalyzer(store, zap.NewNop())

	view, err := a.Ingest(context.Background(), "f.csv", []byte("列A,列B\n希望增加新功能,x\n"))
	require.NoError(t, err)

	assert.Equal(t, "", view.ContentColumn)
	assert.Equal(t, 1, view.Stats.Total)
	require.Len(t, view.Grouped[models.FeatureRequest], 1)
	assert.Equal(t, models.UserTypeUnknown, view.Grouped[models.FeatureRequest][0].UserType)
}

func TestIngestFailureLeavesStoreUntouched(t *testing.T) {
	store := newFakeStore()
	a := NewAnalyzer(store, zap.NewNop())
	ctx := context.Background()

	_, err := a.Ingest(ctx, "bad.csv", []byte{0xFF, 0xFF, 0xFE})
	assert.ErrorIs(t, err, models.ErrEncoding)
	assert.Empty(t, store.batches)

	_, err = a.Ingest(ctx, "bad.csv", []byte("header only\n"))
	assert.ErrorIs(t, err, models.ErrMalformedInput)
	assert.Empty(t, store.batches)
}

func TestCategoryRows(t *testing.T) {
	store := newFakeStore()
	a := NewAnalyzer(store, zap.NewNop())
	ctx := context.Background()

	view, err := a.Ingest(ctx, "feedback.csv", []byte(sampleCSV))
	require.NoError(t, err)

	rows, err := a.CategoryRows(ctx, view.Batch.ID, "bug-report")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// A valid category with no matches is an empty list, not an error.
	rows, err = a.CategoryRows(ctx, view.Batch.ID, "payment-issue")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = a.CategoryRows(ctx, view.Batch.ID, "nonsense")
	assert.ErrorIs(t, err, models.ErrInvalidCategory)
}

func TestLatest(t *testing.T) {
	store := newFakeStore()
	a := NewAnalyzer(store, zap.NewNop())
	ctx := context.Background()

	view, err := a.Latest(ctx)
	require.NoError(t, err)
	assert.Nil(t, view)

	first, err := a.Ingest(ctx, "first.csv", []byte(sampleCSV))
	require.NoError(t, err)
	second, err := a.Ingest(ctx, "second.csv", []byte(sampleCSV))
	require.NoError(t, err)

	view, err = a.Latest(ctx)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, second.Batch.ID, view.Batch.ID)
	assert.NotEqual(t, first.Batch.ID, view.Batch.ID)
}
