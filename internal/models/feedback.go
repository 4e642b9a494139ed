package models

import (
	"fmt"
	"time"
)

// Category is one of the nine fixed feedback categories.
type Category string

const (
	FeatureRequest  Category = "feature-request"
	BugReport       Category = "bug-report"
	UserExperience  Category = "user-experience"
	Performance     Category = "performance"
	AccountIssue    Category = "account-issue"
	PaymentIssue    Category = "payment-issue"
	ContentIssue    Category = "content-issue"
	CustomerService Category = "customer-service"
	Other           Category = "other"
)

// Categories lists all nine labels. The order is canonical: the classifier
// scans keyword rules in this order (minus Other), and aggregated views
// report tallies in this order.
var Categories = []Category{
	FeatureRequest,
	BugReport,
	UserExperience,
	Performance,
	AccountIssue,
	PaymentIssue,
	ContentIssue,
	CustomerService,
	Other,
}

// ParseCategory validates a category label from an external caller.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// UserTypeUnknown is the sentinel stored when no user-type column was
// inferred or the cell was empty. Never the empty string.
const UserTypeUnknown = "unknown"

// FeedbackRow is one classified input record. Rows are created during
// ingestion, classified immediately and never mutated afterwards.
type FeedbackRow struct {
	Index    int      `json:"index"`
	Raw      []string `json:"raw"` // original cells, in file column order
	Content  string   `json:"content"`
	UserType string   `json:"user_type"`
	Category Category `json:"category"`
}

// Batch is one upload event with all of its classified rows.
type Batch struct {
	ID             string        `json:"id"`
	SourceFilename string        `json:"filename"`
	Headers        []string      `json:"headers"` // original header row
	UploadedAt     time.Time     `json:"uploaded_at"`
	TotalCount     int           `json:"total_count"`
	Rows           []FeedbackRow `json:"rows,omitempty"`
}

// Meta strips the rows for listings.
func (b *Batch) Meta() BatchMeta {
	return BatchMeta{
		ID:             b.ID,
		SourceFilename: b.SourceFilename,
		UploadedAt:     b.UploadedAt,
		TotalCount:     b.TotalCount,
	}
}

// BatchMeta is batch metadata without rows, as returned by listings.
type BatchMeta struct {
	ID             string    `db:"id" json:"id"`
	SourceFilename string    `db:"filename" json:"filename"`
	UploadedAt     time.Time `db:"uploaded_at" json:"uploaded_at"`
	TotalCount     int       `db:"total_count" json:"total_count"`
}

// CategoryTally is the per-category slice of a batch's distribution.
// Derived data, recomputed from rows on every read.
type CategoryTally struct {
	Category   Category `json:"category"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// BatchStats aggregates one batch: total row count, user-type
// distribution and the nine-way category distribution (zero-filled).
type BatchStats struct {
	Total      int             `json:"total"`
	UserTypes  map[string]int  `json:"user_types"`
	Categories []CategoryTally `json:"categories"`
}

// BatchView is the full read-side shape served for one batch.
type BatchView struct {
	Batch          BatchMeta                  `json:"batch"`
	Headers        []string                   `json:"headers"`
	ContentColumn  string                     `json:"content_column"`
	UserTypeColumn string                     `json:"user_type_column"`
	Stats          *BatchStats                `json:"stats"`
	Grouped        map[Category][]FeedbackRow `json:"grouped"`
}
