// Package stats computes batch-scoped rollups. Everything here is a pure
// function of a batch's rows, recomputed on every read, so the derived
// numbers can never go stale against the stored rows.
package stats

import (
	"math"

	"feedback-service/internal/models"
)

// Summarize computes total count, user-type distribution and the
// nine-way category distribution for one batch. All nine categories are
// present in the result even with zero rows; percentages are rounded to
// one decimal and are all zero for an empty batch.
func Summarize(rows []models.FeedbackRow) *models.BatchStats {
	s := &models.BatchStats{
		Total:     len(rows),
		UserTypes: make(map[string]int),
	}

	counts := make(map[models.Category]int, len(models.Categories))
	for _, r := range rows {
		s.UserTypes[r.UserType]++
		counts[r.Category]++
	}

	s.Categories = make([]models.CategoryTally, 0, len(models.Categories))
	for _, c := range models.Categories {
		tally := models.CategoryTally{Category: c, Count: counts[c]}
		if s.Total > 0 {
			tally.Percentage = math.Round(float64(tally.Count)/float64(s.Total)*1000) / 10
		}
		s.Categories = append(s.Categories, tally)
	}

	return s
}

// Grouped splits rows by category for drill-down, preserving original
// upload order within each group. Every category key is present.
func Grouped(rows []models.FeedbackRow) map[models.Category][]models.FeedbackRow {
	grouped := make(map[models.Category][]models.FeedbackRow, len(models.Categories))
	for _, c := range models.Categories {
		grouped[c] = []models.FeedbackRow{}
	}
	for _, r := range rows {
		grouped[r.Category] = append(grouped[r.Category], r)
	}
	return grouped
}
