// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"

	"critique/internal/models"
)

// RatingFrom is the truncated mean of count scores summing to total, or nil
// when there are no scores.
func RatingFrom(total, count int64) *int {
	if count <= 0 {
		return nil
	}
	r := int(total / count)
	return &r
}

// attachRatings recomputes Rating for every title from live review rows.
func (s *CatalogService) attachRatings(ctx context.Context, titles []models.Title) error {
	if len(titles) == 0 {
		return nil
	}
	ids := make([]uint, len(titles))
	for i := range titles {
		ids[i] = titles[i].ID
	}

	stats, err := s.titles.ScoreStats(ctx, ids)
	if err != nil {
		return err
	}
	for i := range titles {
		st := stats[titles[i].ID]
		titles[i].Rating = RatingFrom(st.Total, st.Count)
	}
	return nil
}
