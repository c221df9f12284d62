package storage

import (
	"context"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// SeedDemoData inserts the demo review items used by the reviewer dashboard
// in demo mode. Safe to call repeatedly; existing rows are overwritten.
func (s *SQLiteStorage) SeedDemoData(ctx context.Context) error {
	items := []model.ReviewItem{
		{
			ID:         "demo-review-1",
			SessionID:  "demo-session",
			FieldName:  "Filing Status Optimization",
			FieldValue: "single",
			Reason:     "User may qualify for Head of Household status; has dependent child",
			Confidence: 0.68,
			Status:     model.ReviewPending,
			CreatedAt:  time.Now(),
		},
		{
			ID:         "demo-review-2",
			SessionID:  "demo-session",
			FieldName:  "Charitable Deduction Verification",
			FieldValue: "$5,200",
			Reason:     "Amount exceeds typical range for income level; verify receipts",
			Confidence: 0.45,
			Status:     model.ReviewPending,
			CreatedAt:  time.Now(),
		},
	}

	for i := range items {
		if err := s.SaveReviewItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}
