// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// ReviewFilter defines filtering options for review queue queries.
type ReviewFilter struct {
	SessionID string
	Status    model.ReviewStatus
	Limit     int
}

// Storage defines the contract for our persistence layer. The engine never
// touches a database directly; it loads and saves sessions through this
// interface so the core stays testable without a server process.
type Storage interface {
	// Session operations
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error

	// Review queue operations
	SaveReviewItem(ctx context.Context, item *model.ReviewItem) error
	GetReviewItem(ctx context.Context, id string) (*model.ReviewItem, error)
	ListReviewItems(ctx context.Context, filter ReviewFilter) ([]model.ReviewItem, error)
	ResolveReviewItem(ctx context.Context, id string, status model.ReviewStatus, notes string) (*model.ReviewItem, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations against flaky
// collaborators.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
