package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/service"
)

// SaveReviewItem inserts or updates a review item.
func (s *SQLiteStorage) SaveReviewItem(ctx context.Context, item *model.ReviewItem) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReviewItem(item); err != nil {
		return err
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_items (
			id, session_id, field_name, field_value, reason,
			confidence, status, reviewer_notes, resolved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			field_name = excluded.field_name,
			field_value = excluded.field_value,
			reason = excluded.reason,
			confidence = excluded.confidence,
			status = excluded.status,
			reviewer_notes = excluded.reviewer_notes,
			resolved_at = excluded.resolved_at
	`,
		item.ID,
		item.SessionID,
		item.FieldName,
		item.FieldValue,
		item.Reason,
		item.Confidence,
		string(item.Status),
		nullString(item.ReviewerNotes),
		item.ResolvedAt,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save review item: %w", err)
	}

	return nil
}

// GetReviewItem retrieves a review item by id. Returns common.ErrNotFound
// when the id is absent.
func (s *SQLiteStorage) GetReviewItem(ctx context.Context, id string) (*model.ReviewItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, field_name, field_value, reason,
		       confidence, status, reviewer_notes, resolved_at, created_at
		FROM review_items
		WHERE id = ?
	`, id)

	item, err := scanReviewItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: review item %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review item: %w", err)
	}

	return item, nil
}

// ListReviewItems retrieves review items, newest first, applying any filter
// fields that are set.
func (s *SQLiteStorage) ListReviewItems(ctx context.Context, filter service.ReviewFilter) ([]model.ReviewItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, session_id, field_name, field_value, reason,
		       confidence, status, reviewer_notes, resolved_at, created_at
		FROM review_items`
	var (
		conds []string
		args  []any
	)
	if filter.SessionID != "" {
		conds = append(conds, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(filter.Status))
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.ReviewItem
	for rows.Next() {
		item, err := scanReviewItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// ResolveReviewItem sets a reviewer disposition on an item. Re-resolving an
// already-terminal item overwrites status, notes, and resolved_at. Returns
// common.ErrNotFound when the id is absent.
func (s *SQLiteStorage) ResolveReviewItem(ctx context.Context, id string, status model.ReviewStatus, notes string) (*model.ReviewItem, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if !status.Terminal() {
		return nil, fmt.Errorf("%w: %q is not a terminal status", ErrInvalidStatus, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	resolvedAt := time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE review_items
		SET status = ?, reviewer_notes = ?, resolved_at = ?
		WHERE id = ?
	`, string(status), nullString(notes), resolvedAt, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve review item: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check resolution result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: review item %s", common.ErrNotFound, id)
	}

	// Record the disposition for auditing
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO review_history (review_id, status, reviewer_notes)
		VALUES (?, ?, ?)
	`, id, string(status), nullString(notes)); err != nil {
		return nil, fmt.Errorf("failed to record review history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit resolution: %w", err)
	}

	return s.GetReviewItem(ctx, id)
}

// rowScanner abstracts sql.Row and sql.Rows for scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReviewItem(row rowScanner) (*model.ReviewItem, error) {
	var (
		item       model.ReviewItem
		statusStr  string
		fieldValue sql.NullString
		notes      sql.NullString
		resolvedAt sql.NullTime
	)

	err := row.Scan(
		&item.ID,
		&item.SessionID,
		&item.FieldName,
		&fieldValue,
		&item.Reason,
		&item.Confidence,
		&statusStr,
		&notes,
		&resolvedAt,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Status = model.ReviewStatus(statusStr)
	if fieldValue.Valid {
		item.FieldValue = fieldValue.String
	}
	if notes.Valid {
		item.ReviewerNotes = notes.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		item.ResolvedAt = &t
	}

	return &item, nil
}
