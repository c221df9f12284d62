package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// GetSession retrieves a session by id. Returns common.ErrNotFound when no
// session exists for the id.
func (s *SQLiteStorage) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		session      model.Session
		filingStatus sql.NullString
		incomeSource sql.NullString
		fieldConf    sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, stage, filing_status, income, withholding,
		       state_withholding, dependents, income_source,
		       confidence, field_confidence, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`, id).Scan(
		&session.ID,
		&session.Stage,
		&filingStatus,
		&session.CumulativeIncome,
		&session.CumulativeWithholding,
		&session.StateWithholding,
		&session.Dependents,
		&incomeSource,
		&session.Confidence,
		&fieldConf,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if filingStatus.Valid {
		session.FilingStatus = model.FilingStatus(filingStatus.String)
	}
	if incomeSource.Valid {
		session.IncomeSource = model.IncomeSource(incomeSource.String)
	}
	session.FieldConfidence = make(map[string]float64)
	if fieldConf.Valid && fieldConf.String != "" {
		if err := json.Unmarshal([]byte(fieldConf.String), &session.FieldConfidence); err != nil {
			return nil, fmt.Errorf("failed to parse field confidence: %w", err)
		}
	}

	return &session, nil
}

// SaveSession inserts or updates a session. The whole row is replaced in one
// statement so readers never observe a partially updated session.
func (s *SQLiteStorage) SaveSession(ctx context.Context, session *model.Session) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateSession(session); err != nil {
		return err
	}

	fieldConf, err := json.Marshal(session.FieldConfidence)
	if err != nil {
		return fmt.Errorf("failed to marshal field confidence: %w", err)
	}

	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, stage, filing_status, income, withholding,
			state_withholding, dependents, income_source,
			confidence, field_confidence, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage = excluded.stage,
			filing_status = excluded.filing_status,
			income = excluded.income,
			withholding = excluded.withholding,
			state_withholding = excluded.state_withholding,
			dependents = excluded.dependents,
			income_source = excluded.income_source,
			confidence = excluded.confidence,
			field_confidence = excluded.field_confidence,
			updated_at = excluded.updated_at
	`,
		session.ID,
		string(session.Stage),
		nullString(string(session.FilingStatus)),
		session.CumulativeIncome,
		session.CumulativeWithholding,
		session.StateWithholding,
		session.Dependents,
		nullString(string(session.IncomeSource)),
		session.Confidence,
		string(fieldConf),
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
