package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidStage      = errors.New("invalid session stage")
	ErrInvalidStatus     = errors.New("invalid review status")
	ErrInvalidSession    = errors.New("invalid session")
	ErrInvalidReviewItem = errors.New("invalid review item")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSession validates a session before persisting it.
func validateSession(session *model.Session) error {
	if session == nil {
		return fmt.Errorf("%w: session", ErrNilParameter)
	}
	if err := validateString(session.ID, "session.ID"); err != nil {
		return err
	}
	if !session.Stage.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStage, session.Stage)
	}
	if session.FilingStatus != "" && !session.FilingStatus.Valid() {
		return fmt.Errorf("%w: filing status %q", ErrInvalidSession, session.FilingStatus)
	}
	return nil
}

// validateReviewItem validates a review item before persisting it.
func validateReviewItem(item *model.ReviewItem) error {
	if item == nil {
		return fmt.Errorf("%w: item", ErrNilParameter)
	}
	if err := validateString(item.ID, "item.ID"); err != nil {
		return err
	}
	if err := validateString(item.SessionID, "item.SessionID"); err != nil {
		return err
	}
	if err := validateString(item.FieldName, "item.FieldName"); err != nil {
		return err
	}
	if !item.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, item.Status)
	}
	return nil
}
