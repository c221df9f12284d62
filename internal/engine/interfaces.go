package engine

import (
	"context"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// Classifier resolves a free-text utterance to an intent. Implementations
// must be pure functions of their inputs.
type Classifier interface {
	Classify(stage model.Stage, utterance string) model.Intent
}

// Gate scores a computed result and emits review items for low-confidence
// fields.
type Gate interface {
	Evaluate(result model.TaxResult, session *model.Session) (confidence float64, items []model.ReviewItem)
}

// Completer is an optional remote reasoning collaborator that rephrases the
// deterministic response conversationally. Failures are recovered locally
// and never surfaced to the end user.
type Completer interface {
	Reply(ctx context.Context, session *model.Session, utterance, fallback string) (string, error)
}
