// Package engine implements the per-session conversation state machine that
// drives a tax filing from intake through review.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taxpilot-ai/taxpilot/internal/common"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/service"
	"github.com/taxpilot-ai/taxpilot/internal/tax"
)

// Field confidences assigned per declaration source. Extracted figures rank
// below typed ones because OCR misreads are a known failure mode; defaulted
// values rank lowest.
const (
	confidenceTyped     = 0.90
	confidenceExtracted = 0.80
	confidenceDefaulted = 0.50
)

// Session confidence ladder. Confidence only ratchets upward as the
// conversation collects more information; the compute stage derives its
// value from the gate instead of a constant.
const (
	confidenceBaseline   = 0.05
	confidenceStatusSet  = 0.15
	confidenceIncomeSet  = 0.45
	confidenceDeductions = 0.72
)

// remoteTimeout bounds the optional remote reasoning call.
const remoteTimeout = 30 * time.Second

// Engine orchestrates conversation transitions. All session mutation goes
// through here, serialized per session id.
type Engine struct {
	storage    service.Storage
	classifier Classifier
	gate       Gate
	remote     Completer
	locks      *sessionLocks
}

// New creates an engine. remote may be nil, in which case every response
// uses the local deterministic text.
func New(storage service.Storage, classifier Classifier, gate Gate, remote Completer) *Engine {
	return &Engine{
		storage:    storage,
		classifier: classifier,
		gate:       gate,
		remote:     remote,
		locks:      newSessionLocks(),
	}
}

// HandleMessage processes one user utterance for a session and always
// produces a response: classifier and state-machine errors are recovered
// into clarifying text, never propagated. Only storage failures return an
// error.
func (e *Engine) HandleMessage(ctx context.Context, sessionID, utterance string) (*model.ChatResponse, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	session, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	intent := e.classifier.Classify(session.Stage, utterance)

	slog.Debug("classified utterance",
		"session_id", sessionID,
		"stage", session.Stage,
		"intent", intent.Kind)

	resp, err := e.apply(ctx, session, intent)
	if err != nil {
		return nil, err
	}

	if err := e.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	e.maybeRephrase(ctx, session, utterance, resp)

	return resp, nil
}

// ApplyIntent runs a pre-classified intent against a session. The upload
// flow uses this to feed extracted W-2 figures through the same income
// transition the chat path takes.
func (e *Engine) ApplyIntent(ctx context.Context, sessionID string, intent model.Intent) (*model.ChatResponse, error) {
	unlock := e.locks.acquire(sessionID)
	defer unlock()

	session, err := e.loadOrCreate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	resp, err := e.apply(ctx, session, intent)
	if err != nil {
		return nil, err
	}

	if err := e.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return resp, nil
}

// Snapshot returns the current state of a session without mutating it.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*model.Session, error) {
	return e.storage.GetSession(ctx, sessionID)
}

// ComputeResult recomputes the tax result for a completed session. Returns
// ErrIncompleteSession when filing status or income is missing.
func (e *Engine) ComputeResult(ctx context.Context, sessionID string) (*model.TaxResult, error) {
	session, err := e.storage.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.HasFilingStatus() || !session.HasIncome() {
		return nil, fmt.Errorf("%w: session %s", common.ErrIncompleteSession, sessionID)
	}

	result, err := tax.Compute(
		session.CumulativeIncome,
		session.FilingStatus,
		tax.StandardDeduction(session.FilingStatus),
		session.CumulativeWithholding,
	)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (e *Engine) loadOrCreate(ctx context.Context, sessionID string) (*model.Session, error) {
	session, err := e.storage.GetSession(ctx, sessionID)
	if errors.Is(err, common.ErrNotFound) {
		session = model.NewSession(sessionID)
		session.Confidence = confidenceBaseline
		return session, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// apply performs the stage transition for a classified intent and stamps the
// response with review state. Pending flags survive past the compute turn, so
// every response in the review stage reports them until a preparer clears the
// queue.
func (e *Engine) apply(ctx context.Context, session *model.Session, intent model.Intent) (*model.ChatResponse, error) {
	resp, err := e.dispatch(ctx, session, intent)
	if err != nil {
		return nil, err
	}

	if session.Stage == model.StageReview {
		needsReview, err := e.hasPendingReviews(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		resp.State.NeedsReview = needsReview
	}

	return resp, nil
}

// dispatch routes an intent to its transition handler. Each case mutates the
// session fully before returning so no caller can observe a half-applied
// transition.
func (e *Engine) dispatch(ctx context.Context, session *model.Session, intent model.Intent) (*model.ChatResponse, error) {
	switch intent.Kind {
	case model.IntentGreeting:
		return e.applyGreeting(session), nil
	case model.IntentDeclareFilingStatus:
		return e.applyFilingStatus(session, intent), nil
	case model.IntentDeclareIncome:
		return e.applyIncome(session, intent), nil
	case model.IntentDeclareDependents:
		return e.applyDependents(session, intent), nil
	case model.IntentRequestDeductionInfo:
		return e.applyDeductionInfo(session), nil
	case model.IntentRequestMoreDeductions:
		return respond(session, moreDeductionsMessage(session)), nil
	case model.IntentConfirmCompute:
		return e.applyCompute(ctx, session)
	case model.IntentUploadRedirect:
		return respond(session, uploadRedirectMessage), nil
	case model.IntentThanks:
		return respond(session, thanksMessage), nil
	default:
		return respond(session, unrecognizedMessage), nil
	}
}

func (e *Engine) applyGreeting(session *model.Session) *model.ChatResponse {
	if session.Confidence < confidenceBaseline {
		session.Confidence = confidenceBaseline
	}
	resp := respond(session, greetingMessage)
	resp.Cards = append(resp.Cards, progressCard(session))
	return resp
}

func (e *Engine) applyFilingStatus(session *model.Session, intent model.Intent) *model.ChatResponse {
	if !intent.FilingStatus.Valid() {
		return respond(session, askFilingStatusMessage)
	}

	// Changing status later overwrites without regressing the stage; any
	// previously returned result is stale and the user must recompute.
	session.FilingStatus = intent.FilingStatus
	session.SetFieldConfidence(model.FieldFilingStatus, confidenceTyped)
	if session.Stage == model.StageIntake {
		session.Advance(model.StageClassifying)
	}
	raiseConfidence(session, confidenceStatusSet)

	resp := respond(session, filingStatusMessage(session))
	resp.Cards = append(resp.Cards, progressCard(session))
	return resp
}

func (e *Engine) applyIncome(session *model.Session, intent model.Intent) *model.ChatResponse {
	if intent.Amount <= 0 {
		return respond(session, askIncomeMessage)
	}

	session.CumulativeIncome = intent.Amount
	session.IncomeSource = intent.SourceKind
	if intent.Withheld > 0 {
		session.CumulativeWithholding = intent.Withheld
	} else {
		session.CumulativeWithholding = intent.Amount * tax.FederalWithholdingRate
	}
	session.StateWithholding = intent.Amount * tax.StateWithholdingRate

	fieldConf := confidenceTyped
	if intent.SourceKind == model.IncomeSourceExtracted {
		fieldConf = confidenceExtracted
	}
	session.SetFieldConfidence(model.FieldIncome, fieldConf)

	if session.Stage == model.StageClassifying {
		session.Advance(model.StageDeductions)
		raiseConfidence(session, confidenceIncomeSet)
	}

	resp := respond(session, incomeMessage(session))
	resp.Cards = append(resp.Cards, incomeCard(session), progressCard(session))
	return resp
}

func (e *Engine) applyDependents(session *model.Session, intent model.Intent) *model.ChatResponse {
	session.Dependents = intent.Count
	return respond(session, dependentsMessage(session))
}

func (e *Engine) applyDeductionInfo(session *model.Session) *model.ChatResponse {
	status := session.FilingStatus
	var note string
	if !session.HasFilingStatus() {
		// Deduction lookup before the status is known: fall back to the
		// most conservative deduction and mark the field low confidence.
		slog.Warn("deduction lookup without filing status, defaulting to single",
			"session_id", session.ID,
			"error", common.ErrMissingFilingStatus)
		status = model.StatusSingle
		session.SetFieldConfidence(model.FieldDeductions, confidenceDefaulted)
		note = missingStatusNote
	} else {
		session.SetFieldConfidence(model.FieldDeductions, confidenceTyped)
	}

	deduction := tax.StandardDeduction(status)
	if session.Stage == model.StageDeductions {
		session.Advance(model.StageComputing)
		raiseConfidence(session, confidenceDeductions)
	}

	resp := respond(session, deductionMessage(status, deduction)+note)
	resp.Cards = append(resp.Cards, deductionCard(deduction), progressCard(session))
	return resp
}

func (e *Engine) applyCompute(ctx context.Context, session *model.Session) (*model.ChatResponse, error) {
	if !session.HasFilingStatus() || !session.HasIncome() {
		// Incomplete sessions get a prompt for the missing field, not a
		// crash; the stage does not advance.
		slog.Info("compute requested on incomplete session",
			"session_id", session.ID,
			"has_status", session.HasFilingStatus(),
			"has_income", session.HasIncome(),
			"error", common.ErrIncompleteSession)
		return respond(session, incompleteSessionMessage(session)), nil
	}

	deductions := tax.StandardDeduction(session.FilingStatus)
	result, err := tax.Compute(
		session.CumulativeIncome,
		session.FilingStatus,
		deductions,
		session.CumulativeWithholding,
	)
	if err != nil {
		// Negative figures can only come from corrupted state; respond with
		// a clarification rather than failing the request.
		slog.Error("tax computation rejected", "session_id", session.ID, "error", err)
		return respond(session, invalidInputMessage), nil
	}

	confidence, items := e.gate.Evaluate(result, session)
	for i := range items {
		if err := e.storage.SaveReviewItem(ctx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to enqueue review item: %w", err)
		}
	}

	session.Advance(model.StageReview)
	raiseConfidence(session, confidence)

	resp := &model.ChatResponse{
		Message: resultMessage(result, confidence, len(items)),
		State: model.StageInfo{
			CurrentStage: session.Stage,
			Confidence:   session.Confidence,
		},
	}
	resp.Cards = append(resp.Cards, refundCard(result))
	for _, item := range items {
		resp.Cards = append(resp.Cards, reviewCard(item))
	}
	return resp, nil
}

func (e *Engine) hasPendingReviews(ctx context.Context, sessionID string) (bool, error) {
	pending, err := e.storage.ListReviewItems(ctx, service.ReviewFilter{
		SessionID: sessionID,
		Status:    model.ReviewPending,
		Limit:     1,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check pending reviews: %w", err)
	}
	return len(pending) > 0, nil
}

// maybeRephrase asks the remote reasoning collaborator to phrase the reply
// conversationally. Any failure keeps the deterministic text; the error is
// logged and never reaches the user.
func (e *Engine) maybeRephrase(ctx context.Context, session *model.Session, utterance string, resp *model.ChatResponse) {
	if e.remote == nil {
		return
	}

	remoteCtx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	var reply string
	err := common.WithRetry(remoteCtx, func() error {
		var replyErr error
		reply, replyErr = e.remote.Reply(remoteCtx, session, utterance, resp.Message)
		if replyErr != nil {
			return &common.RetryableError{Err: replyErr, Retryable: true}
		}
		return nil
	}, service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 250 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		slog.Warn("remote reasoning unavailable, using local response",
			"session_id", session.ID,
			"error", fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err))
		return
	}
	if reply != "" {
		resp.Message = reply
	}
}

// raiseConfidence ratchets the session confidence upward; it never lowers
// it, keeping confidence monotonically non-decreasing across stages.
func raiseConfidence(session *model.Session, to float64) {
	if to > session.Confidence {
		session.Confidence = to
	}
}

// respond builds a card-less response with current stage info.
func respond(session *model.Session, message string) *model.ChatResponse {
	return &model.ChatResponse{
		Message: message,
		Cards:   []model.Card{},
		State: model.StageInfo{
			CurrentStage: session.Stage,
			Confidence:   session.Confidence,
		},
	}
}
