package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxpilot-ai/taxpilot/internal/intent"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/review"
	"github.com/taxpilot-ai/taxpilot/internal/service"
	"github.com/taxpilot-ai/taxpilot/internal/storage"
)

// stubRemote is a canned remote reasoning collaborator.
type stubRemote struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubRemote) Reply(_ context.Context, _ *model.Session, _, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func newTestEngine(t *testing.T, remote Completer) (*Engine, service.Storage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return New(store, intent.New(), review.NewGate(), remote), store
}

func TestHandleMessageFullConversation(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	steps := []struct {
		utterance string
		wantStage model.Stage
	}{
		{"hello", model.StageIntake},
		{"I'm filing single", model.StageClassifying},
		{"my wages were $75,000", model.StageDeductions},
		{"what deductions can I take?", model.StageComputing},
		{"yes, calculate my refund", model.StageReview},
	}

	var lastConfidence float64
	for _, step := range steps {
		resp, err := eng.HandleMessage(ctx, "session-1", step.utterance)
		require.NoError(t, err, "utterance %q", step.utterance)

		assert.Equal(t, step.wantStage, resp.State.CurrentStage, "after %q", step.utterance)
		assert.NotEmpty(t, resp.Message)
		assert.GreaterOrEqual(t, resp.State.Confidence, lastConfidence,
			"confidence regressed after %q", step.utterance)
		lastConfidence = resp.State.Confidence
	}

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageReview, session.Stage)
	assert.Equal(t, model.StatusSingle, session.FilingStatus)
	assert.InDelta(t, 75000, session.CumulativeIncome, 0.001)
	assert.InDelta(t, 75000*0.167, session.CumulativeWithholding, 0.001)
	assert.InDelta(t, 75000*0.05, session.StateWithholding, 0.001)
}

func TestHandleMessageComputeCards(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	for _, utterance := range []string{"I'm single", "$75,000 in wages", "deductions please"} {
		_, err := eng.HandleMessage(ctx, "session-1", utterance)
		require.NoError(t, err)
	}

	resp, err := eng.HandleMessage(ctx, "session-1", "calculate it")
	require.NoError(t, err)

	require.NotEmpty(t, resp.Cards)
	assert.Equal(t, model.CardRefund, resp.Cards[0].Type)
	assert.InDelta(t, 8114.0, resp.Cards[0].Data["federal_tax"].(float64), 0.001)
	assert.InDelta(t, 60000.0, resp.Cards[0].Data["taxable_income"].(float64), 0.001)
}

func TestHandleMessageComputeWithoutIncome(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.HandleMessage(ctx, "session-1", "I'm filing single")
	require.NoError(t, err)

	resp, err := eng.HandleMessage(ctx, "session-1", "calculate my refund")
	require.NoError(t, err)

	// Compute on an incomplete session prompts for the gap instead of
	// advancing or erroring.
	assert.Equal(t, model.StageClassifying, resp.State.CurrentStage)
	assert.Contains(t, resp.Message, "income")

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StageClassifying, session.Stage)
}

func TestHandleMessageIncomeBeforeStatus(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.HandleMessage(ctx, "session-1", "my salary was $60,000")
	require.NoError(t, err)

	// Income is recorded even though the conversation is still at intake.
	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.InDelta(t, 60000, session.CumulativeIncome, 0.001)
	assert.Equal(t, model.StageIntake, session.Stage)

	resp, err := eng.HandleMessage(ctx, "session-1", "compute my taxes")
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "filing status")
}

func TestHandleMessageDeductionsWithoutStatus(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	resp, err := eng.HandleMessage(ctx, "session-1", "what deductions can I claim?")
	require.NoError(t, err)

	// The single-filer deduction is quoted with a caveat, and the field is
	// marked low confidence.
	assert.Contains(t, resp.Message, "$15,000")
	assert.Contains(t, resp.Message, "assumed Single")

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.50, session.FieldConfidence[model.FieldDeductions], 0.001)
}

func TestHandleMessageUnrecognizedKeepsState(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.HandleMessage(ctx, "session-1", "I'm filing single")
	require.NoError(t, err)

	resp, err := eng.HandleMessage(ctx, "session-1", "tell me about llamas")
	require.NoError(t, err)

	assert.Equal(t, model.StageClassifying, resp.State.CurrentStage)

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSingle, session.FilingStatus)
	assert.Equal(t, model.StageClassifying, session.Stage)
}

func TestHandleMessageRedeclarationDoesNotRegress(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	for _, utterance := range []string{"I'm single", "wages of $75,000"} {
		_, err := eng.HandleMessage(ctx, "session-1", utterance)
		require.NoError(t, err)
	}

	// Changing filing status mid-conversation overwrites the value but the
	// stage stays where it was.
	_, err := eng.HandleMessage(ctx, "session-1", "actually I'm head of household")
	require.NoError(t, err)

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusHeadOfHousehold, session.FilingStatus)
	assert.Equal(t, model.StageDeductions, session.Stage)
}

func TestHandleMessageFlagsReviewItems(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	for _, utterance := range []string{"I'm single", "I have 1 child", "wages of $75,000", "deductions?"} {
		_, err := eng.HandleMessage(ctx, "session-1", utterance)
		require.NoError(t, err)
	}

	resp, err := eng.HandleMessage(ctx, "session-1", "calculate my refund")
	require.NoError(t, err)

	assert.True(t, resp.State.NeedsReview)

	items, err := store.ListReviewItems(ctx, service.ReviewFilter{
		SessionID: "session-1",
		Status:    model.ReviewPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	assert.Equal(t, "Filing Status Optimization", items[0].FieldName)

	var found bool
	for _, card := range resp.Cards {
		if card.Type == model.CardReview {
			found = true
		}
	}
	assert.True(t, found, "expected a review card in the response")
}

func TestHandleMessageReviewFlagPersistsAcrossTurns(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	for _, utterance := range []string{"I'm single", "I have 1 child", "wages of $75,000", "deductions?", "calculate my refund"} {
		_, err := eng.HandleMessage(ctx, "session-1", utterance)
		require.NoError(t, err)
	}

	// A later message in the review stage still reports the open flags.
	resp, err := eng.HandleMessage(ctx, "session-1", "thanks!")
	require.NoError(t, err)
	assert.True(t, resp.State.NeedsReview)

	items, err := store.ListReviewItems(ctx, service.ReviewFilter{
		SessionID: "session-1",
		Status:    model.ReviewPending,
	})
	require.NoError(t, err)
	require.NotEmpty(t, items)
	for _, item := range items {
		_, err := store.ResolveReviewItem(ctx, item.ID, model.ReviewApproved, "verified")
		require.NoError(t, err)
	}

	// Once the queue is clear the flag drops.
	resp, err = eng.HandleMessage(ctx, "session-1", "thanks!")
	require.NoError(t, err)
	assert.False(t, resp.State.NeedsReview)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0"},
		{8114, "8,114"},
		{1001.99, "1,001.99"},
		{1001.999, "1,002"},
		{999.999, "1,000"},
		{1234.5, "1,234.50"},
		{-4411, "-4,411"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.amount), "formatAmount(%v)", tt.amount)
	}
}

func TestHandleMessageRemoteRephrases(t *testing.T) {
	remote := &stubRemote{reply: "Sure thing, let's get your taxes started!"}
	eng, _ := newTestEngine(t, remote)

	resp, err := eng.HandleMessage(context.Background(), "session-1", "hello")
	require.NoError(t, err)

	assert.Equal(t, "Sure thing, let's get your taxes started!", resp.Message)
	assert.Equal(t, 1, remote.calls)
}

func TestHandleMessageRemoteFailureFallsBack(t *testing.T) {
	remote := &stubRemote{err: errors.New("connection refused")}
	eng, _ := newTestEngine(t, remote)

	resp, err := eng.HandleMessage(context.Background(), "session-1", "hello")
	require.NoError(t, err)

	// The deterministic text survives; the remote error never surfaces.
	assert.Contains(t, resp.Message, "filing status")
	assert.GreaterOrEqual(t, remote.calls, 1)
}

func TestHandleMessageConcurrentSameSession(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	utterances := []string{
		"I'm filing single",
		"wages of $75,000",
		"what about deductions?",
		"I have 2 kids",
	}

	var wg sync.WaitGroup
	errs := make([]error, len(utterances))
	for i, utterance := range utterances {
		wg.Add(1)
		go func(i int, utterance string) {
			defer wg.Done()
			_, errs[i] = eng.HandleMessage(ctx, "session-1", utterance)
		}(i, utterance)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "utterance %q", utterances[i])
	}

	// Whatever the interleaving, the stored session is internally
	// consistent: each declared value landed exactly once.
	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusSingle, session.FilingStatus)
	assert.InDelta(t, 75000, session.CumulativeIncome, 0.001)
	assert.Equal(t, 2, session.Dependents)
}

func TestComputeResultIncompleteSession(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.HandleMessage(ctx, "session-1", "I'm filing single")
	require.NoError(t, err)

	_, err = eng.ComputeResult(ctx, "session-1")
	assert.Error(t, err)
}

func TestComputeResultAfterConversation(t *testing.T) {
	eng, _ := newTestEngine(t, nil)
	ctx := context.Background()

	for _, utterance := range []string{"I'm single", "wages of $75,000"} {
		_, err := eng.HandleMessage(ctx, "session-1", utterance)
		require.NoError(t, err)
	}

	result, err := eng.ComputeResult(ctx, "session-1")
	require.NoError(t, err)

	assert.InDelta(t, 60000, result.TaxableIncome, 0.001)
	assert.InDelta(t, 8114, result.TaxOwed, 0.001)
	assert.InDelta(t, 4411, result.RefundOrOwed, 0.001)
}

func TestApplyIntentExtractedIncome(t *testing.T) {
	eng, store := newTestEngine(t, nil)
	ctx := context.Background()

	_, err := eng.HandleMessage(ctx, "session-1", "I'm filing single")
	require.NoError(t, err)

	resp, err := eng.ApplyIntent(ctx, "session-1", model.Intent{
		Kind:       model.IntentDeclareIncome,
		SourceKind: model.IncomeSourceExtracted,
		Amount:     75000,
		Withheld:   12500,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StageDeductions, resp.State.CurrentStage)

	session, err := store.GetSession(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, model.IncomeSourceExtracted, session.IncomeSource)
	// Document withholding overrides the estimate.
	assert.InDelta(t, 12500, session.CumulativeWithholding, 0.001)
	assert.InDelta(t, 0.80, session.FieldConfidence[model.FieldIncome], 0.001)
}
