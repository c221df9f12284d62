package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

func TestClassify(t *testing.T) {
	c := New()

	tests := []struct {
		name       string
		stage      model.Stage
		utterance  string
		wantKind   model.IntentKind
		wantStatus model.FilingStatus
		wantAmount float64
		wantCount  int
	}{
		{
			name:      "greeting",
			stage:     model.StageIntake,
			utterance: "Hello! I'd like to get started",
			wantKind:  model.IntentGreeting,
		},
		{
			name:       "plain filing status",
			stage:      model.StageIntake,
			utterance:  "I'm filing single this year",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusSingle,
		},
		{
			name:       "married defaults to jointly",
			stage:      model.StageIntake,
			utterance:  "we're married",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusMarriedFilingJointly,
		},
		{
			name:       "married filing separately",
			stage:      model.StageIntake,
			utterance:  "married but we file separately",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusMarriedFilingSeparately,
		},
		{
			name:       "head of household",
			stage:      model.StageIntake,
			utterance:  "head of household",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusHeadOfHousehold,
		},
		{
			name:       "qualifying widow",
			stage:      model.StageIntake,
			utterance:  "I'm a qualifying widow",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusQualifyingWidow,
		},
		{
			name:       "status outranks dollar amount",
			stage:      model.StageIntake,
			utterance:  "I'm married and made $85,000",
			wantKind:   model.IntentDeclareFilingStatus,
			wantStatus: model.StatusMarriedFilingJointly,
		},
		{
			name:      "dependents",
			stage:     model.StageClassifying,
			utterance: "I have 2 kids",
			wantKind:  model.IntentDeclareDependents,
			wantCount: 2,
		},
		{
			name:       "income with keyword and amount",
			stage:      model.StageClassifying,
			utterance:  "my salary was $75,000 last year",
			wantKind:   model.IntentDeclareIncome,
			wantAmount: 75000,
		},
		{
			name:       "income picks the largest figure",
			stage:      model.StageClassifying,
			utterance:  "my W2 shows wages of 75000 and box 2 shows 12500",
			wantKind:   model.IntentDeclareIncome,
			wantAmount: 75000,
		},
		{
			name:       "bare amount while collecting income",
			stage:      model.StageClassifying,
			utterance:  "$75,000",
			wantKind:   model.IntentDeclareIncome,
			wantAmount: 75000,
		},
		{
			name:      "bare amount after computing is ambiguous",
			stage:     model.StageComputing,
			utterance: "$75,000",
			wantKind:  model.IntentUnrecognized,
		},
		{
			name:      "upload request",
			stage:     model.StageClassifying,
			utterance: "can I upload a photo of my W-2?",
			wantKind:  model.IntentUploadRedirect,
		},
		{
			name:      "deduction question",
			stage:     model.StageDeductions,
			utterance: "what deductions can I take?",
			wantKind:  model.IntentRequestDeductionInfo,
		},
		{
			name:      "more deductions",
			stage:     model.StageDeductions,
			utterance: "any other deductions I should know about?",
			wantKind:  model.IntentRequestMoreDeductions,
		},
		{
			name:      "itemizing counts as more deductions",
			stage:     model.StageDeductions,
			utterance: "should I itemize?",
			wantKind:  model.IntentRequestMoreDeductions,
		},
		{
			name:      "confirm compute",
			stage:     model.StageComputing,
			utterance: "yes, calculate my refund",
			wantKind:  model.IntentConfirmCompute,
		},
		{
			name:      "thanks",
			stage:     model.StageReview,
			utterance: "thank you!",
			wantKind:  model.IntentThanks,
		},
		{
			name:      "gibberish is unrecognized",
			stage:     model.StageIntake,
			utterance: "what is the airspeed velocity of an unladen swallow",
			wantKind:  model.IntentUnrecognized,
		},
		{
			name:      "empty input is unrecognized",
			stage:     model.StageIntake,
			utterance: "   ",
			wantKind:  model.IntentUnrecognized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.stage, tt.utterance)

			assert.Equal(t, tt.wantKind, got.Kind)
			if tt.wantStatus != "" {
				assert.Equal(t, tt.wantStatus, got.FilingStatus)
			}
			if tt.wantAmount > 0 {
				assert.InDelta(t, tt.wantAmount, got.Amount, 0.001)
				assert.Equal(t, model.IncomeSourceTyped, got.SourceKind)
			}
			if tt.wantCount > 0 {
				assert.Equal(t, tt.wantCount, got.Count)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := New()

	first := c.Classify(model.StageClassifying, "I earned $52,300.50 in wages")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Classify(model.StageClassifying, "I earned $52,300.50 in wages"))
	}
}

func TestParseAmountIgnoresSmallFigures(t *testing.T) {
	assert.Equal(t, 0.0, parseAmount("I have 2 kids and 1 job"))
	assert.Equal(t, 75000.0, parseAmount("box 1 says 75000"))
	assert.Equal(t, 52300.50, parseAmount("$52,300.50"))
}
