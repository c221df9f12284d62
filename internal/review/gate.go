// Package review implements confidence scoring for computed tax results and
// the heuristic checks that escalate low-confidence fields to a human.
package review

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/tax"
)

// DefaultThreshold is the score below which a check produces a review item.
const DefaultThreshold = 0.70

// baseConfidence is the starting confidence for a fully computed return,
// reduced per triggered heuristic.
const baseConfidence = 0.85

// materialSavings is the tax reduction under an alternative filing status
// that is worth a human look.
const materialSavings = 1000

// largeRefund is the refund size above which figures get double-checked.
const largeRefund = 5000

// check is one heuristic over a computed result. It returns a score in
// [0,1]: the confidence that the named field is correct as filed. Scores
// below the gate threshold flag the field.
type check struct {
	run  func(result model.TaxResult, session *model.Session) (score float64, value, reason string)
	name string
	// penalty is subtracted from the session confidence when the check flags.
	penalty float64
}

// Gate post-processes computed results: it derives the result's confidence
// from the session's inputs and emits pending review items for any heuristic
// scoring below the threshold. The gate is additive; items accumulate across
// a session's lifetime and are never dropped here.
type Gate struct {
	checks    []check
	threshold float64
}

// NewGate creates a gate with the default checks and threshold.
func NewGate() *Gate {
	return &Gate{
		threshold: DefaultThreshold,
		checks: []check{
			{name: "Filing Status Optimization", run: checkFilingStatus, penalty: 0.10},
			{name: "Withholding Rate", run: checkWithholdingRate, penalty: 0.05},
			{name: "Large Refund Amount", run: checkLargeRefund, penalty: 0.05},
		},
	}
}

// NewGateWithThreshold creates a gate with a custom flagging threshold.
func NewGateWithThreshold(threshold float64) *Gate {
	g := NewGate()
	g.threshold = threshold
	return g
}

// Evaluate scores a computed result and returns the result confidence along
// with any review items that need human disposition. Each check scoring
// below the threshold yields exactly one pending item; checks at or above it
// never do. The returned confidence is capped at the minimum confidence of
// the session's constituent inputs.
func (g *Gate) Evaluate(result model.TaxResult, session *model.Session) (float64, []model.ReviewItem) {
	confidence := baseConfidence
	var items []model.ReviewItem

	for _, c := range g.checks {
		score, value, reason := c.run(result, session)
		if score >= g.threshold {
			continue
		}

		confidence -= c.penalty
		items = append(items, model.ReviewItem{
			ID:         uuid.NewString(),
			SessionID:  session.ID,
			FieldName:  c.name,
			FieldValue: value,
			Reason:     reason,
			Confidence: score,
			Status:     model.ReviewPending,
			CreatedAt:  time.Now(),
		})
	}

	if minInput := session.MinFieldConfidence(); confidence > minInput {
		confidence = minInput
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return confidence, items
}

// checkFilingStatus recomputes the return under every other filing status
// and flags when one would materially reduce the tax owed.
func checkFilingStatus(result model.TaxResult, session *model.Session) (float64, string, string) {
	// Only single filers with dependents plausibly misfile; a joint return
	// already reflects a household.
	if result.FilingStatus != model.StatusSingle || session.Dependents == 0 {
		return 0.95, "", ""
	}

	for _, status := range model.AllFilingStatuses {
		if status == result.FilingStatus {
			continue
		}
		alt, err := tax.Compute(result.GrossIncome, status, tax.StandardDeduction(status), result.Withheld)
		if err != nil {
			continue
		}
		if savings := result.TaxOwed - alt.TaxOwed; savings > materialSavings {
			return 0.68, string(result.FilingStatus), fmt.Sprintf(
				"Filer has %d dependent(s) but filed as Single. %s would save ~$%.0f.",
				session.Dependents, status.Label(), savings)
		}
	}

	return 0.95, "", ""
}

// checkWithholdingRate flags withholding outside the 10-25% band of gross
// income. Either side of the band means a figure is likely mistyped or the
// filer's W-4 needs attention.
func checkWithholdingRate(result model.TaxResult, _ *model.Session) (float64, string, string) {
	if result.GrossIncome <= 0 {
		return 0.95, "", ""
	}

	rate := result.Withheld / result.GrossIncome
	value := fmt.Sprintf("%.1f%%", rate*100)
	switch {
	case rate > 0.25:
		return 0.66, value, "Withholding rate exceeds 25% of gross income. Verify withholding amounts; the filer may want to adjust their W-4."
	case rate < 0.10:
		return 0.69, value, "Withholding rate is below 10% of gross income. Verify withholding amounts; the filer may owe at tax time."
	}
	return 0.95, "", ""
}

// checkLargeRefund flags refunds over the large-refund cutoff so income
// sources and withholding get verified before filing.
func checkLargeRefund(result model.TaxResult, _ *model.Session) (float64, string, string) {
	if result.RefundOrOwed <= largeRefund {
		return 0.95, "", ""
	}
	return 0.60, fmt.Sprintf("$%.0f", result.RefundOrOwed),
		fmt.Sprintf("Refund exceeds $%d. Verify all income sources and withholding amounts.", largeRefund)
}
