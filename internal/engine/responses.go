package engine

import (
	"fmt"
	"math"

	"github.com/taxpilot-ai/taxpilot/internal/model"
	"github.com/taxpilot-ai/taxpilot/internal/tax"
)

// Canned response text. The remote reasoning collaborator may replace these
// with conversational phrasing; they are the deterministic fallback.
const (
	greetingMessage = "Welcome to TaxPilot! I'm here to help you file your 2025 federal tax return. Let's start with some basic information.\n\n" +
		"What is your filing status? (Single, Married Filing Jointly, Married Filing Separately, Head of Household, or Qualifying Widow/Widower)"

	askFilingStatusMessage = "I didn't catch your filing status. Are you filing as Single, Married Filing Jointly, Married Filing Separately, Head of Household, or Qualifying Widow/Widower?"

	askIncomeMessage = "I couldn't find an income figure in that. What were your total wages for the year? You can also upload a photo of your W-2."

	uploadRedirectMessage = "You can upload a photo of your W-2 and I'll read the wages and withholding from it. Head to the upload page, or tell me the figures directly."

	thanksMessage = "You're welcome! Let me know if you have any other questions about your return."

	unrecognizedMessage = "I can help you with that! To give you the best tax advice, could you tell me more about your specific situation? For example:\n\n" +
		"- Your filing status\n- Types of income you received\n- Any major life changes in 2025\n- Deductions you're considering\n\n" +
		"Feel free to ask me anything about your taxes!"

	invalidInputMessage = "Some of the figures on file don't look right, so I can't compute your return. Could you re-enter your income?"

	missingStatusNote = "\n\nI don't have your filing status yet, so I've assumed Single for now. Tell me your actual status and I'll adjust the numbers."
)

// progressSteps maps a stage to its position in the five-step flow shown to
// the user.
var progressSteps = map[model.Stage]struct {
	label string
	step  int
}{
	model.StageIntake:      {"Personal Information", 1},
	model.StageClassifying: {"Income Information", 2},
	model.StageDeductions:  {"Deductions & Credits", 3},
	model.StageComputing:   {"Tax Calculation", 4},
	model.StageReview:      {"Review & File", 5},
}

func filingStatusMessage(session *model.Session) string {
	msg := fmt.Sprintf("Got it, filing as %s! Now let's gather your income information.\n\n"+
		"Do you have a W-2 from an employer? You can upload a photo of it, or just tell me your total wages.",
		session.FilingStatus.Label())
	if session.HasIncome() {
		msg = fmt.Sprintf("Updated your filing status to %s. Your income of $%s is still on file; say \"calculate\" when you're ready to recompute.",
			session.FilingStatus.Label(), formatAmount(session.CumulativeIncome))
	}
	return msg
}

func incomeMessage(session *model.Session) string {
	return fmt.Sprintf("I've recorded your income of $%s. Let me analyze potential deductions for you.\n\n"+
		"Based on your income, I'm checking for applicable deductions and credits. Ask me about deductions when you're ready.",
		formatAmount(session.CumulativeIncome))
}

func dependentsMessage(session *model.Session) string {
	plural := "dependents"
	if session.Dependents == 1 {
		plural = "dependent"
	}
	return fmt.Sprintf("Noted: %d %s. That can affect which filing status saves you the most, so I'll keep it in mind when reviewing your return.",
		session.Dependents, plural)
}

func deductionMessage(status model.FilingStatus, deduction float64) string {
	return fmt.Sprintf("Based on the 2025 tax law, I recommend the **Standard Deduction** of **$%s** for %s filers.\n\n"+
		"The standard deduction exceeds typical itemized deductions at your income level. Shall I proceed to calculate your estimated tax and refund?",
		formatAmount(deduction), status.Label())
}

func moreDeductionsMessage(session *model.Session) string {
	deduction := "the standard deduction"
	if session.HasFilingStatus() {
		deduction = fmt.Sprintf("your $%s standard deduction", formatAmount(tax.StandardDeduction(session.FilingStatus)))
	}
	return fmt.Sprintf("Beyond %s, common items worth checking:\n\n"+
		"- **Student loan interest:** up to $2,500\n"+
		"- **Charitable contributions:** report donations over $250\n"+
		"- **Mortgage interest** if you itemize\n\n"+
		"Itemizing only pays off when those exceed the standard deduction.", deduction)
}

func incompleteSessionMessage(session *model.Session) string {
	if !session.HasFilingStatus() {
		return "Before I can calculate your return I need your filing status. Are you filing as Single, Married Filing Jointly, Married Filing Separately, Head of Household, or Qualifying Widow/Widower?"
	}
	return "Before I can calculate your return I need your income. What were your total wages for the year? You can also upload your W-2."
}

func resultMessage(result model.TaxResult, confidence float64, flagged int) string {
	var msg string
	if result.Refund() {
		msg = fmt.Sprintf("Here's your estimated 2025 tax return summary:\n\n"+
			"**Gross Income:** $%s\n**Deductions:** -$%s\n**Taxable Income:** $%s\n"+
			"**Federal Tax:** $%s\n**Already Withheld:** $%s\n\n"+
			"**Estimated Refund: $%s**",
			formatAmount(result.GrossIncome),
			formatAmount(result.Deductions),
			formatAmount(result.TaxableIncome),
			formatAmount(result.TaxOwed),
			formatAmount(result.Withheld),
			formatAmount(result.RefundOrOwed))
	} else {
		msg = fmt.Sprintf("Based on your information, you may owe **$%s** in additional taxes.\n\n"+
			"**Gross Income:** $%s\n**Taxable Income:** $%s\n**Federal Tax:** $%s\n**Already Withheld:** $%s",
			formatAmount(-result.RefundOrOwed),
			formatAmount(result.GrossIncome),
			formatAmount(result.TaxableIncome),
			formatAmount(result.TaxOwed),
			formatAmount(result.Withheld))
	}

	pct := int(confidence*100 + 0.5)
	if flagged > 0 {
		msg += fmt.Sprintf("\n\nThis return has a **confidence score of %d%%**. I've flagged %d item(s) for professional review by a licensed preparer.", pct, flagged)
	} else {
		msg += fmt.Sprintf("\n\nThis return has a **high confidence score (%d%%)**. No items flagged for review.", pct)
	}
	return msg
}

func progressCard(session *model.Session) model.Card {
	p := progressSteps[session.Stage]
	return model.Card{
		Type:  model.CardProgress,
		Title: "Tax Return Progress",
		Data: map[string]any{
			"step":  p.step,
			"total": len(progressSteps),
			"label": p.label,
		},
	}
}

func incomeCard(session *model.Session) model.Card {
	return model.Card{
		Type:  model.CardIncome,
		Title: "W-2 Income Recorded",
		Data: map[string]any{
			"wages":            session.CumulativeIncome,
			"federal_withheld": session.CumulativeWithholding,
			"state_withheld":   session.StateWithholding,
			"source":           string(session.IncomeSource),
		},
	}
}

func deductionCard(deduction float64) model.Card {
	return model.Card{
		Type:  model.CardDeduction,
		Title: "Deduction Analysis",
		Data: map[string]any{
			"standard_deduction": deduction,
			"itemized_total":     0.0,
			"recommendation":     "standard",
			"savings":            deduction,
		},
	}
}

func refundCard(result model.TaxResult) model.Card {
	return model.Card{
		Type:  model.CardRefund,
		Title: "Estimated Refund",
		Data: map[string]any{
			"gross_income":   result.GrossIncome,
			"deductions":     result.Deductions,
			"taxable_income": result.TaxableIncome,
			"federal_tax":    result.TaxOwed,
			"withheld":       result.Withheld,
			"refund":         result.RefundOrOwed,
		},
	}
}

func reviewCard(item model.ReviewItem) model.Card {
	return model.Card{
		Type:  model.CardReview,
		Title: "Flagged for Review",
		Data: map[string]any{
			"field":      item.FieldName,
			"reason":     item.Reason,
			"confidence": item.Confidence,
		},
	}
}

// formatAmount renders a dollar amount with thousands separators and no
// trailing cents when whole.
func formatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	// Round to cents before splitting so a fractional part that rounds up
	// carries into the whole dollars.
	total := int64(math.Round(amount * 100))
	whole := total / 100
	cents := total % 100

	s := fmt.Sprintf("%d", whole)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if cents > 0 {
		s = fmt.Sprintf("%s.%02d", s, cents)
	}
	if neg {
		s = "-" + s
	}
	return s
}
