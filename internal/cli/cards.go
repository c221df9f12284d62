package cli

import (
	"fmt"
	"strings"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// RenderCard renders a structured response card for the terminal.
func RenderCard(card model.Card) string {
	switch card.Type {
	case model.CardProgress:
		return renderProgress(card)
	case model.CardIncome:
		return renderIncome(card)
	case model.CardDeduction:
		return renderDeduction(card)
	case model.CardRefund:
		return renderRefund(card)
	case model.CardReview:
		return renderReview(card)
	default:
		return RenderBox(card.Title, fmt.Sprintf("%v", card.Data))
	}
}

func renderProgress(card model.Card) string {
	step := cardInt(card, "step")
	total := cardInt(card, "total")
	label, _ := card.Data["label"].(string)

	var bar strings.Builder
	for i := 1; i <= total; i++ {
		if i <= step {
			bar.WriteString("●")
		} else {
			bar.WriteString("○")
		}
		if i < total {
			bar.WriteString("─")
		}
	}

	content := fmt.Sprintf("%s  Step %d of %d: %s", bar.String(), step, total, label)
	return RenderBox(card.Title, content)
}

func renderIncome(card model.Card) string {
	lines := []string{
		fmt.Sprintf("Wages:            $%.2f", cardFloat(card, "wages")),
		fmt.Sprintf("Federal withheld: $%.2f", cardFloat(card, "federal_withheld")),
		fmt.Sprintf("State withheld:   $%.2f", cardFloat(card, "state_withheld")),
	}
	if src, ok := card.Data["source"].(string); ok && src != "" {
		lines = append(lines, SubtleStyle.Render("Source: "+src))
	}
	return RenderBox(MoneyIcon+" "+card.Title, strings.Join(lines, "\n"))
}

func renderDeduction(card model.Card) string {
	rec, _ := card.Data["recommendation"].(string)
	lines := []string{
		fmt.Sprintf("Standard deduction: $%.2f", cardFloat(card, "standard_deduction")),
		fmt.Sprintf("Itemized total:     $%.2f", cardFloat(card, "itemized_total")),
		"Recommendation:     " + rec,
	}
	return RenderBox(card.Title, strings.Join(lines, "\n"))
}

func renderRefund(card model.Card) string {
	refund := cardFloat(card, "refund")
	lines := []string{
		fmt.Sprintf("Gross income:   $%.2f", cardFloat(card, "gross_income")),
		fmt.Sprintf("Deductions:     $%.2f", cardFloat(card, "deductions")),
		fmt.Sprintf("Taxable income: $%.2f", cardFloat(card, "taxable_income")),
		fmt.Sprintf("Federal tax:    $%.2f", cardFloat(card, "federal_tax")),
		fmt.Sprintf("Withheld:       $%.2f", cardFloat(card, "withheld")),
	}
	if refund >= 0 {
		lines = append(lines, SuccessStyle.Render(fmt.Sprintf("Refund:         $%.2f", refund)))
	} else {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("Amount owed:    $%.2f", -refund)))
	}
	return RenderBox(MoneyIcon+" "+card.Title, strings.Join(lines, "\n"))
}

func renderReview(card model.Card) string {
	field, _ := card.Data["field"].(string)
	reason, _ := card.Data["reason"].(string)
	content := fmt.Sprintf("Field:      %s\nReason:     %s\nConfidence: %.0f%%",
		field, reason, cardFloat(card, "confidence")*100)
	return RenderBox(FlagIcon+" "+card.Title, WarningStyle.Render(content))
}

func cardFloat(card model.Card, key string) float64 {
	switch v := card.Data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

func cardInt(card model.Card, key string) int {
	switch v := card.Data[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
