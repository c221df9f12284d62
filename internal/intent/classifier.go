// Package intent classifies free-text utterances into filing intents using
// an ordered, deterministic rule table.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/taxpilot-ai/taxpilot/internal/model"
)

// minIncomeAmount filters out figures too small to be annual wages, such as
// dependent counts or form numbers.
const minIncomeAmount = 100

var (
	reGreeting     = regexp.MustCompile(`(?i)\b(hello|hi|hey|start|get started|good (morning|afternoon|evening))\b`)
	reFilingStatus = regexp.MustCompile(`(?i)\b(single|married|head of household|qualifying|widow(er)?)\b`)
	reDependents   = regexp.MustCompile(`(?i)\b(\d+)\s+(dependents?|kids?|child(ren)?)\b`)
	reMoreDeduct   = regexp.MustCompile(`(?i)\b(more|other|additional)\b.*\bdeductions?\b|\bitemiz`)
	reDeduction    = regexp.MustCompile(`(?i)\b(deductions?|credits?|mortgage|charitable|student loan)\b`)
	reCompute      = regexp.MustCompile(`(?i)\b(calculate|compute|refund|proceed|yes)\b`)
	reUpload       = regexp.MustCompile(`(?i)\b(upload|photo|picture|scan)\b`)
	reThanks       = regexp.MustCompile(`(?i)\b(thanks|thank you)\b`)
	reIncomeWords  = regexp.MustCompile(`(?i)\b(w-?2|income|salary|wages?|earned|paid)\b`)
	reAmount       = regexp.MustCompile(`\$?([\d,]+(?:\.\d{2})?)`)

	reMarriedSeparate = regexp.MustCompile(`(?i)separate`)
	reMarried         = regexp.MustCompile(`(?i)married`)
	reHeadOfHousehold = regexp.MustCompile(`(?i)head`)
	reWidow           = regexp.MustCompile(`(?i)widow|qualifying`)
	reSingle          = regexp.MustCompile(`(?i)single`)
)

// rule pairs a predicate with an intent builder. Rules are evaluated in
// order; the first match wins, which makes precedence auditable.
type rule struct {
	match func(stage model.Stage, text string) bool
	build func(text string) model.Intent
	name  string
}

// Classifier maps utterances to intents. It is stateless and safe for
// concurrent use; classification is a pure function of stage and text.
type Classifier struct {
	rules []rule
}

// New creates a classifier with the default rule table.
func New() *Classifier {
	return &Classifier{rules: defaultRules()}
}

// Classify resolves an utterance at the given stage to an intent. The
// default when nothing matches is Unrecognized; no rule has side effects.
func (c *Classifier) Classify(stage model.Stage, utterance string) model.Intent {
	text := strings.TrimSpace(utterance)
	for _, r := range c.rules {
		if r.match(stage, text) {
			return r.build(text)
		}
	}
	return model.Intent{Kind: model.IntentUnrecognized}
}

func defaultRules() []rule {
	return []rule{
		{
			// Filing status outranks everything, including dollar figures:
			// "I'm married and made $85,000" declares a status first.
			name: "filing_status",
			match: func(_ model.Stage, text string) bool {
				return reFilingStatus.MatchString(text)
			},
			build: func(text string) model.Intent {
				return model.Intent{
					Kind:         model.IntentDeclareFilingStatus,
					FilingStatus: parseFilingStatus(text),
				}
			},
		},
		{
			name: "dependents",
			match: func(_ model.Stage, text string) bool {
				return reDependents.MatchString(text)
			},
			build: func(text string) model.Intent {
				m := reDependents.FindStringSubmatch(text)
				count, _ := strconv.Atoi(m[1])
				return model.Intent{Kind: model.IntentDeclareDependents, Count: count}
			},
		},
		{
			name: "income_keywords",
			match: func(_ model.Stage, text string) bool {
				return reIncomeWords.MatchString(text) && parseAmount(text) > 0
			},
			build: buildIncome,
		},
		{
			name: "upload",
			match: func(_ model.Stage, text string) bool {
				return reUpload.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentUploadRedirect}
			},
		},
		{
			name: "more_deductions",
			match: func(_ model.Stage, text string) bool {
				return reMoreDeduct.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentRequestMoreDeductions}
			},
		},
		{
			name: "deduction_info",
			match: func(_ model.Stage, text string) bool {
				return reDeduction.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentRequestDeductionInfo}
			},
		},
		{
			name: "compute",
			match: func(_ model.Stage, text string) bool {
				return reCompute.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentConfirmCompute}
			},
		},
		{
			name: "greeting",
			match: func(_ model.Stage, text string) bool {
				return reGreeting.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentGreeting}
			},
		},
		{
			name: "thanks",
			match: func(_ model.Stage, text string) bool {
				return reThanks.MatchString(text)
			},
			build: func(string) model.Intent {
				return model.Intent{Kind: model.IntentThanks}
			},
		},
		{
			// A bare dollar figure reads as income only while the session is
			// still collecting it; after computing it is ambiguous.
			name: "bare_amount",
			match: func(stage model.Stage, text string) bool {
				return stage.Before(model.StageComputing) && parseAmount(text) > 0
			},
			build: buildIncome,
		},
	}
}

func buildIncome(text string) model.Intent {
	return model.Intent{
		Kind:       model.IntentDeclareIncome,
		Amount:     parseAmount(text),
		SourceKind: model.IncomeSourceTyped,
	}
}

// parseFilingStatus maps status keywords to a FilingStatus. Bare "married"
// defaults to filing jointly, matching how filers describe themselves.
func parseFilingStatus(text string) model.FilingStatus {
	switch {
	case reMarried.MatchString(text) && reMarriedSeparate.MatchString(text):
		return model.StatusMarriedFilingSeparately
	case reMarried.MatchString(text):
		return model.StatusMarriedFilingJointly
	case reHeadOfHousehold.MatchString(text):
		return model.StatusHeadOfHousehold
	case reWidow.MatchString(text):
		return model.StatusQualifyingWidow
	case reSingle.MatchString(text):
		return model.StatusSingle
	}
	return ""
}

// parseAmount extracts the largest plausible dollar amount from the text.
// When several figures appear, wages are assumed to be the largest.
func parseAmount(text string) float64 {
	var largest float64
	for _, m := range reAmount.FindAllStringSubmatch(text, -1) {
		raw := strings.ReplaceAll(m[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if amount > minIncomeAmount && amount > largest {
			largest = amount
		}
	}
	return largest
}
