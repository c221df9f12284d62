package model

// CardType identifies the kind of structured card attached to a response.
type CardType string

// Card type constants. These match the wire names the web client renders.
const (
	CardProgress  CardType = "progress_card"
	CardIncome    CardType = "income_card"
	CardDeduction CardType = "deduction_card"
	CardRefund    CardType = "refund_card"
	CardReview    CardType = "review_card"
)

// Card is a structured result card returned alongside a chat message.
type Card struct {
	Data  map[string]any `json:"data"`
	Type  CardType       `json:"type"`
	Title string         `json:"title"`
}

// StageInfo summarizes conversation state for the caller.
type StageInfo struct {
	CurrentStage Stage   `json:"current_stage"`
	Confidence   float64 `json:"confidence"`
	NeedsReview  bool    `json:"needs_review"`
}

// ChatResponse is the payload returned for every handled utterance. Every
// code path produces one; errors are folded into clarifying message text.
type ChatResponse struct {
	Message string    `json:"message"`
	Cards   []Card    `json:"cards"`
	State   StageInfo `json:"state"`
}
