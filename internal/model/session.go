package model

import "time"

// Stage identifies the current phase of a filing conversation.
type Stage string

// Conversation stages, in order.
const (
	StageIntake      Stage = "intake"
	StageClassifying Stage = "classifying"
	StageDeductions  Stage = "deductions"
	StageComputing   Stage = "computing"
	StageReview      Stage = "review"
)

var stageOrder = map[Stage]int{
	StageIntake:      0,
	StageClassifying: 1,
	StageDeductions:  2,
	StageComputing:   3,
	StageReview:      4,
}

// Index returns the stage's position in the conversation, starting at 0.
// Unknown stages sort before intake.
func (s Stage) Index() int {
	if i, ok := stageOrder[s]; ok {
		return i
	}
	return -1
}

// Before reports whether s precedes other in the conversation.
func (s Stage) Before(other Stage) bool {
	return s.Index() < other.Index()
}

// Valid reports whether the stage is one of the recognized values.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// IncomeSource indicates how income figures entered the session.
type IncomeSource string

// Income source constants.
const (
	// IncomeSourceTyped means the user declared income in conversation.
	IncomeSourceTyped IncomeSource = "typed"
	// IncomeSourceExtracted means income came from a scanned document.
	IncomeSourceExtracted IncomeSource = "extracted"
)

// Field names used for per-field confidence tracking.
const (
	FieldFilingStatus = "filing_status"
	FieldIncome       = "income"
	FieldDeductions   = "deductions"
)

// Session is the mutable per-conversation state. It is created on the first
// message for a session id and mutated only by the engine, which serializes
// transitions per session.
type Session struct {
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	FieldConfidence       map[string]float64 `json:"field_confidence"`
	ID                    string             `json:"id"`
	Stage                 Stage              `json:"stage"`
	FilingStatus          FilingStatus       `json:"filing_status"`
	IncomeSource          IncomeSource       `json:"income_source"`
	CumulativeIncome      float64            `json:"income"`
	CumulativeWithholding float64            `json:"withholding"`
	StateWithholding      float64            `json:"state_withholding"`
	Confidence            float64            `json:"confidence"`
	Dependents            int                `json:"dependents"`
}

// NewSession returns a fresh session at the intake stage.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:              id,
		Stage:           StageIntake,
		FieldConfidence: make(map[string]float64),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// HasFilingStatus reports whether the user has declared a filing status.
func (s *Session) HasFilingStatus() bool {
	return s.FilingStatus.Valid()
}

// HasIncome reports whether any income has been recorded.
func (s *Session) HasIncome() bool {
	return s.CumulativeIncome > 0
}

// SetFieldConfidence records the confidence of a declared or derived field.
func (s *Session) SetFieldConfidence(field string, confidence float64) {
	if s.FieldConfidence == nil {
		s.FieldConfidence = make(map[string]float64)
	}
	s.FieldConfidence[field] = confidence
}

// MinFieldConfidence returns the lowest confidence across all recorded
// fields, or 1.0 when nothing has been recorded yet. A computed result must
// never claim more confidence than its weakest input.
func (s *Session) MinFieldConfidence() float64 {
	minConf := 1.0
	for _, c := range s.FieldConfidence {
		if c < minConf {
			minConf = c
		}
	}
	return minConf
}

// Advance moves the session to the given stage unless it would regress.
// Re-declarations at later stages overwrite values without moving backward.
func (s *Session) Advance(to Stage) {
	if s.Stage.Before(to) {
		s.Stage = to
	}
}
