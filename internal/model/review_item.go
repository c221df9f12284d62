package model

import "time"

// ReviewStatus is the disposition of a flagged field.
type ReviewStatus string

// Review status constants.
const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
	ReviewModified ReviewStatus = "modified"
)

// Valid reports whether the status is one of the recognized values.
func (rs ReviewStatus) Valid() bool {
	switch rs {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewModified:
		return true
	}
	return false
}

// Terminal reports whether the status represents a reviewer decision.
func (rs ReviewStatus) Terminal() bool {
	switch rs {
	case ReviewApproved, ReviewRejected, ReviewModified:
		return true
	}
	return false
}

// ReviewItem is a computed or declared field flagged for human disposition.
// Items are created pending by the confidence gate and resolved by a
// privileged reviewer; they are never silently dropped.
type ReviewItem struct {
	CreatedAt     time.Time    `json:"created_at"`
	ResolvedAt    *time.Time   `json:"resolved_at"`
	ID            string       `json:"id"`
	SessionID     string       `json:"session_id"`
	FieldName     string       `json:"field_name"`
	FieldValue    string       `json:"field_value"`
	Reason        string       `json:"reason"`
	ReviewerNotes string       `json:"reviewer_notes"`
	Status        ReviewStatus `json:"status"`
	Confidence    float64      `json:"confidence"`
}
