package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageOrdering(t *testing.T) {
	ordered := []Stage{StageIntake, StageClassifying, StageDeductions, StageComputing, StageReview}

	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i-1].Before(ordered[i]), "%s must precede %s", ordered[i-1], ordered[i])
		assert.False(t, ordered[i].Before(ordered[i-1]))
	}

	assert.False(t, StageReview.Before(StageReview))
	assert.True(t, Stage("bogus").Before(StageIntake))
	assert.False(t, Stage("bogus").Valid())
}

func TestSessionAdvanceNeverRegresses(t *testing.T) {
	s := NewSession("session-1")
	assert.Equal(t, StageIntake, s.Stage)

	s.Advance(StageDeductions)
	assert.Equal(t, StageDeductions, s.Stage)

	s.Advance(StageClassifying)
	assert.Equal(t, StageDeductions, s.Stage)

	s.Advance(StageDeductions)
	assert.Equal(t, StageDeductions, s.Stage)

	s.Advance(StageReview)
	assert.Equal(t, StageReview, s.Stage)
}

func TestMinFieldConfidence(t *testing.T) {
	s := NewSession("session-1")
	assert.InDelta(t, 1.0, s.MinFieldConfidence(), 0.001)

	s.SetFieldConfidence(FieldFilingStatus, 0.90)
	s.SetFieldConfidence(FieldIncome, 0.80)
	s.SetFieldConfidence(FieldDeductions, 0.50)
	assert.InDelta(t, 0.50, s.MinFieldConfidence(), 0.001)

	// Overwriting a field replaces its confidence.
	s.SetFieldConfidence(FieldDeductions, 0.90)
	assert.InDelta(t, 0.80, s.MinFieldConfidence(), 0.001)
}

func TestParseFilingStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    FilingStatus
		wantErr bool
	}{
		{in: "single", want: StatusSingle},
		{in: "married_filing_jointly", want: StatusMarriedFilingJointly},
		{in: "married_filing_separately", want: StatusMarriedFilingSeparately},
		{in: "head_of_household", want: StatusHeadOfHousehold},
		{in: "qualifying_widow", want: StatusQualifyingWidow},
		{in: "polygamous", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilingStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
			assert.NotEmpty(t, got.Label())
		})
	}
}

func TestReviewStatusTerminal(t *testing.T) {
	assert.False(t, ReviewPending.Terminal())
	assert.True(t, ReviewApproved.Terminal())
	assert.True(t, ReviewRejected.Terminal())
	assert.True(t, ReviewModified.Terminal())
	assert.False(t, ReviewStatus("escalated").Valid())
}
