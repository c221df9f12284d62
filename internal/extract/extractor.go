// Package extract turns uploaded tax documents into structured figures.
package extract

import (
	"context"
	"fmt"

	"github.com/taxpilot-ai/taxpilot/internal/common"
)

// W2 holds the fields read off a Form W-2.
type W2 struct {
	Employer        string  `json:"employer"`
	EmployerEIN     string  `json:"employer_ein"`
	Wages           float64 `json:"wages"`
	FederalWithheld float64 `json:"federal_withheld"`
	StateWithheld   float64 `json:"state_withheld"`
	TaxYear         int     `json:"tax_year"`
	Confidence      float64 `json:"confidence"`
}

// Extractor reads a W-2 from an uploaded document image.
type Extractor interface {
	ExtractW2(ctx context.Context, filename string, data []byte) (W2, error)
}

// MockExtractor returns fixed demo figures regardless of the upload. It
// stands in for a real OCR pipeline in development and tests.
type MockExtractor struct{}

// NewMockExtractor creates a mock extractor.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{}
}

// ExtractW2 returns the demo W-2. The upload must be non-empty so the
// handler path still exercises input validation.
func (m *MockExtractor) ExtractW2(_ context.Context, filename string, data []byte) (W2, error) {
	if len(data) == 0 {
		return W2{}, fmt.Errorf("%w: empty document %q", common.ErrInvalidInput, filename)
	}

	return W2{
		Employer:        "Demo Employer Inc.",
		EmployerEIN:     "12-3456789",
		Wages:           75000,
		FederalWithheld: 12500,
		StateWithheld:   3750,
		TaxYear:         2025,
		Confidence:      0.80,
	}, nil
}
