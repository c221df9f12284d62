package model

// TaxResult is the output of one progressive tax computation. It is derived
// state: computed fresh on every compute request and replaced wholesale,
// never partially mutated.
type TaxResult struct {
	FilingStatus  FilingStatus `json:"filing_status"`
	GrossIncome   float64      `json:"gross_income"`
	Deductions    float64      `json:"deductions"`
	TaxableIncome float64      `json:"taxable_income"`
	TaxOwed       float64      `json:"tax_owed"`
	Withheld      float64      `json:"withheld"`
	RefundOrOwed  float64      `json:"refund_or_owed"`
	EffectiveRate float64      `json:"effective_rate"`
}

// Refund reports whether the taxpayer is owed money back.
func (r TaxResult) Refund() bool {
	return r.RefundOrOwed >= 0
}
