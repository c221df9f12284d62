package model

// IntentKind tags the recognized meaning of a user utterance.
type IntentKind string

// Intent kinds, in rough conversational order.
const (
	IntentGreeting              IntentKind = "greeting"
	IntentDeclareFilingStatus   IntentKind = "declare_filing_status"
	IntentDeclareIncome         IntentKind = "declare_income"
	IntentDeclareDependents     IntentKind = "declare_dependents"
	IntentRequestDeductionInfo  IntentKind = "request_deduction_info"
	IntentRequestMoreDeductions IntentKind = "request_more_deductions"
	IntentConfirmCompute        IntentKind = "confirm_compute"
	IntentUploadRedirect        IntentKind = "upload_redirect"
	IntentThanks                IntentKind = "thanks"
	IntentUnrecognized          IntentKind = "unrecognized"
)

// Intent is a classified utterance. Only the fields relevant to the kind are
// populated: FilingStatus for declare_filing_status, Amount/SourceKind for
// declare_income, Count for declare_dependents.
type Intent struct {
	Kind         IntentKind
	FilingStatus FilingStatus
	SourceKind   IncomeSource
	Amount       float64
	// Withheld carries actual withholding when the income came from an
	// extracted document; zero means "estimate from the amount".
	Withheld float64
	Count    int
}
