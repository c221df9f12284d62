// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// FilingStatus identifies the taxpayer's federal filing status.
type FilingStatus string

// Filing status constants.
const (
	StatusSingle                  FilingStatus = "single"
	StatusMarriedFilingJointly    FilingStatus = "married_filing_jointly"
	StatusMarriedFilingSeparately FilingStatus = "married_filing_separately"
	StatusHeadOfHousehold         FilingStatus = "head_of_household"
	StatusQualifyingWidow         FilingStatus = "qualifying_widow"
)

// AllFilingStatuses lists every valid filing status.
var AllFilingStatuses = []FilingStatus{
	StatusSingle,
	StatusMarriedFilingJointly,
	StatusMarriedFilingSeparately,
	StatusHeadOfHousehold,
	StatusQualifyingWidow,
}

// Valid reports whether the status is one of the recognized values.
func (fs FilingStatus) Valid() bool {
	switch fs {
	case StatusSingle, StatusMarriedFilingJointly, StatusMarriedFilingSeparately,
		StatusHeadOfHousehold, StatusQualifyingWidow:
		return true
	}
	return false
}

// Label returns a human-readable form, e.g. "Married Filing Jointly".
func (fs FilingStatus) Label() string {
	parts := strings.Split(string(fs), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// ParseFilingStatus parses a stored filing status string.
func ParseFilingStatus(s string) (FilingStatus, error) {
	fs := FilingStatus(strings.ToLower(strings.TrimSpace(s)))
	if !fs.Valid() {
		return "", fmt.Errorf("invalid filing status: %q", s)
	}
	return fs, nil
}
