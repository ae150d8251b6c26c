package models

import "fmt"

// ErrorKind classifies a structural problem with one normalized field.
type ErrorKind string

const (
	ErrorKindMissing            ErrorKind = "missing"
	ErrorKindInvalidDate        ErrorKind = "invalid_date"
	ErrorKindNotBeforeToday     ErrorKind = "not_before_today"
	ErrorKindBeforeMinBirthYear ErrorKind = "before_min_birth_year"
)

// FieldError pairs a field with the kind of violation found on it.
type FieldError struct {
	Field Field     `json:"field"`
	Kind  ErrorKind `json:"kind"`
}

// Describe renders the violation as a human-readable reason fragment.
func (e FieldError) Describe() string {
	switch e.Kind {
	case ErrorKindMissing:
		return fmt.Sprintf("missing required field %s", e.Field)
	case ErrorKindInvalidDate:
		return fmt.Sprintf("%s is not a valid calendar date", e.Field)
	case ErrorKindNotBeforeToday:
		return fmt.Sprintf("%s must be before today", e.Field)
	case ErrorKindBeforeMinBirthYear:
		return fmt.Sprintf("%s is earlier than the minimum plausible birth year", e.Field)
	default:
		return fmt.Sprintf("%s: %s", e.Field, e.Kind)
	}
}

// ValidationResult is the ordered list of violations found by the schema
// validator. An empty result means the record is structurally valid.
type ValidationResult []FieldError

// Valid returns true when no violations were recorded.
func (v ValidationResult) Valid() bool {
	return len(v) == 0
}

// Has reports whether any violation was recorded for the field.
func (v ValidationResult) Has(f Field) bool {
	for _, e := range v {
		if e.Field == f {
			return true
		}
	}
	return false
}

// Severity tells the aggregator how a failing rule affects the decision.
type Severity string

const (
	// SeverityBlocking failures reject the document.
	SeverityBlocking Severity = "blocking"
	// SeverityAdvisory failures route an otherwise clean document to manual review.
	SeverityAdvisory Severity = "advisory"
)

// RuleOutcome is the immutable result of evaluating one rule.
type RuleOutcome struct {
	RuleName string   `json:"rule"`
	Severity Severity `json:"severity"`
	Passed   bool     `json:"passed"`
	Reason   string   `json:"reason,omitempty"`
}

// Decision enumerates the final KYC decisions.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
	DecisionReview Decision = "review"
)

// ConfidenceBand buckets the advisory confidence for display.
type ConfidenceBand string

const (
	ConfidenceHigh     ConfidenceBand = "high"
	ConfidenceModerate ConfidenceBand = "moderate"
	ConfidenceLow      ConfidenceBand = "low"
	ConfidenceNone     ConfidenceBand = "none"
)

// Verdict is the terminal output of the pipeline and the only object handed
// back across the caller boundary.
type Verdict struct {
	Decision       Decision `json:"decision"`
	Reasons        []string `json:"reasons"`
	ConfidenceHint *float64 `json:"confidence_hint"`
}

// ConfidenceBand classifies the confidence hint. It never influences the decision.
func (v Verdict) ConfidenceBand() ConfidenceBand {
	switch {
	case v.ConfidenceHint == nil:
		return ConfidenceNone
	case *v.ConfidenceHint >= 0.9:
		return ConfidenceHigh
	case *v.ConfidenceHint >= 0.7:
		return ConfidenceModerate
	default:
		return ConfidenceLow
	}
}
