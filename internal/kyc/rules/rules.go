// Package rules holds the ordered business rules applied to a validated record.
//
// Every rule is a pure function of its Input: no I/O, no clock, no shared
// state. The evaluation date arrives as a parameter from the service layer.
// Rules are evaluated independently, so a failing rule never prevents later
// rules from running.
package rules

import (
	"fmt"
	"strings"

	"kycgate/internal/kyc/config"
	"kycgate/internal/kyc/models"
	pstrings "kycgate/pkg/platform/strings"
)

// Rule names, in default evaluation order.
const (
	NameStructuralValidity     = "structural_validity"
	NameDocumentExpiry         = "document_expiry"
	NameAgePlausibility        = "age_plausibility"
	NameDocumentTypeRecognized = "document_type_recognized"
	NameConfidenceFloor        = "confidence_floor"
	NameIssueDateConsistency   = "issue_date_consistency"
)

// Input is everything a rule may look at.
type Input struct {
	Record     models.NormalizedRecord
	Validation models.ValidationResult
	Today      models.Date
}

// Rule evaluates one business constraint.
type Rule interface {
	Name() string
	Severity() models.Severity
	Evaluate(in Input) models.RuleOutcome
}

// DefaultRules returns the standard rule set in evaluation order.
func DefaultRules(cfg config.Config) []Rule {
	return []Rule{
		StructuralValidity{},
		DocumentExpiry{},
		AgePlausibility{MinAge: cfg.MinAge, MaxAge: cfg.MaxAge},
		DocumentTypeRecognized{},
		ConfidenceFloor{Threshold: cfg.ConfidenceThreshold},
		IssueDateConsistency{},
	}
}

func pass(r Rule, reason string) models.RuleOutcome {
	return models.RuleOutcome{RuleName: r.Name(), Severity: r.Severity(), Passed: true, Reason: reason}
}

func fail(r Rule, reason string) models.RuleOutcome {
	return models.RuleOutcome{RuleName: r.Name(), Severity: r.Severity(), Passed: false, Reason: reason}
}

// StructuralValidity fails when the schema validator recorded any violation.
type StructuralValidity struct{}

func (StructuralValidity) Name() string              { return NameStructuralValidity }
func (StructuralValidity) Severity() models.Severity { return models.SeverityBlocking }

func (r StructuralValidity) Evaluate(in Input) models.RuleOutcome {
	if in.Validation.Valid() {
		return pass(r, "")
	}
	problems := make([]string, 0, len(in.Validation))
	for _, fe := range in.Validation {
		problems = append(problems, fe.Describe())
	}
	return fail(r, "structurally invalid: "+strings.Join(pstrings.DedupeAndTrim(problems), "; "))
}

// DocumentExpiry fails when the expiry date lies before the evaluation date.
// A document expiring today is still valid today.
type DocumentExpiry struct{}

func (DocumentExpiry) Name() string              { return NameDocumentExpiry }
func (DocumentExpiry) Severity() models.Severity { return models.SeverityBlocking }

func (r DocumentExpiry) Evaluate(in Input) models.RuleOutcome {
	exp := in.Record.ExpiryDate
	if exp == nil || exp.IsZero() {
		return pass(r, "expiry date unavailable; not evaluated")
	}
	if exp.Before(in.Today) {
		return fail(r, fmt.Sprintf("document expired on %s", exp))
	}
	return pass(r, fmt.Sprintf("document valid until %s", exp))
}

// AgePlausibility fails when the holder's age in whole years falls outside
// [MinAge, MaxAge].
type AgePlausibility struct {
	MinAge int
	MaxAge int
}

func (AgePlausibility) Name() string              { return NameAgePlausibility }
func (AgePlausibility) Severity() models.Severity { return models.SeverityBlocking }

func (r AgePlausibility) Evaluate(in Input) models.RuleOutcome {
	dob := in.Record.DateOfBirth
	if dob == nil || dob.IsZero() {
		return pass(r, "date of birth unavailable; age not evaluated")
	}
	age := dob.YearsUntil(in.Today)
	if dob.After(in.Today) || age < r.MinAge || age > r.MaxAge {
		return fail(r, fmt.Sprintf("holder age %d is outside the plausible range %d-%d", age, r.MinAge, r.MaxAge))
	}
	return pass(r, fmt.Sprintf("holder age %d", age))
}

// DocumentTypeRecognized fails when the type resolved to unknown.
type DocumentTypeRecognized struct{}

func (DocumentTypeRecognized) Name() string              { return NameDocumentTypeRecognized }
func (DocumentTypeRecognized) Severity() models.Severity { return models.SeverityBlocking }

func (r DocumentTypeRecognized) Evaluate(in Input) models.RuleOutcome {
	if !in.Record.DocumentType.IsKnown() {
		return fail(r, "document type not recognized")
	}
	return pass(r, "document type "+in.Record.DocumentType.String())
}

// ConfidenceFloor is advisory: it fails when the model reported a confidence
// strictly below Threshold. A missing confidence passes.
type ConfidenceFloor struct {
	Threshold float64
}

func (ConfidenceFloor) Name() string              { return NameConfidenceFloor }
func (ConfidenceFloor) Severity() models.Severity { return models.SeverityAdvisory }

func (r ConfidenceFloor) Evaluate(in Input) models.RuleOutcome {
	c := in.Record.ModelConfidence
	if c == nil {
		return pass(r, "model confidence not reported")
	}
	if *c < r.Threshold {
		return fail(r, fmt.Sprintf("low model confidence (%.2f below %.2f); manual review recommended", *c, r.Threshold))
	}
	return pass(r, fmt.Sprintf("model confidence %.2f", *c))
}

// IssueDateConsistency fails when a reported issue date is in the future or
// after the expiry date. Records without an issue date pass.
type IssueDateConsistency struct{}

func (IssueDateConsistency) Name() string              { return NameIssueDateConsistency }
func (IssueDateConsistency) Severity() models.Severity { return models.SeverityBlocking }

func (r IssueDateConsistency) Evaluate(in Input) models.RuleOutcome {
	issued := in.Record.IssueDate
	if issued == nil || issued.IsZero() {
		return pass(r, "issue date unavailable; not evaluated")
	}
	if issued.After(in.Today) {
		return fail(r, fmt.Sprintf("issue date %s is in the future", issued))
	}
	if exp := in.Record.ExpiryDate; exp != nil && !exp.IsZero() && issued.After(*exp) {
		return fail(r, fmt.Sprintf("issue date %s is after expiry date %s", issued, exp))
	}
	return pass(r, fmt.Sprintf("issued on %s", issued))
}
