// Package validation enforces presence and plausibility constraints on a
// normalized record. It is exhaustive rather than fail-fast: every field is
// checked and every violation recorded, so callers see the complete picture
// in one pass.
package validation

import (
	"kycgate/internal/kyc/config"
	"kycgate/internal/kyc/models"
)

// Validator checks normalized records against the configured bounds.
type Validator struct {
	minBirthYear int
}

// New builds a Validator from an already-validated configuration.
func New(cfg config.Config) *Validator {
	return &Validator{minBirthYear: cfg.MinBirthYear}
}

// Validate returns every violation found on the record, ordered by field.
// today is the evaluation date supplied by the caller.
func (v *Validator) Validate(record models.NormalizedRecord, today models.Date) models.ValidationResult {
	var result models.ValidationResult
	add := func(f models.Field, kind models.ErrorKind) {
		result = append(result, models.FieldError{Field: f, Kind: kind})
	}

	if record.FullName == nil {
		add(models.FieldFullName, models.ErrorKindMissing)
	}

	switch dob := record.DateOfBirth; {
	case dob == nil:
		add(models.FieldDateOfBirth, models.ErrorKindMissing)
	case dob.IsZero():
		add(models.FieldDateOfBirth, models.ErrorKindInvalidDate)
	default:
		if !dob.Before(today) {
			add(models.FieldDateOfBirth, models.ErrorKindNotBeforeToday)
		}
		if dob.Year() < v.minBirthYear {
			add(models.FieldDateOfBirth, models.ErrorKindBeforeMinBirthYear)
		}
	}

	if record.DocumentNumber == nil {
		add(models.FieldDocumentNumber, models.ErrorKindMissing)
	}

	switch exp := record.ExpiryDate; {
	case exp == nil:
		add(models.FieldExpiryDate, models.ErrorKindMissing)
	case exp.IsZero():
		add(models.FieldExpiryDate, models.ErrorKindInvalidDate)
	}

	if record.IssueDate != nil && record.IssueDate.IsZero() {
		add(models.FieldIssueDate, models.ErrorKindInvalidDate)
	}

	return result
}
