// Package normalize converts a loosely-typed extraction into a NormalizedRecord.
//
// Normalization is total: it never fails and never panics. A value that is
// absent, of the wrong JSON type, or unparseable becomes nil in the record,
// while its original text is kept in RawValues for audit. Structural problems
// are reported later by the validator, never here.
package normalize

import (
	"encoding/json"
	"fmt"

	"kycgate/internal/kyc/models"
	pstrings "kycgate/pkg/platform/strings"
)

// auditedFields are copied verbatim into RawValues when present.
var auditedFields = []models.Field{
	models.FieldFullName,
	models.FieldFirstName,
	models.FieldLastName,
	models.FieldDateOfBirth,
	models.FieldDocumentNumber,
	models.FieldExpiryDate,
	models.FieldIssueDate,
	models.FieldDocumentType,
	models.FieldIssuingAuthority,
	models.FieldModelConfidence,
	models.FieldGender,
	models.FieldNationality,
	models.FieldAddress,
	models.FieldMRZ,
}

// Normalize builds the typed record for one extraction.
func Normalize(raw models.RawExtraction) models.NormalizedRecord {
	r := reader{raw: raw}

	record := models.NormalizedRecord{
		FullName:         r.fullName(),
		DateOfBirth:      r.date(models.FieldDateOfBirth),
		DocumentNumber:   r.apply(models.FieldDocumentNumber, NormalizeDocumentNumber),
		ExpiryDate:       r.date(models.FieldExpiryDate),
		DocumentType:     r.documentType(),
		IssuingAuthority: r.apply(models.FieldIssuingAuthority, normalizeUpper),
		ModelConfidence:  r.confidence(),
		IssueDate:        r.date(models.FieldIssueDate),
		Gender:           r.apply(models.FieldGender, normalizeUpper),
		Nationality:      r.apply(models.FieldNationality, NormalizeName),
		Address:          r.apply(models.FieldAddress, normalizeAddress),
		MRZ:              r.apply(models.FieldMRZ, normalizeMRZ),
		OtherFields:      r.otherFields(),
		RawValues:        rawValues(raw),
	}
	return record
}

type reader struct {
	raw models.RawExtraction
}

// text returns the field's value when it is a JSON string.
func (r reader) text(f models.Field) (string, bool) {
	v, ok := r.raw.Lookup(f)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r reader) apply(f models.Field, fn func(string) *string) *string {
	s, ok := r.text(f)
	if !ok {
		return nil
	}
	return fn(s)
}

func (r reader) date(f models.Field) *models.Date {
	s, ok := r.text(f)
	if !ok {
		return nil
	}
	d, ok := ParseDate(s)
	if !ok {
		return nil
	}
	return &d
}

// fullName prefers an explicit full name and otherwise joins first and last
// names. Both parts are required for the join; a lone given name or surname
// is not a full name.
func (r reader) fullName() *string {
	if name := r.apply(models.FieldFullName, NormalizeName); name != nil {
		return name
	}
	first := r.apply(models.FieldFirstName, NormalizeName)
	last := r.apply(models.FieldLastName, NormalizeName)
	if first == nil || last == nil {
		return nil
	}
	return NormalizeName(*first + " " + *last)
}

func (r reader) documentType() models.DocumentType {
	s, ok := r.text(models.FieldDocumentType)
	if !ok {
		return models.DocumentTypeUnknown
	}
	return ParseDocumentType(s)
}

func (r reader) confidence() *float64 {
	v, ok := r.raw.Lookup(models.FieldModelConfidence)
	if !ok {
		return nil
	}
	f, ok := ParseConfidence(v)
	if !ok {
		return nil
	}
	return &f
}

// otherFields keeps the string values of the free-form map, whitespace collapsed.
func (r reader) otherFields() map[string]string {
	v, ok := r.raw.Lookup(models.FieldOtherFields)
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			continue
		}
		if cleaned := pstrings.CollapseWhitespace(s); cleaned != "" {
			out[k] = cleaned
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func rawValues(raw models.RawExtraction) map[models.Field]string {
	var out map[models.Field]string
	for _, f := range auditedFields {
		v, ok := raw.Lookup(f)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[models.Field]string)
		}
		out[f] = rawText(v)
	}
	return out
}

func rawText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
