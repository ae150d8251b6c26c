package models

// DocumentType enumerates the identity documents the pipeline can accept.
type DocumentType string

const (
	DocumentTypePassport       DocumentType = "passport"
	DocumentTypeDriversLicense DocumentType = "drivers_license"
	DocumentTypeUnknown        DocumentType = "unknown"
)

// IsKnown returns true for any type other than unknown (or empty).
func (t DocumentType) IsKnown() bool {
	return t == DocumentTypePassport || t == DocumentTypeDriversLicense
}

// String returns the canonical token.
func (t DocumentType) String() string {
	return string(t)
}

// NormalizedRecord is the typed form of one extraction. Every field is
// independently nullable: a nil pointer means the value was absent or could
// not be derived from the raw input. Normalization never fabricates values.
type NormalizedRecord struct {
	FullName         *string      `json:"full_name"`
	DateOfBirth      *Date        `json:"date_of_birth"`
	DocumentNumber   *string      `json:"document_number"`
	ExpiryDate       *Date        `json:"expiry_date"`
	DocumentType     DocumentType `json:"document_type"`
	IssuingAuthority *string      `json:"issuing_authority"`
	ModelConfidence  *float64     `json:"model_confidence"`

	// Display-only fields; no rule other than issue-date consistency reads them.
	IssueDate   *Date             `json:"issue_date,omitempty"`
	Gender      *string           `json:"gender,omitempty"`
	Nationality *string           `json:"nationality,omitempty"`
	Address     *string           `json:"address,omitempty"`
	MRZ         *string           `json:"mrz_raw,omitempty"`
	OtherFields map[string]string `json:"other_fields,omitempty"`

	// RawValues keeps the original text of each recognised field for audit.
	// It is never type-checked.
	RawValues map[Field]string `json:"raw_values,omitempty"`
}

// Canonical renders the record back into a RawExtraction of canonical string
// forms. Normalizing the result yields the same typed values.
func (r NormalizedRecord) Canonical() RawExtraction {
	raw := RawExtraction{}
	putString(raw, FieldFullName, r.FullName)
	putDate(raw, FieldDateOfBirth, r.DateOfBirth)
	putString(raw, FieldDocumentNumber, r.DocumentNumber)
	putDate(raw, FieldExpiryDate, r.ExpiryDate)
	if r.DocumentType != "" {
		raw[string(FieldDocumentType)] = string(r.DocumentType)
	}
	putString(raw, FieldIssuingAuthority, r.IssuingAuthority)
	if r.ModelConfidence != nil {
		raw[string(FieldModelConfidence)] = *r.ModelConfidence
	}
	putDate(raw, FieldIssueDate, r.IssueDate)
	putString(raw, FieldGender, r.Gender)
	putString(raw, FieldNationality, r.Nationality)
	putString(raw, FieldAddress, r.Address)
	putString(raw, FieldMRZ, r.MRZ)
	if len(r.OtherFields) > 0 {
		other := make(map[string]any, len(r.OtherFields))
		for k, v := range r.OtherFields {
			other[k] = v
		}
		raw[string(FieldOtherFields)] = other
	}
	return raw
}

func putString(raw RawExtraction, f Field, v *string) {
	if v != nil {
		raw[string(f)] = *v
	}
}

func putDate(raw RawExtraction, f Field, v *Date) {
	if v != nil {
		raw[string(f)] = v.String()
	}
}
