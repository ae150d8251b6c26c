package models

// Field names a recognised extraction field. The value is the canonical
// snake_case key used by the extraction prompt and in every reason string.
type Field string

const (
	FieldFullName         Field = "full_name"
	FieldFirstName        Field = "first_name"
	FieldLastName         Field = "last_name"
	FieldDateOfBirth      Field = "date_of_birth"
	FieldDocumentNumber   Field = "document_number"
	FieldExpiryDate       Field = "expiry_date"
	FieldIssueDate        Field = "issue_date"
	FieldDocumentType     Field = "document_type"
	FieldIssuingAuthority Field = "issuing_authority"
	FieldModelConfidence  Field = "model_confidence"
	FieldGender           Field = "gender"
	FieldNationality      Field = "nationality"
	FieldAddress          Field = "address"
	FieldMRZ              Field = "mrz_raw"
	FieldOtherFields      Field = "other_fields"
)

// fieldAliases lists alternative keys accepted for a field, in lookup order,
// after the canonical key.
var fieldAliases = map[Field][]string{
	FieldFullName:         {"fullName", "name"},
	FieldFirstName:        {"firstName", "given_names"},
	FieldLastName:         {"lastName", "surname"},
	FieldDateOfBirth:      {"dateOfBirth", "dob"},
	FieldDocumentNumber:   {"documentNumber"},
	FieldExpiryDate:       {"expiryDate", "expiration_date"},
	FieldIssueDate:        {"issueDate"},
	FieldDocumentType:     {"documentType"},
	FieldIssuingAuthority: {"issuingAuthority", "issuing_country", "issuingCountry"},
	FieldModelConfidence:  {"modelConfidence", "confidence_score", "confidenceScore", "confidence"},
	FieldMRZ:              {"mrz", "mrzRaw"},
	FieldOtherFields:      {"otherFields"},
}

// String returns the canonical key.
func (f Field) String() string {
	return string(f)
}

// Keys returns the canonical key followed by every accepted alias.
func (f Field) Keys() []string {
	aliases := fieldAliases[f]
	keys := make([]string, 0, 1+len(aliases))
	keys = append(keys, string(f))
	return append(keys, aliases...)
}

// RequiredFields are the fields whose absence makes a record structurally invalid.
var RequiredFields = []Field{
	FieldFullName,
	FieldDateOfBirth,
	FieldDocumentNumber,
	FieldExpiryDate,
}

// RawExtraction is the untyped output of the extraction collaborator, usually
// the result of json.Unmarshal into map[string]any. It has no invariants.
type RawExtraction map[string]any

// Lookup returns the first non-null value stored under the field's canonical
// key or one of its aliases. Unknown keys are never consulted.
func (r RawExtraction) Lookup(f Field) (any, bool) {
	for _, key := range f.Keys() {
		if v, ok := r[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
