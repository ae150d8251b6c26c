package normalize_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/normalize"
)

type NormalizeSuite struct {
	suite.Suite
}

func TestNormalizeSuite(t *testing.T) {
	suite.Run(t, new(NormalizeSuite))
}

func scenarioA() models.RawExtraction {
	return models.RawExtraction{
		"full_name":        "john smith",
		"date_of_birth":    "15/03/1985",
		"document_number":  "ab-123 456",
		"expiry_date":      "2030-01-01",
		"document_type":    "passport",
		"model_confidence": 0.92,
	}
}

func (s *NormalizeSuite) TestScenarioA() {
	record := normalize.Normalize(scenarioA())

	s.Require().NotNil(record.FullName)
	s.Equal("John Smith", *record.FullName)
	s.Require().NotNil(record.DateOfBirth)
	s.Equal("1985-03-15", record.DateOfBirth.String())
	s.Require().NotNil(record.DocumentNumber)
	s.Equal("AB123456", *record.DocumentNumber)
	s.Require().NotNil(record.ExpiryDate)
	s.Equal("2030-01-01", record.ExpiryDate.String())
	s.Equal(models.DocumentTypePassport, record.DocumentType)
	s.Require().NotNil(record.ModelConfidence)
	s.InDelta(0.92, *record.ModelConfidence, 1e-9)
	s.Nil(record.IssuingAuthority)
}

func (s *NormalizeSuite) TestDates() {
	cases := []struct {
		input string
		want  string
	}{
		{"2030-01-01", "2030-01-01"},
		{"15/03/1985", "1985-03-15"},
		{"03/04/2020", "2020-04-03"},
		{"03/15/1985", "1985-03-15"},
		{"15-03-1985", "1985-03-15"},
		{"15.03.1985", "1985-03-15"},
		{"1985/03/15", "1985-03-15"},
		{"1985-3-15", "1985-03-15"},
		{"15 March 1985", "1985-03-15"},
		{"15 mar 1985", "1985-03-15"},
		{"15-MAR-1985", "1985-03-15"},
		{"March 15, 1985", "1985-03-15"},
		{"Mar 15 1985", "1985-03-15"},
		{"  15   March 1985 ", "1985-03-15"},
		{"1985-03-15T10:00:00Z", "1985-03-15"},
		{"0001-01-01", "0001-01-01"},
		{"1 January 0001", "0001-01-01"},
	}
	for _, tc := range cases {
		s.Run(tc.input, func() {
			d, ok := normalize.ParseDate(tc.input)
			s.Require().True(ok)
			s.False(d.IsZero())
			s.Equal(tc.want, d.String())
		})
	}

	s.Run("rejects impossible and unrecognised dates", func() {
		for _, input := range []string{"", "   ", "31/02/2020", "2021-02-30", "not a date", "13/13/2020", "1985"} {
			_, ok := normalize.ParseDate(input)
			s.False(ok, input)
		}
	})
}

func (s *NormalizeSuite) TestNames() {
	s.Run("title-cases and collapses whitespace", func() {
		name := normalize.NormalizeName("  jOHN \t  SMITH ")
		s.Require().NotNil(name)
		s.Equal("John Smith", *name)
	})

	s.Run("blank is nil", func() {
		s.Nil(normalize.NormalizeName(" \n "))
	})

	s.Run("joins first and last name when full name is absent", func() {
		record := normalize.Normalize(models.RawExtraction{
			"first_name": "mary  ann",
			"last_name":  "JONES",
		})
		s.Require().NotNil(record.FullName)
		s.Equal("Mary Ann Jones", *record.FullName)
	})

	s.Run("lone first name does not make a full name", func() {
		record := normalize.Normalize(models.RawExtraction{"first_name": "mary"})
		s.Nil(record.FullName)
	})
}

func (s *NormalizeSuite) TestDocumentNumber() {
	s.Equal("AB123456", *normalize.NormalizeDocumentNumber(" ab-123 456 "))
	s.Equal("X12Y", *normalize.NormalizeDocumentNumber("x.12/y"))
	s.Nil(normalize.NormalizeDocumentNumber(" - - "))
}

func (s *NormalizeSuite) TestDocumentType() {
	cases := map[string]models.DocumentType{
		"Passport":         models.DocumentTypePassport,
		"PASSPORT ":        models.DocumentTypePassport,
		"Driver's License": models.DocumentTypeDriversLicense,
		"drivers_license":  models.DocumentTypeDriversLicense,
		"Driving Licence":  models.DocumentTypeDriversLicense,
		"ID Card":          models.DocumentTypeUnknown,
		"":                 models.DocumentTypeUnknown,
		"unknown":          models.DocumentTypeUnknown,
	}
	for input, want := range cases {
		s.Equal(want, normalize.ParseDocumentType(input), input)
	}

	s.Run("absent type is unknown", func() {
		s.Equal(models.DocumentTypeUnknown, normalize.Normalize(models.RawExtraction{}).DocumentType)
	})
}

func (s *NormalizeSuite) TestConfidence() {
	accepted := []any{0.0, 0.5, 1.0, 1, json.Number("0.25"), " 0.75 ", float32(0.5)}
	for _, v := range accepted {
		_, ok := normalize.ParseConfidence(v)
		s.True(ok, "%v", v)
	}
	rejected := []any{-0.1, 1.01, "high", true, nil, json.Number("x"), map[string]any{}}
	for _, v := range rejected {
		_, ok := normalize.ParseConfidence(v)
		s.False(ok, "%v", v)
	}
}

func (s *NormalizeSuite) TestMalformedValuesBecomeNil() {
	record := normalize.Normalize(models.RawExtraction{
		"full_name":        42,
		"date_of_birth":    "yesterday",
		"document_number":  []any{"AB"},
		"expiry_date":      true,
		"document_type":    7,
		"model_confidence": "very sure",
		"unrelated":        "ignored",
	})

	s.Nil(record.FullName)
	s.Nil(record.DateOfBirth)
	s.Nil(record.DocumentNumber)
	s.Nil(record.ExpiryDate)
	s.Equal(models.DocumentTypeUnknown, record.DocumentType)
	s.Nil(record.ModelConfidence)

	s.Run("raw text is preserved for audit", func() {
		s.Equal("42", record.RawValues[models.FieldFullName])
		s.Equal("yesterday", record.RawValues[models.FieldDateOfBirth])
		s.Equal("true", record.RawValues[models.FieldExpiryDate])
		s.Equal("very sure", record.RawValues[models.FieldModelConfidence])
		s.NotContains(record.RawValues, models.Field("unrelated"))
	})
}

func (s *NormalizeSuite) TestAliasesAndDisplayFields() {
	record := normalize.Normalize(models.RawExtraction{
		"fullName":         "ana lima",
		"dateOfBirth":      "1990-07-01",
		"issuing_country":  " usa ",
		"confidence_score": 0.8,
		"issue_date":       "01/07/2020",
		"gender":           "f",
		"nationality":      "brazilian",
		"address":          "12 main st\r\n\nspringfield ",
		"mrz_raw":          "P<UTOERIKSSON<<ANNA\nL898902C36UTO",
		"other_fields":     map[string]any{"class": "  B  ", "points": 3},
	})

	s.Equal("Ana Lima", *record.FullName)
	s.Equal(models.MustDate(1990, time.July, 1), *record.DateOfBirth)
	s.Equal("USA", *record.IssuingAuthority)
	s.InDelta(0.8, *record.ModelConfidence, 1e-9)
	s.Equal("2020-07-01", record.IssueDate.String())
	s.Equal("F", *record.Gender)
	s.Equal("Brazilian", *record.Nationality)
	s.Equal("12 Main St, Springfield", *record.Address)
	s.Equal("P<UTOERIKSSON<<ANNA | L898902C36UTO", *record.MRZ)
	s.Equal(map[string]string{"class": "B"}, record.OtherFields)
}

func (s *NormalizeSuite) TestIdempotence() {
	inputs := []models.RawExtraction{
		scenarioA(),
		{
			"first_name":      "jean-luc",
			"last_name":       "picard",
			"date_of_birth":   "July 13, 1935",
			"document_type":   "Driver's License",
			"issuing_country": "france",
			"address":         "1 rue de la paix\nparis",
			"mrz_raw":         "line one\r\nline two",
		},
		{
			"full_name":       "ada",
			"date_of_birth":   "1 January 0001",
			"expiry_date":     "0001-01-01",
			"issue_date":      "01/01/0001",
			"document_number": "x",
		},
		{},
	}
	for _, raw := range inputs {
		first := normalize.Normalize(raw)
		second := normalize.Normalize(first.Canonical())

		first.RawValues, second.RawValues = nil, nil
		s.Equal(first, second)
		s.Equal(first.Canonical(), second.Canonical())
	}
}
