package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"kycgate/internal/kyc/models"
	pstrings "kycgate/pkg/platform/strings"
)

// dateLayouts are tried in order; the first layout that parses wins.
// Day-first numeric forms precede month-first ones, so "03/04/2020" is
// read as 3 April. Month-first forms still catch values like "03/15/1985"
// that cannot be day-first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2-1-2006",
	"1-2-2006",
	"2.1.2006",
	"2006/1/2",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
}

// documentSeparators are removed from document numbers along with all whitespace.
const documentSeparators = "-./_"

// documentTypes is the fixed vocabulary, keyed by the folded spelling
// produced by foldDocumentType.
var documentTypes = map[string]models.DocumentType{
	"passport":        models.DocumentTypePassport,
	"drivers license": models.DocumentTypeDriversLicense,
	"driver license":  models.DocumentTypeDriversLicense,
	"drivers licence": models.DocumentTypeDriversLicense,
	"driver licence":  models.DocumentTypeDriversLicense,
	"driving license": models.DocumentTypeDriversLicense,
	"driving licence": models.DocumentTypeDriversLicense,
	"dl":              models.DocumentTypeDriversLicense,
	"unknown":         models.DocumentTypeUnknown,
}

// ParseDate reads a free-text date using the fixed layout priority.
func ParseDate(s string) (models.Date, bool) {
	s = pstrings.CollapseWhitespace(s)
	if s == "" {
		return models.Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOf(t), true
		}
	}
	return models.Date{}, false
}

// NormalizeName trims, collapses whitespace, and title-cases each token.
// Returns nil when nothing is left.
func NormalizeName(s string) *string {
	s = pstrings.CollapseWhitespace(s)
	if s == "" {
		return nil
	}
	// Casers keep state, so each call gets its own.
	titled := cases.Title(language.Und).String(s)
	return &titled
}

// NormalizeDocumentNumber strips whitespace and separators and upper-cases
// the rest. Returns nil when nothing is left.
func NormalizeDocumentNumber(s string) *string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.ToUpper(pstrings.StripAny(s, documentSeparators))
	if s == "" {
		return nil
	}
	return &s
}

// ParseDocumentType maps a free-text document type onto the fixed vocabulary.
// Anything unrecognised is DocumentTypeUnknown.
func ParseDocumentType(s string) models.DocumentType {
	if t, ok := documentTypes[foldDocumentType(s)]; ok {
		return t
	}
	return models.DocumentTypeUnknown
}

func foldDocumentType(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("'", "", "’", "", "_", " ", "-", " ").Replace(s)
	return pstrings.CollapseWhitespace(s)
}

// ParseConfidence accepts a JSON number or numeric string within [0,1].
func ParseConfidence(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, false
	}
	return f, true
}

// normalizeUpper collapses whitespace and upper-cases; empty becomes nil.
func normalizeUpper(s string) *string {
	s = strings.ToUpper(pstrings.CollapseWhitespace(s))
	if s == "" {
		return nil
	}
	return &s
}

// normalizeAddress joins non-blank lines with ", " and title-cases the result.
func normalizeAddress(s string) *string {
	lines := pstrings.NonEmptyLines(s)
	if len(lines) == 0 {
		return nil
	}
	return NormalizeName(strings.Join(lines, ", "))
}

// normalizeMRZ keeps the machine readable zone verbatim apart from line
// breaks, which become " | " separators.
func normalizeMRZ(s string) *string {
	s = strings.NewReplacer("\r\n", " | ", "\n", " | ", "\r", " | ").Replace(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
