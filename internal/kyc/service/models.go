package service

import (
	"kycgate/internal/kyc/models"
)

// Document is one extraction submitted for verification. ID is optional;
// an identifier is generated when it is empty.
type Document struct {
	ID         string
	Extraction models.RawExtraction
}

// Result is the complete outcome for one document.
type Result struct {
	DocumentID  string
	EvaluatedOn models.Date
	Record      models.NormalizedRecord
	Validation  models.ValidationResult
	Outcomes    []models.RuleOutcome
	Verdict     models.Verdict
}

// BatchResult holds per-document results in input order plus a summary.
type BatchResult struct {
	Results []*Result
	Summary BatchSummary
}

// BatchSummary counts decisions across a batch and keeps one row per document.
type BatchSummary struct {
	Total    int
	Accepted int
	Rejected int
	Review   int
	Rows     []SummaryRow
}

// SummaryRow is the one-line view of a document in a batch report.
type SummaryRow struct {
	DocumentID     string
	DocumentType   models.DocumentType
	FullName       string
	Decision       models.Decision
	Confidence     *float64
	ConfidenceBand models.ConfidenceBand
	Issues         int
}

// Summarize builds the batch report for results.
func Summarize(results []*Result) BatchSummary {
	summary := BatchSummary{
		Total: len(results),
		Rows:  make([]SummaryRow, 0, len(results)),
	}
	for _, r := range results {
		switch r.Verdict.Decision {
		case models.DecisionAccept:
			summary.Accepted++
		case models.DecisionReject:
			summary.Rejected++
		case models.DecisionReview:
			summary.Review++
		}

		row := SummaryRow{
			DocumentID:     r.DocumentID,
			DocumentType:   r.Record.DocumentType,
			Decision:       r.Verdict.Decision,
			Confidence:     r.Verdict.ConfidenceHint,
			ConfidenceBand: r.Verdict.ConfidenceBand(),
			Issues:         len(r.Verdict.Reasons),
		}
		if r.Record.FullName != nil {
			row.FullName = *r.Record.FullName
		}
		summary.Rows = append(summary.Rows, row)
	}
	return summary
}
