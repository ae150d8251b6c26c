package handler

import (
	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/service"
)

// VerifyResponse is the HTTP response for one verified document.
type VerifyResponse struct {
	DocumentID     string                  `json:"document_id"`
	EvaluatedOn    models.Date             `json:"evaluated_on"`
	Decision       models.Decision         `json:"decision"`
	Reasons        []string                `json:"reasons"`
	ConfidenceHint *float64                `json:"confidence_hint"`
	ConfidenceBand models.ConfidenceBand   `json:"confidence_band"`
	Record         models.NormalizedRecord `json:"record"`
	FieldErrors    []models.FieldError     `json:"field_errors"`
	RuleOutcomes   []models.RuleOutcome    `json:"rule_outcomes"`
}

// BatchResponse is the HTTP response for POST /kyc/verify/batch.
type BatchResponse struct {
	Results []VerifyResponse `json:"results"`
	Summary SummaryResponse  `json:"summary"`
}

// SummaryResponse is the batch report.
type SummaryResponse struct {
	Total    int                  `json:"total"`
	Accepted int                  `json:"accepted"`
	Rejected int                  `json:"rejected"`
	Review   int                  `json:"review"`
	Rows     []SummaryRowResponse `json:"rows"`
}

// SummaryRowResponse is one row of the batch report.
type SummaryRowResponse struct {
	DocumentID     string                `json:"document_id"`
	DocumentType   models.DocumentType   `json:"document_type"`
	FullName       string                `json:"full_name,omitempty"`
	Decision       models.Decision       `json:"decision"`
	Confidence     *float64              `json:"confidence"`
	ConfidenceBand models.ConfidenceBand `json:"confidence_band"`
	Issues         int                   `json:"issues"`
}

// FromResult maps a pipeline result to its HTTP form.
func FromResult(r *service.Result) VerifyResponse {
	fieldErrors := []models.FieldError(r.Validation)
	if fieldErrors == nil {
		fieldErrors = []models.FieldError{}
	}
	return VerifyResponse{
		DocumentID:     r.DocumentID,
		EvaluatedOn:    r.EvaluatedOn,
		Decision:       r.Verdict.Decision,
		Reasons:        r.Verdict.Reasons,
		ConfidenceHint: r.Verdict.ConfidenceHint,
		ConfidenceBand: r.Verdict.ConfidenceBand(),
		Record:         r.Record,
		FieldErrors:    fieldErrors,
		RuleOutcomes:   r.Outcomes,
	}
}

// FromBatchResult maps a batch result to its HTTP form.
func FromBatchResult(b *service.BatchResult) BatchResponse {
	results := make([]VerifyResponse, 0, len(b.Results))
	for _, r := range b.Results {
		results = append(results, FromResult(r))
	}
	rows := make([]SummaryRowResponse, 0, len(b.Summary.Rows))
	for _, row := range b.Summary.Rows {
		rows = append(rows, SummaryRowResponse(row))
	}
	return BatchResponse{
		Results: results,
		Summary: SummaryResponse{
			Total:    b.Summary.Total,
			Accepted: b.Summary.Accepted,
			Rejected: b.Summary.Rejected,
			Review:   b.Summary.Review,
			Rows:     rows,
		},
	}
}
