package handler

import (
	"fmt"
	"strings"

	"kycgate/internal/kyc/contract"
	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/service"
	dErrors "kycgate/pkg/domain-errors"
)

// VerifyRequest is the HTTP request body for POST /kyc/verify and one item
// of a batch.
type VerifyRequest struct {
	DocumentID string         `json:"document_id,omitempty"`
	Extraction map[string]any `json:"extraction"`
}

// Validate normalizes and checks the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *VerifyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.DocumentID = strings.TrimSpace(r.DocumentID)
	if r.Extraction == nil {
		return dErrors.New(dErrors.CodeValidation, "extraction is required")
	}
	return nil
}

// Document converts the request into a pipeline document.
func (r *VerifyRequest) Document() service.Document {
	return service.Document{
		ID:         r.DocumentID,
		Extraction: models.RawExtraction(r.Extraction),
	}
}

// BatchRequest is the HTTP request body for POST /kyc/verify/batch.
type BatchRequest struct {
	Documents []VerifyRequest `json:"documents"`
}

// Validate checks the batch bounds and every item.
func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	switch {
	case len(r.Documents) == 0:
		return dErrors.New(dErrors.CodeValidation, "documents must not be empty")
	case len(r.Documents) > contract.MaxBatchDocuments:
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("documents must contain at most %d items", contract.MaxBatchDocuments))
	}
	for i := range r.Documents {
		if err := r.Documents[i].Validate(); err != nil {
			if de, ok := dErrors.As(err); ok {
				return dErrors.New(de.Code, fmt.Sprintf("documents[%d]: %s", i, de.Message))
			}
			return err
		}
	}
	return nil
}

// PipelineDocuments converts the batch into pipeline documents, in order.
func (r *BatchRequest) PipelineDocuments() []service.Document {
	docs := make([]service.Document, len(r.Documents))
	for i := range r.Documents {
		docs[i] = r.Documents[i].Document()
	}
	return docs
}
