package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kycgate/internal/kyc/contract"
	"kycgate/internal/kyc/service"
	dErrors "kycgate/pkg/domain-errors"
	"kycgate/pkg/platform/httputil"
	"kycgate/pkg/requestcontext"
)

// Service defines the interface for verification operations.
type Service interface {
	VerifyDocument(ctx context.Context, doc service.Document) (*service.Result, error)
	VerifyBatch(ctx context.Context, docs []service.Document) (*service.BatchResult, error)
}

// Handler wires KYC endpoints to the verification service.
type Handler struct {
	service   Service
	contracts *contract.Contracts
	logger    *slog.Logger
}

// New constructs a KYC handler with its dependencies.
func New(service Service, contracts *contract.Contracts, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service:   service,
		contracts: contracts,
		logger:    logger,
	}
}

// Register mounts KYC endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.With(h.requireContract(contract.KindVerifyRequest)).Post("/kyc/verify", h.HandleVerify)
	r.With(h.requireContract(contract.KindBatchRequest)).Post("/kyc/verify/batch", h.HandleVerifyBatch)
}

// HandleVerify handles POST /kyc/verify requests.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.VerifyDocument(ctx, req.Document())
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc verification failed",
			"request_id", requestID,
			"document_id", req.DocumentID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "verification aborted"))
		return
	}

	h.logger.InfoContext(ctx, "kyc document verified",
		"request_id", requestID,
		"document_id", result.DocumentID,
		"decision", result.Verdict.Decision,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}

// HandleVerifyBatch handles POST /kyc/verify/batch requests.
func (h *Handler) HandleVerifyBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	batch, err := h.service.VerifyBatch(ctx, req.PipelineDocuments())
	if err != nil {
		h.logger.ErrorContext(ctx, "kyc batch verification failed",
			"request_id", requestID,
			"documents", len(req.Documents),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "batch verification aborted"))
		return
	}

	h.logger.InfoContext(ctx, "kyc batch verified",
		"request_id", requestID,
		"documents", batch.Summary.Total,
		"rejected", batch.Summary.Rejected,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromBatchResult(batch))
}

// requireContract rejects bodies that are not JSON or do not match the
// envelope schema, then hands the buffered body on to the handler.
func (h *Handler) requireContract(kind contract.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ct := r.Header.Get("Content-Type"); ct != "" {
				mediaType, _, err := mime.ParseMediaType(ct)
				if err != nil || mediaType != "application/json" {
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnsupportedMediaType, "content type must be application/json"))
					return
				}
			}

			body, err := httputil.ReadBody(w, r)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			if err := h.contracts.Validate(kind, body); err != nil {
				h.logger.WarnContext(r.Context(), "request rejected by contract",
					"request_id", requestcontext.RequestID(r.Context()),
					"contract", kind,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
