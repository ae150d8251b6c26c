// Package service runs the verification pipeline for one document or a batch.
//
// The stages run strictly in order: normalize, validate, evaluate rules,
// aggregate. The stages themselves are pure; this package owns the clock,
// identifiers, logging, metrics, tracing, and the compliance audit trail.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"kycgate/internal/kyc/config"
	"kycgate/internal/kyc/metrics"
	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/normalize"
	"kycgate/internal/kyc/ports"
	"kycgate/internal/kyc/rules"
	"kycgate/internal/kyc/validation"
	"kycgate/internal/kyc/verdict"
	"kycgate/pkg/platform/audit"
	"kycgate/pkg/requestcontext"
)

const tracerName = "kycgate/internal/kyc/service"

// AuditPublisher is aliased from ports so callers need not import it.
type AuditPublisher = ports.AuditPublisher

type Service struct {
	cfg       config.Config
	validator *validation.Validator
	engine    *rules.Engine
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditPublisher
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithRules replaces the default rule set. Rules are evaluated in the order given.
func WithRules(rs ...rules.Rule) Option {
	return func(s *Service) {
		s.engine = rules.NewEngine(rs...)
	}
}

// New builds a Service. An invalid configuration is refused.
func New(cfg config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	svc := &Service{
		cfg:       cfg,
		validator: validation.New(cfg),
		engine:    rules.NewEngine(rules.DefaultRules(cfg)...),
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.New(slog.DiscardHandler)
	}
	return svc, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() config.Config {
	return s.cfg
}

// Verify runs the pipeline for a single extraction. The evaluation date is
// the request-scoped time from ctx.
func (s *Service) Verify(ctx context.Context, raw models.RawExtraction) (*Result, error) {
	return s.VerifyDocument(ctx, Document{Extraction: raw})
}

// VerifyDocument runs the pipeline for one identified document. The only
// error is ctx's, when it is already done; every extraction, however
// malformed, yields a verdict.
func (s *Service) VerifyDocument(ctx context.Context, doc Document) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	documentID := doc.ID
	if documentID == "" {
		documentID = uuid.NewString()
	}

	ctx, span := s.tracer.Start(ctx, "kyc.VerifyDocument",
		trace.WithAttributes(attribute.String("kyc.document_id", documentID)),
	)
	defer span.End()

	today := models.DateOf(requestcontext.Now(ctx))
	result := s.evaluate(documentID, doc.Extraction, today)

	span.SetAttributes(
		attribute.String("kyc.decision", string(result.Verdict.Decision)),
		attribute.Int("kyc.reasons", len(result.Verdict.Reasons)),
	)
	s.record(result)
	s.metrics.ObserveVerifyLatency(time.Since(start))

	s.logger.InfoContext(ctx, "kyc verdict issued",
		"request_id", requestcontext.RequestID(ctx),
		"document_id", documentID,
		"decision", result.Verdict.Decision,
		"reasons", len(result.Verdict.Reasons),
		"confidence_band", result.Verdict.ConfidenceBand(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	s.emitAudit(ctx, result)
	return result, nil
}

// VerifyBatch verifies documents independently, at most BatchConcurrency at
// a time, and returns results in input order. Every document in the batch is
// evaluated against the same date.
func (s *Service) VerifyBatch(ctx context.Context, docs []Document) (*BatchResult, error) {
	ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))
	ctx, span := s.tracer.Start(ctx, "kyc.VerifyBatch",
		trace.WithAttributes(attribute.Int("kyc.batch_size", len(docs))),
	)
	defer span.End()
	s.metrics.ObserveBatchSize(len(docs))

	results := make([]*Result, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			res, err := s.VerifyDocument(gctx, doc)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "kyc batch aborted",
			"request_id", requestcontext.RequestID(ctx),
			"documents", len(docs),
			"error", err,
		)
		return nil, err
	}

	summary := Summarize(results)
	s.logger.InfoContext(ctx, "kyc batch verified",
		"request_id", requestcontext.RequestID(ctx),
		"documents", summary.Total,
		"accepted", summary.Accepted,
		"rejected", summary.Rejected,
		"review", summary.Review,
	)
	return &BatchResult{Results: results, Summary: summary}, nil
}

// evaluate is the pure pipeline: one-way data flow through the four stages.
func (s *Service) evaluate(documentID string, raw models.RawExtraction, today models.Date) *Result {
	record := normalize.Normalize(raw)
	validationResult := s.validator.Validate(record, today)
	outcomes := s.engine.Evaluate(record, validationResult, today)

	return &Result{
		DocumentID:  documentID,
		EvaluatedOn: today,
		Record:      record,
		Validation:  validationResult,
		Outcomes:    outcomes,
		Verdict:     verdict.Aggregate(outcomes, record.ModelConfidence),
	}
}

func (s *Service) record(result *Result) {
	s.metrics.IncrementVerdict(string(result.Verdict.Decision))
	for _, fe := range result.Validation {
		s.metrics.IncrementFieldError(string(fe.Field), string(fe.Kind))
	}
	for _, o := range result.Outcomes {
		if !o.Passed {
			s.metrics.IncrementRuleFailure(o.RuleName, string(o.Severity))
		}
	}
}

// emitAudit records the verdict for compliance. A failed emission is logged
// and counted; the verdict is still returned.
func (s *Service) emitAudit(ctx context.Context, result *Result) {
	if s.auditor == nil {
		return
	}
	var documentNumber string
	if result.Record.DocumentNumber != nil {
		documentNumber = *result.Record.DocumentNumber
	}

	err := s.auditor.Emit(ctx, audit.ComplianceEvent{
		Timestamp:     requestcontext.Now(ctx),
		Subject:       result.DocumentID,
		Action:        string(audit.EventVerdictIssued),
		Decision:      string(result.Verdict.Decision),
		Reason:        strings.Join(result.Verdict.Reasons, "; "),
		SubjectIDHash: audit.HashIdentifier(documentNumber),
		RequestID:     requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.metrics.IncrementAuditFailure()
		s.logger.WarnContext(ctx, "failed to emit kyc audit event",
			"request_id", requestcontext.RequestID(ctx),
			"document_id", result.DocumentID,
			"error", err,
		)
	}
}
