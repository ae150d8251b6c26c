package service

//go:generate mockgen -source=../ports/audit.go -destination=../ports/mocks/mocks.go -package=mocks AuditPublisher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kycgate/internal/kyc/config"
	"kycgate/internal/kyc/metrics"
	"kycgate/internal/kyc/models"
	"kycgate/internal/kyc/ports/mocks"
	"kycgate/internal/kyc/rules"
	"kycgate/pkg/platform/audit"
	"kycgate/pkg/platform/audit/publishers/compliance"
	"kycgate/pkg/platform/audit/store/memory"
	"kycgate/pkg/requestcontext"
	"kycgate/pkg/testutil"
)

// =============================================================================
// Verification Service Test Suite
// =============================================================================
// Every test evaluates against a fixed request time so expiry and age
// boundaries are deterministic.

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	service *Service
	metrics *metrics.Metrics
	store   *memory.InMemoryStore
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixedNow), "req-test")
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.store = memory.NewInMemoryStore()

	var err error
	s.service, err = New(config.Default(),
		WithMetrics(s.metrics),
		WithAuditPublisher(compliance.New(s.store)),
		WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	s.Require().NoError(err)
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

func with(raw models.RawExtraction, key string, value any) models.RawExtraction {
	out := models.RawExtraction{}
	for k, v := range raw {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *ServiceSuite) TestNew() {
	s.Run("invalid configuration is refused", func() {
		cfg := config.Default()
		cfg.ConfidenceThreshold = 1.5
		svc, err := New(cfg)
		s.Nil(svc)
		s.ErrorIs(err, config.ErrInvalidConfig)
	})

	s.Run("defaults need no options", func() {
		svc, err := New(config.Default())
		s.Require().NoError(err)
		res, err := svc.Verify(s.ctx, scenarioA())
		s.Require().NoError(err)
		s.Equal(models.DecisionAccept, res.Verdict.Decision)
	})

	s.Run("nil logger option falls back to discard", func() {
		svc, err := New(config.Default(), WithLogger(nil))
		s.Require().NoError(err)
		s.NotPanics(func() { _, _ = svc.Verify(s.ctx, scenarioA()) })
	})
}

// =============================================================================
// Scenario Tests
// =============================================================================

func (s *ServiceSuite) TestScenarioAAccept() {
	res, err := s.service.Verify(s.ctx, scenarioA())
	s.Require().NoError(err)

	s.Equal(models.DecisionAccept, res.Verdict.Decision)
	s.Empty(res.Verdict.Reasons)
	s.Require().NotNil(res.Verdict.ConfidenceHint)
	s.InDelta(0.92, *res.Verdict.ConfidenceHint, 1e-9)
	s.Equal("John Smith", *res.Record.FullName)
	s.Equal("AB123456", *res.Record.DocumentNumber)
	s.Equal("2026-10-15", res.EvaluatedOn.String())
	s.NotEmpty(res.DocumentID)
}

func (s *ServiceSuite) TestScenarioBExpired() {
	res, err := s.service.Verify(s.ctx, with(scenarioA(), "expiry_date", "2020-01-01"))
	s.Require().NoError(err)

	s.Equal(models.DecisionReject, res.Verdict.Decision)
	s.Require().Len(res.Verdict.Reasons, 1)
	s.Contains(res.Verdict.Reasons[0], "expired")
	s.Contains(res.Verdict.Reasons[0], "2020-01-01")
}

func (s *ServiceSuite) TestScenarioCMissingDateOfBirth() {
	res, err := s.service.Verify(s.ctx, with(scenarioA(), "date_of_birth", nil))
	s.Require().NoError(err)

	s.Equal(models.DecisionReject, res.Verdict.Decision)
	s.Require().NotEmpty(res.Verdict.Reasons)
	s.Contains(res.Verdict.Reasons[0], "date_of_birth")
	s.True(res.Validation.Has(models.FieldDateOfBirth))
}

func (s *ServiceSuite) TestScenarioDLowConfidence() {
	res, err := s.service.Verify(s.ctx, with(scenarioA(), "model_confidence", 0.3))
	s.Require().NoError(err)

	s.Equal(models.DecisionReview, res.Verdict.Decision)
	s.Require().Len(res.Verdict.Reasons, 1)
	s.Contains(res.Verdict.Reasons[0], "low model confidence")
	s.Equal(models.ConfidenceLow, res.Verdict.ConfidenceBand())
}

// =============================================================================
// Property Tests
// =============================================================================

func (s *ServiceSuite) TestBlockingFailureOverridesAdvisory() {
	raw := with(with(scenarioA(), "expiry_date", "2020-01-01"), "model_confidence", 0.1)
	res, err := s.service.Verify(s.ctx, raw)
	s.Require().NoError(err)

	s.Equal(models.DecisionReject, res.Verdict.Decision)
	for _, reason := range res.Verdict.Reasons {
		s.NotContains(reason, "model confidence")
	}
}

func (s *ServiceSuite) TestAllRulesAlwaysRun() {
	res, err := s.service.Verify(s.ctx, models.RawExtraction{})
	s.Require().NoError(err)

	s.Len(res.Outcomes, len(rules.DefaultRules(config.Default())))
	s.Equal(models.DecisionReject, res.Verdict.Decision)
}

func (s *ServiceSuite) TestMalformedInputNeverErrors() {
	inputs := []models.RawExtraction{
		nil,
		{},
		{"full_name": []any{1, 2}, "date_of_birth": map[string]any{}, "model_confidence": "NaN"},
		{"date_of_birth": "31/02/1990", "expiry_date": "tomorrow", "document_type": "ID Card"},
	}
	for _, raw := range inputs {
		res, err := s.service.Verify(s.ctx, raw)
		s.Require().NoError(err)
		s.Equal(models.DecisionReject, res.Verdict.Decision)
	}
}

func (s *ServiceSuite) TestIdentifiersAreKept() {
	res, err := s.service.VerifyDocument(s.ctx, Document{ID: "front.jpg", Extraction: scenarioA()})
	s.Require().NoError(err)
	s.Equal("front.jpg", res.DocumentID)
}

func (s *ServiceSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.Verify(ctx, scenarioA())
	s.ErrorIs(err, context.Canceled)
}

func (s *ServiceSuite) TestCustomRules() {
	svc, err := New(config.Default(), WithRules(rules.DocumentTypeRecognized{}))
	s.Require().NoError(err)

	res, err := svc.Verify(s.ctx, with(scenarioA(), "expiry_date", "2020-01-01"))
	s.Require().NoError(err)
	s.Equal(models.DecisionAccept, res.Verdict.Decision)
	s.Len(res.Outcomes, 1)
}

// =============================================================================
// Observability Tests
// =============================================================================

func (s *ServiceSuite) TestMetricsAreRecorded() {
	_, _ = s.service.Verify(s.ctx, scenarioA())
	_, _ = s.service.Verify(s.ctx, with(scenarioA(), "date_of_birth", nil))

	s.Equal(1.0, promtest.ToFloat64(s.metrics.Verdicts.WithLabelValues("accept")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.Verdicts.WithLabelValues("reject")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.FieldErrors.WithLabelValues("date_of_birth", "missing")))
	s.Equal(1.0, promtest.ToFloat64(s.metrics.RuleFailures.WithLabelValues(rules.NameStructuralValidity, "blocking")))
}

func (s *ServiceSuite) TestAuditTrail() {
	res, err := s.service.VerifyDocument(s.ctx, Document{ID: "doc-1", Extraction: scenarioA()})
	s.Require().NoError(err)

	events, err := s.store.ListBySubject(s.ctx, "doc-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	e := events[0]
	s.Equal(string(audit.EventVerdictIssued), e.Action)
	s.Equal(string(res.Verdict.Decision), e.Decision)
	s.Equal("req-test", e.RequestID)
	s.Equal(fixedNow, e.Timestamp)
	s.Equal(audit.HashIdentifier("AB123456"), e.SubjectIDHash)
}

// =============================================================================
// Batch Tests
// =============================================================================

func (s *ServiceSuite) TestVerifyBatch() {
	docs := []Document{
		{ID: "a", Extraction: scenarioA()},
		{ID: "b", Extraction: with(scenarioA(), "expiry_date", "2020-01-01")},
		{ID: "c", Extraction: with(scenarioA(), "date_of_birth", nil)},
		{ID: "d", Extraction: with(scenarioA(), "model_confidence", 0.3)},
	}

	batch, err := s.service.VerifyBatch(s.ctx, docs)
	s.Require().NoError(err)
	s.Require().Len(batch.Results, len(docs))

	for i, res := range batch.Results {
		s.Equal(docs[i].ID, res.DocumentID, "results keep input order")
	}
	s.Equal(4, batch.Summary.Total)
	s.Equal(1, batch.Summary.Accepted)
	s.Equal(2, batch.Summary.Rejected)
	s.Equal(1, batch.Summary.Review)
	s.Equal("John Smith", batch.Summary.Rows[0].FullName)
	s.Equal(models.ConfidenceHigh, batch.Summary.Rows[0].ConfidenceBand)
	s.Equal(1, batch.Summary.Rows[1].Issues)
}

func (s *ServiceSuite) TestVerifyBatchMatchesSingleVerification() {
	docs := make([]Document, 0, 20)
	for i := range 20 {
		raw := scenarioA()
		if i%3 == 0 {
			raw = with(raw, "model_confidence", 0.2)
		}
		docs = append(docs, Document{ID: string(rune('a' + i)), Extraction: raw})
	}

	batch, err := s.service.VerifyBatch(s.ctx, docs)
	s.Require().NoError(err)
	for i, doc := range docs {
		single, err := s.service.VerifyDocument(s.ctx, doc)
		s.Require().NoError(err)
		s.Equal(single.Verdict, batch.Results[i].Verdict)
	}
}

func (s *ServiceSuite) TestVerifyBatchEmpty() {
	batch, err := s.service.VerifyBatch(s.ctx, nil)
	s.Require().NoError(err)
	s.Empty(batch.Results)
	s.Equal(0, batch.Summary.Total)
}

func (s *ServiceSuite) TestVerifyBatchCancelled() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.service.VerifyBatch(ctx, []Document{{Extraction: scenarioA()}})
	s.ErrorIs(err, context.Canceled)
}

// =============================================================================
// Audit Port Tests (gomock)
// =============================================================================

func TestAuditFailureDoesNotFailVerification(t *testing.T) {
	ctrl := gomock.NewController(t)
	auditor := mocks.NewMockAuditPublisher(ctrl)
	m := metrics.New(prometheus.NewRegistry())

	svc, err := New(config.Default(), WithAuditPublisher(auditor), WithMetrics(m))
	require.NoError(t, err)
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	testutil.Given(t, "an audit sink that rejects every write", func(t *testing.T) {
		auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("sink unavailable"))

		testutil.When(t, "a valid document is verified", func(t *testing.T) {
			res, err := svc.Verify(ctx, scenarioA())

			testutil.Then(t, "the verdict is still returned", func(t *testing.T) {
				require.NoError(t, err)
				assert.Equal(t, models.DecisionAccept, res.Verdict.Decision)
			})
			testutil.And(t, "the failure is counted", func(t *testing.T) {
				assert.Equal(t, 1.0, promtest.ToFloat64(m.AuditFailures))
			})
		})
	})
}

func TestAuditEventCarriesVerdict(t *testing.T) {
	ctrl := gomock.NewController(t)
	auditor := mocks.NewMockAuditPublisher(ctrl)

	svc, err := New(config.Default(), WithAuditPublisher(auditor))
	require.NoError(t, err)
	ctx := requestcontext.WithTime(context.Background(), fixedNow)

	var (
		mu     sync.Mutex
		events []audit.ComplianceEvent
	)
	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.ComplianceEvent) error {
			mu.Lock()
			defer mu.Unlock()
			events = append(events, e)
			return nil
		},
	).Times(2)

	_, err = svc.VerifyBatch(ctx, []Document{
		{ID: "ok", Extraction: scenarioA()},
		{ID: "expired", Extraction: with(scenarioA(), "expiry_date", "2020-01-01")},
	})
	require.NoError(t, err)

	byID := map[string]audit.ComplianceEvent{}
	for _, e := range events {
		byID[e.Subject] = e
	}
	assert.Equal(t, "accept", byID["ok"].Decision)
	assert.Equal(t, "reject", byID["expired"].Decision)
	assert.Contains(t, byID["expired"].Reason, "expired")
	assert.NotContains(t, byID["expired"].SubjectIDHash, "AB123456")
}
