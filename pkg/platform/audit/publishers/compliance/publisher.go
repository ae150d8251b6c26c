// Package compliance provides a synchronous audit publisher for regulatory events.
//
// Publisher writes each event to the store before returning and reports
// persistence failures to the caller. Whether a failure aborts the calling
// operation is the caller's decision; the KYC pipeline logs it and still
// returns the verdict.
//
// Use for: verdict_issued
package compliance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "kycgate/pkg/platform/audit"
)

var (
	ErrMissingSubject = errors.New("compliance event requires Subject")
	ErrMissingAction  = errors.New("compliance event requires Action")
)

// Publisher emits compliance events synchronously.
type Publisher struct {
	store   audit.Store
	logger  *slog.Logger
	metrics *Metrics
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// New creates a compliance publisher.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store: store,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes a compliance event to the audit store.
func (p *Publisher) Emit(ctx context.Context, event audit.ComplianceEvent) error {
	start := time.Now()

	if event.Subject == "" {
		return ErrMissingSubject
	}
	if event.Action == "" {
		return ErrMissingAction
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := p.store.Append(ctx, event.ToEvent()); err != nil {
		p.metrics.IncPersistFailures()
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "compliance audit failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}

	p.metrics.ObservePersistDuration(time.Since(start).Seconds())
	p.metrics.IncEventsEmitted()
	return nil
}

// Close is a no-op for the synchronous compliance publisher.
func (p *Publisher) Close() error {
	return nil
}
