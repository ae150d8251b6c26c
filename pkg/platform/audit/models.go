package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and storage backends.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Every issued KYC verdict is a compliance event.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers events useful for debugging and operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is the stored form of an audit record. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time

	// Subject is the document identifier the event is about.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string

	// SubjectIDHash is a SHA-256 hash of the document number. Used for
	// compliance traceability without storing raw PII.
	SubjectIDHash string
}

type AuditEvent string

const (
	EventVerdictIssued AuditEvent = "verdict_issued"
	EventBatchVerified AuditEvent = "batch_verified"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerdictIssued: CategoryCompliance,
	EventBatchVerified: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// ComplianceEvent captures regulatory-significant actions requiring guaranteed persistence.
type ComplianceEvent struct {
	Timestamp     time.Time // When the event occurred (set automatically if zero)
	Subject       string    // Document identifier (required)
	Action        string    // The action taken (e.g., "verdict_issued")
	Decision      string    // Outcome of the action (accept, reject, review)
	Reason        string    // Reasons joined for display
	SubjectIDHash string    // SHA-256 hash of the document number
	RequestID     string    // Correlation ID for request tracing
}

// Category returns CategoryCompliance (always).
func (e ComplianceEvent) Category() EventCategory { return CategoryCompliance }

// ToEvent converts to the stored Event form.
func (e ComplianceEvent) ToEvent() Event {
	return Event{
		Category:      CategoryCompliance,
		Timestamp:     e.Timestamp,
		Subject:       e.Subject,
		Action:        e.Action,
		Decision:      e.Decision,
		Reason:        e.Reason,
		SubjectIDHash: e.SubjectIDHash,
		RequestID:     e.RequestID,
	}
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// HashIdentifier returns the hex SHA-256 of a normalized identifier.
// Empty identifiers hash to the empty string.
func HashIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(identifier))
	return hex.EncodeToString(sum[:])
}
