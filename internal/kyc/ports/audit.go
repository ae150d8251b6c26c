package ports

import (
	"context"

	"kycgate/pkg/platform/audit"
)

// AuditPublisher records issued verdicts for compliance. It is satisfied by
// the compliance publisher but defined here to keep the pipeline independent
// of any particular sink.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.ComplianceEvent) error
}
