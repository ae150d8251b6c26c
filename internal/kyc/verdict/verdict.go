// Package verdict folds rule outcomes into the final KYC decision.
package verdict

import "kycgate/internal/kyc/models"

// Aggregate combines outcomes into a Verdict:
//   - any blocking failure rejects, with every blocking reason in rule order
//   - otherwise any advisory failure routes to review, with advisory reasons only
//   - otherwise the document is accepted with no reasons
//
// confidence is carried through for observability and never decides by itself.
func Aggregate(outcomes []models.RuleOutcome, confidence *float64) models.Verdict {
	var blocking, advisory []string
	for _, o := range outcomes {
		if o.Passed {
			continue
		}
		switch o.Severity {
		case models.SeverityAdvisory:
			advisory = append(advisory, o.Reason)
		default:
			// Unclassified failures are treated as blocking.
			blocking = append(blocking, o.Reason)
		}
	}

	v := models.Verdict{
		Reasons:        []string{},
		ConfidenceHint: copyFloat(confidence),
	}
	switch {
	case len(blocking) > 0:
		v.Decision = models.DecisionReject
		v.Reasons = blocking
	case len(advisory) > 0:
		v.Decision = models.DecisionReview
		v.Reasons = advisory
	default:
		v.Decision = models.DecisionAccept
	}
	return v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}
