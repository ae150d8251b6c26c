package rules

import "kycgate/internal/kyc/models"

// Engine applies a fixed-order rule collection. Adding a rule never requires
// touching the aggregator: severity travels with each outcome.
type Engine struct {
	rules []Rule
}

// NewEngine builds an engine evaluating rules in the given order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the configured rules.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate runs every rule and returns one outcome per rule, in rule order.
func (e *Engine) Evaluate(record models.NormalizedRecord, validation models.ValidationResult, today models.Date) []models.RuleOutcome {
	in := Input{Record: record, Validation: validation, Today: today}
	outcomes := make([]models.RuleOutcome, 0, len(e.rules))
	for _, rule := range e.rules {
		outcomes = append(outcomes, rule.Evaluate(in))
	}
	return outcomes
}
