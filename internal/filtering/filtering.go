// Package filtering evaluates an extracted opportunity against the user's
// non-negotiable constraints. All rules run independently so every outcome
// is reported even after one fails; the numeric score is a separate axis.
package filtering

import (
	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"

	"go.uber.org/zap"
)

// CheckStatus describes how a single rule resolved.
type CheckStatus string

const (
	StatusPassed       CheckStatus = "PASSED"
	StatusFailed       CheckStatus = "FAILED"
	StatusNotMentioned CheckStatus = "NOT_MENTIONED"
)

// Check is the outcome of a single hard-filter rule.
type Check struct {
	Name     string      `json:"name"`
	Required bool        `json:"required"`
	Status   CheckStatus `json:"status"`
	Passed   bool        `json:"passed"`
	Detail   string      `json:"detail,omitempty"`
}

// Result aggregates all rule outcomes for one opportunity.
type Result struct {
	Checks        []Check `json:"checks"`
	OverallPassed bool    `json:"overall_passed"`
	ShouldDecline bool    `json:"should_decline"`
}

// Check returns the named check, or nil when the rule did not run.
func (r *Result) Check(name string) *Check {
	for i := range r.Checks {
		if r.Checks[i].Name == name {
			return &r.Checks[i]
		}
	}
	return nil
}

// FailedRequired lists the names of required rules that failed.
func (r *Result) FailedRequired() []string {
	var failed []string
	for _, check := range r.Checks {
		if check.Required && !check.Passed {
			failed = append(failed, check.Name)
		}
	}
	return failed
}

// Input bundles everything a rule may inspect.
type Input struct {
	Message   *message.RawMessage
	Extracted *ai.ExtractedData
	Profile   *profile.UserProfile
}

// Rule is a single hard-filter step.
type Rule interface {
	Name() string
	Evaluate(in *Input) Check
}

// DefaultRules returns the standard rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		&workWeekRule{},
		&salaryFloorRule{},
		&stackOverlapRule{},
		&remotePolicyRule{},
		&keywordRule{},
	}
}

// Run evaluates every rule with no short-circuit and aggregates the result.
// OverallPassed is true iff every required rule passed; ShouldDecline is its
// negation.
func Run(in *Input, rules []Rule, log *zap.Logger) *Result {
	if log == nil {
		log = zap.NewNop()
	}

	result := &Result{OverallPassed: true}
	for _, rule := range rules {
		check := rule.Evaluate(in)

		log.Debug("hard filter check",
			zap.String("name", check.Name),
			zap.Bool("required", check.Required),
			zap.String("status", string(check.Status)),
			zap.Bool("passed", check.Passed),
			zap.String("detail", check.Detail),
		)

		result.Checks = append(result.Checks, check)
		if check.Required && !check.Passed {
			result.OverallPassed = false
		}
	}

	result.ShouldDecline = !result.OverallPassed

	if !result.OverallPassed {
		log.Info("opportunity failed hard filters",
			zap.Strings("failed_checks", result.FailedRequired()),
		)
	}

	return result
}
