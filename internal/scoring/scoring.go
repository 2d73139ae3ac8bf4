// Package scoring computes the weighted multi-dimension match score for an
// opportunity and derives its priority tier. Scoring is deterministic given
// extracted facts; the LLM plays no part here.
package scoring

import (
	"strings"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"

	"go.uber.org/zap"
)

// Per-dimension maxima. Weights are baked into these scales and never
// applied again.
const (
	TechScale      = 40.0
	SalaryScale    = 30.0
	SeniorityScale = 20.0
	CompanyScale   = 10.0
)

// relatedCredit is the partial credit for a related-but-not-exact tech match.
const relatedCredit = 0.5

// seniorityFalloffLevels is the ordinal distance at which the seniority
// score reaches zero.
const seniorityFalloffLevels = 3.0

// Result holds the four sub-scores, their clamped sum and the derived tier.
// The tier is always recomputable from TotalScore alone.
type Result struct {
	TechScore      float64 `json:"tech_score"`
	SalaryScore    float64 `json:"salary_score"`
	SeniorityScore float64 `json:"seniority_score"`
	CompanyScore   float64 `json:"company_score"`
	TotalScore     float64 `json:"total_score"`
	Tier           Tier    `json:"tier"`

	// Heuristic marks a result produced by the deterministic fallback
	// over raw text instead of extracted facts.
	Heuristic bool `json:"heuristic,omitempty"`
}

// Input bundles everything the scorer may inspect.
type Input struct {
	Message   *message.RawMessage
	Extracted *ai.ExtractedData
	Profile   *profile.UserProfile
}

// Scorer evaluates opportunities against the user's preferences.
type Scorer struct {
	thresholds Thresholds
	logger     *zap.Logger
}

// New creates a Scorer with the given tier thresholds.
func New(thresholds Thresholds, log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{thresholds: thresholds, logger: log}
}

// Score computes the match score from extracted facts.
func (s *Scorer) Score(in *Input) *Result {
	result := &Result{
		TechScore:      s.techScore(in.Extracted, in.Profile),
		SalaryScore:    s.salaryScore(in.Extracted, in.Profile),
		SeniorityScore: s.seniorityScore(in.Extracted, in.Profile),
		CompanyScore:   s.companyScore(in),
	}

	total := result.TechScore + result.SalaryScore + result.SeniorityScore + result.CompanyScore
	result.TotalScore = clamp(total, 0, 100)
	result.Tier = s.thresholds.TierFor(result.TotalScore)

	s.logger.Debug("scored opportunity",
		zap.Float64("tech", result.TechScore),
		zap.Float64("salary", result.SalaryScore),
		zap.Float64("seniority", result.SeniorityScore),
		zap.Float64("company", result.CompanyScore),
		zap.Float64("total", result.TotalScore),
		zap.String("tier", string(result.Tier)),
	)

	return result
}

// techScore awards proportional credit for the preferred stack covered by
// the offer, with partial credit for related technologies.
func (s *Scorer) techScore(extracted *ai.ExtractedData, p *profile.UserProfile) float64 {
	if len(p.PreferredStack) == 0 {
		// Nothing to match against: neutral half credit.
		return TechScale / 2
	}
	if extracted == nil || len(extracted.TechStack) == 0 {
		return 0
	}

	offered := make(map[string]struct{}, len(extracted.TechStack))
	for _, tech := range extracted.TechStack {
		offered[strings.ToLower(strings.TrimSpace(tech))] = struct{}{}
	}

	credit := 0.0
	for _, preferred := range p.PreferredStack {
		key := strings.ToLower(strings.TrimSpace(preferred))
		if _, ok := offered[key]; ok {
			credit++
			continue
		}
		if hasRelated(key, offered) {
			credit += relatedCredit
		}
	}

	return credit / float64(len(p.PreferredStack)) * TechScale
}

// salaryScore is piecewise linear between the floor and the ideal salary.
// At or above ideal caps at the full scale; below the floor scores zero
// regardless of how the hard filters resolved.
func (s *Scorer) salaryScore(extracted *ai.ExtractedData, p *profile.UserProfile) float64 {
	best, mentioned := extracted.BestSalary()
	if !mentioned {
		// Unstated pay is neutral, not damning.
		return SalaryScale / 2
	}

	floor := p.SalaryFloor
	ideal := p.IdealOrFloorSalary()

	switch {
	case best < floor:
		return 0
	case best >= ideal:
		return SalaryScale
	case ideal == floor:
		return SalaryScale
	default:
		return float64(best-floor) / float64(ideal-floor) * SalaryScale
	}
}

// seniorityScore decays linearly with the ordinal distance from the target
// level, hitting zero at seniorityFalloffLevels.
func (s *Scorer) seniorityScore(extracted *ai.ExtractedData, p *profile.UserProfile) float64 {
	target := p.TargetSeniority
	offered := profile.SeniorityUnknown
	if extracted != nil {
		offered = extracted.Seniority
	}

	distance := offered.Distance(target)
	if distance < 0 {
		// Either side unknown: neutral half credit.
		return SeniorityScale / 2
	}

	credit := 1 - float64(distance)/seniorityFalloffLevels
	if credit < 0 {
		credit = 0
	}
	return credit * SeniorityScale
}

// companyScore is a heuristic: naming a company at all earns a little,
// a known company more, and preferred size/industry mentions top it up.
func (s *Scorer) companyScore(in *Input) float64 {
	extracted, p := in.Extracted, in.Profile

	if extracted == nil || strings.TrimSpace(extracted.Company) == "" {
		return 0
	}

	score := 4.0

	company := strings.ToLower(strings.TrimSpace(extracted.Company))
	for _, known := range p.KnownCompanies {
		if strings.ToLower(strings.TrimSpace(known)) == company {
			score += 4
			break
		}
	}

	body := ""
	if in.Message != nil {
		body = strings.ToLower(in.Message.Body)
	}
	if p.PreferredIndustry != "" && strings.Contains(body, strings.ToLower(p.PreferredIndustry)) {
		score++
	}
	if p.PreferredSize != "" && strings.Contains(body, strings.ToLower(p.PreferredSize)) {
		score++
	}

	return clamp(score, 0, CompanyScale)
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
