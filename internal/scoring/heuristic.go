package scoring

import (
	"strings"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/profile"

	"go.uber.org/zap"
)

var seniorityKeywords = []string{
	"principal", "distinguished", "architect",
	"staff", "tech lead", "team lead", "lead",
	"senior", "sr",
	"mid-level", "intermediate",
	"junior", "entry level", "entry-level",
	"intern", "trainee",
}

// remoteKeywords is checked in order: "hybrid" must win over the bare
// "remote" substring in texts like "hybrid remote".
var remoteKeywords = []struct {
	keyword string
	policy  profile.RemotePolicy
}{
	{"hybrid", profile.RemoteHybrid},
	{"on-site", profile.RemoteOnsite},
	{"onsite", profile.RemoteOnsite},
	{"in office", profile.RemoteOnsite},
	{"remote", profile.RemoteOnly},
}

// ScoreHeuristic scores directly from raw text when structured extraction
// is unavailable: keyword overlap for the stack, a regex salary parse and
// simple level/remote keyword scans. Deliberately conservative, so one
// failed capability never fails the whole message.
func (s *Scorer) ScoreHeuristic(in *Input) *Result {
	derived := deriveFacts(in)

	s.logger.Debug("falling back to heuristic scoring",
		zap.Strings("derived_stack", derived.TechStack),
		zap.Bool("salary_found", derived.SalaryMentioned()),
	)

	result := s.Score(&Input{Message: in.Message, Extracted: derived, Profile: in.Profile})
	result.Heuristic = true
	return result
}

// deriveFacts builds a best-effort ExtractedData from the raw body.
func deriveFacts(in *Input) *ai.ExtractedData {
	body := ""
	if in.Message != nil {
		body = strings.ToLower(in.Message.Body)
	}

	derived := &ai.ExtractedData{}

	// Stack: any preferred technology literally present in the text.
	for _, tech := range in.Profile.PreferredStack {
		if strings.Contains(body, strings.ToLower(strings.TrimSpace(tech))) {
			derived.TechStack = append(derived.TechStack, tech)
		}
	}
	derived.TechStack = ai.DedupeStack(derived.TechStack)

	if figures, ok := ai.ParseSalaryText(body); ok {
		derived.SalaryMin = figures.Min
		derived.SalaryMax = figures.Max
		derived.Currency = figures.Currency
	}

	for _, keyword := range seniorityKeywords {
		if strings.Contains(body, keyword) {
			derived.Seniority = profile.ParseSeniority(keyword)
			break
		}
	}

	for _, entry := range remoteKeywords {
		if strings.Contains(body, entry.keyword) {
			derived.RemotePolicy = entry.policy
			break
		}
	}

	return derived
}
