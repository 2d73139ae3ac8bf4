package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/recruit-responder/internal/profile"
)

type workWeekRule struct{}

func (r *workWeekRule) Name() string { return "work_week" }

func (r *workWeekRule) Evaluate(in *Input) Check {
	check := Check{Name: r.Name()}

	maxHours := in.Profile.MaxWorkWeekHours
	if maxHours <= 0 {
		check.Status = StatusPassed
		check.Passed = true
		check.Detail = "no work-week requirement configured"
		return check
	}

	check.Required = true

	hours := 0
	if in.Extracted != nil {
		hours = in.Extracted.WorkWeekHours
	}
	if hours <= 0 {
		if in.Profile.WorkWeekStrict {
			check.Status = StatusFailed
			check.Detail = "work week not mentioned and the requirement is strict"
			return check
		}
		// Benefit of the doubt: most messages never state hours.
		check.Status = StatusNotMentioned
		check.Passed = true
		return check
	}

	if hours > maxHours {
		check.Status = StatusFailed
		check.Detail = fmt.Sprintf("%d hours exceeds the %d hour limit", hours, maxHours)
		return check
	}

	check.Status = StatusPassed
	check.Passed = true
	return check
}

type salaryFloorRule struct{}

func (r *salaryFloorRule) Name() string { return "salary_floor" }

func (r *salaryFloorRule) Evaluate(in *Input) Check {
	check := Check{Name: r.Name()}

	floor := in.Profile.SalaryFloor
	if floor <= 0 {
		check.Status = StatusPassed
		check.Passed = true
		check.Detail = "no salary floor configured"
		return check
	}

	check.Required = true

	best, mentioned := in.Extracted.BestSalary()
	if !mentioned {
		if in.Profile.SalaryStrict {
			check.Status = StatusFailed
			check.Detail = "salary not mentioned and the floor is strict"
			return check
		}
		check.Status = StatusNotMentioned
		check.Passed = true
		return check
	}

	if best < floor {
		check.Status = StatusFailed
		check.Detail = fmt.Sprintf("best mentioned salary %d is below the floor %d", best, floor)
		return check
	}

	check.Status = StatusPassed
	check.Passed = true
	return check
}

type stackOverlapRule struct{}

func (r *stackOverlapRule) Name() string { return "stack_overlap" }

func (r *stackOverlapRule) Evaluate(in *Input) Check {
	check := Check{Name: r.Name()}

	minPct := in.Profile.MinStackOverlapPct
	if minPct <= 0 || len(in.Profile.PreferredStack) == 0 {
		check.Status = StatusPassed
		check.Passed = true
		check.Detail = "no stack overlap requirement configured"
		return check
	}

	check.Required = true

	if in.Extracted == nil || len(in.Extracted.TechStack) == 0 {
		if in.Profile.StackStrict {
			check.Status = StatusFailed
			check.Detail = "tech stack not mentioned and the overlap requirement is strict"
			return check
		}
		check.Status = StatusNotMentioned
		check.Passed = true
		return check
	}

	pct := OverlapPercent(in.Extracted.TechStack, in.Profile.PreferredStack)
	if pct < minPct {
		check.Status = StatusFailed
		check.Detail = fmt.Sprintf("stack overlap %.0f%% is below the required %.0f%%", pct, minPct)
		return check
	}

	check.Status = StatusPassed
	check.Passed = true
	check.Detail = fmt.Sprintf("stack overlap %.0f%%", pct)
	return check
}

// OverlapPercent reports how much of the preferred stack the offered stack
// covers, case-insensitively.
func OverlapPercent(offered, preferred []string) float64 {
	if len(preferred) == 0 {
		return 0
	}

	offeredSet := make(map[string]struct{}, len(offered))
	for _, tech := range offered {
		offeredSet[strings.ToLower(strings.TrimSpace(tech))] = struct{}{}
	}

	matched := 0
	for _, tech := range preferred {
		if _, ok := offeredSet[strings.ToLower(strings.TrimSpace(tech))]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(preferred)) * 100
}

type remotePolicyRule struct{}

func (r *remotePolicyRule) Name() string { return "remote_policy" }

// acceptableRemote maps a required policy to the offered policies satisfying it.
var acceptableRemote = map[profile.RemotePolicy][]profile.RemotePolicy{
	profile.RemoteOnly:   {profile.RemoteOnly},
	profile.RemoteHybrid: {profile.RemoteOnly, profile.RemoteHybrid},
	profile.RemoteOnsite: {profile.RemoteOnsite, profile.RemoteHybrid},
}

func (r *remotePolicyRule) Evaluate(in *Input) Check {
	check := Check{Name: r.Name()}

	required := in.Profile.RequiredRemote
	if required == "" || required == profile.RemoteAny {
		check.Status = StatusPassed
		check.Passed = true
		check.Detail = "no remote-policy requirement configured"
		return check
	}

	check.Required = true

	offered := profile.RemotePolicy("")
	if in.Extracted != nil {
		offered = in.Extracted.RemotePolicy
	}
	if offered == "" || offered == profile.RemoteAny {
		if in.Profile.RemoteStrict {
			// Strictly required dimensions fail closed when unmentioned.
			check.Status = StatusFailed
			check.Detail = "remote policy not mentioned and the requirement is strict"
			return check
		}
		check.Status = StatusNotMentioned
		check.Passed = true
		return check
	}

	for _, ok := range acceptableRemote[required] {
		if offered == ok {
			check.Status = StatusPassed
			check.Passed = true
			return check
		}
	}

	check.Status = StatusFailed
	check.Detail = fmt.Sprintf("offered policy %q does not satisfy required %q", offered, required)
	return check
}

type keywordRule struct{}

func (r *keywordRule) Name() string { return "keywords" }

func (r *keywordRule) Evaluate(in *Input) Check {
	check := Check{Name: r.Name()}

	rejects := in.Profile.RejectKeywords
	musts := in.Profile.MustHaveKeywords
	if len(rejects) == 0 && len(musts) == 0 {
		check.Status = StatusPassed
		check.Passed = true
		check.Detail = "no keyword lists configured"
		return check
	}

	check.Required = true

	body := ""
	if in.Message != nil {
		body = strings.ToLower(in.Message.Body)
	}

	for _, keyword := range rejects {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(body, keyword) {
			check.Status = StatusFailed
			check.Detail = fmt.Sprintf("rejection keyword %q matched", keyword)
			return check
		}
	}

	for _, keyword := range musts {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && !strings.Contains(body, keyword) {
			check.Status = StatusFailed
			check.Detail = fmt.Sprintf("must-have keyword %q is missing", keyword)
			return check
		}
	}

	check.Status = StatusPassed
	check.Passed = true
	return check
}
