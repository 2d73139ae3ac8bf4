// Package followup decides whether a follow-up question can be answered
// automatically from the user profile, or must go to a human.
//
// The language model only names the question type; whether an answer is
// safe to send is a pure function of the profile, decided here.
package followup

import (
	"fmt"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/profile"
)

// Resolution is the policy outcome for an analyzed follow-up.
type Resolution struct {
	CanAutoRespond bool
	// ReviewReason is set whenever CanAutoRespond is false. It is shown
	// to the human reviewer as-is.
	ReviewReason string
}

// Resolve applies the auto-response policy. Only salary and availability
// questions may be auto-answered, and only when the profile holds an
// unambiguous answer for them.
func Resolve(analysis *ai.FollowUpAnalysis, p *profile.UserProfile) Resolution {
	if analysis == nil {
		return manual("follow-up analysis unavailable")
	}

	switch analysis.QuestionType {
	case ai.QuestionSalary:
		if !p.ShareSalary {
			return manual("salary question, but the profile does not share salary expectations")
		}
		if p.IdealOrFloorSalary() <= 0 {
			return manual("salary question, but no salary expectation is configured")
		}
		return Resolution{CanAutoRespond: true}

	case ai.QuestionAvailability:
		if p.AvailabilityWeeks <= 0 {
			return manual("availability question, but no availability is configured")
		}
		return Resolution{CanAutoRespond: true}

	case ai.QuestionNone:
		return manual("no explicit question detected in the follow-up")

	default:
		return manual(fmt.Sprintf("%s questions require a human answer", analysis.QuestionType))
	}
}

func manual(reason string) Resolution {
	return Resolution{ReviewReason: reason}
}
