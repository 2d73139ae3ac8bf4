// Package ai defines the opaque language-model capability the decision
// engine depends on. One method per task with an explicit result shape, so
// the engine can be exercised with deterministic stubs.
package ai

import (
	"context"

	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"
)

// ConversationState labels the phase of an inbound message. It is produced
// once per message and drives all downstream branching.
type ConversationState string

const (
	StateNewOpportunity ConversationState = "NEW_OPPORTUNITY"
	StateFollowUp       ConversationState = "FOLLOW_UP"
	StateCourtesyClose  ConversationState = "COURTESY_CLOSE"
)

// ParseConversationState converts a raw model label into a ConversationState.
// Unknown labels are an error: defaulting a courtesy message to an
// opportunity would mis-score it.
func ParseConversationState(s string) (ConversationState, error) {
	state := ConversationState(s)
	switch state {
	case StateNewOpportunity, StateFollowUp, StateCourtesyClose:
		return state, nil
	}
	return "", &StageError{Stage: StageClassification, Err: errUnknownLabel(s)}
}

// Classification is the result of the conversation-phase call.
type Classification struct {
	State     ConversationState `json:"state"`
	Rationale string            `json:"rationale,omitempty"`
}

// ExtractedData holds the structured facts pulled out of an opportunity
// message. Zero values and nil pointers mean "not mentioned", never a guess.
type ExtractedData struct {
	Company       string               `json:"company,omitempty"`
	Role          string               `json:"role,omitempty"`
	SalaryMin     *int                 `json:"salary_min,omitempty"`
	SalaryMax     *int                 `json:"salary_max,omitempty"`
	Currency      string               `json:"currency,omitempty"`
	TechStack     []string             `json:"tech_stack,omitempty"`
	Seniority     profile.Seniority    `json:"seniority,omitempty"`
	RemotePolicy  profile.RemotePolicy `json:"remote_policy,omitempty"`
	Location      string               `json:"location,omitempty"`
	WorkWeekHours int                  `json:"work_week_hours,omitempty"`
}

// SalaryMentioned reports whether the message carried any salary figure.
func (d *ExtractedData) SalaryMentioned() bool {
	return d != nil && (d.SalaryMin != nil || d.SalaryMax != nil)
}

// BestSalary returns the most optimistic mentioned figure (max, then min).
func (d *ExtractedData) BestSalary() (int, bool) {
	switch {
	case d == nil:
		return 0, false
	case d.SalaryMax != nil:
		return *d.SalaryMax, true
	case d.SalaryMin != nil:
		return *d.SalaryMin, true
	}
	return 0, false
}

// QuestionType classifies what a follow-up message is asking for.
type QuestionType string

const (
	QuestionSalary       QuestionType = "SALARY"
	QuestionAvailability QuestionType = "AVAILABILITY"
	QuestionExperience   QuestionType = "EXPERIENCE"
	QuestionInterest     QuestionType = "INTEREST"
	QuestionScheduling   QuestionType = "SCHEDULING"
	QuestionNone         QuestionType = "NONE"
	QuestionOther        QuestionType = "OTHER"
)

// ParseQuestionType maps a raw model label onto the enum, folding anything
// unrecognized into QuestionOther which is never auto-answered.
func ParseQuestionType(s string) QuestionType {
	q := QuestionType(s)
	switch q {
	case QuestionSalary, QuestionAvailability, QuestionExperience,
		QuestionInterest, QuestionScheduling, QuestionNone:
		return q
	}
	return QuestionOther
}

// FollowUpAnalysis is the result of the follow-up call.
type FollowUpAnalysis struct {
	QuestionType   QuestionType `json:"question_type"`
	CanAutoRespond bool         `json:"can_auto_respond"`
	Reasoning      string       `json:"reasoning,omitempty"`
}

// ReplyRequest carries everything the response generator may draw on.
type ReplyRequest struct {
	Message   *message.RawMessage
	Profile   *profile.UserProfile
	Extracted *ExtractedData
	FollowUp  *FollowUpAnalysis

	// Decline asks for a polite decline instead of an expression of
	// interest.
	Decline bool
	// DeclineReason is a short internal reason the generator may soften.
	DeclineReason string
}

// Assistant is the language-model capability behind the pipeline. Every call
// is a blocking round-trip with a bounded timeout; malformed output surfaces
// as a *StageError for the corresponding stage.
type Assistant interface {
	ClassifyConversation(ctx context.Context, msg *message.RawMessage) (*Classification, error)

	// ExtractFacts pulls structured facts from an opportunity message.
	// With simplified set, the prompt omits thread context; the
	// orchestrator uses this for its single retry.
	ExtractFacts(ctx context.Context, msg *message.RawMessage, simplified bool) (*ExtractedData, error)

	AnalyzeFollowUp(ctx context.Context, msg *message.RawMessage) (*FollowUpAnalysis, error)

	GenerateReply(ctx context.Context, req *ReplyRequest) (string, error)
}
