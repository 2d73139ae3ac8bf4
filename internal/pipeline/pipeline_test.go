package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/cache"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"
	"github.com/spigell/recruit-responder/internal/scoring"
)

// stubAssistant scripts every capability call for deterministic tests.
type stubAssistant struct {
	classification *ai.Classification
	classifyErr    error

	extracted      *ai.ExtractedData
	extractErr     error
	extractErrOnce bool

	followUp    *ai.FollowUpAnalysis
	followUpErr error

	reply    string
	replyErr error

	classifyCalls int
	extractCalls  int
	followUpCalls int
	replyCalls    int
	sawSimplified bool
	lastReply     *ai.ReplyRequest
}

func (s *stubAssistant) ClassifyConversation(context.Context, *message.RawMessage) (*ai.Classification, error) {
	s.classifyCalls++
	return s.classification, s.classifyErr
}

func (s *stubAssistant) ExtractFacts(_ context.Context, _ *message.RawMessage, simplified bool) (*ai.ExtractedData, error) {
	s.extractCalls++
	if simplified {
		s.sawSimplified = true
	}
	if s.extractErr != nil {
		if s.extractErrOnce && simplified {
			return s.extracted, nil
		}
		return nil, s.extractErr
	}
	return s.extracted, nil
}

func (s *stubAssistant) AnalyzeFollowUp(context.Context, *message.RawMessage) (*ai.FollowUpAnalysis, error) {
	s.followUpCalls++
	return s.followUp, s.followUpErr
}

func (s *stubAssistant) GenerateReply(_ context.Context, req *ai.ReplyRequest) (string, error) {
	s.replyCalls++
	s.lastReply = req
	return s.reply, s.replyErr
}

func intPtr(v int) *int { return &v }

func matchingProfile() *profile.UserProfile {
	return &profile.UserProfile{
		PreferredStack:  []string{"Python", "PostgreSQL"},
		SalaryFloor:     100000,
		IdealSalary:     150000,
		TargetSeniority: profile.SenioritySenior,
		ShareSalary:     true,
	}
}

func opportunityMessage() *message.RawMessage {
	return &message.RawMessage{
		Sender: "Recruiter",
		Body:   "Hi! Senior Python role at Acme, $150k-$180k, remote",
	}
}

func newOpportunityStub() *stubAssistant {
	return &stubAssistant{
		classification: &ai.Classification{State: ai.StateNewOpportunity},
		extracted: &ai.ExtractedData{
			Company:      "Acme",
			Role:         "Senior Python Engineer",
			SalaryMin:    intPtr(150000),
			SalaryMax:    intPtr(180000),
			Currency:     "USD",
			TechStack:    []string{"Python"},
			Seniority:    profile.SenioritySenior,
			RemotePolicy: profile.RemoteOnly,
		},
		reply: "Thanks, I would love to hear more.",
	}
}

func newPipeline(assistant ai.Assistant, cfg Config) *Pipeline {
	scorer := scoring.New(scoring.DefaultThresholds(), zap.NewNop())
	return New(assistant, scorer, cache.NewMemoryStore(), cfg, zap.NewNop())
}

func TestProcessNewOpportunity(t *testing.T) {
	stub := newOpportunityStub()
	p := newPipeline(stub, Config{})

	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, ai.StateNewOpportunity, decision.State)
	assert.Equal(t, StatusProcessed, decision.Status)
	assert.NotEmpty(t, decision.Response)
	assert.NotEmpty(t, decision.ID)

	require.NotNil(t, decision.Filters)
	assert.True(t, decision.Filters.OverallPassed)

	require.NotNil(t, decision.Scoring)
	assert.Greater(t, decision.Scoring.TechScore, 0.0)
	assert.InDelta(t, scoring.SalaryScale, decision.Scoring.SalaryScore, 0.01)
	assert.Equal(t, scoring.TierHigh, decision.Scoring.Tier)

	assert.Equal(t, []Stage{
		StageReceived, StageClassified, StageExtracted, StageFiltered,
		StageScored, StageResponseGenerated, StageDecided,
	}, decision.Trace)
}

func TestProcessAutoRespondsOnHighTier(t *testing.T) {
	p := newPipeline(newOpportunityStub(), Config{AutoRespond: true})

	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusAutoResponded, decision.Status)
	assert.NotEmpty(t, decision.Response)
}

func TestProcessCourtesyClose(t *testing.T) {
	stub := &stubAssistant{classification: &ai.Classification{State: ai.StateCourtesyClose}}
	p := newPipeline(stub, Config{})

	decision := p.Process(context.Background(), &message.RawMessage{
		Sender: "Recruiter",
		Body:   "Thanks, have a great day!",
	}, matchingProfile())

	assert.Equal(t, StatusIgnored, decision.Status)
	assert.Empty(t, decision.Response)

	// A courtesy close never reaches the downstream capabilities.
	assert.Nil(t, decision.Extracted)
	assert.Nil(t, decision.Scoring)
	assert.Nil(t, decision.FollowUp)
	assert.Zero(t, stub.extractCalls)
	assert.Zero(t, stub.replyCalls)
}

func TestProcessFollowUpAutoResponds(t *testing.T) {
	stub := &stubAssistant{
		classification: &ai.Classification{State: ai.StateFollowUp},
		followUp:       &ai.FollowUpAnalysis{QuestionType: ai.QuestionSalary},
		reply:          "My expectation is around $150k.",
	}
	p := newPipeline(stub, Config{})

	decision := p.Process(context.Background(), &message.RawMessage{
		Sender: "Recruiter",
		Body:   "What's the salary range?",
	}, matchingProfile())

	assert.Equal(t, StatusAutoResponded, decision.Status)
	assert.NotEmpty(t, decision.Response)
	require.NotNil(t, decision.FollowUp)
	assert.Equal(t, ai.QuestionSalary, decision.FollowUp.QuestionType)
	assert.True(t, decision.FollowUp.CanAutoRespond)
}

func TestProcessFollowUpEscalatesUnanswerable(t *testing.T) {
	stub := &stubAssistant{
		classification: &ai.Classification{State: ai.StateFollowUp},
		followUp:       &ai.FollowUpAnalysis{QuestionType: ai.QuestionExperience},
	}
	p := newPipeline(stub, Config{})

	decision := p.Process(context.Background(), &message.RawMessage{
		Sender: "Recruiter",
		Body:   "How many years of Kubernetes do you have?",
	}, matchingProfile())

	assert.Equal(t, StatusManualReview, decision.Status)
	assert.NotEmpty(t, decision.ReviewReason)
	assert.Zero(t, stub.replyCalls)
}

func TestProcessDeclinesOnFailedFilters(t *testing.T) {
	stub := newOpportunityStub()
	stub.extracted = &ai.ExtractedData{
		Company:      "Acme",
		TechStack:    []string{"COBOL", "Fortran"},
		RemotePolicy: profile.RemoteOnsite,
	}

	prof := matchingProfile()
	prof.MinStackOverlapPct = 50
	prof.RequiredRemote = profile.RemoteOnly

	p := newPipeline(stub, Config{})
	decision := p.Process(context.Background(), opportunityMessage(), prof)

	assert.Equal(t, StatusDeclined, decision.Status)
	require.NotNil(t, decision.Filters)
	assert.False(t, decision.Filters.OverallPassed)
	assert.NotContains(t, []Status{StatusProcessed, StatusAutoResponded}, decision.Status)

	// Scoring and filtering are independent axes: the declined decision
	// still went through SCORED and carries its score.
	require.NotNil(t, decision.Scoring)
	assert.False(t, decision.Scoring.Heuristic)
	assert.Equal(t, []Stage{
		StageReceived, StageClassified, StageExtracted, StageFiltered,
		StageScored, StageNoResponse, StageDecided,
	}, decision.Trace)

	// Declines stay silent unless configured otherwise.
	assert.Empty(t, decision.Response)
	assert.Zero(t, stub.replyCalls)
}

func TestProcessDeclineWithMessage(t *testing.T) {
	stub := newOpportunityStub()
	stub.extracted = &ai.ExtractedData{TechStack: []string{"COBOL"}, RemotePolicy: profile.RemoteOnsite}
	stub.reply = "Thanks, but this one is not a fit for me."

	prof := matchingProfile()
	prof.RequiredRemote = profile.RemoteOnly

	p := newPipeline(stub, Config{SendDeclines: true})
	decision := p.Process(context.Background(), opportunityMessage(), prof)

	assert.Equal(t, StatusDeclined, decision.Status)
	assert.NotEmpty(t, decision.Response)
	require.NotNil(t, stub.lastReply)
	assert.True(t, stub.lastReply.Decline)
	assert.NotEmpty(t, stub.lastReply.DeclineReason)
}

func TestProcessIsIdempotentViaCache(t *testing.T) {
	stub := newOpportunityStub()
	p := newPipeline(stub, Config{CacheTTL: time.Hour})

	first := p.Process(context.Background(), opportunityMessage(), matchingProfile())
	second := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Response, second.Response)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)

	// The second call never touched the capabilities again.
	assert.Equal(t, 1, stub.classifyCalls)
	assert.Equal(t, 1, stub.extractCalls)
	assert.Equal(t, 1, stub.replyCalls)
}

func TestProcessClassificationFailure(t *testing.T) {
	stub := &stubAssistant{
		classifyErr: ai.NewStageError(ai.StageClassification, errors.New("model returned unknown label \"MAYBE\"")),
	}
	p := newPipeline(stub, Config{})

	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusManualReview, decision.Status)
	assert.Contains(t, decision.ReviewReason, "classified")
	assert.Contains(t, decision.ReviewReason, "MAYBE")
}

func TestProcessExtractionRetriesSimplified(t *testing.T) {
	stub := newOpportunityStub()
	stub.extractErr = ai.NewStageError(ai.StageExtraction, errors.New("malformed json"))
	stub.extractErrOnce = true

	p := newPipeline(stub, Config{})
	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusProcessed, decision.Status)
	assert.True(t, stub.sawSimplified)
	assert.Equal(t, 2, stub.extractCalls)
}

func TestProcessExtractionDoubleFailure(t *testing.T) {
	stub := newOpportunityStub()
	stub.extractErr = ai.NewStageError(ai.StageExtraction, errors.New("malformed json"))

	p := newPipeline(stub, Config{})
	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusManualReview, decision.Status)
	assert.NotEmpty(t, decision.ReviewReason)
	assert.Equal(t, 2, stub.extractCalls)

	// The reviewer still gets a heuristic triage score.
	require.NotNil(t, decision.Scoring)
	assert.True(t, decision.Scoring.Heuristic)
	assert.Greater(t, decision.Scoring.TechScore, 0.0)
}

func TestProcessReplyFailureEscalates(t *testing.T) {
	stub := newOpportunityStub()
	stub.replyErr = ai.NewStageError(ai.StageResponseGeneration, errors.New("timeout"))

	p := newPipeline(stub, Config{})
	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusManualReview, decision.Status)
	assert.NotEmpty(t, decision.ReviewReason)
}

// failingStore simulates a cache outage on every operation.
type failingStore struct{}

func (failingStore) Lookup(context.Context, string, any) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingStore) Begin(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingStore) Store(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}

func (failingStore) Invalidate(context.Context) error {
	return errors.New("connection refused")
}

func TestProcessSurvivesCacheOutage(t *testing.T) {
	stub := newOpportunityStub()
	scorer := scoring.New(scoring.DefaultThresholds(), zap.NewNop())
	p := New(stub, scorer, failingStore{}, Config{}, zap.NewNop())

	decision := p.Process(context.Background(), opportunityMessage(), matchingProfile())

	assert.Equal(t, StatusProcessed, decision.Status)
	assert.NotEmpty(t, decision.Response)
}
