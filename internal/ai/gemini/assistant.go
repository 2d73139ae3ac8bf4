// Package gemini implements the language-model capability on top of the
// Google GenAI API.
package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/logger"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"

	"go.uber.org/zap"
)

//go:embed prompts/classify.md
var classifyTemplate string

//go:embed prompts/extract.md
var extractTemplate string

//go:embed prompts/followup.md
var followupTemplate string

//go:embed prompts/reply.md
var replyTemplate string

const (
	defaultMaxLogLength = 200
	defaultCallTimeout  = 45 * time.Second
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Assistant implements ai.Assistant using a Gemini content generator.
type Assistant struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	timeout   time.Duration
}

// NewAssistant wires the generator into the capability interface. A zero
// timeout falls back to the default per-call bound.
func NewAssistant(generator contentGenerator, log *zap.Logger, maxLogLength int, timeout time.Duration) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		logger:    log,
		maxLogLen: maxLogLength,
		timeout:   timeout,
	}
}

// ClassifyConversation labels the conversation phase of a message.
func (a *Assistant) ClassifyConversation(ctx context.Context, msg *message.RawMessage) (*ai.Classification, error) {
	prompt := strings.ReplaceAll(classifyTemplate, "{{CONTEXT}}", msg.ContextText())
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE}}", msg.Body)

	data, err := a.call(ctx, "classify", prompt)
	if err != nil {
		return nil, ai.NewStageError(ai.StageClassification, err)
	}

	state, err := ai.ParseConversationState(coerceString(data["state"]))
	if err != nil {
		return nil, err
	}

	return &ai.Classification{
		State:     state,
		Rationale: coerceString(data["rationale"]),
	}, nil
}

// ExtractFacts pulls structured opportunity facts from a message. With
// simplified set the prompt omits thread context, which the orchestrator
// uses for its single retry on extraction failure.
func (a *Assistant) ExtractFacts(ctx context.Context, msg *message.RawMessage, simplified bool) (*ai.ExtractedData, error) {
	contextSection := ""
	if !simplified && msg.HasContext() {
		contextSection = "Prior thread messages:\n" + msg.ContextText()
	}

	prompt := strings.ReplaceAll(extractTemplate, "{{CONTEXT_SECTION}}", contextSection)
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE}}", msg.Body)

	data, err := a.call(ctx, "extract", prompt)
	if err != nil {
		return nil, ai.NewStageError(ai.StageExtraction, err)
	}

	extracted := &ai.ExtractedData{
		Company:   coerceString(data["company"]),
		Role:      coerceString(data["role"]),
		TechStack: ai.DedupeStack(coerceStringSlice(data["tech_stack"])),
		Seniority: profile.ParseSeniority(coerceString(data["seniority"])),
		Location:  coerceString(data["location"]),
	}

	// A remote policy the model invented is treated as not mentioned.
	if policy, perr := profile.ParseRemotePolicy(coerceString(data["remote_policy"])); perr == nil {
		extracted.RemotePolicy = policy
	}

	if hours := coerceFloat(data["work_week_hours"]); hours > 0 {
		extracted.WorkWeekHours = int(hours)
	}

	if figures, ok := ai.ParseSalaryText(coerceString(data["salary"])); ok {
		extracted.SalaryMin = figures.Min
		extracted.SalaryMax = figures.Max
		extracted.Currency = figures.Currency
	}

	return extracted, nil
}

// AnalyzeFollowUp classifies the question implied by a follow-up message.
// Whether it is safe to auto-answer is decided downstream against the user
// profile, never by the model.
func (a *Assistant) AnalyzeFollowUp(ctx context.Context, msg *message.RawMessage) (*ai.FollowUpAnalysis, error) {
	prompt := strings.ReplaceAll(followupTemplate, "{{CONTEXT}}", msg.ContextText())
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE}}", msg.Body)

	data, err := a.call(ctx, "followup", prompt)
	if err != nil {
		return nil, ai.NewStageError(ai.StageFollowUpAnalysis, err)
	}

	return &ai.FollowUpAnalysis{
		QuestionType: ai.ParseQuestionType(coerceString(data["question_type"])),
		Reasoning:    coerceString(data["reasoning"]),
	}, nil
}

// GenerateReply produces natural-language reply text for the given request.
func (a *Assistant) GenerateReply(ctx context.Context, req *ai.ReplyRequest) (string, error) {
	facts, err := json.MarshalIndent(replyFacts(req), "", "  ")
	if err != nil {
		return "", ai.NewStageError(ai.StageResponseGeneration, fmt.Errorf("marshal reply facts: %w", err))
	}

	prompt := strings.ReplaceAll(replyTemplate, "{{INTENT}}", replyIntent(req))
	prompt = strings.ReplaceAll(prompt, "{{FACTS_JSON}}", string(facts))
	prompt = strings.ReplaceAll(prompt, "{{CONTEXT}}", req.Message.ContextText())
	prompt = strings.ReplaceAll(prompt, "{{MESSAGE}}", req.Message.Body)

	a.logPrompt("reply", prompt)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return "", ai.NewStageError(ai.StageResponseGeneration, err)
	}

	reply := strings.TrimSpace(raw)
	if reply == "" {
		return "", ai.NewStageError(ai.StageResponseGeneration, fmt.Errorf("model returned empty reply"))
	}

	return reply, nil
}

func replyIntent(req *ai.ReplyRequest) string {
	switch {
	case req.Decline:
		reason := req.DeclineReason
		if reason == "" {
			reason = "the role does not match the candidate's requirements"
		}
		return "Politely decline the opportunity. Internal reason (soften it, do not quote verbatim): " + reason
	case req.FollowUp != nil:
		return "Answer the sender's question directly using the candidate facts."
	default:
		return "Express interest in the opportunity and ask for the next step."
	}
}

func replyFacts(req *ai.ReplyRequest) map[string]any {
	facts := map[string]any{}
	if p := req.Profile; p != nil {
		if p.ShareSalary && p.IdealOrFloorSalary() > 0 {
			facts["salary_expectation"] = p.IdealOrFloorSalary()
			if p.Currency != "" {
				facts["salary_currency"] = p.Currency
			}
		}
		if p.AvailabilityWeeks > 0 {
			facts["availability_weeks"] = p.AvailabilityWeeks
		}
		if len(p.PreferredStack) > 0 {
			facts["core_skills"] = p.PreferredStack
		}
	}
	if e := req.Extracted; e != nil {
		if e.Company != "" {
			facts["company"] = e.Company
		}
		if e.Role != "" {
			facts["role"] = e.Role
		}
	}
	return facts
}

// call sends the prompt and decodes the JSON object response.
func (a *Assistant) call(ctx context.Context, task, prompt string) (map[string]any, error) {
	a.logPrompt(task, prompt)

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini response",
		zap.String("task", task),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	return parseObject(raw)
}

func (a *Assistant) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	return a.generator.GenerateContent(ctx, prompt)
}

func (a *Assistant) logPrompt(task, prompt string) {
	a.logger.Debug("gemini request",
		zap.String("task", task),
		zap.String("model", a.generator.Model()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)
}
