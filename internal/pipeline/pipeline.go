// Package pipeline orchestrates the per-message decision flow: cache
// lookup, conversation classification, the phase-specific stages, response
// generation, and the cache write.
//
// Process never returns an error. Every failure mode maps onto a decision,
// worst case MANUAL_REVIEW carrying the failure as its review reason.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/cache"
	"github.com/spigell/recruit-responder/internal/filtering"
	"github.com/spigell/recruit-responder/internal/followup"
	"github.com/spigell/recruit-responder/internal/logger"
	"github.com/spigell/recruit-responder/internal/message"
	"github.com/spigell/recruit-responder/internal/profile"
	"github.com/spigell/recruit-responder/internal/scoring"
)

// Config tunes orchestrator behavior. The zero value is usable.
type Config struct {
	// AutoRespond permits AUTO_RESPONDED for HIGH-tier opportunities.
	// When false every passing opportunity lands on PROCESSED and the
	// drafted reply waits for the user.
	AutoRespond bool
	// SendDeclines drafts a polite decline for filtered-out messages.
	// Without it a DECLINED decision carries no response text.
	SendDeclines bool
	// CacheTTL overrides how long decisions are memoized.
	CacheTTL time.Duration
}

// Pipeline wires the capabilities behind one Process call.
type Pipeline struct {
	assistant ai.Assistant
	rules     []filtering.Rule
	scorer    *scoring.Scorer
	store     cache.Store
	cfg       Config
	logger    *zap.Logger
}

func New(assistant ai.Assistant, scorer *scoring.Scorer, store cache.Store, cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		assistant: assistant,
		rules:     filtering.DefaultRules(),
		scorer:    scorer,
		store:     store,
		cfg:       cfg,
		logger:    log,
	}
}

// Process runs one message through the full decision flow. The returned
// decision is complete and immutable; nothing is persisted by the pipeline
// itself beyond the fingerprint cache entry.
func (p *Pipeline) Process(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile) *Decision {
	fingerprint := msg.Fingerprint()
	log := logger.WithMessageFields(p.logger, fingerprint, msg.Sender)

	if cached, ok := p.lookup(ctx, fingerprint, log); ok {
		return cached
	}

	decision := p.compute(ctx, msg, prof, fingerprint, log)

	if err := p.store.Store(ctx, fingerprint, decision, p.cfg.CacheTTL); err != nil {
		// Degraded mode: the decision still stands, it just will not
		// short-circuit a duplicate.
		log.Warn("storing decision failed, continuing uncached", zap.Error(err))
	}

	log.Info("decision rendered",
		zap.String(logger.FieldStatus, string(decision.Status)),
		zap.String(logger.FieldState, string(decision.State)),
	)
	return decision
}

// lookup serves a memoized decision when one exists. A cache outage or an
// in-flight claim by another worker degrades to recomputation.
func (p *Pipeline) lookup(ctx context.Context, fingerprint string, log *zap.Logger) (*Decision, bool) {
	var cached Decision
	found, err := p.store.Lookup(ctx, fingerprint, &cached)
	if err != nil {
		if errors.Is(err, cache.ErrInProgress) {
			// Duplicate work is acceptable: persistence downstream is
			// idempotent on fingerprint.
			log.Debug("fingerprint already in flight, recomputing")
		} else {
			log.Warn("cache lookup failed, continuing uncached", zap.Error(err))
		}
		return nil, false
	}
	if found {
		log.Debug("decision served from cache",
			zap.String(logger.FieldStatus, string(cached.Status)))
		cached.Cached = true
		return &cached, true
	}

	if acquired, err := p.store.Begin(ctx, fingerprint); err != nil {
		log.Warn("claiming fingerprint failed, continuing uncached", zap.Error(err))
	} else if !acquired {
		log.Debug("fingerprint claimed by another worker, recomputing")
	}
	return nil, false
}

func (p *Pipeline) compute(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile, fingerprint string, log *zap.Logger) *Decision {
	decision := newDecision(fingerprint, msg.Sender)

	classification, err := p.assistant.ClassifyConversation(ctx, msg)
	if err != nil {
		log.Warn("classification failed", zap.Error(err))
		decision.ReviewReason = "conversation could not be classified: " + err.Error()
		return decision.finish(StatusManualReview)
	}
	decision.Classification = classification
	decision.State = classification.State
	decision.advance(StageClassified)

	switch classification.State {
	case ai.StateCourtesyClose:
		decision.advance(StageNoResponse)
		return decision.finish(StatusIgnored)
	case ai.StateFollowUp:
		return p.processFollowUp(ctx, msg, prof, decision, log)
	default:
		return p.processOpportunity(ctx, msg, prof, decision, log)
	}
}

// processOpportunity handles the NEW_OPPORTUNITY branch: extract, filter,
// score, respond.
func (p *Pipeline) processOpportunity(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile, decision *Decision, log *zap.Logger) *Decision {
	extracted, err := p.extractWithRetry(ctx, msg, log)
	if err != nil {
		// The reviewer still gets a rough triage signal from the
		// keyword heuristic over the raw text.
		decision.Scoring = p.scorer.ScoreHeuristic(&scoring.Input{Message: msg, Profile: prof})
		decision.ReviewReason = "fact extraction failed twice: " + err.Error()
		return decision.finish(StatusManualReview)
	}
	decision.Extracted = extracted
	decision.advance(StageExtracted)

	decision.Filters = filtering.Run(&filtering.Input{
		Message:   msg,
		Extracted: extracted,
		Profile:   prof,
	}, p.rules, log)
	decision.advance(StageFiltered)

	// Scoring and filtering are independent axes: a declined opportunity
	// still carries its score.
	decision.Scoring = p.scorer.Score(&scoring.Input{
		Message:   msg,
		Extracted: extracted,
		Profile:   prof,
	})
	decision.advance(StageScored)

	if decision.Filters.ShouldDecline {
		return p.decline(ctx, msg, prof, decision, log)
	}

	response, err := p.assistant.GenerateReply(ctx, &ai.ReplyRequest{
		Message:   msg,
		Profile:   prof,
		Extracted: extracted,
	})
	if err != nil {
		log.Warn("response generation failed", zap.Error(err))
		decision.ReviewReason = "response could not be generated: " + err.Error()
		return decision.finish(StatusManualReview)
	}
	decision.Response = response
	decision.advance(StageResponseGenerated)

	if p.cfg.AutoRespond && decision.Scoring.Tier == scoring.TierHigh {
		return decision.finish(StatusAutoResponded)
	}
	return decision.finish(StatusProcessed)
}

// extractWithRetry retries once with a simplified prompt before giving up.
func (p *Pipeline) extractWithRetry(ctx context.Context, msg *message.RawMessage, log *zap.Logger) (*ai.ExtractedData, error) {
	extracted, err := p.assistant.ExtractFacts(ctx, msg, false)
	if err == nil {
		return extracted, nil
	}

	log.Warn("extraction failed, retrying with simplified context", zap.Error(err))
	return p.assistant.ExtractFacts(ctx, msg, true)
}

func (p *Pipeline) decline(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile, decision *Decision, log *zap.Logger) *Decision {
	if !p.cfg.SendDeclines {
		decision.advance(StageNoResponse)
		return decision.finish(StatusDeclined)
	}

	reason := "did not meet hard requirements"
	if failed := decision.Filters.FailedRequired(); len(failed) > 0 {
		reason = failed[0]
	}

	response, err := p.assistant.GenerateReply(ctx, &ai.ReplyRequest{
		Message:       msg,
		Profile:       prof,
		Extracted:     decision.Extracted,
		Decline:       true,
		DeclineReason: reason,
	})
	if err != nil {
		// A decline without text is still a decline.
		log.Warn("decline message generation failed", zap.Error(err))
		decision.advance(StageNoResponse)
		return decision.finish(StatusDeclined)
	}

	decision.Response = response
	decision.advance(StageResponseGenerated)
	return decision.finish(StatusDeclined)
}

// processFollowUp handles the FOLLOW_UP branch: analyze the question, apply
// the auto-response policy, and either draft an answer or escalate.
func (p *Pipeline) processFollowUp(ctx context.Context, msg *message.RawMessage, prof *profile.UserProfile, decision *Decision, log *zap.Logger) *Decision {
	analysis, err := p.assistant.AnalyzeFollowUp(ctx, msg)
	if err != nil {
		log.Warn("follow-up analysis failed", zap.Error(err))
		decision.ReviewReason = "follow-up could not be analyzed: " + err.Error()
		return decision.finish(StatusManualReview)
	}

	resolution := followup.Resolve(analysis, prof)
	analysis.CanAutoRespond = resolution.CanAutoRespond
	decision.FollowUp = analysis
	decision.advance(StageFollowUpAnalyzed)

	if !resolution.CanAutoRespond {
		decision.ReviewReason = resolution.ReviewReason
		return decision.finish(StatusManualReview)
	}

	response, err := p.assistant.GenerateReply(ctx, &ai.ReplyRequest{
		Message:  msg,
		Profile:  prof,
		FollowUp: analysis,
	})
	if err != nil {
		log.Warn("follow-up response generation failed", zap.Error(err))
		decision.ReviewReason = "answer could not be generated: " + err.Error()
		return decision.finish(StatusManualReview)
	}

	decision.Response = response
	decision.advance(StageResponseGenerated)
	return decision.finish(StatusAutoResponded)
}
