package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/spigell/recruit-responder/internal/ai"
	"github.com/spigell/recruit-responder/internal/filtering"
	"github.com/spigell/recruit-responder/internal/scoring"
)

// Status is the terminal outcome of processing one message.
type Status string

const (
	// StatusProcessed means a response was drafted but is left for the
	// user to send.
	StatusProcessed Status = "PROCESSED"
	// StatusAutoResponded means the drafted response is cleared for
	// automatic dispatch.
	StatusAutoResponded Status = "AUTO_RESPONDED"
	StatusManualReview  Status = "MANUAL_REVIEW"
	StatusDeclined      Status = "DECLINED"
	StatusIgnored       Status = "IGNORED"
)

// Stage names a point in the per-message state machine. The trace on a
// Decision records the exact path a message took.
type Stage string

const (
	StageReceived          Stage = "RECEIVED"
	StageClassified        Stage = "CLASSIFIED"
	StageExtracted         Stage = "EXTRACTED"
	StageFiltered          Stage = "FILTERED"
	StageScored            Stage = "SCORED"
	StageFollowUpAnalyzed  Stage = "FOLLOWUP_ANALYZED"
	StageResponseGenerated Stage = "RESPONSE_GENERATED"
	StageNoResponse        Stage = "NO_RESPONSE"
	StageDecided           Stage = "DECIDED"
)

// Decision is the pipeline's sole output. It is created once per message
// and never mutated after Process returns.
type Decision struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Sender      string `json:"sender,omitempty"`

	Status Status               `json:"status"`
	State  ai.ConversationState `json:"state,omitempty"`

	// Response is the drafted reply text, set for PROCESSED,
	// AUTO_RESPONDED, and optionally DECLINED.
	Response string `json:"response,omitempty"`
	// ReviewReason tells the human reviewer why the message needs
	// attention. Always set for MANUAL_REVIEW.
	ReviewReason string `json:"review_reason,omitempty"`

	Classification *ai.Classification   `json:"classification,omitempty"`
	Extracted      *ai.ExtractedData    `json:"extracted,omitempty"`
	Filters        *filtering.Result    `json:"filters,omitempty"`
	Scoring        *scoring.Result      `json:"scoring,omitempty"`
	FollowUp       *ai.FollowUpAnalysis `json:"follow_up,omitempty"`

	Trace     []Stage   `json:"trace"`
	DecidedAt time.Time `json:"decided_at"`

	// Cached marks a decision served from the fingerprint cache instead
	// of being computed for this call. Never persisted as true.
	Cached bool `json:"-"`
}

func newDecision(fingerprint, sender string) *Decision {
	return &Decision{
		ID:          uuid.NewString(),
		Fingerprint: fingerprint,
		Sender:      sender,
		Trace:       []Stage{StageReceived},
	}
}

func (d *Decision) advance(stage Stage) {
	d.Trace = append(d.Trace, stage)
}

// finish seals the decision with its terminal status.
func (d *Decision) finish(status Status) *Decision {
	d.Status = status
	d.advance(StageDecided)
	d.DecidedAt = time.Now().UTC()
	return d
}
