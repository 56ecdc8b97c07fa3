package trial

import (
	"aireliance/domain/core"
)

const (
	MinConfidence    = 1
	MaxConfidence    = 7
	PointsPerCorrect = 100
)

// Phase is the coarse lifecycle position of a session
type Phase string

const (
	PhaseIntro    Phase = "intro"
	PhaseActive   Phase = "active"
	PhaseComplete Phase = "complete"
)

// AIStatus describes what the participant currently sees in the AI panel
type AIStatus string

const (
	AIStatusUnavailable AIStatus = "unavailable" // trial outside the eligibility window
	AIStatusHidden      AIStatus = "hidden"
	AIStatusPending     AIStatus = "pending"
	AIStatusReady       AIStatus = "ready"
)

// Result is the immutable record of one completed trial
type Result struct {
	TrialID      int    `json:"trial_id"`
	ClaimText    string `json:"claim_text"`
	Answer       bool   `json:"answer"`
	Confidence   int    `json:"confidence"`
	AIOffered    bool   `json:"ai_offered"`
	AIUsed       bool   `json:"ai_used"`
	IsCorrect    bool   `json:"is_correct"`
	TimeBeforeAI *int64 `json:"time_before_ai"`
	TimeAfterAI  *int64 `json:"time_after_ai"`
	TimeTotal    int64  `json:"time_total"`
	ScoreDelta   int    `json:"score_delta"`
}

// clone returns a copy that shares no pointers with r
func (r Result) clone() Result {
	out := r
	if r.TimeBeforeAI != nil {
		v := *r.TimeBeforeAI
		out.TimeBeforeAI = &v
	}
	if r.TimeAfterAI != nil {
		v := *r.TimeAfterAI
		out.TimeAfterAI = &v
	}
	return out
}

// Timing holds the three response-time splits of a trial in milliseconds
type Timing struct {
	BeforeAI *int64
	AfterAI  *int64
	Total    int64
}

// ComputeTiming derives the timing splits. revealedAt is nil when the AI
// answer was never requested.
func ComputeTiming(startedAt core.Millis, revealedAt *core.Millis, submittedAt core.Millis) Timing {
	t := Timing{Total: submittedAt.Sub(startedAt)}
	if revealedAt == nil {
		return t
	}
	before := revealedAt.Sub(startedAt)
	after := submittedAt.Sub(*revealedAt)
	t.BeforeAI = &before
	t.AfterAI = &after
	return t
}

// SubmissionState tracks the single hand-off of the result log to the sink
type SubmissionState string

const (
	SubmissionPending   SubmissionState = "pending"
	SubmissionSucceeded SubmissionState = "succeeded"
	SubmissionFailed    SubmissionState = "failed"
)

// SubmissionStatus is the participant-visible outcome of the final submit
type SubmissionStatus struct {
	State SubmissionState `json:"state"`
	Error string          `json:"error,omitempty"`
}

// Notice returns the completion message shown to the participant
func (s SubmissionStatus) Notice() string {
	switch s.State {
	case SubmissionSucceeded:
		return "Experiment complete! Your results were submitted."
	case SubmissionFailed:
		return "Experiment complete, but there was an error submitting your results."
	default:
		return "Submitting your results..."
	}
}
