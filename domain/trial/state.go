package trial

import (
	"aireliance/domain/claim"
	"aireliance/domain/core"
)

// State is the mutable capture for the single live trial. It is created when
// the trial becomes active and dropped once its Result is recorded.
type State struct {
	index      int
	claim      claim.Claim
	aiEligible bool
	startedAt  core.Millis

	answer     *bool
	confidence int

	aiRevealed   bool
	revealedAt   core.Millis
	aiAnswerText string
	aiResolved   bool
}

// NewState opens a trial at presentation index for c
func NewState(index int, c claim.Claim, aiEligible bool, startedAt core.Millis) *State {
	return &State{
		index:      index,
		claim:      c,
		aiEligible: aiEligible,
		startedAt:  startedAt,
	}
}

func (s *State) Index() int             { return s.index }
func (s *State) Claim() claim.Claim     { return s.claim }
func (s *State) AIEligible() bool       { return s.aiEligible }
func (s *State) AIRevealed() bool       { return s.aiRevealed }
func (s *State) AIAnswerText() string   { return s.aiAnswerText }
func (s *State) StartedAt() core.Millis { return s.startedAt }

// RevealedAt returns the reveal offset, or false if AI was never requested
func (s *State) RevealedAt() (core.Millis, bool) {
	return s.revealedAt, s.aiRevealed
}

// Answer returns the current answer, if any
func (s *State) Answer() (bool, bool) {
	if s.answer == nil {
		return false, false
	}
	return *s.answer, true
}

// Confidence returns the current confidence, if any
func (s *State) Confidence() (int, bool) {
	return s.confidence, s.confidence != 0
}

// SetAnswer records the participant's true/false choice; last write wins
func (s *State) SetAnswer(v bool) {
	s.answer = &v
}

// SetConfidence records the 1..7 rating; last write wins
func (s *State) SetConfidence(v int) error {
	if v < MinConfidence || v > MaxConfidence {
		return core.ErrConfidenceRange
	}
	s.confidence = v
	return nil
}

// Reveal marks the AI answer as requested. It returns true only on the first
// call; subsequent calls leave the reveal timestamp untouched.
func (s *State) Reveal(now core.Millis) (bool, error) {
	if !s.aiEligible {
		return false, core.ErrAINotOffered
	}
	if s.aiRevealed {
		return false, nil
	}
	s.aiRevealed = true
	s.revealedAt = now
	return true, nil
}

// ApplyAIAnswer stores the fetched verdict text. Only the first resolution
// is kept.
func (s *State) ApplyAIAnswer(text string) {
	if !s.aiRevealed || s.aiResolved {
		return
	}
	s.aiAnswerText = text
	s.aiResolved = true
}

// AIStatus summarizes the AI panel for display
func (s *State) AIStatus() AIStatus {
	switch {
	case !s.aiEligible:
		return AIStatusUnavailable
	case !s.aiRevealed:
		return AIStatusHidden
	case !s.aiResolved:
		return AIStatusPending
	default:
		return AIStatusReady
	}
}

// Finalize validates the capture and builds the trial's Result at
// submittedAt. A validation failure leaves the state untouched.
func (s *State) Finalize(submittedAt core.Millis) (Result, error) {
	if s.answer == nil {
		return Result{}, core.ErrAnswerMissing
	}
	if s.confidence == 0 {
		return Result{}, core.ErrConfidenceMissing
	}

	var revealedAt *core.Millis
	if s.aiRevealed {
		at := s.revealedAt
		revealedAt = &at
	}
	timing := ComputeTiming(s.startedAt, revealedAt, submittedAt)

	isCorrect := *s.answer == s.claim.GroundTruth
	delta := 0
	if isCorrect {
		delta = PointsPerCorrect
	}

	return Result{
		TrialID:      s.claim.ID,
		ClaimText:    s.claim.Text,
		Answer:       *s.answer,
		Confidence:   s.confidence,
		AIOffered:    s.aiEligible,
		AIUsed:       s.aiRevealed,
		IsCorrect:    isCorrect,
		TimeBeforeAI: timing.BeforeAI,
		TimeAfterAI:  timing.AfterAI,
		TimeTotal:    timing.Total,
		ScoreDelta:   delta,
	}, nil
}
