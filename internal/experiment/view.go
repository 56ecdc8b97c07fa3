package experiment

import (
	"aireliance/domain/trial"
)

// View is what the participant's client renders. It never exposes the
// ground truth of the current claim.
type View struct {
	ParticipantID    string      `json:"participant_id"`
	Phase            trial.Phase `json:"phase"`
	TrialIndex       int         `json:"trial_index"`
	TotalTrials      int         `json:"total_trials"`
	CompletedTrials  int         `json:"completed_trials"`
	Score            int         `json:"score"`
	MaxScore         int         `json:"max_score"`
	AIEligibleTrials int         `json:"ai_eligible_trials"`

	Claim      string         `json:"claim,omitempty"`
	AIOffered  bool           `json:"ai_offered"`
	AIStatus   trial.AIStatus `json:"ai_status,omitempty"`
	AIAnswer   string         `json:"ai_answer,omitempty"`
	Answer     *bool          `json:"answer,omitempty"`
	Confidence *int           `json:"confidence,omitempty"`

	Submission *trial.SubmissionStatus `json:"submission,omitempty"`
	Notice     string                  `json:"notice,omitempty"`
}

// View snapshots the participant-facing state
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ParticipantID:    s.id.String(),
		Phase:            s.phase,
		TrialIndex:       s.currentIndex,
		TotalTrials:      s.schedule.TotalTrials,
		CompletedTrials:  s.recorder.Len(),
		Score:            s.score,
		MaxScore:         s.schedule.TotalTrials * trial.PointsPerCorrect,
		AIEligibleTrials: s.schedule.AIEligibleTrials,
	}

	if st := s.live; st != nil {
		v.Claim = st.Claim().Text
		v.AIOffered = st.AIEligible()
		v.AIStatus = st.AIStatus()
		if v.AIStatus == trial.AIStatusReady {
			v.AIAnswer = st.AIAnswerText()
		}
		if answer, ok := st.Answer(); ok {
			v.Answer = &answer
		}
		if confidence, ok := st.Confidence(); ok {
			v.Confidence = &confidence
		}
	}

	if s.submitted {
		status := s.submission
		v.Submission = &status
		v.Notice = status.Notice()
	}
	return v
}
