package trial

import (
	"fmt"

	"aireliance/domain/core"
)

// Schedule fixes how many trials a session runs and how many of the leading
// trials offer AI assistance.
type Schedule struct {
	TotalTrials      int `json:"total_trials"`
	AIEligibleTrials int `json:"ai_eligible_trials"`
}

// DefaultSchedule is the 20-trial design with a 10-trial AI block
func DefaultSchedule() Schedule {
	return Schedule{TotalTrials: 20, AIEligibleTrials: 10}
}

// Resolve fills in TotalTrials from the bank size when unset and validates
// the schedule against it.
func (s Schedule) Resolve(bankSize int) (Schedule, error) {
	if bankSize <= 0 {
		return s, core.ErrEmptyClaimBank
	}
	if s.TotalTrials == 0 {
		s.TotalTrials = bankSize
	}
	if s.TotalTrials != bankSize {
		return s, core.NewScheduleError(fmt.Sprintf("total trials %d does not match claim bank size %d", s.TotalTrials, bankSize))
	}
	if s.AIEligibleTrials < 0 || s.AIEligibleTrials > s.TotalTrials {
		return s, core.NewScheduleError(fmt.Sprintf("AI eligible trials %d outside [0, %d]", s.AIEligibleTrials, s.TotalTrials))
	}
	return s, nil
}

// AIEligible reports whether the trial at a presentation index falls inside
// the eligibility window.
func (s Schedule) AIEligible(index int) bool {
	return index >= 0 && index < s.AIEligibleTrials
}

// IsLast reports whether index is the final presentation position
func (s Schedule) IsLast(index int) bool {
	return index == s.TotalTrials-1
}
