package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Startup errors
	ErrEmptyClaimBank   = errors.New("claim bank is empty")
	ErrInvalidClaimBank = errors.New("invalid claim bank")
	ErrInvalidSchedule  = errors.New("invalid trial schedule")

	// Validation errors
	ErrAnswerMissing     = errors.New("answer is required before submitting")
	ErrConfidenceMissing = errors.New("confidence is required before submitting")
	ErrConfidenceRange   = errors.New("confidence must be between 1 and 7")
	ErrAINotOffered      = errors.New("AI assistance is not offered for this trial")

	// Lifecycle errors
	ErrNoActiveTrial    = errors.New("no trial is active")
	ErrTrialInProgress  = errors.New("current trial has not been submitted")
	ErrTrialOutOfOrder  = errors.New("trial index out of order")
	ErrSessionComplete  = errors.New("session is complete")
	ErrSessionNotDone   = errors.New("session is not complete")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSubmissionFailed = errors.New("result submission failed")
)

// Error constructors with context
func NewClaimBankError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidClaimBank, reason)
}

func NewScheduleError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSchedule, reason)
}

func NewSubmissionError(sink string, err error) error {
	return fmt.Errorf("%w via %s: %v", ErrSubmissionFailed, sink, err)
}

// IsValidationError reports whether err blocks a transition without
// corrupting session state.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrAnswerMissing) ||
		errors.Is(err, ErrConfidenceMissing) ||
		errors.Is(err, ErrConfidenceRange) ||
		errors.Is(err, ErrAINotOffered) ||
		errors.Is(err, ErrNoActiveTrial)
}

// IsLifecycleError reports whether err comes from acting on a session in the
// wrong phase.
func IsLifecycleError(err error) bool {
	return errors.Is(err, ErrTrialInProgress) ||
		errors.Is(err, ErrTrialOutOfOrder) ||
		errors.Is(err, ErrSessionComplete) ||
		errors.Is(err, ErrSessionNotDone)
}

// IsStartupError reports whether err must abort session creation.
func IsStartupError(err error) bool {
	return errors.Is(err, ErrEmptyClaimBank) ||
		errors.Is(err, ErrInvalidClaimBank) ||
		errors.Is(err, ErrInvalidSchedule)
}
