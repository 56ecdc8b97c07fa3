package ports

import (
	"context"

	"aireliance/domain/core"
	"aireliance/domain/trial"
)

// SubmissionSink receives the finished result log of one participant.
// It is invoked once per session and is not retried.
type SubmissionSink interface {
	Submit(ctx context.Context, participantID core.ParticipantID, results []trial.Result) error

	// Name identifies the backend in logs and error messages
	Name() string
}
