// Package testkit provides in-memory stand-ins for the experiment's external
// collaborators: a manually advanced clock, a local AI oracle and a capture
// sink. The CLI simulator and the HTTP tests drive sessions with them.
package testkit

import (
	"context"
	"sync"
	"time"

	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/ports"
)

// ManualClock only moves when Advance is called
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// StaticOracle returns the same answer for every claim
type StaticOracle struct {
	Answer string
}

func (o StaticOracle) FetchVerdict(ctx context.Context, claimText string) string {
	if o.Answer == "" {
		return ports.FailureSentinel
	}
	return o.Answer
}

// GroundTruthOracle answers from a claim bank's labels. Claims it does not
// know get the failure sentinel.
type GroundTruthOracle struct {
	labels map[string]bool
}

func NewGroundTruthOracle(bank *claim.Bank) *GroundTruthOracle {
	labels := make(map[string]bool, bank.Len())
	for _, c := range bank.Claims() {
		labels[c.Text] = c.GroundTruth
	}
	return &GroundTruthOracle{labels: labels}
}

func (o *GroundTruthOracle) FetchVerdict(ctx context.Context, claimText string) string {
	truth, ok := o.labels[claimText]
	if !ok {
		return ports.FailureSentinel
	}
	if truth {
		return "True. This claim is supported by the available evidence."
	}
	return "False. This is a common misconception."
}

// Label reports the ground truth for a claim text
func (o *GroundTruthOracle) Label(claimText string) (bool, bool) {
	truth, ok := o.labels[claimText]
	return truth, ok
}

// MemorySink keeps submitted result logs per participant. Setting Err makes
// every Submit fail after counting the call.
type MemorySink struct {
	Err error

	mu      sync.RWMutex
	calls   int
	results map[core.ParticipantID][]trial.Result
}

func NewMemorySink() *MemorySink {
	return &MemorySink{results: make(map[core.ParticipantID][]trial.Result)}
}

func (s *MemorySink) Name() string { return "memory" }

func (s *MemorySink) Submit(ctx context.Context, id core.ParticipantID, results []trial.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.Err != nil {
		return s.Err
	}
	s.results[id] = append([]trial.Result(nil), results...)
	return nil
}

// Calls counts Submit invocations, failed ones included
func (s *MemorySink) Calls() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls
}

// Results returns the log stored for a participant
func (s *MemorySink) Results(id core.ParticipantID) ([]trial.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[id]
	return r, ok
}
