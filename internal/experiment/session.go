package experiment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"
	"aireliance/ports"
)

// Dependencies are the collaborators a Session drives
type Dependencies struct {
	Oracle ports.OracleGateway
	Sink   ports.SubmissionSink
	Events ports.EventPublisher // optional
	Clock  core.Clock           // defaults to the system clock
	Logger *internal.Logger     // defaults to internal.DefaultLogger

	// OracleTimeout bounds a single reveal fetch; zero means no extra bound
	OracleTimeout time.Duration
}

// SubmitOutcome is returned by a successful Submit
type SubmitOutcome struct {
	Result     trial.Result            `json:"result"`
	Score      int                     `json:"score"`
	Completed  bool                    `json:"completed"`
	Submission *trial.SubmissionStatus `json:"submission,omitempty"`
}

// Session is the trial state machine for one participant run.
//
// Participant actions are serialized by mu. The only concurrent writer is the
// reveal fetch goroutine, which applies its result only to the TrialState it
// was issued for.
type Session struct {
	mu sync.Mutex

	id       core.ParticipantID
	schedule trial.Schedule
	order    claim.TrialOrder
	watch    *core.Stopwatch
	deps     Dependencies
	logger   *internal.Logger

	phase        trial.Phase
	currentIndex int
	score        int
	live         *trial.State
	recorder     *trial.Recorder

	submitted   bool
	submission  trial.SubmissionStatus
	completedAt time.Time
	done        chan struct{}

	inflight sync.WaitGroup
}

// NewSession creates a session in the intro phase. The trial order is
// generated here, once; an empty or mismatched claim bank aborts creation.
func NewSession(id core.ParticipantID, bank *claim.Bank, schedule trial.Schedule, rng *rand.Rand, deps Dependencies) (*Session, error) {
	if bank == nil {
		return nil, core.ErrEmptyClaimBank
	}
	if deps.Oracle == nil || deps.Sink == nil {
		return nil, core.NewScheduleError("oracle gateway and submission sink are required")
	}
	if id.IsEmpty() {
		id = core.NewParticipantID()
	}

	resolved, err := schedule.Resolve(bank.Len())
	if err != nil {
		return nil, err
	}
	order, err := claim.GenerateOrder(bank.Claims(), rng)
	if err != nil {
		return nil, err
	}

	if deps.Clock == nil {
		deps.Clock = core.SystemClock{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	s := &Session{
		id:       id,
		schedule: resolved,
		order:    order,
		watch:    core.NewStopwatch(deps.Clock),
		deps:     deps,
		logger:   logger.With("Session " + shortID(id)),
		phase:    trial.PhaseIntro,
		recorder: trial.NewRecorder(len(order)),
		done:     make(chan struct{}),
	}
	s.logger.Debug("created with %d trials (%d AI-eligible), order %v", resolved.TotalTrials, resolved.AIEligibleTrials, order.IDs())
	return s, nil
}

// ID returns the participant identifier
func (s *Session) ID() core.ParticipantID { return s.id }

// Schedule returns the resolved trial schedule
func (s *Session) Schedule() trial.Schedule { return s.schedule }

// StartedAt returns the wall-clock time the session was created
func (s *Session) StartedAt() time.Time { return s.watch.StartedAt() }

// Begin leaves the intro and starts the first trial
func (s *Session) Begin() error {
	return s.StartTrial(0)
}

// StartTrial opens the trial at index. The previous trial must have been
// submitted and index must be the next unplayed position.
func (s *Session) StartTrial(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == trial.PhaseComplete {
		return core.ErrSessionComplete
	}
	if s.live != nil {
		return core.ErrTrialInProgress
	}
	if index != s.recorder.Len() || index >= len(s.order) {
		return core.ErrTrialOutOfOrder
	}

	s.startTrialLocked(index)
	return nil
}

func (s *Session) startTrialLocked(index int) {
	s.phase = trial.PhaseActive
	s.currentIndex = index
	s.live = trial.NewState(index, s.order[index], s.schedule.AIEligible(index), s.watch.Elapsed())
	s.logger.Debug("trial %d started (claim %d, ai=%t)", index, s.order[index].ID, s.live.AIEligible())

	s.publish(ports.EventTrialStarted, index, map[string]interface{}{
		"ai_offered": s.live.AIEligible(),
	})
}

// SetAnswer records the participant's answer for the live trial
func (s *Session) SetAnswer(value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.liveLocked()
	if err != nil {
		return err
	}
	st.SetAnswer(value)
	return nil
}

// SetConfidence records the participant's 1..7 confidence for the live trial
func (s *Session) SetConfidence(value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.liveLocked()
	if err != nil {
		return err
	}
	return st.SetConfidence(value)
}

// RequestAIReveal marks the AI answer as revealed for the live trial and
// starts fetching it. It returns true when this call performed the reveal;
// repeated calls are no-ops.
func (s *Session) RequestAIReveal() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.liveLocked()
	if err != nil {
		return false, err
	}
	first, err := st.Reveal(s.watch.Elapsed())
	if err != nil || !first {
		return false, err
	}

	claimText := st.Claim().Text
	s.inflight.Add(1)
	go s.fetchVerdict(st, claimText)

	s.logger.Info("AI revealed on trial %d", st.Index())
	return true, nil
}

// fetchVerdict runs off the participant's flow. Its result is bound to st,
// so a late answer can never land on a later trial.
func (s *Session) fetchVerdict(st *trial.State, claimText string) {
	defer s.inflight.Done()

	ctx := context.Background()
	if s.deps.OracleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deps.OracleTimeout)
		defer cancel()
	}

	text := s.deps.Oracle.FetchVerdict(ctx, claimText)
	if text == "" {
		text = ports.FailureSentinel
	}

	s.mu.Lock()
	if s.live != st {
		s.mu.Unlock()
		s.logger.Debug("discarding late AI answer for trial %d", st.Index())
		return
	}
	st.ApplyAIAnswer(text)
	index := st.Index()
	s.mu.Unlock()

	s.publish(ports.EventAIAnswer, index, map[string]interface{}{
		"answer": text,
	})
}

// Submit validates and records the live trial. On the final trial the
// session completes and the full log is handed to the sink exactly once; a
// sink failure is reported in the outcome, not as an error.
func (s *Session) Submit(ctx context.Context) (*SubmitOutcome, error) {
	s.mu.Lock()

	st, err := s.liveLocked()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	result, err := st.Finalize(s.watch.Elapsed())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.recorder.Append(result)
	s.score += result.ScoreDelta
	s.live = nil
	s.logger.Debug("trial %d submitted: correct=%t ai_used=%t total=%dms", st.Index(), result.IsCorrect, result.AIUsed, result.TimeTotal)

	outcome := &SubmitOutcome{Result: result, Score: s.score}

	if !s.schedule.IsLast(st.Index()) {
		s.startTrialLocked(st.Index() + 1)
		s.mu.Unlock()
		return outcome, nil
	}

	s.phase = trial.PhaseComplete
	s.submitted = true
	s.completedAt = s.deps.Clock.Now()
	s.submission = trial.SubmissionStatus{State: trial.SubmissionPending}
	snapshot := s.recorder.Snapshot()
	score := s.score
	s.mu.Unlock()

	status := s.deliver(context.WithoutCancel(ctx), snapshot)

	s.mu.Lock()
	s.submission = status
	close(s.done)
	s.mu.Unlock()

	s.publish(ports.EventSessionComplete, st.Index(), map[string]interface{}{
		"score":      score,
		"submission": status.State,
		"notice":     status.Notice(),
	})

	outcome.Completed = true
	outcome.Submission = &status
	return outcome, nil
}

func (s *Session) deliver(ctx context.Context, results []trial.Result) trial.SubmissionStatus {
	sink := s.deps.Sink
	if err := sink.Submit(ctx, s.id, results); err != nil {
		wrapped := core.NewSubmissionError(sink.Name(), err)
		s.logger.Error("%v", wrapped)
		return trial.SubmissionStatus{State: trial.SubmissionFailed, Error: wrapped.Error()}
	}
	s.logger.Info("submitted %d results via %s", len(results), sink.Name())
	return trial.SubmissionStatus{State: trial.SubmissionSucceeded}
}

func (s *Session) liveLocked() (*trial.State, error) {
	if s.phase == trial.PhaseComplete {
		return nil, core.ErrSessionComplete
	}
	if s.live == nil {
		return nil, core.ErrNoActiveTrial
	}
	return s.live, nil
}

func (s *Session) publish(eventType string, index int, data map[string]interface{}) {
	if s.deps.Events == nil {
		return
	}
	s.deps.Events.Publish(ports.SessionEvent{
		ParticipantID: s.id,
		EventType:     eventType,
		TrialIndex:    index,
		Data:          data,
		Timestamp:     s.deps.Clock.Now(),
	})
}

// Wait blocks until every in-flight AI fetch has resolved
func (s *Session) Wait() {
	s.inflight.Wait()
}

// Done is closed once the final submission attempt has finished
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Phase returns the lifecycle phase
func (s *Session) Phase() trial.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentIndex returns the presentation index of the live (or last) trial
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// Score returns the cumulative score
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Results returns a copy of the result log
func (s *Session) Results() []trial.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recorder.Snapshot()
}

// CompletedAt returns when the final trial was submitted
func (s *Session) CompletedAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completedAt, s.submitted
}

// Submission returns the final submission status and whether the final
// submit has happened.
func (s *Session) Submission() (trial.SubmissionStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submission, s.submitted
}

func shortID(id core.ParticipantID) string {
	if len(id) > 8 {
		return string(id[:8])
	}
	return string(id)
}
