package experiment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"
	"aireliance/internal"
	"aireliance/ports"
)

// SessionManager owns the in-memory sessions of the participants currently
// running the experiment. Sessions are independent; the manager only maps
// participant IDs to them.
type SessionManager struct {
	bank     *claim.Bank
	schedule trial.Schedule
	rng      ports.RNGPort
	deps     Dependencies
	logger   *internal.Logger

	mu       sync.RWMutex
	sessions map[core.ParticipantID]*Session
}

// NewSessionManager validates the schedule against the bank up front.
func NewSessionManager(bank *claim.Bank, schedule trial.Schedule, rng ports.RNGPort, deps Dependencies) (*SessionManager, error) {
	if bank == nil {
		return nil, core.ErrEmptyClaimBank
	}
	if rng == nil {
		return nil, fmt.Errorf("rng port is required")
	}
	resolved, err := schedule.Resolve(bank.Len())
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SessionManager{
		bank:     bank,
		schedule: resolved,
		rng:      rng,
		deps:     deps,
		logger:   logger.With("SessionManager"),
		sessions: make(map[core.ParticipantID]*Session),
	}, nil
}

// Schedule returns the schedule every new session uses
func (m *SessionManager) Schedule() trial.Schedule {
	return m.schedule
}

// CreateSession starts a new participant run in the intro phase
func (m *SessionManager) CreateSession(ctx context.Context) (*Session, error) {
	id := core.NewParticipantID()
	session, err := NewSession(id, m.bank, m.schedule, m.rng.SessionStream(id), m.deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.mu.Lock()
	m.sessions[id] = session
	count := len(m.sessions)
	m.mu.Unlock()

	m.logger.Info("created session %s (%d live)", id, count)
	return session, nil
}

// GetSession looks up a session by participant ID
func (m *SessionManager) GetSession(ctx context.Context, rawID string) (*Session, error) {
	id, err := core.ParseParticipantID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSessionNotFound, err)
	}

	m.mu.RLock()
	session, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return session, nil
}

// RemoveSession discards a session once the participant is done with it
func (m *SessionManager) RemoveSession(ctx context.Context, rawID string) error {
	session, err := m.GetSession(ctx, rawID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.sessions, session.ID())
	m.mu.Unlock()

	m.logger.Info("removed session %s", session.ID())
	return nil
}

// ActiveCount returns how many sessions are held in memory
func (m *SessionManager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// EvictCompleted drops sessions that completed more than maxAge ago
func (m *SessionManager) EvictCompleted(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, session := range m.sessions {
		if completedAt, ok := session.CompletedAt(); ok && completedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.Info("evicted %d completed sessions", evicted)
	}
	return evicted
}

// Shutdown waits for outstanding AI fetches of every session
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		for _, s := range sessions {
			s.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunEviction evicts completed sessions every interval until ctx is done
func (m *SessionManager) RunEviction(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.EvictCompleted(maxAge)
		case <-ctx.Done():
			return
		}
	}
}
