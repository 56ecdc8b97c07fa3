package experiment

import (
	"context"
	"testing"
	"time"

	"aireliance/adapters/rng"
	"aireliance/domain/claim"
	"aireliance/domain/core"
	"aireliance/domain/trial"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, sink *MockSink) *SessionManager {
	t.Helper()
	manager, err := NewSessionManager(claim.DefaultBank(), trial.DefaultSchedule(), rng.NewSeededRNG(11), Dependencies{
		Oracle: &stubOracle{answer: "True."},
		Sink:   sink,
	})
	require.NoError(t, err)
	return manager
}

func TestSessionManager_CreateGetRemove(t *testing.T) {
	manager := newTestManager(t, &MockSink{})
	ctx := context.Background()

	session, err := manager.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, manager.ActiveCount())

	found, err := manager.GetSession(ctx, session.ID().String())
	require.NoError(t, err)
	assert.Same(t, session, found)

	require.NoError(t, manager.RemoveSession(ctx, session.ID().String()))
	assert.Equal(t, 0, manager.ActiveCount())

	_, err = manager.GetSession(ctx, session.ID().String())
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionManager_InvalidID(t *testing.T) {
	manager := newTestManager(t, &MockSink{})

	_, err := manager.GetSession(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestSessionManager_SessionsAreIndependent(t *testing.T) {
	manager := newTestManager(t, &MockSink{})
	ctx := context.Background()

	a, err := manager.CreateSession(ctx)
	require.NoError(t, err)
	b, err := manager.CreateSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())

	require.NoError(t, a.Begin())
	assert.Equal(t, trial.PhaseActive, a.Phase())
	assert.Equal(t, trial.PhaseIntro, b.Phase())
}

func TestSessionManager_RejectsBadSchedule(t *testing.T) {
	_, err := NewSessionManager(claim.DefaultBank(), trial.Schedule{TotalTrials: 30, AIEligibleTrials: 10}, rng.NewSeededRNG(1), Dependencies{})
	assert.ErrorIs(t, err, core.ErrInvalidSchedule)

	_, err = NewSessionManager(nil, trial.DefaultSchedule(), rng.NewSeededRNG(1), Dependencies{})
	assert.ErrorIs(t, err, core.ErrEmptyClaimBank)
}

func TestSessionManager_EvictCompleted(t *testing.T) {
	sink := &MockSink{}
	sink.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	manager := newTestManager(t, sink)
	ctx := context.Background()

	done, err := manager.CreateSession(ctx)
	require.NoError(t, err)
	_, err = manager.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, done.Begin())
	for i := 0; i < 20; i++ {
		require.NoError(t, done.SetAnswer(true))
		require.NoError(t, done.SetConfidence(4))
		_, err := done.Submit(ctx)
		require.NoError(t, err)
	}

	assert.Equal(t, 0, manager.EvictCompleted(time.Hour))
	assert.Equal(t, 1, manager.EvictCompleted(-time.Second))
	assert.Equal(t, 1, manager.ActiveCount())
}

func TestSessionManager_ShutdownWaitsForFetches(t *testing.T) {
	manager := newTestManager(t, &MockSink{})
	ctx := context.Background()

	session, err := manager.CreateSession(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Begin())
	_, err = session.RequestAIReveal()
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, manager.Shutdown(shutdownCtx))
	assert.Equal(t, trial.AIStatusReady, session.View().AIStatus)
}

func TestSessionManager_RunEvictionStopsWithContext(t *testing.T) {
	sink := &MockSink{}
	sink.On("Submit", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	manager := newTestManager(t, sink)

	session, err := manager.CreateSession(context.Background())
	require.NoError(t, err)
	require.NoError(t, session.Begin())
	for i := 0; i < 20; i++ {
		require.NoError(t, session.SetAnswer(false))
		require.NoError(t, session.SetConfidence(2))
		_, err := session.Submit(context.Background())
		require.NoError(t, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		manager.RunEviction(ctx, 5*time.Millisecond, -time.Second)
		close(stopped)
	}()

	require.Eventually(t, func() bool { return manager.ActiveCount() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("eviction loop did not stop")
	}
}
