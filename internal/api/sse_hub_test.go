package api

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aireliance/domain/core"
	"aireliance/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEHub_RoutesEventsByParticipant(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()

	alice, bob := core.NewParticipantID(), core.NewParticipantID()
	aliceEvents, unsubscribe, ok := hub.Subscribe(alice.String())
	require.True(t, ok)
	defer unsubscribe()
	bobEvents, unsubscribeBob, ok := hub.Subscribe(bob.String())
	require.True(t, ok)
	defer unsubscribeBob()

	hub.Publish(ports.SessionEvent{ParticipantID: alice, EventType: ports.EventAIAnswer, TrialIndex: 2})

	select {
	case ev := <-aliceEvents:
		assert.Equal(t, ports.EventAIAnswer, ev.EventType)
		assert.Equal(t, 2, ev.TrialIndex)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-bobEvents:
		t.Fatalf("unexpected event for other participant: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHub_UnsubscribeClosesChannel(t *testing.T) {
	hub := NewSSEHub(nil)
	defer hub.Close()

	id := core.NewParticipantID().String()
	events, unsubscribe, ok := hub.Subscribe(id)
	require.True(t, ok)
	require.Eventually(t, func() bool { return hub.GetClientCount(id) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, hub.GetActiveSessions(), id)

	unsubscribe()
	require.Eventually(t, func() bool { return hub.GetClientCount(id) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-events
	assert.False(t, open)
}

func TestSSEHub_SubscribeAfterClose(t *testing.T) {
	hub := NewSSEHub(nil)
	hub.Close()
	hub.Close()

	_, _, ok := hub.Subscribe("anyone")
	assert.False(t, ok)
}

func TestSSEHub_HandleSSEStreamsUntilComplete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub(nil)
	defer hub.Close()

	router := gin.New()
	router.GET("/events/:id", hub.HandleSSE)
	srv := httptest.NewServer(router)
	defer srv.Close()

	id := core.NewParticipantID()
	resp, err := http.Get(srv.URL + "/events/" + id.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hub.GetClientCount(id.String()) == 1 }, time.Second, 5*time.Millisecond)

	hub.Publish(ports.SessionEvent{ParticipantID: id, EventType: ports.EventAIAnswer, Data: map[string]interface{}{"answer": "True."}})
	hub.Publish(ports.SessionEvent{ParticipantID: id, EventType: ports.EventSessionComplete})

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	body := strings.Join(lines, "\n")
	assert.Contains(t, body, "event:ai_answer")
	assert.Contains(t, body, `"answer":"True."`)
	assert.Contains(t, body, "event:session_complete")
}

func TestSSEHub_HandleSSERequiresParticipant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewSSEHub(nil)
	defer hub.Close()

	router := gin.New()
	router.GET("/events", hub.HandleSSE)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
