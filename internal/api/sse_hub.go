package api

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"aireliance/internal"
	"aireliance/ports"

	"github.com/gin-gonic/gin"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ParticipantID string
	Channel       chan ports.SessionEvent
}

// SSEHub fans session events out to the participant's open event streams.
// It implements ports.EventPublisher.
type SSEHub struct {
	clients    map[string]map[chan ports.SessionEvent]bool
	clientsMu  sync.RWMutex
	register   chan SSEClient
	unregister chan SSEClient
	broadcast  chan ports.SessionEvent
	stop       chan struct{}
	stopOnce   sync.Once

	pingInterval time.Duration
	logger       *internal.Logger
}

// NewSSEHub creates a new SSE hub and starts its dispatch loop
func NewSSEHub(logger *internal.Logger) *SSEHub {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	hub := &SSEHub{
		clients:      make(map[string]map[chan ports.SessionEvent]bool),
		register:     make(chan SSEClient),
		unregister:   make(chan SSEClient),
		broadcast:    make(chan ports.SessionEvent, 100),
		stop:         make(chan struct{}),
		pingInterval: 30 * time.Second,
		logger:       logger.With("SSE"),
	}

	go hub.run()
	return hub
}

// run processes SSE hub operations
func (h *SSEHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			if h.clients[client.ParticipantID] == nil {
				h.clients[client.ParticipantID] = make(map[chan ports.SessionEvent]bool)
			}
			h.clients[client.ParticipantID][client.Channel] = true
			h.logger.Debug("client registered for %s (total clients: %d)",
				client.ParticipantID, len(h.clients[client.ParticipantID]))
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if clients, exists := h.clients[client.ParticipantID]; exists {
				if clients[client.Channel] {
					delete(clients, client.Channel)
					close(client.Channel)
				}
				h.logger.Debug("client unregistered from %s (remaining clients: %d)",
					client.ParticipantID, len(clients))
				if len(clients) == 0 {
					delete(h.clients, client.ParticipantID)
				}
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			if clients, exists := h.clients[event.ParticipantID.String()]; exists {
				for clientChan := range clients {
					select {
					case clientChan <- event:
					default:
						h.logger.Warn("client channel full for %s, skipping %s", event.ParticipantID, event.EventType)
					}
				}
			}
			h.clientsMu.RUnlock()

		case <-h.stop:
			h.clientsMu.Lock()
			for id, clients := range h.clients {
				for ch := range clients {
					close(ch)
				}
				delete(h.clients, id)
			}
			h.clientsMu.Unlock()
			return
		}
	}
}

// Publish queues an event for delivery; it never blocks the caller
func (h *SSEHub) Publish(event ports.SessionEvent) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("broadcast channel full, dropping event: %s", event.EventType)
	}
}

// Subscribe registers a listener for one participant's events. The returned
// func unregisters it; the channel is closed afterwards.
func (h *SSEHub) Subscribe(participantID string) (<-chan ports.SessionEvent, func(), bool) {
	ch := make(chan ports.SessionEvent, 10)
	client := SSEClient{ParticipantID: participantID, Channel: ch}

	select {
	case h.register <- client:
	case <-h.stop:
		return nil, func() {}, false
	}

	return ch, func() {
		select {
		case h.unregister <- client:
		case <-h.stop:
		}
	}, true
}

// Close stops the dispatch loop and ends every open stream
func (h *SSEHub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// HandleSSE streams a participant's events. The participant comes from the
// :id route parameter or the participant_id query parameter.
func (h *SSEHub) HandleSSE(c *gin.Context) {
	participantID := c.Param("id")
	if participantID == "" {
		participantID = c.Query("participant_id")
	}
	if participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "participant id required", "code": "INVALID_INPUT"})
		return
	}

	events, unsubscribe, ok := h.Subscribe(participantID)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream closed", "code": "INTERNAL_ERROR"})
		return
	}
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Cache-Control")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, open := <-events:
			if !open {
				return false
			}
			eventJSON, err := json.Marshal(event)
			if err != nil {
				h.logger.Error("failed to marshal event: %v", err)
				return true
			}
			c.SSEvent(event.EventType, string(eventJSON))
			return event.EventType != ports.EventSessionComplete

		case <-ticker.C:
			c.SSEvent("ping", `{"status": "alive", "timestamp": "`+time.Now().Format(time.RFC3339)+`"}`)
			return true

		case <-ctx.Done():
			return false
		}
	})
}

// GetActiveSessions returns participants with active SSE clients
func (h *SSEHub) GetActiveSessions() []string {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

// GetClientCount returns the number of active clients for a participant
func (h *SSEHub) GetClientCount(participantID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()

	if clients, exists := h.clients[participantID]; exists {
		return len(clients)
	}
	return 0
}
