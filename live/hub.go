// Package live pushes score and seating updates to spectators over
// websockets. Each match is a room; clients subscribe to one room and
// only ever receive, never send.
package live

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/hokuto-abe/quiz-grandprix/metrics"
)

const (
	EventScoreUpdated     = "score_updated"
	EventMatchingsUpdated = "matchings_updated"
)

// Message is the envelope every broadcast wears. ID lets clients
// deduplicate across reconnects.
type Message struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	MatchID int         `json:"match_id"`
	Payload interface{} `json:"payload"`
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.room]; !ok {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			metrics.ConnectedSpectators.Inc()
			h.logger.Debug("ws client joined",
				slog.String("room", client.room),
				slog.Int("room_size", len(h.rooms[client.room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if clients[client] {
					client.closeSend()
					delete(clients, client)
					metrics.ConnectedSpectators.Dec()
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToMatch delivers one event to every client watching the match.
// Slow clients are skipped rather than blocking the caller.
func (h *Hub) BroadcastToMatch(matchID int, eventType string, payload interface{}) {
	msg := Message{
		ID:      uuid.NewString(),
		Type:    eventType,
		MatchID: matchID,
		Payload: payload,
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("ws marshal failed", slog.String("type", eventType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[roomName(matchID)] {
		client.mu.Lock()
		if client.closed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- raw:
		default:
			h.logger.Warn("ws client send buffer full, dropping event",
				slog.Int("match_id", matchID), slog.String("type", eventType))
		}
		client.mu.Unlock()
	}
}

func roomName(matchID int) string {
	return "match:" + strconv.Itoa(matchID)
}
