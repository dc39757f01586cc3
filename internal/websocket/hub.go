package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/metrics"

	"github.com/sirupsen/logrus"
)

var ErrTooManyConnections = errors.New("too many connections for user")

type Options struct {
	MaxConnPerUser int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
}

// Hub tracks live clients per user and fans change events out to them.
type Hub struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	mu             sync.RWMutex
	maxConnPerUser int
	maxMessageSize int64
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	log            logrus.FieldLogger
}

func NewHub(opts Options, log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		maxConnPerUser: opts.MaxConnPerUser,
		maxMessageSize: opts.MaxMessageSize,
		writeWait:      opts.WriteWait,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PingPeriod,
		log:            log,
	}
}

func (h *Hub) Register(client *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.userIndex[client.UserID]) >= h.maxConnPerUser {
		h.log.WithField("user_id", client.UserID).Warn("max connections reached")
		return ErrTooManyConnections
	}

	if h.userIndex[client.UserID] == nil {
		h.userIndex[client.UserID] = make(map[string]bool)
	}
	h.clients[client.ID] = client
	h.userIndex[client.UserID][client.ID] = true
	metrics.ConnectionOpened()

	h.log.WithFields(logrus.Fields{
		"client_id": client.ID,
		"user_id":   client.UserID,
	}).Debug("client registered")
	return nil
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(client)
}

// removeLocked closes the client's send channel exactly once. Callers hold
// the write lock.
func (h *Hub) removeLocked(client *Client) {
	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	delete(h.clients, client.ID)
	delete(h.userIndex[client.UserID], client.ID)
	if len(h.userIndex[client.UserID]) == 0 {
		delete(h.userIndex, client.UserID)
	}

	close(client.Send)
	metrics.ConnectionClosed()
	h.log.WithField("client_id", client.ID).Debug("client unregistered")
}

// Publish implements domain.EventPublisher. A client whose buffer is full is
// dropped rather than blocking the caller.
func (h *Hub) Publish(userID string, eventType domain.EventType, payload interface{}) {
	msg, err := NewMessage(MessageType(eventType), payload)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to encode event")
		return
	}

	messageBytes, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).WithField("event", eventType).Error("failed to encode event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for clientID := range h.userIndex[userID] {
		client := h.clients[clientID]
		select {
		case client.Send <- messageBytes:
		default:
			h.log.WithField("client_id", clientID).Warn("send buffer full, closing connection")
			h.removeLocked(client)
		}
	}
}

func (h *Hub) handleMessage(client *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.reply(client, TypeError, &ErrorPayload{Message: "invalid message"})
		return
	}

	switch msg.Type {
	case TypePing:
		h.reply(client, TypePong, nil)
	default:
		h.reply(client, TypeError, &ErrorPayload{Message: "unknown message type"})
	}
}

func (h *Hub) reply(client *Client, msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return
	}
	bytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	select {
	case client.Send <- bytes:
	default:
	}
}

func (h *Hub) UserConnections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userIndex[userID])
}

// Shutdown closes every client when ctx is done.
func (h *Hub) Shutdown(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		h.removeLocked(client)
	}
}

func (h *Hub) MaxConnPerUser() int {
	return h.maxConnPerUser
}
