// Package ws implements the realtime surface: a websocket hub with per-order
// and per-agent topics. Clients subscribe to the orders they are allowed to
// watch; drivers push position and availability reports over the same
// connection. The hub implements ports.Publisher for the core.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// CustomerDirectory resolves order ownership for subscription authorization.
type CustomerDirectory interface {
	CustomerOf(ctx context.Context, orderID kernel.UUID) (kernel.UUID, error)
}

// envelope is the wire shape of every server-to-client message.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub maintains the topic registry and fans published messages out to
// subscribers. Delivery is at-most-once: a subscriber whose send buffer is
// full drops the message rather than blocking the publisher.
type Hub struct {
	locationHandler commands.UpdateAgentLocationCommandHandler
	statusHandler   commands.SetAgentStatusCommandHandler
	directory       CustomerDirectory
	logger          *slog.Logger

	mu     sync.RWMutex
	topics map[string]map[*Client]struct{}
}

// NewHub creates a hub wired to the tracking command handlers.
func NewHub(
	locationHandler commands.UpdateAgentLocationCommandHandler,
	statusHandler commands.SetAgentStatusCommandHandler,
	directory CustomerDirectory,
	logger *slog.Logger,
) *Hub {
	return &Hub{
		locationHandler: locationHandler,
		statusHandler:   statusHandler,
		directory:       directory,
		logger:          logger.With("component", "ws_hub"),
		topics:          make(map[string]map[*Client]struct{}),
	}
}

// Publish fans the message out to the topic's subscribers in publish order.
// Safe for concurrent use; never blocks on slow subscribers.
func (h *Hub) Publish(topic string, message ports.OutboundMessage) {
	raw, err := json.Marshal(envelope{Type: message.Kind(), Payload: message})
	if err != nil {
		h.logger.Error("Failed to marshal outbound message", "kind", message.Kind(), "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.topics[topic] {
		select {
		case client.send <- raw:
		default:
			h.logger.Warn("Dropping message for slow subscriber", "topic", topic, "kind", message.Kind())
		}
	}
}

func (h *Hub) subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.topics[topic]
	if !ok {
		subscribers = make(map[*Client]struct{})
		h.topics[topic] = subscribers
	}
	subscribers[client] = struct{}{}
	client.topics[topic] = struct{}{}
}

func (h *Hub) unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropSubscription(client, topic)
}

// remove detaches the client from every topic. Called once when the
// connection closes.
func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic := range client.topics {
		h.dropSubscription(client, topic)
	}
}

// dropSubscription must be called with mu held.
func (h *Hub) dropSubscription(client *Client, topic string) {
	subscribers, ok := h.topics[topic]
	if !ok {
		return
	}

	delete(subscribers, client)
	delete(client.topics, topic)
	if len(subscribers) == 0 {
		delete(h.topics, topic)
	}
}
