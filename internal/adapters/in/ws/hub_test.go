package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHub(
		commands.UpdateAgentLocationCommandHandler{},
		commands.SetAgentStatusCommandHandler{},
		nil,
		logger,
	)
}

func newTestClient(hub *Hub, buffer int) *Client {
	return &Client{
		hub:    hub,
		send:   make(chan []byte, buffer),
		userID: kernel.NewUUID(),
		topics: make(map[string]struct{}),
	}
}

func receive(t *testing.T, client *Client) envelope {
	t.Helper()

	select {
	case raw := <-client.send:
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("expected a message on the client's send channel")
		return envelope{}
	}
}

func TestHub_Publish(t *testing.T) {
	t.Run("delivers to every subscriber of the topic", func(t *testing.T) {
		// Given
		hub := newTestHub()
		topic := ports.OrderTopic(kernel.NewUUID())
		first := newTestClient(hub, 4)
		second := newTestClient(hub, 4)
		hub.subscribe(first, topic)
		hub.subscribe(second, topic)

		// When
		hub.Publish(topic, ports.ETAUpdate{
			OrderID:          kernel.NewUUID().String(),
			NewETA:           time.Now().Add(20 * time.Minute),
			EstimatedMinutes: 20,
		})

		// Then
		assert.Equal(t, "eta_update", receive(t, first).Type)
		assert.Equal(t, "eta_update", receive(t, second).Type)
	})

	t.Run("skips subscribers of other topics", func(t *testing.T) {
		// Given
		hub := newTestHub()
		watched := ports.OrderTopic(kernel.NewUUID())
		other := ports.OrderTopic(kernel.NewUUID())
		watcher := newTestClient(hub, 4)
		bystander := newTestClient(hub, 4)
		hub.subscribe(watcher, watched)
		hub.subscribe(bystander, other)

		// When
		hub.Publish(watched, ports.Notification{Title: "On the way", Type: "info"})

		// Then
		assert.Equal(t, "notification", receive(t, watcher).Type)
		assert.Empty(t, bystander.send)
	})

	t.Run("publishing to a topic with no subscribers is a no-op", func(t *testing.T) {
		hub := newTestHub()

		hub.Publish(ports.OrderTopic(kernel.NewUUID()), ports.Notification{Title: "Delivered", Type: "success"})
	})

	t.Run("drops the message when the subscriber's buffer is full", func(t *testing.T) {
		// Given
		hub := newTestHub()
		topic := ports.AgentTopic(kernel.NewUUID())
		slow := newTestClient(hub, 1)
		hub.subscribe(slow, topic)

		// When: the second publish finds the buffer full and must not block.
		hub.Publish(topic, ports.Notification{Title: "first", Type: "info"})
		hub.Publish(topic, ports.Notification{Title: "second", Type: "info"})

		// Then
		env := receive(t, slow)
		var payload ports.Notification
		raw, err := json.Marshal(env.Payload)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "first", payload.Title)
		assert.Empty(t, slow.send)
	})

	t.Run("preserves publish order for one subscriber", func(t *testing.T) {
		// Given
		hub := newTestHub()
		topic := ports.OrderTopic(kernel.NewUUID())
		client := newTestClient(hub, 8)
		hub.subscribe(client, topic)

		// When
		hub.Publish(topic, ports.OrderStatusUpdate{CurrentStatus: "confirmed", Timestamp: time.Now()})
		hub.Publish(topic, ports.OrderStatusUpdate{CurrentStatus: "preparing", Timestamp: time.Now()})

		// Then
		assertStatus := func(env envelope, want string) {
			var payload ports.OrderStatusUpdate
			raw, err := json.Marshal(env.Payload)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &payload))
			assert.Equal(t, want, payload.CurrentStatus)
		}
		assertStatus(receive(t, client), "confirmed")
		assertStatus(receive(t, client), "preparing")
	})
}

type stubDirectory struct {
	customerID kernel.UUID
	err        error
}

func (d stubDirectory) CustomerOf(context.Context, kernel.UUID) (kernel.UUID, error) {
	return d.customerID, d.err
}

func assertErrorMessage(t *testing.T, env envelope, want string) {
	t.Helper()

	require.Equal(t, "error", env.Type)
	var payload errorMessage
	raw, err := json.Marshal(env.Payload)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, want, payload.Message)
}

func TestClient_TrackOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	topic := ports.OrderTopic(orderID)

	t.Run("the order's customer subscribes to its topic", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)
		hub.directory = stubDirectory{customerID: client.userID}

		client.handleTrackOrder(inboundMessage{Type: "track_order", OrderID: orderID.String()})

		assert.Contains(t, client.topics, topic)
		assert.Empty(t, client.send)
	})

	t.Run("a payload userId matching the connection is accepted", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)
		hub.directory = stubDirectory{customerID: client.userID}

		client.handleTrackOrder(inboundMessage{
			Type:    "track_order",
			OrderID: orderID.String(),
			UserID:  client.userID.String(),
		})

		assert.Contains(t, client.topics, topic)
	})

	t.Run("a payload userId for another user is rejected", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)
		hub.directory = stubDirectory{customerID: client.userID}

		client.handleTrackOrder(inboundMessage{
			Type:    "track_order",
			OrderID: orderID.String(),
			UserID:  kernel.NewUUID().String(),
		})

		assert.NotContains(t, client.topics, topic)
		assertErrorMessage(t, receive(t, client), "userId does not match this connection")
	})

	t.Run("a malformed payload userId is rejected", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)
		hub.directory = stubDirectory{customerID: client.userID}

		client.handleTrackOrder(inboundMessage{
			Type:    "track_order",
			OrderID: orderID.String(),
			UserID:  "not-a-uuid",
		})

		assert.NotContains(t, client.topics, topic)
		assertErrorMessage(t, receive(t, client), "userId does not match this connection")
	})

	t.Run("only the order's customer may watch it", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)
		hub.directory = stubDirectory{customerID: kernel.NewUUID()}

		client.handleTrackOrder(inboundMessage{Type: "track_order", OrderID: orderID.String()})

		assert.NotContains(t, client.topics, topic)
		assertErrorMessage(t, receive(t, client), "not authorized to track this order")
	})
}

func TestHub_Subscriptions(t *testing.T) {
	t.Run("unsubscribe stops delivery", func(t *testing.T) {
		// Given
		hub := newTestHub()
		topic := ports.OrderTopic(kernel.NewUUID())
		client := newTestClient(hub, 4)
		hub.subscribe(client, topic)

		// When
		hub.unsubscribe(client, topic)
		hub.Publish(topic, ports.Notification{Title: "gone", Type: "info"})

		// Then
		assert.Empty(t, client.send)
		assert.Empty(t, client.topics)
	})

	t.Run("empty topics are dropped from the registry", func(t *testing.T) {
		hub := newTestHub()
		topic := ports.OrderTopic(kernel.NewUUID())
		client := newTestClient(hub, 4)

		hub.subscribe(client, topic)
		hub.unsubscribe(client, topic)

		hub.mu.RLock()
		defer hub.mu.RUnlock()
		assert.Empty(t, hub.topics)
	})

	t.Run("remove detaches the client from all topics", func(t *testing.T) {
		// Given
		hub := newTestHub()
		orderTopic := ports.OrderTopic(kernel.NewUUID())
		agentTopic := ports.AgentTopic(kernel.NewUUID())
		leaving := newTestClient(hub, 4)
		staying := newTestClient(hub, 4)
		hub.subscribe(leaving, orderTopic)
		hub.subscribe(leaving, agentTopic)
		hub.subscribe(staying, orderTopic)

		// When
		hub.remove(leaving)
		hub.Publish(orderTopic, ports.Notification{Title: "update", Type: "info"})

		// Then
		assert.Empty(t, leaving.send)
		assert.Empty(t, leaving.topics)
		assert.Equal(t, "notification", receive(t, staying).Type)
	})

	t.Run("unsubscribing from an unknown topic is a no-op", func(t *testing.T) {
		hub := newTestHub()
		client := newTestClient(hub, 4)

		hub.unsubscribe(client, ports.OrderTopic(kernel.NewUUID()))
	})
}
