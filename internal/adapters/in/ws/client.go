package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/agent"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are the reverse proxy's job.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Client is one websocket connection with an authenticated user identity.
// The identity doubles as the agent id for driver connections.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID kernel.UUID
	topics map[string]struct{}
}

// inboundMessage is the wire shape of every client-to-server message. Fields
// beyond Type are populated per kind.
type inboundMessage struct {
	Type     string   `json:"type"`
	OrderID  string   `json:"orderId,omitempty"`
	UserID   string   `json:"userId,omitempty"`
	Lat      float64  `json:"lat,omitempty"`
	Lng      float64  `json:"lng,omitempty"`
	Heading  *float64 `json:"heading,omitempty"`
	SpeedKmH *float64 `json:"speed,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// ServeWS upgrades an echo request to a websocket connection. The userId
// query parameter is the caller's identity, established by the gateway in
// front of this service.
func (h *Hub) ServeWS(c echo.Context) error {
	userID, err := kernel.UUIDFromString(c.QueryParam("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "userId query parameter is required")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		topics: make(map[string]struct{}),
	}

	go client.writePump()
	go client.readPump()

	return nil
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		close(c.send)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("Websocket read failed", "user_id", c.userID, "error", err)
			}
			return
		}

		var message inboundMessage
		if err = json.Unmarshal(raw, &message); err != nil {
			c.sendError("malformed message")
			continue
		}

		c.dispatch(message)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) dispatch(message inboundMessage) {
	switch message.Type {
	case "track_order":
		c.handleTrackOrder(message)
	case "untrack_order":
		c.handleUntrackOrder(message)
	case "driver_location_update":
		c.handleLocationUpdate(message)
	case "driver_status_update":
		c.handleStatusUpdate(message)
	default:
		c.sendError("unknown message type: " + message.Type)
	}
}

// handleTrackOrder subscribes the client to an order's topic. Only the
// order's customer may watch it. A userId in the payload must match the
// connection's identity; the identity stays authoritative either way.
func (c *Client) handleTrackOrder(message inboundMessage) {
	ctx := context.Background()

	orderID, err := kernel.UUIDFromString(message.OrderID)
	if err != nil {
		c.sendError("invalid orderId")
		return
	}

	if message.UserID != "" {
		claimed, idErr := kernel.UUIDFromString(message.UserID)
		if idErr != nil || !claimed.IsEqual(c.userID) {
			c.sendError("userId does not match this connection")
			return
		}
	}

	customerID, err := c.hub.directory.CustomerOf(ctx, orderID)
	if err != nil {
		c.sendError("order not found")
		return
	}

	if !customerID.IsEqual(c.userID) {
		c.hub.logger.Warn("Rejected order subscription from non-owner",
			"order_id", orderID, "user_id", c.userID)
		c.sendError("not authorized to track this order")
		return
	}

	c.hub.subscribe(c, ports.OrderTopic(orderID))
}

func (c *Client) handleUntrackOrder(message inboundMessage) {
	orderID, err := kernel.UUIDFromString(message.OrderID)
	if err != nil {
		c.sendError("invalid orderId")
		return
	}

	c.hub.unsubscribe(c, ports.OrderTopic(orderID))
}

// handleLocationUpdate delegates a driver's position report to the tracking
// command. The connection identity is the reporting agent; the command
// handler enforces that it matches the order's assignment.
func (c *Client) handleLocationUpdate(message inboundMessage) {
	orderID, err := kernel.UUIDFromString(message.OrderID)
	if err != nil {
		c.sendError("invalid orderId")
		return
	}

	point, err := kernel.NewGeoPoint(message.Lat, message.Lng)
	if err != nil {
		c.sendError("invalid coordinates")
		return
	}

	cmd, err := commands.NewUpdateAgentLocationCommand(orderID, c.userID, point, message.Heading, message.SpeedKmH)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	if err = c.hub.locationHandler.Handle(context.Background(), cmd); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleStatusUpdate(message inboundMessage) {
	status, err := agent.WorkStatusFromString(message.Status)
	if err != nil {
		c.sendError("invalid status")
		return
	}

	cmd, err := commands.NewSetAgentStatusCommand(c.userID, status)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	if err = c.hub.statusHandler.Handle(context.Background(), cmd); err != nil {
		c.sendError(err.Error())
	}
}

// errorMessage is pushed back to the offending client only, never broadcast.
type errorMessage struct {
	Message string `json:"message"`
}

func (c *Client) sendError(message string) {
	raw, err := json.Marshal(envelope{Type: "error", Payload: errorMessage{Message: message}})
	if err != nil {
		return
	}

	select {
	case c.send <- raw:
	default:
	}
}
