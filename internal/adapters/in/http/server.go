// Package http exposes the dispatch API over echo: routing calls, status
// transitions and the tracking read models.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	routeOrderHandler     commands.RouteOrderCommandHandler
	batchRouteHandler     commands.BatchRouteOrdersCommandHandler
	updateStatusHandler   commands.UpdateOrderStatusCommandHandler
	orderTrackingHandler  queries.GetOrderTrackingQueryHandler
	activeDeliveryHandler queries.GetActiveDeliveriesQueryHandler
}

// NewServer creates an HTTP server with the required command and query
// handlers.
func NewServer(
	routeOrderHandler commands.RouteOrderCommandHandler,
	batchRouteHandler commands.BatchRouteOrdersCommandHandler,
	updateStatusHandler commands.UpdateOrderStatusCommandHandler,
	orderTrackingHandler queries.GetOrderTrackingQueryHandler,
	activeDeliveryHandler queries.GetActiveDeliveriesQueryHandler,
) *Server {
	return &Server{
		routeOrderHandler:     routeOrderHandler,
		batchRouteHandler:     batchRouteHandler,
		updateStatusHandler:   updateStatusHandler,
		orderTrackingHandler:  orderTrackingHandler,
		activeDeliveryHandler: activeDeliveryHandler,
	}
}

// RegisterRoutes attaches the API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders/:id/route", s.RouteOrder)
	api.POST("/orders/route-batch", s.RouteOrderBatch)
	api.POST("/orders/:id/status", s.UpdateOrderStatus)
	api.GET("/orders/:id/tracking", s.GetOrderTracking)
	api.GET("/deliveries/active", s.GetActiveDeliveries)

	e.GET("/health", s.Health)
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type routeOrderRequest struct {
	Algorithm string `json:"algorithm"`
}

type routingDecisionResponse struct {
	OrderID          string             `json:"orderId"`
	Algorithm        string             `json:"algorithm"`
	OutletID         string             `json:"outletId"`
	DriverID         string             `json:"driverId"`
	Confidence       float64            `json:"confidence"`
	Metrics          map[string]float64 `json:"metrics,omitempty"`
	EstimatedMinutes float64            `json:"estimatedMinutes"`
	DecidedAt        time.Time          `json:"decidedAt"`
}

// RouteOrder handles POST /api/v1/orders/:id/route - assigns an outlet and
// driver to the order using the requested algorithm.
func (s *Server) RouteOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid order id")
	}

	var request routeOrderRequest
	if err = ctx.Bind(&request); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewRouteOrderCommand(orderID, request.Algorithm)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err.Error())
	}

	decision, err := s.routeOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondCommandError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, decisionToResponse(decision.OrderID.String(), decision))
}

type routeBatchRequest struct {
	OrderIDs  []string `json:"orderIds"`
	Algorithm string   `json:"algorithm"`
}

type routeBatchResultResponse struct {
	OrderID  string                   `json:"orderId"`
	Decision *routingDecisionResponse `json:"decision,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// RouteOrderBatch handles POST /api/v1/orders/route-batch - routes several
// orders with per-order failure isolation.
func (s *Server) RouteOrderBatch(ctx echo.Context) error {
	var request routeBatchRequest
	if err := ctx.Bind(&request); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	orderIDs := make([]kernel.UUID, 0, len(request.OrderIDs))
	for _, raw := range request.OrderIDs {
		orderID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return respondError(ctx, http.StatusBadRequest, "Invalid order id: "+raw)
		}
		orderIDs = append(orderIDs, orderID)
	}

	cmd, err := commands.NewBatchRouteOrdersCommand(orderIDs, request.Algorithm)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err.Error())
	}

	results, err := s.batchRouteHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondCommandError(ctx, err)
	}

	response := make([]routeBatchResultResponse, 0, len(results))
	for _, result := range results {
		item := routeBatchResultResponse{OrderID: result.OrderID.String()}
		if result.Err != nil {
			item.Error = result.Err.Error()
		}
		if result.Decision != nil {
			decision := decisionToResponse(result.OrderID.String(), *result.Decision)
			item.Decision = &decision
		}
		response = append(response, item)
	}

	return ctx.JSON(http.StatusOK, response)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
	Actor  string `json:"actor"`
}

// UpdateOrderStatus handles POST /api/v1/orders/:id/status - applies one
// status transition.
func (s *Server) UpdateOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid order id")
	}

	var request updateStatusRequest
	if err = ctx.Bind(&request); err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid request body")
	}

	status, err := order.StatusFromString(request.Status)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid status: "+request.Status)
	}

	cmd, err := commands.NewUpdateOrderStatusCommand(orderID, status, request.Note, request.Actor)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err.Error())
	}

	if err = s.updateStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondCommandError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

type driverResponse struct {
	ID         string    `json:"id"`
	AssignedAt time.Time `json:"assignedAt"`
	AssignedBy string    `json:"assignedBy"`
	Lat        *float64  `json:"lat,omitempty"`
	Lng        *float64  `json:"lng,omitempty"`
}

type orderTrackingResponse struct {
	OrderID          string                     `json:"orderId"`
	Status           string                     `json:"status"`
	History          []queries.StatusChangeView `json:"history"`
	Driver           *driverResponse            `json:"driver,omitempty"`
	DestinationLat   float64                    `json:"destinationLat"`
	DestinationLng   float64                    `json:"destinationLng"`
	ScheduledFor     *time.Time                 `json:"scheduledFor,omitempty"`
	EstimatedArrival *time.Time                 `json:"estimatedArrival,omitempty"`
	DeliveryAttempts int                        `json:"deliveryAttempts"`
}

// GetOrderTracking handles GET /api/v1/orders/:id/tracking - returns the
// live tracking view of one order.
func (s *Server) GetOrderTracking(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, "Invalid order id")
	}

	query, err := queries.NewGetOrderTrackingQuery(orderID)
	if err != nil {
		return respondError(ctx, http.StatusBadRequest, err.Error())
	}

	tracking, err := s.orderTrackingHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondCommandError(ctx, err)
	}

	response := orderTrackingResponse{
		OrderID:          tracking.ID.String(),
		Status:           tracking.Status,
		History:          tracking.History,
		DestinationLat:   tracking.DestinationLat,
		DestinationLng:   tracking.DestinationLng,
		ScheduledFor:     tracking.ScheduledFor,
		EstimatedArrival: tracking.EstimatedArrival,
		DeliveryAttempts: tracking.DeliveryAttempts,
	}

	if tracking.Driver != nil {
		response.Driver = &driverResponse{
			ID:         tracking.Driver.ID.String(),
			AssignedAt: tracking.Driver.AssignedAt,
			AssignedBy: tracking.Driver.AssignedBy,
			Lat:        tracking.Driver.Lat,
			Lng:        tracking.Driver.Lng,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

type activeDeliveryResponse struct {
	OrderID          string     `json:"orderId"`
	Status           string     `json:"status"`
	DriverID         string     `json:"driverId"`
	DriverLat        *float64   `json:"driverLat,omitempty"`
	DriverLng        *float64   `json:"driverLng,omitempty"`
	DestinationLat   float64    `json:"destinationLat"`
	DestinationLng   float64    `json:"destinationLng"`
	EstimatedArrival *time.Time `json:"estimatedArrival,omitempty"`
}

// GetActiveDeliveries handles GET /api/v1/deliveries/active - lists
// in-flight deliveries.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	query := queries.NewGetActiveDeliveriesQuery()

	deliveries, err := s.activeDeliveryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondCommandError(ctx, err)
	}

	response := make([]activeDeliveryResponse, 0, len(deliveries))
	for _, delivery := range deliveries {
		response = append(response, activeDeliveryResponse{
			OrderID:          delivery.OrderID.String(),
			Status:           delivery.Status,
			DriverID:         delivery.DriverID.String(),
			DriverLat:        delivery.DriverLat,
			DriverLng:        delivery.DriverLng,
			DestinationLat:   delivery.DestinationLat,
			DestinationLng:   delivery.DestinationLng,
			EstimatedArrival: delivery.EstimatedArrival,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func decisionToResponse(orderID string, decision ports.RoutingDecision) routingDecisionResponse {
	return routingDecisionResponse{
		OrderID:          orderID,
		Algorithm:        decision.Algorithm,
		OutletID:         decision.OutletID.String(),
		DriverID:         decision.DriverID.String(),
		Confidence:       decision.Confidence,
		Metrics:          decision.Metrics,
		EstimatedMinutes: decision.EstimatedMinutes,
		DecidedAt:        decision.DecidedAt,
	}
}

func respondError(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, errorResponse{Code: code, Message: message})
}

// respondCommandError maps domain errors to HTTP status codes.
func respondCommandError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrUnauthorizedAction):
		return respondError(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNoEligibleOutlet),
		errors.Is(err, services.ErrNoEligibleAgent),
		errors.Is(err, order.ErrDriverAlreadyAssigned):
		return respondError(ctx, http.StatusConflict, err.Error())
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, services.ErrUnknownStrategy):
		return respondError(ctx, http.StatusBadRequest, err.Error())
	default:
		return respondError(ctx, http.StatusInternalServerError, "Internal server error")
	}
}
