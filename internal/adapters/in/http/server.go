// Package http exposes the dispatch core over a JSON REST API.
// Handlers translate requests into commands and queries and map domain
// errors onto HTTP status codes; no business rules live here.
package http

import (
	"errors"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server implements the HTTP handlers for the dispatch API.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createDeliveryHandler      commands.CreateDeliveryCommandHandler
	claimDeliveryHandler       commands.ClaimDeliveryCommandHandler
	advanceDeliveryHandler     commands.AdvanceDeliveryCommandHandler
	completeDeliveryHandler    commands.CompleteDeliveryCommandHandler
	cancelDeliveryHandler      commands.CancelDeliveryCommandHandler
	sweepExpiredHandler        commands.SweepExpiredCommandHandler
	createCourierHandler       commands.CreateCourierCommandHandler
	reportCourierStatusHandler commands.ReportCourierStatusCommandHandler

	// Query handlers
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler
	getCourierBoardHandler     queries.GetCourierBoardQueryHandler
	recommendCouriersHandler   queries.RecommendCouriersQueryHandler

	// claimTTL is the publication window used by the manual sweep endpoint.
	claimTTL time.Duration
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createDeliveryHandler commands.CreateDeliveryCommandHandler,
	claimDeliveryHandler commands.ClaimDeliveryCommandHandler,
	advanceDeliveryHandler commands.AdvanceDeliveryCommandHandler,
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler,
	cancelDeliveryHandler commands.CancelDeliveryCommandHandler,
	sweepExpiredHandler commands.SweepExpiredCommandHandler,
	createCourierHandler commands.CreateCourierCommandHandler,
	reportCourierStatusHandler commands.ReportCourierStatusCommandHandler,
	getActiveDeliveriesHandler queries.GetActiveDeliveriesQueryHandler,
	getCourierBoardHandler queries.GetCourierBoardQueryHandler,
	recommendCouriersHandler queries.RecommendCouriersQueryHandler,
	claimTTL time.Duration,
) *Server {
	return &Server{
		createDeliveryHandler:      createDeliveryHandler,
		claimDeliveryHandler:       claimDeliveryHandler,
		advanceDeliveryHandler:     advanceDeliveryHandler,
		completeDeliveryHandler:    completeDeliveryHandler,
		cancelDeliveryHandler:      cancelDeliveryHandler,
		sweepExpiredHandler:        sweepExpiredHandler,
		createCourierHandler:       createCourierHandler,
		reportCourierStatusHandler: reportCourierStatusHandler,
		getActiveDeliveriesHandler: getActiveDeliveriesHandler,
		getCourierBoardHandler:     getCourierBoardHandler,
		recommendCouriersHandler:   recommendCouriersHandler,
		claimTTL:                   claimTTL,
	}
}

// RegisterRoutes attaches the API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/deliveries", s.CreateDelivery)
	api.GET("/deliveries", s.GetActiveDeliveries)
	api.GET("/deliveries/:id/recommendations", s.GetRecommendations)
	api.POST("/deliveries/:id/claim", s.ClaimDelivery)
	api.POST("/deliveries/:id/advance", s.AdvanceDelivery)
	api.POST("/deliveries/:id/complete", s.CompleteDelivery)
	api.POST("/deliveries/:id/cancel", s.CancelDelivery)
	api.POST("/sweep", s.SweepExpired)
	api.POST("/couriers", s.CreateCourier)
	api.GET("/couriers", s.GetCourierBoard)
	api.POST("/couriers/:id/status", s.ReportCourierStatus)
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type addressBody struct {
	Street       string  `json:"street"`
	Zone         string  `json:"zone"`
	ContactName  string  `json:"contact_name"`
	ContactPhone string  `json:"contact_phone"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type createDeliveryBody struct {
	Pickup        addressBody `json:"pickup"`
	Dropoff       addressBody `json:"dropoff"`
	VehicleType   string      `json:"vehicle_type"`
	WeightKg      float64     `json:"weight_kg"`
	Description   string      `json:"description"`
	Priority      string      `json:"priority"`
	NightDelivery bool        `json:"night_delivery"`
}

type deliveryResponse struct {
	ID          string  `json:"id"`
	OrderNumber string  `json:"order_number"`
	Status      string  `json:"status"`
	Version     int64   `json:"version"`
	CourierID   *string `json:"courier_id,omitempty"`
	FinalPrice  *string `json:"final_price,omitempty"`
}

func toDeliveryResponse(aggregate *delivery.Delivery) deliveryResponse {
	resp := deliveryResponse{
		ID:          aggregate.ID().String(),
		OrderNumber: aggregate.OrderNumber(),
		Status:      aggregate.Status().String(),
		Version:     aggregate.Version(),
	}
	if aggregate.Courier() != nil {
		id := aggregate.Courier().String()
		resp.CourierID = &id
	}
	if aggregate.Pricing() != nil {
		price := aggregate.Pricing().FinalPrice().StringFixed(2)
		resp.FinalPrice = &price
	}
	return resp
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateDelivery handles POST /api/v1/deliveries - registers and publishes a delivery.
func (s *Server) CreateDelivery(ctx echo.Context) error {
	var body createDeliveryBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	vehicleType, err := kernel.VehicleTypeFromString(body.VehicleType)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle type: "+body.VehicleType)
	}

	priority := delivery.PriorityNormal
	if body.Priority != "" {
		priority, err = delivery.PriorityFromString(body.Priority)
		if err != nil {
			return badRequest(ctx, "Invalid priority: "+body.Priority)
		}
	}

	cmd, err := commands.NewCreateDeliveryCommand(
		kernel.NewUUID(),
		toAddressParams(body.Pickup),
		toAddressParams(body.Dropoff),
		vehicleType,
		body.WeightKg,
		body.Description,
		priority,
		body.NightDelivery,
	)
	if err != nil {
		return badRequest(ctx, "Invalid delivery data: "+err.Error())
	}

	aggregate, err := s.createDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toDeliveryResponse(aggregate))
}

// GetActiveDeliveries handles GET /api/v1/deliveries - the active delivery board.
func (s *Server) GetActiveDeliveries(ctx echo.Context) error {
	query := queries.NewGetActiveDeliveriesQuery()

	rows, err := s.getActiveDeliveriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve deliveries")
	}

	type boardRow struct {
		ID          string    `json:"id"`
		OrderNumber string    `json:"order_number"`
		Status      string    `json:"status"`
		Version     int64     `json:"version"`
		CourierID   *string   `json:"courier_id,omitempty"`
		PickupZone  string    `json:"pickup_zone"`
		DropoffZone string    `json:"dropoff_zone"`
		FinalPrice  string    `json:"final_price"`
		CreatedAt   time.Time `json:"created_at"`
	}

	response := make([]boardRow, len(rows))
	for i, row := range rows {
		response[i] = boardRow{
			ID:          row.ID.String(),
			OrderNumber: row.OrderNumber,
			Status:      row.Status,
			Version:     row.Version,
			PickupZone:  row.PickupZone,
			DropoffZone: row.DropoffZone,
			FinalPrice:  row.FinalPrice,
			CreatedAt:   row.CreatedAt,
		}
		if row.CourierID != nil {
			id := row.CourierID.String()
			response[i].CourierID = &id
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetRecommendations handles GET /api/v1/deliveries/:id/recommendations.
func (s *Server) GetRecommendations(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	query, err := queries.NewRecommendCouriersQuery(deliveryID)
	if err != nil {
		return badRequest(ctx, "Invalid recommendation request: "+err.Error())
	}

	ranked, err := s.recommendCouriersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return domainError(ctx, err)
	}

	type recommendationRow struct {
		CourierID      string  `json:"courier_id"`
		Name           string  `json:"name"`
		Score          float64 `json:"score"`
		Rating         float64 `json:"rating"`
		CompletionRate float64 `json:"completion_rate"`
	}

	response := make([]recommendationRow, len(ranked))
	for i, r := range ranked {
		response[i] = recommendationRow{
			CourierID:      r.CourierID.String(),
			Name:           r.Name,
			Score:          r.Score,
			Rating:         r.Rating,
			CompletionRate: r.CompletionRate,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ClaimDelivery handles POST /api/v1/deliveries/:id/claim.
func (s *Server) ClaimDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var body struct {
		CourierID string `json:"courier_id"`
	}
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(body.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	cmd, err := commands.NewClaimDeliveryCommand(deliveryID, courierID)
	if err != nil {
		return badRequest(ctx, "Invalid claim data: "+err.Error())
	}

	aggregate, err := s.claimDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(aggregate))
}

// AdvanceDelivery handles POST /api/v1/deliveries/:id/advance - courier progress reports.
func (s *Server) AdvanceDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var body struct {
		CourierID string `json:"courier_id"`
		Status    string `json:"status"`
	}
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	courierID, err := kernel.UUIDFromString(body.CourierID)
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	target, err := delivery.StatusFromString(body.Status)
	if err != nil {
		return badRequest(ctx, "Invalid status: "+body.Status)
	}

	cmd, err := commands.NewAdvanceDeliveryCommand(deliveryID, courierID, target)
	if err != nil {
		return badRequest(ctx, "Invalid advance data: "+err.Error())
	}

	aggregate, err := s.advanceDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(aggregate))
}

// CompleteDelivery handles POST /api/v1/deliveries/:id/complete - operator/system settlement.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var body struct {
		ActorType string `json:"actor_type"`
		ActorID   string `json:"actor_id"`
	}
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actor, err := parseActor(body.ActorType, body.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor: "+err.Error())
	}

	cmd, err := commands.NewCompleteDeliveryCommand(deliveryID, actor)
	if err != nil {
		return badRequest(ctx, "Invalid completion data: "+err.Error())
	}

	aggregate, err := s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(aggregate))
}

// CancelDelivery handles POST /api/v1/deliveries/:id/cancel.
func (s *Server) CancelDelivery(ctx echo.Context) error {
	deliveryID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid delivery id")
	}

	var body struct {
		ActorType string `json:"actor_type"`
		ActorID   string `json:"actor_id"`
		Reason    string `json:"reason"`
	}
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	actor, err := parseActor(body.ActorType, body.ActorID)
	if err != nil {
		return badRequest(ctx, "Invalid actor: "+err.Error())
	}

	cmd, err := commands.NewCancelDeliveryCommand(deliveryID, actor, body.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid cancellation data: "+err.Error())
	}

	aggregate, err := s.cancelDeliveryHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toDeliveryResponse(aggregate))
}

// SweepExpired handles POST /api/v1/sweep - manual expiry sweep trigger.
func (s *Server) SweepExpired(ctx echo.Context) error {
	cmd, err := commands.NewSweepExpiredCommand(s.claimTTL)
	if err != nil {
		return badRequest(ctx, "Invalid sweep configuration: "+err.Error())
	}

	swept, err := s.sweepExpiredHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, map[string]int{"swept": swept})
}

// CreateCourier handles POST /api/v1/couriers - enrolls a new courier.
func (s *Server) CreateCourier(ctx echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Phone       string  `json:"phone"`
		VehicleType string  `json:"vehicle_type"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	vehicleType, err := kernel.VehicleTypeFromString(body.VehicleType)
	if err != nil {
		return badRequest(ctx, "Invalid vehicle type: "+body.VehicleType)
	}

	courierID := kernel.NewUUID()
	cmd, err := commands.NewCreateCourierCommand(
		courierID, body.Name, body.Phone, vehicleType, body.Latitude, body.Longitude)
	if err != nil {
		return badRequest(ctx, "Invalid courier data: "+err.Error())
	}

	if err = s.createCourierHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"id": courierID.String()})
}

// GetCourierBoard handles GET /api/v1/couriers - the courier roster with load.
func (s *Server) GetCourierBoard(ctx echo.Context) error {
	query := queries.NewGetCourierBoardQuery()

	rows, err := s.getCourierBoardHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return internalError(ctx, "Failed to retrieve couriers")
	}

	type courierRow struct {
		ID             string  `json:"id"`
		Name           string  `json:"name"`
		VehicleType    string  `json:"vehicle_type"`
		Active         bool    `json:"active"`
		Available      bool    `json:"available"`
		Rating         float64 `json:"rating"`
		CompletedCount int     `json:"completed_count"`
		AssignedCount  int     `json:"assigned_count"`
		CurrentLoad    int     `json:"current_load"`
	}

	response := make([]courierRow, len(rows))
	for i, row := range rows {
		response[i] = courierRow{
			ID:             row.ID.String(),
			Name:           row.Name,
			VehicleType:    row.VehicleType,
			Active:         row.Active,
			Available:      row.Available,
			Rating:         row.Rating,
			CompletedCount: row.CompletedCount,
			AssignedCount:  row.AssignedCount,
			CurrentLoad:    row.CurrentLoad,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ReportCourierStatus handles POST /api/v1/couriers/:id/status - heartbeat.
func (s *Server) ReportCourierStatus(ctx echo.Context) error {
	courierID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid courier id")
	}

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Available bool    `json:"available"`
	}
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewReportCourierStatusCommand(courierID, body.Latitude, body.Longitude, body.Available)
	if err != nil {
		return badRequest(ctx, "Invalid status data: "+err.Error())
	}

	if err = s.reportCourierStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return domainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

func toAddressParams(body addressBody) commands.AddressParams {
	return commands.AddressParams{
		Street:       body.Street,
		Zone:         body.Zone,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
	}
}

func parseActor(actorType, actorID string) (delivery.Actor, error) {
	parsed, err := delivery.ActorTypeFromString(actorType)
	if err != nil {
		return delivery.Actor{}, err
	}

	switch parsed {
	case delivery.ActorSystem:
		return delivery.SystemActor(), nil
	case delivery.ActorOperator, delivery.ActorCourier:
		id, idErr := kernel.UUIDFromString(actorID)
		if idErr != nil {
			return delivery.Actor{}, idErr
		}
		if parsed == delivery.ActorOperator {
			return delivery.OperatorActor(id), nil
		}
		return delivery.CourierActor(id), nil
	default:
		return delivery.Actor{}, errs.NewValueIsInvalidError("actorType")
	}
}

// domainError maps domain and application errors onto HTTP status codes.
// 404 for unknown aggregates, 409 for state and version conflicts, 403 for
// actor violations, 422 for requests that are well-formed but unservable.
func domainError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respond(ctx, http.StatusNotFound, err)
	case errors.Is(err, delivery.ErrAlreadyClaimed),
		errors.Is(err, delivery.ErrIllegalTransition),
		errors.Is(err, delivery.ErrAlreadyTerminal),
		errors.Is(err, errs.ErrConcurrencyConflict):
		return respond(ctx, http.StatusConflict, err)
	case errors.Is(err, delivery.ErrNotAssignedCourier),
		errors.Is(err, delivery.ErrActorNotAllowed):
		return respond(ctx, http.StatusForbidden, err)
	case errors.Is(err, services.ErrUnknownZone),
		errors.Is(err, commands.ErrCourierNotEligible):
		return respond(ctx, http.StatusUnprocessableEntity, err)
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return respond(ctx, http.StatusBadRequest, err)
	default:
		return respond(ctx, http.StatusInternalServerError, err)
	}
}

func respond(ctx echo.Context, code int, err error) error {
	return ctx.JSON(code, apiError{Code: code, Message: err.Error()})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, apiError{Code: http.StatusBadRequest, Message: message})
}

func internalError(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusInternalServerError, apiError{Code: http.StatusInternalServerError, Message: message})
}
