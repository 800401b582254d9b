package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/internal/dto"
	"github.com/ticketa/ticketa/internal/service"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ReservationHandler handles reservation HTTP requests
type ReservationHandler struct {
	reservationService service.ReservationService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// CreateReservation handles POST /reservations
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", principal.UserID.String()),
		attribute.String("event_id", req.EventID),
	)

	result, err := h.reservationService.CreateReservation(ctx, principal, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("reservation_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetReservation handles GET /reservations/:id
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := reservationIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid reservation id")
		return
	}

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	result, err := h.reservationService.GetReservation(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ListReservations handles GET /reservations
func (h *ReservationHandler) ListReservations(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var query dto.ListReservationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid query",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	result, err := h.reservationService.ListReservations(ctx, principal, &query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Data:    result,
	})
}

// ConfirmReservation handles PATCH /reservations/:id/confirm
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	h.transition(c, "confirm", h.reservationService.ConfirmReservation)
}

// RefuseReservation handles PATCH /reservations/:id/refuse
func (h *ReservationHandler) RefuseReservation(c *gin.Context) {
	h.transition(c, "refuse", h.reservationService.RefuseReservation)
}

// CancelReservation handles DELETE /reservations/:id
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	h.transition(c, "cancel", h.reservationService.CancelReservation)
}

func (h *ReservationHandler) transition(c *gin.Context, action string, fn func(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error)) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation."+action)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := reservationIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid reservation id")
		return
	}

	span.SetAttributes(
		attribute.String("reservation_id", id.String()),
		attribute.String("user_id", principal.UserID.String()),
	)

	result, err := fn(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// IssueTicket handles GET /reservations/:id/pdf
func (h *ReservationHandler) IssueTicket(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.reservation.issue_ticket")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := reservationIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid reservation id")
		return
	}

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	document, err := h.reservationService.IssueTicket(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("document_bytes", len(document)))
	span.SetStatus(codes.Ok, "")

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ticket-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", document)
}

// reservationIDParam parses the :id path parameter, writing the error
// response itself when the id is not a UUID
func reservationIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: domain.ErrInvalidReservationID.Error(),
			Code:  "INVALID_RESERVATION_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}

// handleError converts domain errors to HTTP responses. Business-rule
// rejections are all 400s with distinct codes; cross-user access reads
// the same as any other rejection so reservation ids stay unguessable.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrReservationNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case errors.Is(err, domain.ErrEventNotPublished):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "EVENT_NOT_PUBLISHED",
		})
	case errors.Is(err, domain.ErrSoldOut):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "SOLD_OUT",
		})
	case errors.Is(err, domain.ErrDuplicateReservation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "DUPLICATE_RESERVATION",
		})
	case errors.Is(err, domain.ErrAlreadyCancelled):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "ALREADY_CANCELLED",
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_TRANSITION",
		})
	case errors.Is(err, domain.ErrTicketNotConfirmed):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "TICKET_NOT_CONFIRMED",
		})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "FORBIDDEN",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
