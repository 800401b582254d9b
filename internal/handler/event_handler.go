package handler

import (
	"context"
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

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var req dto.CreateEventRequest
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

	result, err := h.eventService.CreateEvent(ctx, principal, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("event_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// GetEvent handles GET /events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.get")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.String("event_id", id.String()))

	result, err := h.eventService.GetEvent(ctx, principal, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// ListEvents handles GET /events
func (h *EventHandler) ListEvents(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.list")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	var query dto.ListEventsQuery
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

	result, err := h.eventService.ListEvents(ctx, principal, &query)
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

// UpdateEvent handles PATCH /events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.update")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	var req dto.UpdateEventRequest
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

	span.SetAttributes(attribute.String("event_id", id.String()))

	result, err := h.eventService.UpdateEvent(ctx, principal, id, &req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// PublishEvent handles PATCH /events/:id/publish
func (h *EventHandler) PublishEvent(c *gin.Context) {
	h.setStatus(c, "publish", h.eventService.PublishEvent)
}

// CancelEvent handles PATCH /events/:id/cancel
func (h *EventHandler) CancelEvent(c *gin.Context) {
	h.setStatus(c, "cancel", h.eventService.CancelEvent)
}

func (h *EventHandler) setStatus(c *gin.Context, action string, fn func(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error)) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event."+action)
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.String("event_id", id.String()))

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

// DeleteEvent handles DELETE /events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.event.delete")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	principal, ok := principalFromContext(c)
	if !ok {
		span.SetStatus(codes.Error, "unauthorized")
		return
	}

	id, ok := eventIDParam(c)
	if !ok {
		span.SetStatus(codes.Error, "invalid event id")
		return
	}

	span.SetAttributes(attribute.String("event_id", id.String()))

	if err := h.eventService.DeleteEvent(ctx, principal, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.Status(http.StatusNoContent)
}

// eventIDParam parses the :id path parameter
func eventIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: domain.ErrInvalidEventID.Error(),
			Code:  "INVALID_EVENT_ID",
		})
		return uuid.Nil, false
	}
	return id, true
}
