package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/internal/dto"
	"github.com/ticketa/ticketa/internal/repository"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventService defines the interface for event management
type EventService interface {
	// CreateEvent creates a draft event (admin)
	CreateEvent(ctx context.Context, principal domain.Principal, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error)

	// ListEvents lists events; participants only see published ones
	ListEvents(ctx context.Context, principal domain.Principal, query *dto.ListEventsQuery) ([]*dto.EventResponse, error)

	// UpdateEvent updates an event's editable fields (admin)
	UpdateEvent(ctx context.Context, principal domain.Principal, id uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// PublishEvent transitions an event to published (admin)
	PublishEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error)

	// CancelEvent transitions an event to canceled (admin)
	CancelEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error)

	// DeleteEvent deletes an event (admin)
	DeleteEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) error
}

// eventService implements EventService
type eventService struct {
	eventRepo repository.EventRepository
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

// CreateEvent creates a draft event with a full inventory
func (s *eventService) CreateEvent(ctx context.Context, principal domain.Principal, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if req.TotalTickets < 1 {
		span.SetStatus(codes.Error, "invalid total tickets")
		return nil, domain.ErrInvalidTotalTickets
	}

	now := time.Now()
	event := &domain.Event{
		ID:               uuid.New(),
		Title:            req.Title,
		Description:      req.Description,
		Date:             req.Date,
		Location:         req.Location,
		Price:            req.Price,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		Status:           domain.EventStatusDraft,
		CreatedBy:        principal.UserID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID.String()))
	span.SetStatus(codes.Ok, "")
	return dto.NewEventResponse(event), nil
}

// GetEvent retrieves an event. Participants can only see published events.
func (s *eventService) GetEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.get")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !principal.IsAdmin() && !event.IsPublished() {
		// Drafts are invisible to participants.
		span.SetStatus(codes.Error, "not found")
		return nil, domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return dto.NewEventResponse(event), nil
}

// ListEvents lists events matching the query
func (s *eventService) ListEvents(ctx context.Context, principal domain.Principal, query *dto.ListEventsQuery) ([]*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.list")
	defer span.End()

	filter := repository.EventFilter{Limit: 20}
	if query == nil {
		query = &dto.ListEventsQuery{}
	}

	if principal.IsAdmin() {
		if query.Status != "" {
			status := domain.EventStatus(query.Status)
			if !status.IsValid() {
				span.SetStatus(codes.Error, "invalid status")
				return nil, domain.ErrInvalidStatus
			}
			filter.Status = &status
		}
	} else {
		published := domain.EventStatusPublished
		filter.Status = &published
	}

	if query.PageSize > 0 {
		filter.Limit = query.PageSize
	}
	if query.Page > 1 {
		filter.Offset = (query.Page - 1) * filter.Limit
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	out := make([]*dto.EventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, dto.NewEventResponse(event))
	}

	span.SetAttributes(attribute.Int("count", len(out)))
	span.SetStatus(codes.Ok, "")
	return out, nil
}

// UpdateEvent updates an event's editable fields
func (s *eventService) UpdateEvent(ctx context.Context, principal domain.Principal, id uuid.UUID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.NewEventResponse(event), nil
}

// PublishEvent opens an event for reservations
func (s *eventService) PublishEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error) {
	return s.setStatus(ctx, principal, id, domain.EventStatusPublished)
}

// CancelEvent closes an event for reservations
func (s *eventService) CancelEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.EventResponse, error) {
	return s.setStatus(ctx, principal, id, domain.EventStatusCanceled)
}

func (s *eventService) setStatus(ctx context.Context, principal domain.Principal, id uuid.UUID, status domain.EventStatus) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.set_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id.String()),
		attribute.String("status", status.String()),
	)

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, status); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return dto.NewEventResponse(event), nil
}

// DeleteEvent deletes an event
func (s *eventService) DeleteEvent(ctx context.Context, principal domain.Principal, id uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return domain.ErrForbidden
	}

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}
