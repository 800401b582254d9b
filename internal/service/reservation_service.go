package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/internal/dto"
	"github.com/ticketa/ticketa/internal/metrics"
	"github.com/ticketa/ticketa/internal/repository"
	"github.com/ticketa/ticketa/pkg/logger"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ReservationService defines the interface for the reservation lifecycle
type ReservationService interface {
	// CreateReservation reserves one ticket for the caller on an event
	CreateReservation(ctx context.Context, principal domain.Principal, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)

	// GetReservation retrieves a reservation, enforcing ownership for participants
	GetReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error)

	// ListReservations lists reservations; participants only ever see their own
	ListReservations(ctx context.Context, principal domain.Principal, query *dto.ListReservationsQuery) ([]*dto.ReservationResponse, error)

	// ConfirmReservation transitions pending -> confirmed (admin)
	ConfirmReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error)

	// RefuseReservation transitions pending -> refused and returns the ticket (admin)
	RefuseReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error)

	// CancelReservation transitions pending or confirmed -> cancelled and
	// returns the ticket (owner or admin)
	CancelReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error)

	// IssueTicket renders the PDF ticket document for a confirmed reservation
	IssueTicket(ctx context.Context, principal domain.Principal, id uuid.UUID) ([]byte, error)
}

// reservationService implements ReservationService
type reservationService struct {
	eventRepo       repository.EventRepository
	reservationRepo repository.ReservationRepository
	userRepo        repository.UserRepository
	renderer        TicketRenderer
	publisher       EventPublisher
}

// NewReservationService creates a new reservation service
func NewReservationService(
	eventRepo repository.EventRepository,
	reservationRepo repository.ReservationRepository,
	userRepo repository.UserRepository,
	renderer TicketRenderer,
	publisher EventPublisher,
) ReservationService {
	if renderer == nil {
		renderer = NewPDFTicketRenderer()
	}
	if publisher == nil {
		publisher = NewNoOpEventPublisher()
	}
	return &reservationService{
		eventRepo:       eventRepo,
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		renderer:        renderer,
		publisher:       publisher,
	}
}

// CreateReservation reserves one ticket for the caller on an event.
//
// The flow is: duplicate pre-check, atomic inventory decrement,
// reservation insert. The decrement is the only admission gate; a miss
// is diagnosed with a plain read. If the insert fails after the
// decrement succeeded, the ticket is put back before the error
// propagates, so inventory and reservations stay consistent.
func (s *reservationService) CreateReservation(ctx context.Context, principal domain.Principal, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.create")
	defer span.End()

	if req == nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(
		attribute.String("event_id", eventID.String()),
		attribute.String("user_id", principal.UserID.String()),
	)

	existing, err := s.reservationRepo.FindActive(ctx, eventID, principal.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if existing != nil {
		span.SetStatus(codes.Error, "duplicate active reservation")
		metrics.RecordRejection(ctx, eventID.String(), "duplicate")
		return nil, domain.ErrDuplicateReservation
	}

	event, err := s.eventRepo.TryReserve(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if event == nil {
		// The conditional UPDATE matched nothing. Re-read to find out why.
		reason, err := s.diagnoseReserveMiss(ctx, eventID)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRejection(ctx, eventID.String(), reason)
		return nil, err
	}

	now := time.Now()
	reservation := &domain.Reservation{
		ID:         uuid.New(),
		EventID:    eventID,
		UserID:     principal.UserID,
		Status:     domain.ReservationStatusPending,
		TicketCode: domain.NewTicketCode(eventID, principal.UserID, now),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.reservationRepo.Create(ctx, reservation); err != nil {
		// Put the ticket back before reporting the failure.
		if releaseErr := s.eventRepo.Release(ctx, eventID); releaseErr != nil {
			logger.Get().Error("failed to release ticket after insert failure",
				zap.String("event_id", eventID.String()),
				zap.Error(releaseErr),
			)
			span.RecordError(releaseErr)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordCreation(ctx, eventID.String())
	s.publish(ctx, "created", reservation, s.publisher.PublishReservationCreated)

	span.SetAttributes(attribute.String("reservation_id", reservation.ID.String()))
	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponse(reservation), nil
}

// diagnoseReserveMiss explains why the conditional decrement matched no
// row. The answer can be stale by the time it is returned; it is a
// diagnosis, never an admission decision.
func (s *reservationService) diagnoseReserveMiss(ctx context.Context, eventID uuid.UUID) (string, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return "event_not_found", domain.ErrEventNotFound
		}
		return "error", err
	}
	if !event.IsPublished() {
		return "not_published", domain.ErrEventNotPublished
	}
	return "sold_out", domain.ErrSoldOut
}

// GetReservation retrieves a reservation by ID
func (s *reservationService) GetReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.get")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !principal.IsAdmin() && !reservation.BelongsTo(principal.UserID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponse(reservation), nil
}

// ListReservations lists reservations matching the query
func (s *reservationService) ListReservations(ctx context.Context, principal domain.Principal, query *dto.ListReservationsQuery) ([]*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.list")
	defer span.End()

	filter, err := buildReservationFilter(principal, query)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	reservations, err := s.reservationRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponses(reservations), nil
}

// buildReservationFilter translates the query into a repository filter.
// A participant's filter is always pinned to their own user id, whatever
// the query says.
func buildReservationFilter(principal domain.Principal, query *dto.ListReservationsQuery) (repository.ReservationFilter, error) {
	filter := repository.ReservationFilter{Limit: 20}
	if query == nil {
		query = &dto.ListReservationsQuery{}
	}

	if query.EventID != "" {
		eventID, err := uuid.Parse(query.EventID)
		if err != nil {
			return filter, domain.ErrInvalidEventID
		}
		filter.EventID = &eventID
	}

	if principal.IsAdmin() {
		if query.UserID != "" {
			userID, err := uuid.Parse(query.UserID)
			if err != nil {
				return filter, domain.ErrInvalidUserID
			}
			filter.UserID = &userID
		}
	} else {
		userID := principal.UserID
		filter.UserID = &userID
	}

	if query.Status != "" {
		status := domain.ReservationStatus(query.Status)
		if !status.IsValid() {
			return filter, domain.ErrInvalidStatus
		}
		filter.Status = &status
	}

	if query.PageSize > 0 {
		filter.Limit = query.PageSize
	}
	if query.Page > 1 {
		filter.Offset = (query.Page - 1) * filter.Limit
	}

	return filter, nil
}

// ConfirmReservation transitions a pending reservation to confirmed
func (s *reservationService) ConfirmReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.confirm")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.reservationRepo.Confirm(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	// The guarded UPDATE is the source of truth; the in-memory copy goes
	// through the same domain guard so the two can never disagree.
	if err := reservation.Confirm(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reservation.UpdatedAt = time.Now()

	metrics.RecordConfirmation(ctx, reservation.EventID.String())
	s.publish(ctx, "confirmed", reservation, s.publisher.PublishReservationConfirmed)

	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponse(reservation), nil
}

// RefuseReservation transitions a pending reservation to refused and
// returns its ticket to the event's inventory. The guarded status
// change lands first; releasing after a persisted transition can only
// under-count, never oversell.
func (s *reservationService) RefuseReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.refuse")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	if !principal.IsAdmin() {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.reservationRepo.Refuse(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := reservation.Refuse(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reservation.UpdatedAt = time.Now()

	if err := s.eventRepo.Release(ctx, reservation.EventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordRefusal(ctx, reservation.EventID.String())
	s.publish(ctx, "refused", reservation, s.publisher.PublishReservationRefused)

	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponse(reservation), nil
}

// CancelReservation transitions a pending or confirmed reservation to
// cancelled and returns its ticket to the event's inventory
func (s *reservationService) CancelReservation(ctx context.Context, principal domain.Principal, id uuid.UUID) (*dto.ReservationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.cancel")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !principal.IsAdmin() && !reservation.BelongsTo(principal.UserID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if err := s.reservationRepo.Cancel(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := reservation.Cancel(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	reservation.UpdatedAt = time.Now()

	if err := s.eventRepo.Release(ctx, reservation.EventID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordCancellation(ctx, reservation.EventID.String())
	s.publish(ctx, "cancelled", reservation, s.publisher.PublishReservationCancelled)

	span.SetStatus(codes.Ok, "")
	return dto.NewReservationResponse(reservation), nil
}

// IssueTicket renders the PDF ticket document for a confirmed reservation
func (s *reservationService) IssueTicket(ctx context.Context, principal domain.Principal, id uuid.UUID) ([]byte, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.reservation.issue_ticket")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !principal.IsAdmin() && !reservation.BelongsTo(principal.UserID) {
		span.SetStatus(codes.Error, "forbidden")
		return nil, domain.ErrForbidden
	}

	if reservation.Status != domain.ReservationStatusConfirmed {
		span.SetStatus(codes.Error, "not confirmed")
		return nil, domain.ErrTicketNotConfirmed
	}

	event, err := s.eventRepo.GetByID(ctx, reservation.EventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, reservation.UserID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	document, err := s.renderer.Render(ctx, reservation, event, user)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	metrics.RecordTicketIssued(ctx, reservation.EventID.String())

	span.SetAttributes(attribute.Int("document_bytes", len(document)))
	span.SetStatus(codes.Ok, "")
	return document, nil
}

// publish emits a lifecycle event. Publish failures are logged and do
// not fail the request; the state change has already been persisted.
func (s *reservationService) publish(ctx context.Context, name string, reservation *domain.Reservation, fn func(context.Context, *domain.Reservation) error) {
	if err := fn(ctx, reservation); err != nil {
		logger.Get().Warn("failed to publish reservation event",
			zap.String("event", name),
			zap.String("reservation_id", reservation.ID.String()),
			zap.Error(err),
		)
	}
}
