package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
)

// EventFilter holds optional filters for listing events
type EventFilter struct {
	Status *domain.EventStatus
	Limit  int
	Offset int
}

// ReservationFilter holds optional filters for listing reservations
type ReservationFilter struct {
	EventID *uuid.UUID
	UserID  *uuid.UUID
	Status  *domain.ReservationStatus
	Limit   int
	Offset  int
}

// EventRepository defines the interface for event persistence and the
// ticket-inventory counters that live on the events table
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error
	Delete(ctx context.Context, id uuid.UUID) error

	// TryReserve atomically decrements available_tickets by one, but only
	// if the event is published and has tickets left. It returns the
	// updated event, or (nil, nil) when no row matched; the caller is
	// expected to re-read the event to diagnose why.
	TryReserve(ctx context.Context, id uuid.UUID) (*domain.Event, error)

	// Release increments available_tickets by one. A missing event is an
	// error; release is only ever called for events a reservation points at.
	Release(ctx context.Context, id uuid.UUID) error
}

// ReservationRepository defines the interface for reservation persistence.
// The status transitions are guarded single-statement UPDATEs so the
// transition check cannot race with a concurrent writer.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)

	// FindActive returns the user's pending or confirmed reservation for
	// the event, or (nil, nil) when there is none.
	FindActive(ctx context.Context, eventID, userID uuid.UUID) (*domain.Reservation, error)

	List(ctx context.Context, filter ReservationFilter) ([]*domain.Reservation, error)

	Confirm(ctx context.Context, id uuid.UUID) error
	Refuse(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
}

// UserRepository reads user display data owned by the identity service
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}
