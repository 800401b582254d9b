package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationEventType identifies a lifecycle change published to Kafka
type ReservationEventType string

const (
	ReservationCreated   ReservationEventType = "reservation.created"
	ReservationConfirmed ReservationEventType = "reservation.confirmed"
	ReservationRefused   ReservationEventType = "reservation.refused"
	ReservationCancelled ReservationEventType = "reservation.cancelled"
)

// ReservationEvent is the message emitted after a successful lifecycle
// mutation. Messages are keyed by EventID so changes for the same
// ticketed event stay ordered on one partition.
type ReservationEvent struct {
	ID            uuid.UUID            `json:"id"`
	Type          ReservationEventType `json:"type"`
	ReservationID uuid.UUID            `json:"reservation_id"`
	EventID       uuid.UUID            `json:"event_id"`
	UserID        uuid.UUID            `json:"user_id"`
	Status        ReservationStatus    `json:"status"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// NewReservationEvent builds a lifecycle event for a reservation
func NewReservationEvent(t ReservationEventType, r *Reservation) ReservationEvent {
	return ReservationEvent{
		ID:            uuid.New(),
		Type:          t,
		ReservationID: r.ID,
		EventID:       r.EventID,
		UserID:        r.UserID,
		Status:        r.Status,
		OccurredAt:    time.Now().UTC(),
	}
}

// Key returns the Kafka partition key
func (e ReservationEvent) Key() string {
	return e.EventID.String()
}
