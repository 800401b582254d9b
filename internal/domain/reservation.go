package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReservationStatus represents the status of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusRefused   ReservationStatus = "refused"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// IsValid checks if the reservation status is valid
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusRefused, ReservationStatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the status still holds a ticket.
// Active reservations back the one-per-(event,user) uniqueness rule.
func (s ReservationStatus) IsActive() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

func (s ReservationStatus) String() string {
	return string(s)
}

// Reservation represents a user's claim on one ticket for an event
type Reservation struct {
	ID         uuid.UUID         `json:"id"`
	EventID    uuid.UUID         `json:"event_id"`
	UserID     uuid.UUID         `json:"user_id"`
	Status     ReservationStatus `json:"status"`
	TicketCode string            `json:"ticket_code"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// BelongsTo reports whether the reservation is owned by the given user
func (r *Reservation) BelongsTo(userID uuid.UUID) bool {
	return r.UserID == userID
}

// Confirm transitions pending -> confirmed
func (r *Reservation) Confirm() error {
	if r.Status != ReservationStatusPending {
		return &InvalidTransitionError{Action: "confirm", Current: r.Status}
	}
	r.Status = ReservationStatusConfirmed
	return nil
}

// Refuse transitions pending -> refused
func (r *Reservation) Refuse() error {
	if r.Status != ReservationStatusPending {
		return &InvalidTransitionError{Action: "refuse", Current: r.Status}
	}
	r.Status = ReservationStatusRefused
	return nil
}

// Cancel transitions pending or confirmed -> cancelled.
// Cancelling twice is reported as ErrAlreadyCancelled, not as a
// generic transition failure.
func (r *Reservation) Cancel() error {
	switch r.Status {
	case ReservationStatusCancelled:
		return ErrAlreadyCancelled
	case ReservationStatusPending, ReservationStatusConfirmed:
		r.Status = ReservationStatusCancelled
		return nil
	default:
		return &InvalidTransitionError{Action: "cancel", Current: r.Status}
	}
}

// NewTicketCode builds the human-readable ticket label printed on the
// PDF document. It is a display identifier, not a security token.
func NewTicketCode(eventID, userID uuid.UUID, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", eventID, userID, now.UnixMilli())
}
