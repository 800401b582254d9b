package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Event errors
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNotPublished = errors.New("event is not published")
	ErrSoldOut           = errors.New("no tickets available")

	// Reservation errors
	ErrReservationNotFound  = errors.New("reservation not found")
	ErrDuplicateReservation = errors.New("user already has an active reservation for this event")
	ErrInvalidTransition    = errors.New("invalid reservation status transition")
	ErrAlreadyCancelled     = errors.New("reservation already cancelled")
	ErrTicketNotConfirmed   = errors.New("ticket can only be issued for confirmed reservations")

	// Authorization errors
	ErrForbidden = errors.New("you cannot access this reservation")

	// Validation errors
	ErrInvalidEventID       = errors.New("invalid event id")
	ErrInvalidUserID        = errors.New("invalid user id")
	ErrInvalidReservationID = errors.New("invalid reservation id")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidStatus        = errors.New("invalid reservation status")
	ErrInvalidTotalTickets  = errors.New("total tickets must be at least one")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// InvalidTransitionError reports a rejected status transition together with
// the reservation's current status, so callers can tell why the transition
// was refused. It matches ErrInvalidTransition under errors.Is.
type InvalidTransitionError struct {
	Action  string
	Current ReservationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a reservation with status: %s", e.Action, e.Current)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidReservationID) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTotalTickets)
}

// IsConflictError checks if the error is a business-rule conflict
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateReservation) ||
		errors.Is(err, ErrSoldOut) ||
		errors.Is(err, ErrEventNotPublished) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrTicketNotConfirmed)
}
