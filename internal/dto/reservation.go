package dto

import (
	"time"

	"github.com/ticketa/ticketa/internal/domain"
)

// CreateReservationRequest is the request body for creating a reservation
type CreateReservationRequest struct {
	EventID string `json:"event_id" binding:"required,uuid"`
}

// ReservationResponse is the API representation of a reservation
type ReservationResponse struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	TicketCode string    `json:"ticket_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewReservationResponse maps a domain reservation to its API representation
func NewReservationResponse(r *domain.Reservation) *ReservationResponse {
	return &ReservationResponse{
		ID:         r.ID.String(),
		EventID:    r.EventID.String(),
		UserID:     r.UserID.String(),
		Status:     r.Status.String(),
		TicketCode: r.TicketCode,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// NewReservationResponses maps a slice of reservations
func NewReservationResponses(reservations []*domain.Reservation) []*ReservationResponse {
	out := make([]*ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, NewReservationResponse(r))
	}
	return out
}

// ListReservationsQuery holds query parameters for listing reservations.
// The user_id filter only applies to admin callers; participants are
// always scoped to their own reservations.
type ListReservationsQuery struct {
	EventID  string `form:"event_id" binding:"omitempty,uuid"`
	UserID   string `form:"user_id" binding:"omitempty,uuid"`
	Status   string `form:"status"`
	Page     int    `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,gte=1,lte=100"`
}
