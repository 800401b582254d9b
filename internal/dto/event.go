package dto

import (
	"time"

	"github.com/ticketa/ticketa/internal/domain"
)

// CreateEventRequest is the request body for creating an event
type CreateEventRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	Date         time.Time `json:"date" binding:"required"`
	Location     string    `json:"location" binding:"required"`
	Price        float64   `json:"price" binding:"gte=0"`
	TotalTickets int       `json:"total_tickets" binding:"required,gte=1"`
}

// UpdateEventRequest is the request body for updating an event.
// Inventory counters and status are not editable here; status moves
// through the publish and cancel endpoints.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Location    *string    `json:"location"`
	Price       *float64   `json:"price" binding:"omitempty,gte=0"`
}

// EventResponse is the API representation of an event
type EventResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Date             time.Time `json:"date"`
	Location         string    `json:"location"`
	Price            float64   `json:"price"`
	TotalTickets     int       `json:"total_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Status           string    `json:"status"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NewEventResponse maps a domain event to its API representation
func NewEventResponse(event *domain.Event) *EventResponse {
	return &EventResponse{
		ID:               event.ID.String(),
		Title:            event.Title,
		Description:      event.Description,
		Date:             event.Date,
		Location:         event.Location,
		Price:            event.Price,
		TotalTickets:     event.TotalTickets,
		AvailableTickets: event.AvailableTickets,
		Status:           event.Status.String(),
		CreatedBy:        event.CreatedBy.String(),
		CreatedAt:        event.CreatedAt,
		UpdatedAt:        event.UpdatedAt,
	}
}

// ListEventsQuery holds query parameters for listing events
type ListEventsQuery struct {
	Status   string `form:"status"`
	Page     int    `form:"page,default=1" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,gte=1,lte=100"`
}
