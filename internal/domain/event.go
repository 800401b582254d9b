package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus represents the lifecycle status of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCanceled  EventStatus = "canceled"
)

// IsValid checks if the event status is valid
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCanceled:
		return true
	}
	return false
}

func (s EventStatus) String() string {
	return string(s)
}

// Event represents a ticketed event with its inventory counters
type Event struct {
	ID               uuid.UUID   `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Date             time.Time   `json:"date"`
	Location         string      `json:"location"`
	Price            float64     `json:"price"`
	TotalTickets     int         `json:"total_tickets"`
	AvailableTickets int         `json:"available_tickets"`
	Status           EventStatus `json:"status"`
	CreatedBy        uuid.UUID   `json:"created_by"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// IsPublished reports whether the event accepts reservations
func (e *Event) IsPublished() bool {
	return e.Status == EventStatusPublished
}

// SoldOut reports whether the event has no tickets left
func (e *Event) SoldOut() bool {
	return e.AvailableTickets <= 0
}
