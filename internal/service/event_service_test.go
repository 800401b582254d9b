package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/internal/dto"
	"github.com/ticketa/ticketa/internal/repository"
)

func TestEventService_CreateEvent(t *testing.T) {
	validReq := func() *dto.CreateEventRequest {
		return &dto.CreateEventRequest{
			Title:        "Summer Concert",
			Description:  "Open air concert",
			Date:         time.Now().Add(30 * 24 * time.Hour),
			Location:     "City Park",
			Price:        45.00,
			TotalTickets: 500,
		}
	}

	t.Run("admin creates draft with full inventory", func(t *testing.T) {
		var created *domain.Event
		eventRepo := &MockEventRepository{
			CreateFunc: func(ctx context.Context, event *domain.Event) error {
				created = event
				return nil
			},
		}
		svc := NewEventService(eventRepo)

		resp, err := svc.CreateEvent(context.Background(), admin(), validReq())
		if err != nil {
			t.Fatalf("CreateEvent() unexpected error = %v", err)
		}

		if resp.Status != string(domain.EventStatusDraft) {
			t.Errorf("status = %s, want draft", resp.Status)
		}
		if created.AvailableTickets != created.TotalTickets {
			t.Errorf("available = %d, want %d", created.AvailableTickets, created.TotalTickets)
		}
	})

	t.Run("participant is forbidden", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{})

		_, err := svc.CreateEvent(context.Background(), participant(uuid.New()), validReq())
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("CreateEvent() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("zero tickets rejected", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{})

		req := validReq()
		req.TotalTickets = 0
		_, err := svc.CreateEvent(context.Background(), admin(), req)
		if !errors.Is(err, domain.ErrInvalidTotalTickets) {
			t.Errorf("CreateEvent() error = %v, want ErrInvalidTotalTickets", err)
		}
	})
}

func TestEventService_GetEvent_DraftVisibility(t *testing.T) {
	eventID := uuid.New()

	draft := testEvent(eventID, 100)
	draft.Status = domain.EventStatusDraft

	eventRepo := &MockEventRepository{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			return draft, nil
		},
	}
	svc := NewEventService(eventRepo)

	if _, err := svc.GetEvent(context.Background(), admin(), eventID); err != nil {
		t.Errorf("admin GetEvent() error = %v, want nil", err)
	}

	// Participants must not learn that the draft exists.
	_, err := svc.GetEvent(context.Background(), participant(uuid.New()), eventID)
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Errorf("participant GetEvent() error = %v, want ErrEventNotFound", err)
	}
}

func TestEventService_ListEvents_ParticipantSeesOnlyPublished(t *testing.T) {
	var captured repository.EventFilter
	eventRepo := &MockEventRepository{
		ListFunc: func(ctx context.Context, filter repository.EventFilter) ([]*domain.Event, error) {
			captured = filter
			return []*domain.Event{}, nil
		},
	}
	svc := NewEventService(eventRepo)

	// Participant's status filter is forced to published.
	_, err := svc.ListEvents(context.Background(), participant(uuid.New()),
		&dto.ListEventsQuery{Status: "draft"})
	if err != nil {
		t.Fatalf("ListEvents() unexpected error = %v", err)
	}
	if captured.Status == nil || *captured.Status != domain.EventStatusPublished {
		t.Errorf("filter.Status = %v, want published", captured.Status)
	}

	// Admin may filter by any valid status.
	_, err = svc.ListEvents(context.Background(), admin(),
		&dto.ListEventsQuery{Status: "draft"})
	if err != nil {
		t.Fatalf("ListEvents() unexpected error = %v", err)
	}
	if captured.Status == nil || *captured.Status != domain.EventStatusDraft {
		t.Errorf("filter.Status = %v, want draft", captured.Status)
	}

	// Invalid admin status filter is rejected.
	_, err = svc.ListEvents(context.Background(), admin(),
		&dto.ListEventsQuery{Status: "bogus"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("ListEvents() error = %v, want ErrInvalidStatus", err)
	}
}

func TestEventService_ListEvents_Pagination(t *testing.T) {
	var captured repository.EventFilter
	eventRepo := &MockEventRepository{
		ListFunc: func(ctx context.Context, filter repository.EventFilter) ([]*domain.Event, error) {
			captured = filter
			return []*domain.Event{}, nil
		},
	}
	svc := NewEventService(eventRepo)

	_, err := svc.ListEvents(context.Background(), admin(),
		&dto.ListEventsQuery{Page: 3, PageSize: 10})
	if err != nil {
		t.Fatalf("ListEvents() unexpected error = %v", err)
	}
	if captured.Limit != 10 {
		t.Errorf("filter.Limit = %d, want 10", captured.Limit)
	}
	if captured.Offset != 20 {
		t.Errorf("filter.Offset = %d, want 20", captured.Offset)
	}
}

func TestEventService_UpdateEvent(t *testing.T) {
	eventID := uuid.New()

	t.Run("partial update touches only provided fields", func(t *testing.T) {
		var updated *domain.Event
		eventRepo := &MockEventRepository{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
				return testEvent(id, 80), nil
			},
			UpdateFunc: func(ctx context.Context, event *domain.Event) error {
				updated = event
				return nil
			},
		}
		svc := NewEventService(eventRepo)

		newTitle := "Renamed Event"
		_, err := svc.UpdateEvent(context.Background(), admin(), eventID,
			&dto.UpdateEventRequest{Title: &newTitle})
		if err != nil {
			t.Fatalf("UpdateEvent() unexpected error = %v", err)
		}

		if updated.Title != newTitle {
			t.Errorf("title = %s, want %s", updated.Title, newTitle)
		}
		if updated.Location != "Test Hall" {
			t.Errorf("location = %s, want unchanged", updated.Location)
		}
	})

	t.Run("participant is forbidden", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{})

		title := "x"
		_, err := svc.UpdateEvent(context.Background(), participant(uuid.New()), eventID,
			&dto.UpdateEventRequest{Title: &title})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("UpdateEvent() error = %v, want ErrForbidden", err)
		}
	})
}

func TestEventService_PublishAndCancel(t *testing.T) {
	eventID := uuid.New()

	var lastStatus domain.EventStatus
	eventRepo := &MockEventRepository{
		UpdateStatusFunc: func(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
			lastStatus = status
			return nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
			event := testEvent(id, 100)
			event.Status = lastStatus
			return event, nil
		},
	}
	svc := NewEventService(eventRepo)

	resp, err := svc.PublishEvent(context.Background(), admin(), eventID)
	if err != nil {
		t.Fatalf("PublishEvent() unexpected error = %v", err)
	}
	if resp.Status != string(domain.EventStatusPublished) {
		t.Errorf("status = %s, want published", resp.Status)
	}

	resp, err = svc.CancelEvent(context.Background(), admin(), eventID)
	if err != nil {
		t.Fatalf("CancelEvent() unexpected error = %v", err)
	}
	if resp.Status != string(domain.EventStatusCanceled) {
		t.Errorf("status = %s, want canceled", resp.Status)
	}

	if _, err := svc.PublishEvent(context.Background(), participant(uuid.New()), eventID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("participant PublishEvent() error = %v, want ErrForbidden", err)
	}
}

func TestEventService_DeleteEvent(t *testing.T) {
	eventID := uuid.New()

	t.Run("admin deletes", func(t *testing.T) {
		deleted := false
		eventRepo := &MockEventRepository{
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				deleted = true
				return nil
			},
		}
		svc := NewEventService(eventRepo)

		if err := svc.DeleteEvent(context.Background(), admin(), eventID); err != nil {
			t.Fatalf("DeleteEvent() unexpected error = %v", err)
		}
		if !deleted {
			t.Error("DeleteEvent() did not reach the repository")
		}
	})

	t.Run("participant is forbidden", func(t *testing.T) {
		svc := NewEventService(&MockEventRepository{})

		err := svc.DeleteEvent(context.Background(), participant(uuid.New()), eventID)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("DeleteEvent() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("missing event error propagates", func(t *testing.T) {
		eventRepo := &MockEventRepository{
			DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
				return domain.ErrEventNotFound
			},
		}
		svc := NewEventService(eventRepo)

		err := svc.DeleteEvent(context.Background(), admin(), eventID)
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Errorf("DeleteEvent() error = %v, want ErrEventNotFound", err)
		}
	})
}
