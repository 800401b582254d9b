package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventRepository using PostgreSQL with pgxpool
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `
	id, title, description, date, location, price,
	total_tickets, available_tickets, status, created_by,
	created_at, updated_at
`

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", event.ID.String()),
		attribute.Int("total_tickets", event.TotalTickets),
	)

	query := `
		INSERT INTO events (
			id, title, description, date, location, price,
			total_tickets, available_tickets, status, created_by,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12
		)
	`

	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.Price,
		event.TotalTickets,
		event.AvailableTickets,
		event.Status.String(),
		event.CreatedBy,
		event.CreatedAt,
		event.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves an event by its ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return event, nil
}

// List retrieves events, newest first
func (r *PostgresEventRepository) List(ctx context.Context, filter EventFilter) ([]*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.list")
	defer span.End()

	query := `SELECT ` + eventColumns + ` FROM events`
	args := []any{}
	if filter.Status != nil {
		query += ` WHERE status = $1`
		args = append(args, filter.Status.String())
	}
	query += fmt.Sprintf(` ORDER BY date ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEventRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(events)))
	span.SetStatus(codes.Ok, "")
	return events, nil
}

// Update updates an event's editable fields
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", event.ID.String()))

	query := `
		UPDATE events SET
			title = $2,
			description = $3,
			date = $4,
			location = $5,
			price = $6,
			updated_at = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Date,
		event.Location,
		event.Price,
		time.Now(),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UpdateStatus updates only the status of an event
func (r *PostgresEventRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EventStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", id.String()),
		attribute.String("status", status.String()),
	)

	query := `
		UPDATE events SET
			status = $2,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, status.String(), time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update event status: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete deletes an event by its ID
func (r *PostgresEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.delete")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	query := `DELETE FROM events WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// TryReserve atomically takes one ticket from the event's inventory.
// The predicate carries the whole reservation rule, so under contention
// exactly available_tickets callers can win. A miss returns (nil, nil)
// and says nothing about why; the service re-reads the event to diagnose.
func (r *PostgresEventRepository) TryReserve(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.try_reserve")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	query := `
		UPDATE events SET
			available_tickets = available_tickets - 1,
			updated_at = $2
		WHERE id = $1
			AND status = 'published'
			AND available_tickets > 0
		RETURNING ` + eventColumns

	event, err := scanEventRow(r.pool.QueryRow(ctx, query, id, time.Now()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "no ticket reserved")
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to reserve ticket: %w", err)
	}

	span.SetAttributes(attribute.Int("available_tickets", event.AvailableTickets))
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Release returns one ticket to the event's inventory. Unlike TryReserve
// it is unconditional; a zero-row result means the event row is gone,
// which is surfaced, never swallowed.
func (r *PostgresEventRepository) Release(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.release")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", id.String()))

	query := `
		UPDATE events SET
			available_tickets = available_tickets + 1,
			updated_at = $2
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to release ticket: %w", err)
	}

	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return domain.ErrEventNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// scanEventRow scans a single row into an Event struct
func scanEventRow(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	var status string

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Date,
		&event.Location,
		&event.Price,
		&event.TotalTickets,
		&event.AvailableTickets,
		&status,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Status = domain.EventStatus(status)
	return event, nil
}

// Ensure PostgresEventRepository implements EventRepository
var _ EventRepository = (*PostgresEventRepository)(nil)
