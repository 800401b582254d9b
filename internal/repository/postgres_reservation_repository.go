package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresReservationRepository implements ReservationRepository using PostgreSQL with pgxpool
type PostgresReservationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReservationRepository creates a new PostgresReservationRepository
func NewPostgresReservationRepository(pool *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{pool: pool}
}

const reservationColumns = `
	id, event_id, user_id, status, ticket_code, created_at, updated_at
`

// Create inserts a new reservation. A violation of the active-reservation
// unique index is mapped to ErrDuplicateReservation so the service can
// compensate the inventory decrement.
func (r *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", reservation.ID.String()),
		attribute.String("event_id", reservation.EventID.String()),
		attribute.String("user_id", reservation.UserID.String()),
	)

	query := `
		INSERT INTO reservations (
			id, event_id, user_id, status, ticket_code, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.pool.Exec(ctx, query,
		reservation.ID,
		reservation.EventID,
		reservation.UserID,
		reservation.Status.String(),
		reservation.TicketCode,
		reservation.CreatedAt,
		reservation.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "duplicate active reservation")
			return domain.ErrDuplicateReservation
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a reservation by its ID
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("reservation_id", id.String()))

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	reservation, err := scanReservationRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrReservationNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return reservation, nil
}

// FindActive retrieves the user's pending or confirmed reservation for an event
func (r *PostgresReservationRepository) FindActive(ctx context.Context, eventID, userID uuid.UUID) (*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.find_active")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID.String()),
		attribute.String("user_id", userID.String()),
	)

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_id = $1 AND user_id = $2 AND status IN ('pending', 'confirmed')
	`

	reservation, err := scanReservationRow(r.pool.QueryRow(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return nil, nil // Not found, but not an error
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find active reservation: %w", err)
	}

	span.SetAttributes(attribute.String("reservation_id", reservation.ID.String()))
	span.SetStatus(codes.Ok, "")
	return reservation, nil
}

// List retrieves reservations matching the filter, newest first
func (r *PostgresReservationRepository) List(ctx context.Context, filter ReservationFilter) ([]*domain.Reservation, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation.list")
	defer span.End()

	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE 1=1`
	args := []any{}

	if filter.EventID != nil {
		args = append(args, *filter.EventID)
		query += fmt.Sprintf(` AND event_id = $%d`, len(args))
	}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if filter.Status != nil {
		args = append(args, filter.Status.String())
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservationRow(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(reservations)))
	span.SetStatus(codes.Ok, "")
	return reservations, nil
}

// Confirm transitions a reservation from pending to confirmed
func (r *PostgresReservationRepository) Confirm(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, "confirm", id,
		domain.ReservationStatusConfirmed, domain.ReservationStatusPending)
}

// Refuse transitions a reservation from pending to refused
func (r *PostgresReservationRepository) Refuse(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, "refuse", id,
		domain.ReservationStatusRefused, domain.ReservationStatusPending)
}

// Cancel transitions a reservation from pending or confirmed to cancelled
func (r *PostgresReservationRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, "cancel", id,
		domain.ReservationStatusCancelled,
		domain.ReservationStatusPending, domain.ReservationStatusConfirmed)
}

// transition runs a guarded status UPDATE. The predicate carries the
// allowed source statuses, so the check and the write are one atomic
// statement. On a zero-row result the current status is re-read to
// report why the transition was refused.
func (r *PostgresReservationRepository) transition(ctx context.Context, action string, id uuid.UUID, to domain.ReservationStatus, from ...domain.ReservationStatus) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.reservation."+action)
	defer span.End()

	span.SetAttributes(
		attribute.String("reservation_id", id.String()),
		attribute.String("status", to.String()),
	)

	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = s.String()
	}

	query := `
		UPDATE reservations SET
			status = $2,
			updated_at = $3
		WHERE id = $1 AND status = ANY($4)
	`

	result, err := r.pool.Exec(ctx, query, id, to.String(), time.Now(), fromStatuses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to %s reservation: %w", action, err)
	}

	if result.RowsAffected() == 0 {
		// Check if reservation exists and its status
		var current string
		err := r.pool.QueryRow(ctx, "SELECT status FROM reservations WHERE id = $1", id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				span.SetStatus(codes.Error, "not found")
				return domain.ErrReservationNotFound
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to check reservation status: %w", err)
		}
		if action == "cancel" && current == domain.ReservationStatusCancelled.String() {
			span.SetStatus(codes.Error, "already cancelled")
			return domain.ErrAlreadyCancelled
		}
		span.SetStatus(codes.Error, "invalid transition")
		return &domain.InvalidTransitionError{Action: action, Current: domain.ReservationStatus(current)}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// scanReservationRow scans a single row into a Reservation struct
func scanReservationRow(row pgx.Row) (*domain.Reservation, error) {
	reservation := &domain.Reservation{}
	var status string

	err := row.Scan(
		&reservation.ID,
		&reservation.EventID,
		&reservation.UserID,
		&status,
		&reservation.TicketCode,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Status = domain.ReservationStatus(status)
	return reservation, nil
}

// Ensure PostgresReservationRepository implements ReservationRepository
var _ ReservationRepository = (*PostgresReservationRepository)(nil)
