package metrics

import (
	"context"
	"sync"

	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Reservation counters
	ReservationsCreated   *telemetry.Counter
	ReservationsConfirmed *telemetry.Counter
	ReservationsRefused   *telemetry.Counter
	ReservationsCancelled *telemetry.Counter
	ReservationsRejected  *telemetry.Counter

	// Ticket counters
	TicketsIssued *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	// Gauges
	ActiveReservations *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all reservation metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	ReservationsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_creations_total",
		Description: "Total number of reservations created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_confirmations_total",
		Description: "Total number of reservations confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsRefused, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_refusals_total",
		Description: "Total number of reservations refused",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_cancellations_total",
		Description: "Total number of reservations cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ReservationsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "reservation_rejections_total",
		Description: "Total number of reservation attempts rejected by business rules",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsIssued, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "ticket_documents_issued_total",
		Description: "Total number of ticket documents issued",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	// Request duration histogram for latency tracking (p50, p90, p99)
	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "reservation_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveReservations, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "reservation_active",
		Description: "Current number of active (pending or confirmed) reservations",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordCreation records a created reservation
func RecordCreation(ctx context.Context, eventID string) {
	if ReservationsCreated != nil {
		ReservationsCreated.Inc(ctx, attribute.String("event_id", eventID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Inc(ctx)
	}
}

// RecordConfirmation records a confirmed reservation
func RecordConfirmation(ctx context.Context, eventID string) {
	if ReservationsConfirmed != nil {
		ReservationsConfirmed.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordRefusal records a refused reservation
func RecordRefusal(ctx context.Context, eventID string) {
	if ReservationsRefused != nil {
		ReservationsRefused.Inc(ctx, attribute.String("event_id", eventID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Dec(ctx)
	}
}

// RecordCancellation records a cancelled reservation
func RecordCancellation(ctx context.Context, eventID string) {
	if ReservationsCancelled != nil {
		ReservationsCancelled.Inc(ctx, attribute.String("event_id", eventID))
	}
	if ActiveReservations != nil {
		ActiveReservations.Dec(ctx)
	}
}

// RecordRejection records a reservation attempt rejected by a business rule
func RecordRejection(ctx context.Context, eventID, reason string) {
	if ReservationsRejected != nil {
		ReservationsRejected.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordTicketIssued records an issued ticket document
func RecordTicketIssued(ctx context.Context, eventID string) {
	if TicketsIssued != nil {
		TicketsIssued.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
