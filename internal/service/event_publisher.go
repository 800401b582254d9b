package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ticketa/ticketa/internal/domain"
	"github.com/ticketa/ticketa/pkg/kafka"
)

// EventPublisher defines the interface for publishing reservation lifecycle events
type EventPublisher interface {
	// PublishReservationCreated publishes a reservation created event
	PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error

	// PublishReservationConfirmed publishes a reservation confirmed event
	PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error

	// PublishReservationRefused publishes a reservation refused event
	PublishReservationRefused(ctx context.Context, reservation *domain.Reservation) error

	// PublishReservationCancelled publishes a reservation cancelled event
	PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "reservation-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "reservation-service"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "reservation-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishReservationCreated publishes a reservation created event
func (p *KafkaEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationCreated, reservation)
}

// PublishReservationConfirmed publishes a reservation confirmed event
func (p *KafkaEventPublisher) PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationConfirmed, reservation)
}

// PublishReservationRefused publishes a reservation refused event
func (p *KafkaEventPublisher) PublishReservationRefused(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationRefused, reservation)
}

// PublishReservationCancelled publishes a reservation cancelled event
func (p *KafkaEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return p.publishEvent(ctx, domain.ReservationCancelled, reservation)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a reservation lifecycle event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.ReservationEventType, reservation *domain.Reservation) error {
	event := domain.NewReservationEvent(eventType, reservation)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     event.ID.String(),
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishReservationCreated is a no-op
func (p *NoOpEventPublisher) PublishReservationCreated(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishReservationConfirmed is a no-op
func (p *NoOpEventPublisher) PublishReservationConfirmed(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishReservationRefused is a no-op
func (p *NoOpEventPublisher) PublishReservationRefused(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// PublishReservationCancelled is a no-op
func (p *NoOpEventPublisher) PublishReservationCancelled(ctx context.Context, reservation *domain.Reservation) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
