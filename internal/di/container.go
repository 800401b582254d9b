package di

import (
	"github.com/ticketa/ticketa/internal/handler"
	"github.com/ticketa/ticketa/internal/repository"
	"github.com/ticketa/ticketa/internal/service"
	"github.com/ticketa/ticketa/pkg/database"
	"github.com/ticketa/ticketa/pkg/redis"
)

// Container holds all dependencies for the application
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	EventRepo       repository.EventRepository
	ReservationRepo repository.ReservationRepository
	UserRepo        repository.UserRepository

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	EventService       service.EventService
	ReservationService service.ReservationService

	// Handlers
	HealthHandler      *handler.HealthHandler
	EventHandler       *handler.EventHandler
	ReservationHandler *handler.ReservationHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize repositories
	c.EventRepo = repository.NewPostgresEventRepository(c.DB.Pool())
	c.ReservationRepo = repository.NewPostgresReservationRepository(c.DB.Pool())
	c.UserRepo = repository.NewPostgresUserRepository(c.DB.Pool())

	// Initialize services
	c.EventService = service.NewEventService(c.EventRepo)
	c.ReservationService = service.NewReservationService(
		c.EventRepo,
		c.ReservationRepo,
		c.UserRepo,
		service.NewPDFTicketRenderer(),
		c.EventPublisher,
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.ReservationHandler = handler.NewReservationHandler(c.ReservationService)

	return c
}
