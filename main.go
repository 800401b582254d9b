package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ticketa/ticketa/internal/di"
	"github.com/ticketa/ticketa/internal/metrics"
	"github.com/ticketa/ticketa/internal/service"
	"github.com/ticketa/ticketa/migrations"
	"github.com/ticketa/ticketa/pkg/config"
	"github.com/ticketa/ticketa/pkg/database"
	"github.com/ticketa/ticketa/pkg/logger"
	"github.com/ticketa/ticketa/pkg/middleware"
	pkgredis "github.com/ticketa/ticketa/pkg/redis"
	"github.com/ticketa/ticketa/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Environment: cfg.App.Environment,
		Level:       logLevel(cfg),
		ServiceName: cfg.App.Name,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticketa", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	// Telemetry first so the DB and HTTP layers pick up the providers
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal("Telemetry initialization failed", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	if err := metrics.Init(); err != nil {
		appLog.Fatal("Metrics initialization failed", zap.Error(err))
	}

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	})
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()
	appLog.Info("Database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("max_conns", cfg.Database.MaxOpenConns))

	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal("Migrations failed", zap.Error(err))
	}

	redisClient, err := pkgredis.NewClient(ctx, &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
	})
	if err != nil {
		appLog.Fatal("Redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))

	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		eventPublisher, err = service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, using no-op publisher", zap.Error(err))
			eventPublisher = service.NewNoOpEventPublisher()
		} else {
			appLog.Info("Kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		eventPublisher = service.NewNoOpEventPublisher()
	}
	defer eventPublisher.Close()

	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
	})

	router := setupRouter(cfg, container, redisClient)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		appLog.Info("HTTP server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	appLog.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, container *di.Container, redisClient *pkgredis.Client) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.Middleware(func(route, method string, status int, elapsed time.Duration) {
		metrics.RecordRequestDuration(context.Background(), method+" "+route, elapsed.Seconds())
	}))

	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	authCfg := &middleware.AuthConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}

	idempotency := middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient.Client()))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(authCfg))
	{
		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)

			admin := events.Group("")
			admin.Use(middleware.RequireRole("admin"))
			{
				admin.POST("", container.EventHandler.CreateEvent)
				admin.PATCH("/:id", container.EventHandler.UpdateEvent)
				admin.PATCH("/:id/publish", container.EventHandler.PublishEvent)
				admin.PATCH("/:id/cancel", container.EventHandler.CancelEvent)
				admin.DELETE("/:id", container.EventHandler.DeleteEvent)
			}
		}

		reservations := v1.Group("/reservations")
		{
			reservations.POST("", idempotency, container.ReservationHandler.CreateReservation)
			reservations.GET("", container.ReservationHandler.ListReservations)
			reservations.GET("/:id", container.ReservationHandler.GetReservation)
			reservations.PATCH("/:id/confirm", idempotency, container.ReservationHandler.ConfirmReservation)
			reservations.PATCH("/:id/refuse", idempotency, container.ReservationHandler.RefuseReservation)
			reservations.DELETE("/:id", idempotency, container.ReservationHandler.CancelReservation)
			reservations.GET("/:id/pdf", container.ReservationHandler.IssueTicket)
		}
	}

	return router
}

func logLevel(cfg *config.Config) string {
	if cfg.App.Debug {
		return "debug"
	}
	return "info"
}
