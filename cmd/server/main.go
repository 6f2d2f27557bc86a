package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atriumhq/service-reservation/internal/application"
	"github.com/atriumhq/service-reservation/internal/config"
	bookingDomain "github.com/atriumhq/service-reservation/internal/domain/booking"
	eventsConsumer "github.com/atriumhq/service-reservation/internal/events/consumer"
	"github.com/atriumhq/service-reservation/internal/handler"
	"github.com/atriumhq/service-reservation/internal/repository"
	"github.com/atriumhq/service-reservation/pkg/auth"
	"github.com/atriumhq/service-reservation/pkg/database"
	"github.com/atriumhq/service-reservation/pkg/health"
	"github.com/atriumhq/service-reservation/pkg/kafka"
	"github.com/atriumhq/service-reservation/pkg/logger"
	"github.com/atriumhq/service-reservation/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.SpaceModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	spaceRepo := repository.NewGormSpaceRepository(db)

	// Overdue policy from configuration
	policy := bookingDomain.OverduePolicy{
		GracePending:  cfg.Overdue.GracePending,
		GraceCheckin:  cfg.Overdue.GraceCheckin,
		GraceCheckout: cfg.Overdue.GraceCheckout,
	}

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		spaceRepo,
		policy,
		kafkaProducer,
		log,
	)
	spaceService := application.NewSpaceService(spaceRepo, kafkaProducer, log)

	// Start the space event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "reservation-service"
	spaceConsumer := eventsConsumer.NewSpaceEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = spaceConsumer.Close() }()

	go func() {
		log.Info("starting space event consumer")
		if err := spaceConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("space event consumer error", zap.Error(err))
		}
	}()

	// Start the overdue promotion sweeper in a goroutine
	sweeper := application.NewSweeper(bookingService, cfg.Overdue.SweepInterval, log)
	go sweeper.Run(ctx)

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminHandler := handler.NewAdminBookingHandler(bookingService)
	spaceHandler := handler.NewSpaceHandler(spaceService, bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	spaceHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	// Stop the consumer and sweeper
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}
