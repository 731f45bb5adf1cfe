package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"safar/internal/app"
	"safar/internal/config"
	"safar/internal/domain"
	"safar/internal/geo"
	"safar/internal/handler"
	internalRedis "safar/internal/redis"
	"safar/internal/repository/postgres"
	"safar/internal/routing"
	"safar/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, resolver := wireServer(db, redisClient, nrApp, cfg)
	defer resolver.Close()

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// route resolver so its cache sweep can be stopped on shutdown.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *routing.Resolver) {
	// Initialize Redis stores.
	pickupIndex := internalRedis.NewPickupIndex(redisClient)

	// Initialize repositories.
	rideRepo := postgres.NewRideRepository(db)

	// Initialize route resolution.
	validator := geo.NewValidator(geo.BoundingBox{
		MinLat: cfg.Geo.MinLat,
		MaxLat: cfg.Geo.MaxLat,
		MinLon: cfg.Geo.MinLon,
		MaxLon: cfg.Geo.MaxLon,
	})
	provider, err := routing.NewGoogleMapsProvider(cfg.Maps.APIKey)
	if err != nil {
		log.Fatalf("failed to create directions provider: %v", err)
	}
	resolver := routing.NewResolver(provider, validator, routing.Config{
		ProviderTimeout: cfg.Routing.ProviderTimeout,
		CacheTTL:        cfg.Routing.CacheTTL,
		MaxCacheEntries: cfg.Routing.MaxCacheEntries,
		SweepInterval:   cfg.Routing.SweepInterval,
	})

	// Initialize services.
	notificationService := service.NewNotificationService()
	rideService := service.NewRideService(rideRepo, pickupIndex, notificationService)
	bookingService := service.NewBookingService(resolver, rideService, domain.DefaultVehicleProfiles())

	// Initialize handlers.
	bookingHandler := handler.NewBookingHandler(bookingService)
	rideHandler := handler.NewRideHandler(rideService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		BookingHandler: bookingHandler,
		RideHandler:    rideHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return server, resolver
}
