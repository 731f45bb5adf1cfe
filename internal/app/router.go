package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"safar/internal/handler"
	"safar/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	BookingHandler *handler.BookingHandler
	RideHandler    *handler.RideHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote routes.
		v1.POST("/quotes", deps.BookingHandler.Quote)

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.BookingHandler.Book)
			rides.GET("/nearby", deps.RideHandler.NearbyRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/assign", deps.RideHandler.AssignDriver)
			rides.POST("/:id/transition", deps.RideHandler.Transition)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/rating/passenger", deps.RideHandler.RatePassenger)
			rides.POST("/:id/rating/driver", deps.RideHandler.RateDriver)
		}

		// Passenger routes.
		passengers := v1.Group("/passengers")
		{
			passengers.GET("/:id/rides", deps.RideHandler.ListPassengerRides)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.GET("/:id/rides", deps.RideHandler.ListDriverRides)
			drivers.GET("/:id/active-ride", deps.RideHandler.ActiveRide)
		}
	}

	return router
}
