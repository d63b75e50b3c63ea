// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"parkwise/internal/dispatch"
	"parkwise/internal/drivers"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/snapshot"
	"parkwise/internal/spots"
	"parkwise/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Deps carries the engine components built during startup. The dispatcher and
// snapshot publisher own state that must be wired before the router exists.
type Deps struct {
	Registry   *spots.Registry
	Dispatcher *dispatch.Service
	Snapshot   *snapshot.Publisher
	Cache      cache.Service
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   Deps
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps Deps) *Router {
	return &Router{
		config: cfg,
		db:     db,
		deps:   deps,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Event ingestion plus the ops reset surface
		r.setupDispatchRoutes(api)

		// Read-side lot endpoints
		r.setupSpotRoutes(api)
		r.setupSnapshotRoutes(api)

		// Driver directory administration
		r.setupDriverRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		// Perform health checks
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "parkwise-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "parkwise-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupDispatchRoutes configures sensor event ingestion and spot resets
func (r *Router) setupDispatchRoutes(rg *gin.RouterGroup) {
	controller := dispatch.NewController(r.deps.Dispatcher)
	dispatch.SetupDispatchRoutes(rg, r.config, controller)
}

// setupSpotRoutes configures lot read endpoints
func (r *Router) setupSpotRoutes(rg *gin.RouterGroup) {
	spotService := spots.NewService(r.deps.Registry)
	spotController := spots.NewController(spotService)
	spots.SetupSpotRoutes(rg, spotController)
}

// setupSnapshotRoutes configures the published lot state endpoint
func (r *Router) setupSnapshotRoutes(rg *gin.RouterGroup) {
	controller := snapshot.NewController(r.deps.Snapshot)
	snapshot.SetupSnapshotRoutes(rg, controller)
}

// setupDriverRoutes configures driver directory administration
func (r *Router) setupDriverRoutes(rg *gin.RouterGroup) {
	driverRepo := drivers.NewRepository(r.db.GetPostgreSQL())
	driverService := drivers.NewService(driverRepo, r.deps.Cache)
	driverController := drivers.NewController(driverService)
	drivers.SetupDriverRoutes(rg, r.config, driverController)
}
