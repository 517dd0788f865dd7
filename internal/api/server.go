package api

import (
	"fmt"
	"log"
	"net/http"

	"maitred/internal/cache"
	"maitred/internal/config"
	"maitred/internal/database"
	"maitred/internal/handlers"
	"maitred/internal/messaging"
	"maitred/internal/middleware"
	"maitred/internal/repository"
	"maitred/internal/search"
	"maitred/internal/service"
	"maitred/internal/timegrid"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server with its backing connections
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer wires the full stack: database, NATS, Valkey, Elasticsearch,
// repositories, services and routes.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		// Auth falls back to the database when the cache is down
		log.Printf("Valkey unavailable, continuing without auth cache: %v", err)
		valkeyClient = nil
	}

	index, err := search.NewReservationIndex(cfg.Elasticsearch)
	if err != nil {
		log.Printf("Elasticsearch unavailable, continuing without search: %v", err)
		index = nil
	}

	repos := repository.NewRepositories(db)

	services := service.NewServices(repos, natsClient, index, service.PacingDefaults{
		Limit:    cfg.PacingDefaultLimit,
		Disabled: cfg.PacingDisabled,
	})

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

// setupRoutes registers all API routes
func (s *Server) setupRoutes() {
	grid := timegrid.Config{
		StartHour:       s.config.GridStartHour,
		EndHour:         s.config.GridEndHour,
		PixelsPerMinute: s.config.GridPixelsPerMinute,
	}
	h := handlers.NewHandlers(s.services, s.valkey, grid)

	api := s.router.Group("/api")
	// All API routes require Basic Auth; the actor's role gates overrides
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.CreateReservation)
			reservations.GET("", h.ListReservations)
			reservations.GET("/timeline", h.GetTimeline)
			reservations.GET("/:id/audit", h.GetAuditLog)
			reservations.PATCH("/status", h.TransitionStatus)
			reservations.PATCH("/move", h.MoveTable)
		}

		assignments := api.Group("/assignments")
		{
			assignments.POST("/preview", h.PreviewAssignment)
			assignments.POST("/commit", h.CommitAssignment)
		}

		conflicts := api.Group("/conflicts")
		{
			conflicts.GET("/check", h.CheckConflict)
		}

		pacing := api.Group("/pacing")
		{
			pacing.GET("", h.GetPacing)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck reports liveness plus database pool health
func (s *Server) healthCheck(c *gin.Context) {
	check := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if check.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status":   check.Status,
		"service":  "maitred-api",
		"database": check,
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes connections
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
