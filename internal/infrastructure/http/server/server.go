// Package server provides the JSON API HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/config"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/http/handlers"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/infrastructure/http/middleware"
	"github.com/Rul1an/broodjes-ai-mvp-sub000/internal/ports/inbound"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server.
type Server struct {
	config            *config.Config
	logger            *zap.Logger
	router            *chi.Mux
	server            *http.Server
	recipeService     inbound.RecipeService
	costService       inbound.CostService
	ingredientService inbound.IngredientService
}

// NewServer creates a new HTTP server instance.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	recipeService inbound.RecipeService,
	costService inbound.CostService,
	ingredientService inbound.IngredientService,
) *Server {
	s := &Server{
		config:            cfg,
		logger:            logger,
		recipeService:     recipeService,
		costService:       costService,
		ingredientService: ingredientService,
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// setupRoutes configures the JSON API routes.
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimit(s.config, s.logger))

	r.Get("/health", s.handleHealthCheck)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		taskH := handlers.NewTaskHandlers(s.recipeService, s.logger)
		costH := handlers.NewCostHandlers(s.costService, s.logger)
		ingredientH := handlers.NewIngredientHandlers(s.ingredientService, s.logger)

		r.Route("/recipes", func(r chi.Router) {
			r.Post("/", taskH.Generate)
			r.Post("/generate-start", taskH.GenerateStart)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskH.ListTasks)
			r.Get("/{id}", taskH.GetTask)
			r.Post("/{id}/refine", taskH.Refine)
			r.Get("/{id}/cost-breakdown", costH.GetBreakdown)
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", ingredientH.List)
			r.Post("/", ingredientH.Create)
			r.Put("/{name}", ingredientH.Update)
			r.Delete("/{name}", ingredientH.Delete)
		})
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
	)

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server...")
	return s.server.Shutdown(ctx)
}

// handleHealthCheck provides the health check endpoint.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"%s","version":"%s","timestamp":%d}`,
		s.config.App.Name, s.config.App.Version, time.Now().Unix())
}
