package main

import (
	"context"
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"godrive/config"
	"godrive/database"
	"godrive/handlers"
	"godrive/observability"
	"godrive/services"
	"godrive/storage"
)

// main is the entry point of the application.
func main() {
	// Load configuration first
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Pick the storage backend from configuration
	var repo storage.Repository
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := database.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		docRepo := storage.NewDocumentRepository(pool)
		if err := docRepo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to prepare database schema: %v", err)
		}
		repo = docRepo
		log.Println("Using postgres document storage")
	default:
		repo = storage.NewMemoryRepository()
		log.Println("Using in-memory storage")
	}

	// --- Setup application services ---
	rideService := services.NewRideService(repo)
	queryService := services.NewQueryService(repo)
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	// Create a new Fiber app instance
	app := fiber.New()

	// Add middleware: request logging, CORS (allow-all) and metrics
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	// Simple health check route at the root
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok", "message": "Welcome to GoDrive Backend!"})
	})

	// Prometheus scrape endpoint, served through the net/http adaptor
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Setup API group
	api := app.Group("/api")
	log.Println("API group /api setup")

	// --- Setup routes ---
	userHandler := handlers.NewUserHandler(rideService, queryService, metrics)
	rideHandler := handlers.NewRideHandler(rideService, queryService, metrics)
	handlers.SetupUserRoutes(api, userHandler)
	handlers.SetupRideRoutes(api, rideHandler)

	// Use port from configuration
	port := cfg.ServerPort
	log.Printf("Starting GoDrive backend server on port %s", port)

	// Start the Fiber server
	log.Fatal(app.Listen(":" + port))
}
