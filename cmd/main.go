package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"scene-service/internal/assetstore"
	"scene-service/internal/config"
	"scene-service/internal/handlers"
	"scene-service/internal/metrics"
	"scene-service/internal/middleware"
	"scene-service/internal/models"
	"scene-service/internal/repository"
	"scene-service/internal/services"
	"scene-service/internal/storage"
	"scene-service/internal/upload"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()

	cfg := InitConfig()
	db := ConnectDatabase(cfg)
	MigrateDatabase(db)
	minioClient := InitMinIOClient(cfg)

	m := metrics.NewMetrics()
	sceneRepo := repository.NewSceneRepository(db)
	assets := assetstore.NewMinioStore(minioClient, cfg.MinioBucket, cfg.MinioPublicURL, m)
	sceneService := services.NewSceneService(sceneRepo, assets, m)
	intake := upload.NewIntake(int64(cfg.MaxUploadBytes))

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.MaxUploadBytes,
	})

	// Register Prometheus metrics endpoint
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Set up routes for scene CRUD operations
	h := handlers.NewSceneHandler(sceneService, intake)
	api := app.Group("/api/scene")

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Add Health check endpoint
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Everything below requires an authenticated caller.
	api.Use(middleware.RequireAuth(cfg.JWTSecret))
	api.Post("/upload", h.UploadModel)
	api.Get("/", h.ListScenes)
	api.Get("/:id", h.GetScene)
	api.Get("/:id/model", h.DownloadModel)
	api.Delete("/:id", h.DeleteScene)
	api.Put("/:id/save-state", h.SaveCameraState)

	routes := app.GetRoutes()
	log.Println("Registered routes:")
	for _, r := range routes {
		log.Printf("  %s %s\n", r.Method, r.Path)
	}

	// Start the Fiber server
	port := cfg.AppPort
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}
	log.Printf("Server listening on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func InitConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	return cfg
}

func ConnectDatabase(cfg *config.Config) *gorm.DB {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return db
}

func MigrateDatabase(db *gorm.DB) {
	err := db.AutoMigrate(&models.Scene{})
	if err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}
}

func InitMinIOClient(cfg *config.Config) *minio.Client {
	minioClient, err := storage.NewMinioClient(cfg)
	if err != nil {
		log.Fatalf("MinIO client initialization failed: %v", err)
	}
	return minioClient
}
