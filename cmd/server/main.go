package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/DmitryBilevich/product-sales-service/internal/cache"
	"github.com/DmitryBilevich/product-sales-service/internal/config"
	"github.com/DmitryBilevich/product-sales-service/internal/handlers"
	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories/postgres"
	"github.com/DmitryBilevich/product-sales-service/internal/services"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
	"github.com/DmitryBilevich/product-sales-service/internal/validator"
	"github.com/DmitryBilevich/product-sales-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatal(err)
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.ImportSession{},
		&models.StagedProduct{},
	); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatal(err)
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "error", err)
		log.Fatal(err)
	}
	defer redisClient.Close()

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		log.Fatal(err)
	}
	defer publisher.Close()

	cacheService := cache.NewRedisCache(redisClient, logger)
	v := validator.New()

	productRepo := postgres.NewProductPostgreSQL(db)
	stagingRepo := postgres.NewStagingPostgreSQL(db)

	productService := services.NewProductService(productRepo, v, logger)
	importService := services.NewImportService(stagingRepo, cacheService, publisher, logger, cfg.MaxUploadBytes)
	exportService := services.NewExportService(productRepo, stagingRepo, logger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(productService, importService, exportService, v, logger)
	handlerManager.SetupRoutes(router)

	logger.Info("Starting product sales service", "port", cfg.Port, "environment", cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server stopped", "error", err)
		log.Fatal(err)
	}
}
