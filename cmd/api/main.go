package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/handlers"
	"go-file-manager/internal/api/routes"
	"go-file-manager/internal/config"
	"go-file-manager/internal/database"
	"go-file-manager/internal/service"
	"go-file-manager/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Initialize Database
	if err := database.Initialize(cfg); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Initialize Blob Storage
	blobs, err := storage.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	// Services
	db := database.GetDB()
	folderService := service.NewFolderService(db, logger)
	fileService := service.NewFileService(db, blobs, cfg.Server.BaseURL, logger)

	// Handlers and Routes
	router := gin.Default()
	routes.Setup(router,
		handlers.NewFolderHandler(folderService, cfg.IsDevelopment()),
		handlers.NewFileHandler(fileService, cfg.Storage.MaxUploadSize, cfg.IsDevelopment()),
	)

	// Start Server
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
