package routes

import (
	"github.com/gin-gonic/gin"

	"go-file-manager/internal/api/handlers"
	"go-file-manager/internal/api/middleware"
)

// Setup configures all the routes for the application
func Setup(router *gin.Engine, folders *handlers.FolderHandler, files *handlers.FileHandler) {
	router.Use(middleware.CORS())
	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api")

	folderRoutes := api.Group("/folders")
	{
		folderRoutes.GET("", folders.List)
		folderRoutes.GET("/tree", folders.Tree)
		folderRoutes.GET("/roots", folders.Roots)
		folderRoutes.GET("/:id", folders.Get)
		folderRoutes.GET("/:id/children", folders.Children)
		folderRoutes.POST("", folders.Create)
		folderRoutes.PUT("/:id", folders.Update)
		folderRoutes.PUT("/:id/move", folders.Move)
		folderRoutes.PUT("/:id/toggle-expand", folders.ToggleExpand)
		folderRoutes.DELETE("/:id", folders.Delete)
	}

	fileRoutes := api.Group("/files")
	{
		fileRoutes.GET("", files.List)
		fileRoutes.GET("/folder/:folderId", files.ListByFolder)
		fileRoutes.GET("/:id", files.Get)
		fileRoutes.GET("/export/csv", files.ExportCSV)
		fileRoutes.GET("/export/json", files.ExportJSON)
		fileRoutes.POST("", files.Create)
		fileRoutes.POST("/upload", files.Upload)
		fileRoutes.POST("/batch", files.Batch)
		fileRoutes.PUT("/:id", files.Update)
		fileRoutes.PUT("/:id/move", files.Move)
		fileRoutes.GET("/:id/preview", files.Preview)
		fileRoutes.GET("/:id/download", files.Download)
		fileRoutes.DELETE("/:id", files.Delete)
	}
}
