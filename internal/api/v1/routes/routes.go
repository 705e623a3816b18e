package routes

import (
	"github.com/gin-gonic/gin"

	"video-search/internal/api/v1/handlers"
	"video-search/internal/api/v1/services"
)

// ServiceContainer holds the services the v1 routes depend on
type ServiceContainer struct {
	SearchService services.SearchService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	searchHandler := handlers.NewSearchHandler(container.SearchService)

	router.POST("/search", searchHandler.SearchVideo)
	router.POST("/query", searchHandler.Query)

	videos := router.Group("/videos")
	{
		videos.GET("", searchHandler.ListVideos)
		videos.GET("/:id", searchHandler.GetVideo)
	}
}
