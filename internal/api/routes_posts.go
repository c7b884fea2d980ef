package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mvaldesd/relato/internal/handlers"
)

func registerPostRoutes(group *gin.RouterGroup, deps Dependencies) {
	handler := handlers.NewPostHandler(deps.Posts)

	posts := group.Group("/posts")
	{
		posts.POST("", handler.Create)
		posts.GET("", handler.List)
		posts.GET("/me", handler.ListMine)
		posts.PUT("/:id", handler.Update)
		posts.DELETE("/:id", handler.Delete)
	}
}
