package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mvaldesd/relato/internal/handlers"
)

func registerProfileRoutes(group *gin.RouterGroup, deps Dependencies) {
	handler := handlers.NewProfileHandler(deps.Users, deps.Auth)

	profile := group.Group("/profile")
	{
		profile.GET("", handler.Get)
		profile.DELETE("", handler.Delete)
	}
}
