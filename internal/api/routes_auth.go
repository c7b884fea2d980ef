package api

import (
	"github.com/gin-gonic/gin"

	"github.com/mvaldesd/relato/internal/handlers"
)

func registerAuthRoutes(router *gin.Engine, deps Dependencies) {
	handler := handlers.NewAuthHandler(deps.Auth)

	group := router.Group("/auth")
	{
		group.POST("/register", handler.Register)
		group.GET("/verify-email", handler.VerifyEmail)
		group.POST("/login", handler.Login)
		group.POST("/social-login", handler.SocialLogin)
	}
}
