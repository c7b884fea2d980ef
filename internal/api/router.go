package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	iauth "github.com/mvaldesd/relato/internal/auth"
	"github.com/mvaldesd/relato/internal/handlers"
	"github.com/mvaldesd/relato/internal/middleware"
	"github.com/mvaldesd/relato/internal/services"
)

// Dependencies carries everything the HTTP layer needs. All fields are
// required except where noted.
type Dependencies struct {
	DB    *gorm.DB
	JWT   *iauth.JWTService
	Auth  *services.AuthService
	Users *services.UserService
	Posts *services.PostService
}

func (d Dependencies) validate() error {
	switch {
	case d.DB == nil:
		return errors.New("api: db is required")
	case d.JWT == nil:
		return errors.New("api: jwt service is required")
	case d.Auth == nil:
		return errors.New("api: auth service is required")
	case d.Users == nil:
		return errors.New("api: user service is required")
	case d.Posts == nil:
		return errors.New("api: post service is required")
	}
	return nil
}

// NewRouter assembles the gin engine with global middleware and all routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.Logger(),
		middleware.SecurityHeaders(),
		middleware.CORS(),
	)

	health := handlers.NewHealthHandler(deps.DB)
	router.GET("/health", health.Check)

	registerAuthRoutes(router, deps)

	authenticated := router.Group("/", middleware.Auth(deps.JWT))
	registerProfileRoutes(authenticated, deps)
	registerPostRoutes(authenticated, deps)

	return router, nil
}
