package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hyprmtrx/hvm/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(authService *service.AuthService) *gin.Engine {
	router := gin.Default()

	handlers := NewAuthHandlers(authService)

	router.POST("/auth", handlers.Authenticate)

	api := router.Group("/api")
	api.Use(AuthMiddleware(authService))
	{
		api.GET("/me", handlers.Me)
	}

	return router
}
