// Package api contains the HTTP handlers and routing for the payment
// orchestrator.
package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRouter configures the Gin router with all routes and middleware.
func SetupRouter(handler *Handler, ginMode string) *gin.Engine {
	gin.SetMode(ginMode)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware())
	router.Use(RequestIDMiddleware())

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		payments := v1.Group("/payments")
		{
			payments.POST("", handler.StartPayment)
			payments.POST("/cancel", handler.CancelPayment)
			payments.GET("/session", handler.GetSession)
			payments.GET("/fees", handler.QuoteFees)
			payments.GET("/config", handler.GetConfig)
			payments.PUT("/config", handler.UpdateConfig)

			methods := payments.Group("/methods")
			{
				methods.GET("", handler.ListMethods)
				methods.POST("/refresh", handler.RefreshMethods)
				methods.GET("/:id", handler.GetMethod)
			}
		}
	}

	return router
}
