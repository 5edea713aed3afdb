package handlers

import (
	"github.com/gin-gonic/gin"

	"stock-dashboard/logger"
	"stock-dashboard/middleware"
)

// NewRouter builds the stocks API engine.
func NewRouter(stocks *StocksHandler, auth *AuthHandler, jwtSecret string, log logger.Interface) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.AccessLog(log), gin.Recovery())

	router.GET("/stocks", stocks.GetAllStocks)
	router.GET("/latest", stocks.GetLatest)
	router.GET("/stocks/:ticker", stocks.GetByTicker)

	router.POST("/signup", auth.Signup)
	router.POST("/login", auth.Login)
	router.POST("/refresh", auth.Refresh)

	protected := router.Group("/")
	protected.Use(middleware.JWTAuth(jwtSecret))
	{
		protected.GET("/dashboard", auth.Dashboard)
	}

	return router
}
