package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shwepos/internal/server/handlers"
	"shwepos/internal/server/middleware"
	"shwepos/internal/utils"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Inventory *handlers.InventoryHandler
	Sales     *handlers.SalesHandler
	Income    *handlers.IncomeHandler
	Devices   *handlers.DevicesHandler
}

// NewRouter wires every route group behind the shared middleware stack.
func NewRouter(h Handlers, tokens *utils.TokenIssuer, rateLimit string) (*gin.Engine, error) {
	r := gin.New()

	r.Use(middleware.CORS())
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	rateLimiter, err := middleware.RateLimit(rateLimit)
	if err != nil {
		return nil, err
	}
	r.Use(rateLimiter)

	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/register", h.Auth.Register)
		}
	}

	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(tokens))
	{
		protected.GET("/auth/me", h.Auth.Me)

		inventory := protected.Group("/inventory")
		{
			inventory.POST("/items", h.Inventory.CreateItem)
			inventory.GET("/items", h.Inventory.ListItems)
			inventory.GET("/items/:id", h.Inventory.GetItem)
			inventory.PUT("/items/:id", h.Inventory.UpdateItem)
			inventory.POST("/items/:id/restock", h.Inventory.Restock)
			inventory.DELETE("/items/:id", h.Inventory.DeleteItem)
		}

		sales := protected.Group("/sales")
		{
			sales.POST("", h.Sales.CreateSale)
			sales.GET("", h.Sales.ListSales)
			sales.GET("/:id", h.Sales.GetSale)
			sales.PUT("/:id", h.Sales.UpdateSale)
			sales.POST("/:id/pay", h.Sales.MarkAsPaid)
			sales.DELETE("/:id", h.Sales.DeleteSale)
		}

		income := protected.Group("/income")
		{
			income.GET("/daily", h.Income.GetDaily)
			income.GET("/range", h.Income.GetRange)
			income.GET("/monthly", h.Income.GetMonthly)
			income.GET("/top-items", h.Income.GetTopItems)
			income.GET("/categories", h.Income.GetCategories)
			income.GET("/stats", h.Income.GetStats)
		}

		devices := protected.Group("/devices")
		{
			devices.POST("", h.Devices.Register)
			devices.GET("", h.Devices.List)
			devices.PUT("/:id/preferences", h.Devices.UpdatePreferences)
			devices.DELETE("/:id", h.Devices.Deactivate)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	return r, nil
}
