package router

import (
	"github.com/gin-gonic/gin"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/controller"
	"github.com/clockert/fram-backend/internal/middleware"
)

type Router struct {
	productController   *controller.ProductController
	cartController      *controller.CartController
	nutritionController *controller.NutritionController
	chatController      *controller.ChatController
	config              *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	cartController *controller.CartController,
	nutritionController *controller.NutritionController,
	chatController *controller.ChatController,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:   productController,
		cartController:      cartController,
		nutritionController: nutritionController,
		chatController:      chatController,
		config:              cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.SessionMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Fram API is running",
		})
	})

	api := router.Group("/api")
	{
		products := api.Group("/products")
		{
			products.GET("", r.productController.GetAllProducts)
			products.GET("/popular", r.productController.GetPopularProducts)
			products.GET("/export", r.productController.ExportCatalog)
			products.GET("/:id", r.productController.GetProductByID)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateItem)
			cart.DELETE("/items/:id", r.cartController.RemoveItem)
			cart.DELETE("", r.cartController.ClearCart)
			cart.GET("/ws", r.cartController.Subscribe)
		}

		api.GET("/nutrition/:query", r.nutritionController.GetNutrition)

		api.POST("/chat", r.chatController.Chat)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
