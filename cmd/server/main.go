package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clockert/fram-backend/config"
	"github.com/clockert/fram-backend/internal/app/controller"
	"github.com/clockert/fram-backend/internal/app/repository"
	"github.com/clockert/fram-backend/internal/app/service"
	"github.com/clockert/fram-backend/internal/cart"
	"github.com/clockert/fram-backend/internal/db"
	"github.com/clockert/fram-backend/internal/nutrition"
	"github.com/clockert/fram-backend/internal/router"
	"github.com/clockert/fram-backend/internal/scheduler"
	"github.com/clockert/fram-backend/internal/storage"
	"github.com/clockert/fram-backend/internal/websocket"
	"github.com/clockert/fram-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Fram Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Seed the default catalog (no-op when products already exist)
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Initialize the key-value store backing carts and the nutrition cache
	var store storage.Store
	switch cfg.Storage.Backend {
	case "memory":
		store = storage.NewMemoryStore(cfg.Storage.MaxValueBytes)
		logger.Info("Using in-memory storage backend", nil)
	default:
		redisStore, err := storage.NewRedisStore(&cfg.Redis, cfg.Storage.MaxValueBytes)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", err)
		}
		defer func() {
			if err := redisStore.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		store = redisStore
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.GetDB())

	// Cart sessions and the change event hub
	cartManager := cart.NewManager(store)
	hub := websocket.NewHub()
	go hub.Run()

	cartManager.SetChangeListener(func(sessionID string, s *cart.Store) {
		view := cart.NewView(s).Render()
		hub.BroadcastCartUpdate(sessionID, map[string]interface{}{
			"type": "cart:updated",
			"cart": view,
		})
	})

	// Nutrition cache with its upstream client
	fdcClient := nutrition.NewFDCClient(&cfg.Nutrition)
	nutritionCache := nutrition.NewCache(store, fdcClient, cfg.Nutrition.CacheTTL)
	nutritionCache.Load(context.Background())

	// Initialize services
	productService := service.NewProductService(productRepo)
	cartService := service.NewCartService(cartManager, productRepo)
	nutritionService := service.NewNutritionService(nutritionCache, productRepo)
	chatService := service.NewChatService(&cfg.OpenAI, productRepo)

	// Start the nutrition warm-up scheduler
	nutritionScheduler := scheduler.NewNutritionScheduler(nutritionService)
	if err := nutritionScheduler.Start(); err != nil {
		logger.Warn("Nutrition scheduler failed to start", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer nutritionScheduler.Stop()

	// Initialize controllers
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService, hub)
	nutritionController := controller.NewNutritionController(nutritionService)
	chatController := controller.NewChatController(chatService)

	// Setup router
	r := router.NewRouter(
		productController,
		cartController,
		nutritionController,
		chatController,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
