package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pantry/backend/config"
	"github.com/pantry/backend/internal/bootstrap"
	httpDelivery "github.com/pantry/backend/internal/delivery/http"
	"github.com/pantry/backend/internal/infrastructure/sqlite"
	"github.com/pantry/backend/internal/logger"
	"github.com/pantry/backend/internal/metrics"
	"github.com/pantry/backend/internal/usecase"
)

func main() {
	// Load configuration (.env, config.yaml, PANTRY_* variables)
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log.Level, cfg.Server.Environment)
	defer logger.Close()
	log := logger.GetLogger()

	log.Infow("Starting Pantry Backend v1.0.0",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"household", cfg.Household.ID,
		"database", cfg.Database.Path,
	)

	// Initialize infrastructure dependencies
	store, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalw("Failed to open database", "path", cfg.Database.Path, "error", err)
	}
	defer store.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	productLookup, closeCache, err := bootstrap.ProductLookup(startupCtx, cfg, metrics.Default())
	cancelStartup()
	if err != nil {
		log.Fatalw("Failed to initialize product lookup", "error", err)
	}
	defer closeCache()

	// Initialize usecase layer
	inventoryService := usecase.NewInventoryService(store.Inventory(), productLookup, cfg.Household.ID)
	shoppingListService := usecase.NewShoppingListService(store.ShoppingList(), productLookup, cfg.Household.ID)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(productLookup, inventoryService, shoppingListService, store)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Infow("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
