package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autohub-rest-api/internal/cache"
	"autohub-rest-api/internal/config"
	"autohub-rest-api/internal/handler"
	"autohub-rest-api/internal/middleware"
	"autohub-rest-api/internal/remote"
	"autohub-rest-api/internal/router"
	"autohub-rest-api/internal/service"
	"autohub-rest-api/internal/store"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting AutoHub API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize snapshot store based on config
	var snapshotStore store.Store
	switch cfg.Store.Type {
	case "mysql":
		db, err := sql.Open("mysql", cfg.Store.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping MySQL: %v", err)
		}
		mysqlStore, err := store.NewMySQLStore(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL store: %v", err)
		}
		snapshotStore = mysqlStore
		log.Println("MySQL snapshot store initialized")
	default: // sqlite
		sqliteStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite store: %v", err)
		}
		snapshotStore = sqliteStore
		log.Println("SQLite snapshot store initialized")
	}
	defer snapshotStore.Close()

	snapshots := store.NewSnapshots(snapshotStore, cfg.Sync.OrderHistoryLimit)

	// Initialize dealer platform client
	platform := remote.NewClient(remote.Config{
		BaseURL: cfg.Remote.BaseURL,
		APIKey:  cfg.Remote.APIKey,
		Timeout: cfg.Remote.Timeout,
	})
	log.Printf("Dealer platform client initialized (%s)", cfg.Remote.BaseURL)

	// Initialize services
	catalogService := service.NewCatalogService(snapshots, platform)
	orderService := service.NewOrderService(snapshots, platform)
	favoritesService := service.NewFavoritesService(snapshots)
	settingsService := service.NewSettingsService(snapshots, platform)
	importService := service.NewImportService(catalogService, platform)

	// Initialize Redis client (optional)
	redisAddr := cfg.Cache.RedisAddress()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		redisClient = nil
	} else {
		log.Println("Redis client initialized")
	}
	cancel()

	// Initialize Redis view counter (optional, requires Redis)
	var viewCounter *cache.RedisViewCounter
	if redisClient != nil {
		counterCfg := cache.RedisViewCounterConfig{
			Addr:          redisAddr,
			Password:      cfg.Cache.RedisPassword,
			DB:            cfg.Cache.RedisDB,
			FlushInterval: 30 * time.Second,
		}
		counter, err := cache.NewRedisViewCounter(counterCfg, catalogService.ApplyViewCounts)
		if err != nil {
			log.Printf("Warning: Redis view counter initialization failed: %v", err)
		} else {
			viewCounter = counter
			log.Println("Redis view counter initialized")
		}
	}

	var tokenService *service.TokenService
	if redisClient != nil {
		tokenService = service.NewTokenService(redisClient)
	}

	// Load persisted snapshots and kick off the first refresh
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalogService.Start(startCtx)
	orderService.Start(startCtx)
	startCancel()

	// Start background sync scheduler
	scheduler := service.NewSyncScheduler(orderService, catalogService, service.SchedulerConfig{
		ReconcileInterval: cfg.Sync.ReconcileInterval,
		RefreshInterval:   cfg.Sync.RefreshInterval,
	})
	scheduler.Start()

	// Initialize handlers
	healthHandler := handler.New(catalogService, cfg.App.Version)
	catalogHandler := handler.NewCatalogHandler(catalogService, viewCounter)
	orderHandler := handler.NewOrderHandler(orderService, snapshots)
	favoritesHandler := handler.NewFavoritesHandler(favoritesService, catalogService)
	adminHandler := handler.NewAdminHandler(handler.AdminHandlerConfig{
		Store:     snapshotStore,
		Orders:    orderService,
		Catalog:   catalogService,
		Settings:  settingsService,
		Importer:  importService,
		Tokens:    tokenService,
		Remote:    platform,
		LoginKey:  cfg.App.LoginKey,
		StoreType: cfg.Store.Type,
	})

	// Create admin auth middleware with injected dependencies (NO GLOBALS!)
	adminMiddleware := middleware.NewAdminAuthMiddleware(middleware.AdminAuthConfig{
		TokenService: tokenService,
		LoginKey:     cfg.App.LoginKey,
	})

	// Create router
	r := router.New(router.Config{
		Handler:          healthHandler,
		CatalogHandler:   catalogHandler,
		OrderHandler:     orderHandler,
		FavoritesHandler: favoritesHandler,
		AdminHandler:     adminHandler,
		AdminMiddleware:  adminMiddleware,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the scheduler before draining the view counter
	scheduler.Stop()

	if viewCounter != nil {
		log.Println("Closing Redis view counter...")
		viewCounter.Close()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}
