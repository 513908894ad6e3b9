package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"maintenance-checklist-backend/config"
	"maintenance-checklist-backend/internal/api"
	"maintenance-checklist-backend/internal/auth"
	"maintenance-checklist-backend/internal/db"
	"maintenance-checklist-backend/internal/media"
	"maintenance-checklist-backend/internal/notification"
	"maintenance-checklist-backend/internal/shiftassign"
	"maintenance-checklist-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "checklist-backend ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("No .env file found")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Resolve the default department once at startup instead of
	// scattering a hardcoded id through the handlers.
	defaultDept, err := appStore.EnsureDepartment(ctx, cfg.Defaults.Department)
	if err != nil {
		logger.Fatalf("failed to resolve default department %q: %v", cfg.Defaults.Department, err)
	}
	logger.Printf("default department is %q (%s)", defaultDept.Name, defaultDept.ID)

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	resolver := media.NewResolver(cfg.Media.BaseDir)

	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions)
	workerPool.Start(ctx)

	// Run the shift assignor in the background
	assignor := shiftassign.NewService(cfg, appStore)
	go assignor.Run(ctx)

	// Initialize router
	handler := api.NewHandler(appStore, tokens, resolver, workerPool, webpushOptions, *defaultDept)
	router := api.NewRouter(handler, tokens, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
