package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipede/auth-hub/internal/application"
	"github.com/ipede/auth-hub/internal/infrastructure/config"
	"github.com/ipede/auth-hub/internal/infrastructure/database"
	"github.com/ipede/auth-hub/internal/infrastructure/jwt"
	"github.com/ipede/auth-hub/internal/infrastructure/repository"
	"github.com/ipede/auth-hub/internal/infrastructure/session"
	httprouter "github.com/ipede/auth-hub/internal/interfaces/http"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create database connection
	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect the session store
	sessions, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, logger)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer sessions.Close()

	// Initialize the token signer
	signer, err := jwt.NewSigner(cfg.Issuer, cfg.AccessTokenTTL)
	if err != nil {
		logger.Fatal("Failed to initialize token signer", zap.Error(err))
	}

	// Sweep expired authorization codes in the background
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	codeRepo := repository.NewAuthorizationCodeRepository(db, logger)
	go application.NewCodeJanitor(codeRepo, cfg.CodeSweepInterval, logger).Run(janitorCtx)

	// Create router
	router := httprouter.NewRouter(db, sessions, signer, cfg, logger)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
