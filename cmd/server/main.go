package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "driverent-backend/internal/api/http"
	"driverent-backend/internal/config"
	"driverent-backend/internal/contractdoc"
	"driverent-backend/internal/logger"
	"driverent-backend/internal/metrics"
	"driverent-backend/internal/repository/postgres"
	"driverent-backend/internal/security"
	"driverent-backend/internal/service"
	"driverent-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting DriveRent Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format, "environment", cfg.Environment)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// Initialize document archive
	logger.Info("Using local document archive", "dir", cfg.Storage.DocumentsDir)
	docs, err := storage.New(storage.Config{Type: cfg.Storage.Type, Dir: cfg.Storage.DocumentsDir})
	if err != nil {
		logger.Error("Failed to initialize document storage", "error", err)
		log.Fatalf("Failed to initialize document storage: %v", err)
	}

	// Initialize contract builder
	builder, err := contractdoc.NewBuilder(contractdoc.Platform{
		Name:    cfg.Contract.PlatformName,
		CNPJ:    cfg.Contract.CNPJ,
		Bank:    cfg.Contract.Bank,
		Agency:  cfg.Contract.Agency,
		Account: cfg.Contract.Account,
		PixKey:  cfg.Contract.PixKey,
		Forum:   cfg.Contract.Forum,
	})
	if err != nil {
		logger.Error("Failed to load contract template", "error", err)
		log.Fatalf("Failed to load contract template: %v", err)
	}

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		fmt.Sprintf("%d", cfg.SMTP.Port),
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	m := metrics.New()
	requestSvc := service.NewRentalRequestService(store.Repositories, store, builder, emailSvc, m)
	contractSvc := service.NewContractService(store.Repositories, store, builder, docs, emailSvc, m)
	badgeSvc := service.NewBadgeService(store.Repositories, store.Repositories)

	clientIPs, err := httpapi.NewClientIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Requests:     requestSvc,
		Contracts:    contractSvc,
		Badges:       badgeSvc,
		TokenManager: tokenManager,
		Metrics:      m,
		DB:           store,
		ClientIP:     clientIPs,
		Production:   cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down HTTP server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped. Goodbye!")
}
