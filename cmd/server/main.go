// Package main is the entry point for the La Luna back office API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"laluna/internal/config"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/notify"
	"laluna/internal/domain/order"
	"laluna/internal/domain/reports"
	v1 "laluna/internal/infrastructure/http/v1"
	"laluna/internal/infrastructure/realtime"
	"laluna/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting laluna server", "version", version, "storage", cfg.Storage, "env", cfg.Env)

	// --- Storage ---
	store, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer store.close()

	// --- Services ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.AccessTokenTTL = cfg.JWTTTL
	jwtService := auth.NewJWTService(jwtConfig)
	authService := auth.NewService(store.users, store.txManager, jwtService)

	hub := realtime.NewHub(log)
	defer hub.Close()

	formatter := notify.NewFormatter(notify.Config{
		BusinessName:  cfg.BusinessName,
		BusinessTitle: cfg.BusinessTitle,
		Website:       cfg.BusinessWebsite,
		BaseURL:       cfg.WhatsAppBaseURL,
	})

	customerService := customer.NewService(store.customers)
	orderService := order.NewService(store.orders, customerService, store.txManager, store.publisher, formatter)
	inventoryService := inventory.NewService(store.inventory, store.txManager, store.publisher, hub)
	reportsService := reports.NewService(orderService, cfg.BusinessTitle)

	if store.seedOnStart {
		seedMemory(ctx, log, authService, inventoryService)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log,
		Development:      cfg.IsDevelopment(),
		Version:          version,
		Storage:          cfg.Storage,
		Store:            store.pinger,
		DBStats:          store.stats,
		JWTValidator:     jwtService,
		Idempotency:      store.idempotency,
		FrontendURLs:     cfg.FrontendURLs,
		AuthService:      authService,
		CustomerService:  customerService,
		OrderService:     orderService,
		InventoryService: inventoryService,
		ReportsService:   reportsService,
		Hub:              hub,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      compress(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// compress gzips API responses. WebSocket upgrades bypass the wrapper
// because they need the raw hijackable connection.
func compress(next http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}

// seedMemory gives a fresh in-memory store a default admin and the product
// catalog so the API is usable right away.
func seedMemory(ctx context.Context, log *logger.Logger, authService *auth.Service, inventoryService *inventory.Service) {
	if _, err := authService.SeedAdmins(ctx, []auth.SeedUser{{
		Username: "admin",
		Password: "admin123",
		Name:     "Administrador",
		Role:     auth.RoleAdmin,
	}}); err != nil {
		log.Fatalw("failed to seed admin", "error", err)
	}

	result, err := inventoryService.SeedCatalog(ctx)
	if err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}
	log.Infow("memory store seeded", "products", result.Inserted)
}
