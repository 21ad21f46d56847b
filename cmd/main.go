package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"marketops/db"
	"marketops/internal/config"
	"marketops/internal/country"
	"marketops/internal/geolocation"
	"marketops/internal/status"
	"marketops/internal/web"
	"marketops/middleware"
)

// Global loggers for different output streams
var (
	infoLogger  = log.New(os.Stdout, "", log.LstdFlags)
	errorLogger = log.New(os.Stderr, "", log.LstdFlags)
)

func main() {
	infoLogger.Printf("Starting marketops backend - Process ID: %d", os.Getpid())

	cfg, err := config.LoadConfig()
	if err != nil {
		errorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		errorLogger.Fatalf("Failed to connect to SQLite: %v", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		errorLogger.Fatalf("Failed to initialize database schema: %v", err)
	}

	repoFactory := db.NewRepositoryFactory(sqliteDB, cfg.DatabaseName)

	// Create repositories
	countryRepo := repoFactory.NewCountryRepository()
	hoursRepo := repoFactory.NewOperationalHoursRepository()
	statusRepo := repoFactory.NewMarketplaceStatusRepository()
	geoRepo := repoFactory.NewGeolocationRepository()

	// Create database manager for serialized write access
	dbManager := db.NewDBManager()
	defer dbManager.Stop()

	// Geolocation lookup clients: external API, plus a local GeoIP database
	// fallback when one is configured
	apiClient := geolocation.NewAPIClient(cfg.GeolocationAPIURL, cfg.GeolocationTimeout)
	var fallback geolocation.LookupClient
	if cfg.GeoIPDBPath != "" {
		geoIPClient, err := geolocation.NewGeoIPClient(cfg.GeoIPDBPath)
		if err != nil {
			infoLogger.Printf("Warning: failed to open GeoIP database: %v", err)
			infoLogger.Println("Continuing without local GeoIP fallback")
		} else {
			defer geoIPClient.Close()
			fallback = geoIPClient
		}
	}

	// Initialize services with repositories
	geoService := geolocation.NewGeolocationService(geoRepo, dbManager, apiClient, fallback)
	statusService := status.NewStatusService(countryRepo, hoursRepo, statusRepo, geoService, dbManager)
	countryService := country.NewCountryService(countryRepo)

	// Create a done channel to coordinate graceful shutdown
	done := make(chan bool)
	go runStatusRefresher(statusService, geoService, cfg.StatusRefreshInterval, done)

	statusHandlers := status.NewHandlers(statusService)
	countryHandlers := country.NewHandlers(countryService)
	router := web.SetupRoutes(statusHandlers, countryHandlers)

	handler := middleware.LoggingMiddleware(middleware.SetupCORS()(router))
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		infoLogger.Printf("Server is starting on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorLogger.Fatalf("Server ListenAndServe error: %v", err)
		}
	}()

	waitForShutdown(server, done)
}

// runStatusRefresher periodically recomputes every active country's status and
// trims the geolocation cache. A panic in one cycle is recovered so the loop
// keeps running.
func runStatusRefresher(statusService *status.StatusService, geoService *geolocation.GeolocationService, interval time.Duration, done <-chan bool) {
	defer func() {
		if r := recover(); r != nil {
			errorLogger.Printf("Status refresher panic recovered: %v", r)
			errorLogger.Printf("Status refresher stack trace: %s", debug.Stack())
		}
		infoLogger.Println("Status refresher stopped")
	}()

	refresh := func() {
		defer func() {
			if r := recover(); r != nil {
				errorLogger.Printf("RefreshAll panic: %v", r)
				errorLogger.Printf("RefreshAll stack: %s", debug.Stack())
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		defer cancel()

		count, err := statusService.RefreshAll(ctx)
		if err != nil {
			errorLogger.Printf("Some marketplace status refreshes failed: %v", err)
		}
		infoLogger.Printf("Refreshed marketplace status for %d countries", count)
		geoService.CleanupExpired(ctx)
	}

	infoLogger.Printf("Status refresher scheduled to run every %v", interval)
	refresh()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			infoLogger.Println("Status refresher received shutdown signal")
			return
		case <-ticker.C:
			refresh()
		}
	}
}

func waitForShutdown(server *http.Server, done chan bool) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	infoLogger.Printf("Received shutdown signal: %v", sig)

	// Signal background services to stop
	close(done)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	infoLogger.Println("Shutting down the server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		errorLogger.Printf("Server Shutdown error: %v", err)
		os.Exit(1)
	}
	infoLogger.Println("Server stopped")
}
