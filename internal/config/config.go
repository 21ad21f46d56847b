package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	SQLitePath   string
	DatabaseName string
	// Geolocation lookup
	GeolocationAPIURL  string
	GeolocationTimeout time.Duration
	GeoIPDBPath        string
	// Background refresh
	StatusRefreshInterval time.Duration
}

const (
	defaultPort               = "3008"
	defaultGeolocationAPIURL  = "http://ip-api.com/json"
	defaultGeolocationTimeout = 5 * time.Second
	defaultRefreshInterval    = 5 * time.Minute
)

func LoadConfig() (*Config, error) {
	// A .env file is optional; environment variables win either way
	_ = godotenv.Load()

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		return nil, fmt.Errorf("SQLITE_PATH is not set")
	}

	databaseName := os.Getenv("DATABASE_NAME")
	if databaseName == "" {
		return nil, fmt.Errorf("DATABASE_NAME is not set")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	apiURL := os.Getenv("GEOLOCATION_API_URL")
	if apiURL == "" {
		apiURL = defaultGeolocationAPIURL
	}

	timeout := defaultGeolocationTimeout
	if v := os.Getenv("GEOLOCATION_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid GEOLOCATION_TIMEOUT_SECONDS: %q", v)
		}
		timeout = time.Duration(secs) * time.Second
	}

	refreshInterval := defaultRefreshInterval
	if v := os.Getenv("STATUS_REFRESH_INTERVAL_MINUTES"); v != "" {
		mins, err := strconv.Atoi(v)
		if err != nil || mins <= 0 {
			return nil, fmt.Errorf("invalid STATUS_REFRESH_INTERVAL_MINUTES: %q", v)
		}
		refreshInterval = time.Duration(mins) * time.Minute
	}

	return &Config{
		Port:                  port,
		SQLitePath:            sqlitePath,
		DatabaseName:          databaseName,
		GeolocationAPIURL:     apiURL,
		GeolocationTimeout:    timeout,
		GeoIPDBPath:           os.Getenv("GEOIP_DB_PATH"),
		StatusRefreshInterval: refreshInterval,
	}, nil
}
