package models

import (
	"time"
)

// GeolocationCache stores a resolved IP location. Entries older than
// GeolocationCacheTTL are treated as absent and re-resolved.
type GeolocationCache struct {
	ID          string    `db:"id" json:"id"`
	IP          string    `db:"ip_address" json:"ip_address"`
	CountryCode string    `db:"country_code" json:"country_code"`
	CountryName string    `db:"country_name" json:"country_name"`
	City        string    `db:"city" json:"city"`
	Region      string    `db:"region" json:"region"`
	Timezone    string    `db:"timezone" json:"timezone"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	ISP         string    `db:"isp" json:"isp"`
	CachedAt    time.Time `db:"cached_at" json:"cached_at"`
}

// GeolocationCacheTTL bounds how long a cached resolution is trusted.
const GeolocationCacheTTL = 24 * time.Hour
