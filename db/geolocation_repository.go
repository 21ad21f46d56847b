package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketops/models"
)

// SQLiteGeolocationRepository implements the GeolocationRepository interface for SQLite
type SQLiteGeolocationRepository struct {
	db *sql.DB
}

// NewSQLiteGeolocationRepository creates a new SQLiteGeolocationRepository
func NewSQLiteGeolocationRepository(db *sql.DB) *SQLiteGeolocationRepository {
	return &SQLiteGeolocationRepository{db: db}
}

// FindFreshByIP retrieves the cached resolution for an IP address. Entries
// cached longer than models.GeolocationCacheTTL ago are treated as absent so
// the caller re-resolves them.
func (r *SQLiteGeolocationRepository) FindFreshByIP(ctx context.Context, ip string) (*models.GeolocationCache, error) {
	query := `
		SELECT id, ip_address, country_code, COALESCE(country_name, ''), COALESCE(city, ''),
		       COALESCE(region, ''), COALESCE(timezone, ''), COALESCE(latitude, 0),
		       COALESCE(longitude, 0), COALESCE(isp, ''), cached_at
		FROM geolocation_cache
		WHERE ip_address = ? AND cached_at > ?
	`

	// The cutoff must be in UTC like cached_at: the driver binds times as text
	// with the zone offset embedded, and SQLite compares them as strings
	cutoff := time.Now().UTC().Add(-models.GeolocationCacheTTL)
	var cache models.GeolocationCache
	err := r.db.QueryRowContext(ctx, query, ip, cutoff).Scan(
		&cache.ID, &cache.IP, &cache.CountryCode, &cache.CountryName, &cache.City,
		&cache.Region, &cache.Timezone, &cache.Latitude, &cache.Longitude,
		&cache.ISP, &cache.CachedAt,
	)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find geolocation cache by IP: %w", err)
	}

	return &cache, nil
}

// Upsert stores a resolution, overwriting any previous entry for the IP.
// Racing writes for the same IP resolve last-writer-wins; re-resolving an IP
// yields the same country so the entries are idempotent.
func (r *SQLiteGeolocationRepository) Upsert(ctx context.Context, cache *models.GeolocationCache) error {
	if cache.ID == "" {
		cache.ID = GenerateID()
	}
	if cache.CachedAt.IsZero() {
		cache.CachedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO geolocation_cache (
			id, ip_address, country_code, country_name, city, region,
			timezone, latitude, longitude, isp, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ip_address) DO UPDATE SET
			country_code = excluded.country_code,
			country_name = excluded.country_name,
			city = excluded.city,
			region = excluded.region,
			timezone = excluded.timezone,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			isp = excluded.isp,
			cached_at = excluded.cached_at
	`

	_, err := r.db.ExecContext(ctx, query,
		cache.ID, cache.IP, cache.CountryCode, cache.CountryName, cache.City,
		cache.Region, cache.Timezone, cache.Latitude, cache.Longitude,
		cache.ISP, cache.CachedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert geolocation cache: %w", err)
	}

	return nil
}

// CleanupExpired removes entries past the cache TTL and reports how many were
// deleted
func (r *SQLiteGeolocationRepository) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM geolocation_cache WHERE cached_at <= ?`

	// Same zone as the stored cached_at values, see FindFreshByIP
	cutoff := time.Now().UTC().Add(-models.GeolocationCacheTTL)
	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired geolocation cache: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// Close closes the repository (satisfies Repository interface)
func (r *SQLiteGeolocationRepository) Close() error {
	// SQLite connection is managed by the main DB instance
	return nil
}
