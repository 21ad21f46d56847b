package geolocation

import (
	"context"
	"log"
	"time"

	"marketops/db"
	"marketops/models"
)

// GeolocationService maps caller IPs to country codes through a read-through
// cache. A fresh cache entry answers without any network call; a miss or stale
// entry goes to the external lookup and the result is written back.
type GeolocationService struct {
	repo      db.GeolocationRepository
	dbManager *db.DBManager
	primary   LookupClient
	fallback  LookupClient
}

// NewGeolocationService creates a new GeolocationService. fallback may be nil
// when no local GeoIP database is configured.
func NewGeolocationService(repo db.GeolocationRepository, dbManager *db.DBManager, primary, fallback LookupClient) *GeolocationService {
	return &GeolocationService{
		repo:      repo,
		dbManager: dbManager,
		primary:   primary,
		fallback:  fallback,
	}
}

// ResolveCountry resolves an IP to an ISO country code. It never returns an
// error: lookup failures and timeouts yield the empty string and the caller
// substitutes its default status.
func (s *GeolocationService) ResolveCountry(ctx context.Context, ip string) string {
	if ip == "" {
		return ""
	}

	cached, err := s.repo.FindFreshByIP(ctx, ip)
	if err == nil {
		return cached.CountryCode
	}
	if err != db.ErrNotFound {
		log.Printf("Geolocation cache read failed for %s: %v", ip, err)
	}

	result, err := s.primary.Lookup(ctx, ip)
	if err != nil && s.fallback != nil {
		log.Printf("Primary geolocation lookup failed for %s, trying local database: %v", ip, err)
		result, err = s.fallback.Lookup(ctx, ip)
	}
	if err != nil {
		log.Printf("Failed to resolve country for %s: %v", ip, err)
		return ""
	}

	cache := &models.GeolocationCache{
		IP:          ip,
		CountryCode: result.CountryCode,
		CountryName: result.CountryName,
		City:        result.City,
		Region:      result.Region,
		Timezone:    result.Timezone,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		ISP:         result.ISP,
		CachedAt:    time.Now().UTC(),
	}
	if err := s.dbManager.UpsertGeolocation(s.repo, ctx, cache); err != nil {
		// The resolution itself succeeded; a failed cache write only costs a
		// re-lookup next time
		log.Printf("Failed to cache geolocation for %s: %v", ip, err)
	}

	return result.CountryCode
}

// CleanupExpired drops cache entries past the TTL.
func (s *GeolocationService) CleanupExpired(ctx context.Context) {
	removed, err := s.repo.CleanupExpired(ctx)
	if err != nil {
		log.Printf("Failed to clean up geolocation cache: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Cleaned up %d expired geolocation cache entries", removed)
	}
}
