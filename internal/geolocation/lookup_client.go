package geolocation

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	geoip2 "github.com/oschwald/geoip2-golang"
)

// LookupResult is the location a lookup client resolved for an IP.
type LookupResult struct {
	CountryCode string
	CountryName string
	City        string
	Region      string
	Timezone    string
	Latitude    float64
	Longitude   float64
	ISP         string
}

// LookupClient resolves an IP address to a location.
type LookupClient interface {
	Lookup(ctx context.Context, ip string) (*LookupResult, error)
}

// APIClient resolves IPs against an ip-api.com style JSON endpoint.
type APIClient struct {
	baseURL string
	client  *http.Client
}

// NewAPIClient creates an APIClient. The timeout bounds the whole lookup so a
// slow provider cannot hang a caller's request.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	City        string  `json:"city"`
	RegionName  string  `json:"regionName"`
	Timezone    string  `json:"timezone"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ISP         string  `json:"isp"`
}

// Lookup queries the external endpoint for an IP's location.
func (c *APIClient) Lookup(ctx context.Context, ip string) (*LookupResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+ip, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geolocation request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation lookup returned status %d", resp.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	if payload.Status != "success" || payload.CountryCode == "" {
		return nil, fmt.Errorf("geolocation lookup unsuccessful for %s: %s", ip, payload.Message)
	}

	return &LookupResult{
		CountryCode: payload.CountryCode,
		CountryName: payload.Country,
		City:        payload.City,
		Region:      payload.RegionName,
		Timezone:    payload.Timezone,
		Latitude:    payload.Lat,
		Longitude:   payload.Lon,
		ISP:         payload.ISP,
	}, nil
}

// GeoIPClient resolves IPs against a local GeoIP2/MMDB database. It is used
// as an offline fallback when the external lookup is unreachable; it only
// yields country-level data.
type GeoIPClient struct {
	reader *geoip2.Reader
}

// NewGeoIPClient opens the MMDB file at the given path.
func NewGeoIPClient(dbPath string) (*GeoIPClient, error) {
	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &GeoIPClient{reader: reader}, nil
}

// Lookup resolves the country for an IP from the local database.
func (g *GeoIPClient) Lookup(ctx context.Context, ip string) (*LookupResult, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IP address: %q", ip)
	}

	record, err := g.reader.Country(parsed)
	if err != nil {
		return nil, fmt.Errorf("GeoIP country lookup failed: %w", err)
	}
	if record.Country.IsoCode == "" {
		return nil, fmt.Errorf("no country found for %s", ip)
	}

	return &LookupResult{
		CountryCode: record.Country.IsoCode,
		CountryName: record.Country.Names["en"],
	}, nil
}

// Close closes the underlying database reader.
func (g *GeoIPClient) Close() error {
	return g.reader.Close()
}
