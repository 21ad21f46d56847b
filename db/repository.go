package db

import (
	"context"
	"database/sql"
	"errors"

	"marketops/models"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repository defines a common interface for all repositories
type Repository interface {
	Close() error
}

// CountryRepository defines read access to the country registry. Country rows
// are owned by the admin side; this service never writes them.
type CountryRepository interface {
	Repository
	FindByID(ctx context.Context, id string) (*models.Country, error)
	FindByCode(ctx context.Context, code string) (*models.Country, error)
	FindAll(ctx context.Context) ([]*models.Country, error)
	FindAllActive(ctx context.Context) ([]*models.Country, error)
}

// OperationalHoursRepository defines the interface for per-country operating
// window configuration.
type OperationalHoursRepository interface {
	Repository
	FindByCountryID(ctx context.Context, countryID string) (*models.OperationalHours, error)
	FindAllDetails(ctx context.Context) ([]*models.OperationalHoursDetail, error)
	Upsert(ctx context.Context, hours *models.OperationalHours) error
}

// MarketplaceStatusRepository defines the interface for the persisted status
// rows the evaluator writes and the status endpoints read.
type MarketplaceStatusRepository interface {
	Repository
	FindDetailByCountryID(ctx context.Context, countryID string) (*models.MarketplaceStatusDetail, error)
	FindDetailByCountryCode(ctx context.Context, code string) (*models.MarketplaceStatusDetail, error)
	Upsert(ctx context.Context, status *models.MarketplaceStatus) error
}

// GeolocationRepository defines the interface for the IP resolution cache
type GeolocationRepository interface {
	Repository
	FindFreshByIP(ctx context.Context, ip string) (*models.GeolocationCache, error)
	Upsert(ctx context.Context, cache *models.GeolocationCache) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// RepositoryFactory creates repositories bound to a shared SQLite handle
type RepositoryFactory struct {
	SQLiteDB *sql.DB
	DBName   string
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(sqliteDB *sql.DB, dbName string) *RepositoryFactory {
	return &RepositoryFactory{
		SQLiteDB: sqliteDB,
		DBName:   dbName,
	}
}

// NewCountryRepository creates a new country repository
func (f *RepositoryFactory) NewCountryRepository() CountryRepository {
	return NewSQLiteCountryRepository(f.SQLiteDB)
}

// NewOperationalHoursRepository creates a new operational hours repository
func (f *RepositoryFactory) NewOperationalHoursRepository() OperationalHoursRepository {
	return NewSQLiteOperationalHoursRepository(f.SQLiteDB)
}

// NewMarketplaceStatusRepository creates a new marketplace status repository
func (f *RepositoryFactory) NewMarketplaceStatusRepository() MarketplaceStatusRepository {
	return NewSQLiteMarketplaceStatusRepository(f.SQLiteDB)
}

// NewGeolocationRepository creates a new geolocation cache repository
func (f *RepositoryFactory) NewGeolocationRepository() GeolocationRepository {
	return NewSQLiteGeolocationRepository(f.SQLiteDB)
}

// GenerateID generates a unique ID for a record
func GenerateID() string {
	return uuid.New().String()
}
