package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketops/models"
)

// SQLiteCountryRepository implements the CountryRepository interface for SQLite
type SQLiteCountryRepository struct {
	db *sql.DB
}

// NewSQLiteCountryRepository creates a new SQLiteCountryRepository
func NewSQLiteCountryRepository(db *sql.DB) *SQLiteCountryRepository {
	return &SQLiteCountryRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteCountryRepository) Close() error {
	return r.db.Close()
}

const countryColumns = `id, code, name, COALESCE(flag_icon, ''), timezone, currency_code, currency_symbol, is_active`

func scanCountry(row *sql.Row) (*models.Country, error) {
	var country models.Country
	err := row.Scan(&country.ID, &country.Code, &country.Name, &country.FlagIcon,
		&country.Timezone, &country.CurrencyCode, &country.CurrencySymbol, &country.IsActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning country: %w", err)
	}
	return &country, nil
}

// FindByID finds a country by ID
func (r *SQLiteCountryRepository) FindByID(ctx context.Context, id string) (*models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries WHERE id = ?`
	return scanCountry(r.db.QueryRowContext(ctx, query, id))
}

// FindByCode finds a country by its ISO code
func (r *SQLiteCountryRepository) FindByCode(ctx context.Context, code string) (*models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries WHERE code = ?`
	return scanCountry(r.db.QueryRowContext(ctx, query, code))
}

func (r *SQLiteCountryRepository) findWhere(ctx context.Context, where string) ([]*models.Country, error) {
	query := `SELECT ` + countryColumns + ` FROM countries ` + where + ` ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying countries: %w", err)
	}
	defer rows.Close()

	var countries []*models.Country
	for rows.Next() {
		var country models.Country
		err := rows.Scan(&country.ID, &country.Code, &country.Name, &country.FlagIcon,
			&country.Timezone, &country.CurrencyCode, &country.CurrencySymbol, &country.IsActive)
		if err != nil {
			return nil, fmt.Errorf("error scanning country: %w", err)
		}
		countries = append(countries, &country)
	}
	return countries, rows.Err()
}

// FindAll finds all countries
func (r *SQLiteCountryRepository) FindAll(ctx context.Context) ([]*models.Country, error) {
	return r.findWhere(ctx, "")
}

// FindAllActive finds all active countries
func (r *SQLiteCountryRepository) FindAllActive(ctx context.Context) ([]*models.Country, error) {
	return r.findWhere(ctx, "WHERE is_active = 1")
}

// SQLiteOperationalHoursRepository implements the OperationalHoursRepository interface for SQLite
type SQLiteOperationalHoursRepository struct {
	db *sql.DB
}

// NewSQLiteOperationalHoursRepository creates a new SQLiteOperationalHoursRepository
func NewSQLiteOperationalHoursRepository(db *sql.DB) *SQLiteOperationalHoursRepository {
	return &SQLiteOperationalHoursRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteOperationalHoursRepository) Close() error {
	return r.db.Close()
}

// FindByCountryID finds the operational hours configured for a country
func (r *SQLiteOperationalHoursRepository) FindByCountryID(ctx context.Context, countryID string) (*models.OperationalHours, error) {
	query := `SELECT country_id, timezone, operational_start, operational_end,
		is_operational, weekend_operational, holiday_operational
		FROM country_operational_hours WHERE country_id = ?`

	var hours models.OperationalHours
	err := r.db.QueryRowContext(ctx, query, countryID).Scan(
		&hours.CountryID, &hours.Timezone, &hours.OperationalStart, &hours.OperationalEnd,
		&hours.IsOperational, &hours.WeekendOperational, &hours.HolidayOperational,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning operational hours: %w", err)
	}
	return &hours, nil
}

// FindAllDetails lists every country's operational hours joined with country
// display fields, ordered by country name
func (r *SQLiteOperationalHoursRepository) FindAllDetails(ctx context.Context) ([]*models.OperationalHoursDetail, error) {
	query := `SELECT coh.country_id, coh.timezone, coh.operational_start, coh.operational_end,
		coh.is_operational, coh.weekend_operational, coh.holiday_operational,
		c.name, c.code
		FROM country_operational_hours coh
		JOIN countries c ON coh.country_id = c.id
		ORDER BY c.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying operational hours: %w", err)
	}
	defer rows.Close()

	var details []*models.OperationalHoursDetail
	for rows.Next() {
		var d models.OperationalHoursDetail
		err := rows.Scan(&d.CountryID, &d.Timezone, &d.OperationalStart, &d.OperationalEnd,
			&d.IsOperational, &d.WeekendOperational, &d.HolidayOperational,
			&d.CountryName, &d.CountryCode)
		if err != nil {
			return nil, fmt.Errorf("error scanning operational hours: %w", err)
		}
		details = append(details, &d)
	}
	return details, rows.Err()
}

// Upsert creates or overwrites the operational hours for a country
func (r *SQLiteOperationalHoursRepository) Upsert(ctx context.Context, hours *models.OperationalHours) error {
	query := `INSERT INTO country_operational_hours (
			country_id, timezone, operational_start, operational_end,
			is_operational, weekend_operational, holiday_operational
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(country_id) DO UPDATE SET
			timezone = excluded.timezone,
			operational_start = excluded.operational_start,
			operational_end = excluded.operational_end,
			is_operational = excluded.is_operational,
			weekend_operational = excluded.weekend_operational,
			holiday_operational = excluded.holiday_operational`

	_, err := r.db.ExecContext(ctx, query,
		hours.CountryID, hours.Timezone, hours.OperationalStart, hours.OperationalEnd,
		hours.IsOperational, hours.WeekendOperational, hours.HolidayOperational,
	)
	if err != nil {
		return fmt.Errorf("error upserting operational hours: %w", err)
	}
	return nil
}

// SQLiteMarketplaceStatusRepository implements the MarketplaceStatusRepository interface for SQLite
type SQLiteMarketplaceStatusRepository struct {
	db *sql.DB
}

// NewSQLiteMarketplaceStatusRepository creates a new SQLiteMarketplaceStatusRepository
func NewSQLiteMarketplaceStatusRepository(db *sql.DB) *SQLiteMarketplaceStatusRepository {
	return &SQLiteMarketplaceStatusRepository{db: db}
}

// Close closes the database connection
func (r *SQLiteMarketplaceStatusRepository) Close() error {
	return r.db.Close()
}

const statusDetailQuery = `SELECT ms.country_id, ms.current_status, ms.current_time_local,
		ms.next_operational_time, ms.status_message, ms.last_updated,
		c.name, c.timezone, c.currency_code, c.currency_symbol
	FROM marketplace_status ms
	JOIN countries c ON ms.country_id = c.id `

func scanStatusDetail(row *sql.Row) (*models.MarketplaceStatusDetail, error) {
	var detail models.MarketplaceStatusDetail
	var nextOperational sql.NullTime
	err := row.Scan(
		&detail.CountryID, &detail.CurrentStatus, &detail.CurrentTimeLocal,
		&nextOperational, &detail.StatusMessage, &detail.LastUpdated,
		&detail.CountryName, &detail.CountryTimezone, &detail.CurrencyCode, &detail.CurrencySymbol,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error scanning marketplace status: %w", err)
	}
	if nextOperational.Valid {
		detail.NextOperationalTime = &nextOperational.Time
	}
	return &detail, nil
}

// FindDetailByCountryID finds a country's status joined with its display fields
func (r *SQLiteMarketplaceStatusRepository) FindDetailByCountryID(ctx context.Context, countryID string) (*models.MarketplaceStatusDetail, error) {
	query := statusDetailQuery + `WHERE ms.country_id = ?`
	return scanStatusDetail(r.db.QueryRowContext(ctx, query, countryID))
}

// FindDetailByCountryCode finds a country's status by its ISO country code
func (r *SQLiteMarketplaceStatusRepository) FindDetailByCountryCode(ctx context.Context, code string) (*models.MarketplaceStatusDetail, error) {
	query := statusDetailQuery + `WHERE c.code = ?`
	return scanStatusDetail(r.db.QueryRowContext(ctx, query, code))
}

// Upsert creates or overwrites a country's status row. The single-row write is
// the only atomicity refreshes need; racing refreshes resolve last-writer-wins.
func (r *SQLiteMarketplaceStatusRepository) Upsert(ctx context.Context, status *models.MarketplaceStatus) error {
	if status.LastUpdated.IsZero() {
		status.LastUpdated = time.Now().UTC()
	}

	query := `INSERT INTO marketplace_status (
			country_id, current_status, current_time_local,
			next_operational_time, status_message, last_updated
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(country_id) DO UPDATE SET
			current_status = excluded.current_status,
			current_time_local = excluded.current_time_local,
			next_operational_time = excluded.next_operational_time,
			status_message = excluded.status_message,
			last_updated = excluded.last_updated`

	var nextOperational interface{}
	if status.NextOperationalTime != nil {
		nextOperational = *status.NextOperationalTime
	}

	_, err := r.db.ExecContext(ctx, query,
		status.CountryID, status.CurrentStatus, status.CurrentTimeLocal,
		nextOperational, status.StatusMessage, status.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("error upserting marketplace status: %w", err)
	}
	return nil
}
