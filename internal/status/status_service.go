package status

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"marketops/db"
	"marketops/internal/evaluator"
	"marketops/models"
)

// ErrInvalidInput marks errors caused by the caller's payload rather than by
// the stores; handlers map it to a 400 instead of a 500.
var ErrInvalidInput = errors.New("invalid input")

// CountryResolver maps a caller IP to an ISO country code, empty when the IP
// cannot be resolved.
type CountryResolver interface {
	ResolveCountry(ctx context.Context, ip string) string
}

// StatusService orchestrates marketplace status reads and refreshes. All
// stores and the resolver are injected at construction.
type StatusService struct {
	countryRepo db.CountryRepository
	hoursRepo   db.OperationalHoursRepository
	statusRepo  db.MarketplaceStatusRepository
	resolver    CountryResolver
	dbManager   *db.DBManager
	now         func() time.Time
}

// NewStatusService creates a new StatusService.
func NewStatusService(
	countryRepo db.CountryRepository,
	hoursRepo db.OperationalHoursRepository,
	statusRepo db.MarketplaceStatusRepository,
	resolver CountryResolver,
	dbManager *db.DBManager,
) *StatusService {
	return &StatusService{
		countryRepo: countryRepo,
		hoursRepo:   hoursRepo,
		statusRepo:  statusRepo,
		resolver:    resolver,
		dbManager:   dbManager,
		now:         time.Now,
	}
}

// GetStatusByCountry returns the persisted status for a country joined with
// its display fields. A country seen for the first time gets a default
// operational row persisted lazily.
func (s *StatusService) GetStatusByCountry(ctx context.Context, countryID string) (*models.MarketplaceStatusDetail, error) {
	detail, err := s.statusRepo.FindDetailByCountryID(ctx, countryID)
	if err == nil {
		return detail, nil
	}
	if err != db.ErrNotFound {
		return nil, fmt.Errorf("failed to get marketplace status: %w", err)
	}

	if _, err := s.countryRepo.FindByID(ctx, countryID); err != nil {
		if err == db.ErrNotFound {
			return nil, db.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up country %s: %w", countryID, err)
	}

	defaultStatus := &models.MarketplaceStatus{
		CountryID:        countryID,
		CurrentStatus:    models.StatusOperational,
		CurrentTimeLocal: "12:00:00",
		StatusMessage:    models.MessageOperational,
		LastUpdated:      s.now().UTC(),
	}
	if err := s.dbManager.UpsertMarketplaceStatus(s.statusRepo, ctx, defaultStatus); err != nil {
		return nil, fmt.Errorf("failed to create default marketplace status: %w", err)
	}

	return s.statusRepo.FindDetailByCountryID(ctx, countryID)
}

// GetStatusByIP resolves the caller's country from their IP and returns that
// marketplace's status. Any failure along the way degrades to the context-free
// default payload; this path never errors to the caller.
func (s *StatusService) GetStatusByIP(ctx context.Context, ip string) *models.MarketplaceStatusDetail {
	countryCode := s.resolver.ResolveCountry(ctx, ip)
	if countryCode == "" {
		return models.DefaultMarketplaceStatus()
	}

	detail, err := s.statusRepo.FindDetailByCountryCode(ctx, countryCode)
	if err != nil {
		if err != db.ErrNotFound {
			log.Printf("Failed to read marketplace status for %s: %v", countryCode, err)
		}
		return models.DefaultMarketplaceStatus()
	}
	return detail
}

// RefreshOne recomputes and persists the status for one country. It returns
// false without error when the country or its operational hours are not
// configured; missing configuration is a skip, not a failure.
func (s *StatusService) RefreshOne(ctx context.Context, countryID string) (bool, error) {
	country, err := s.countryRepo.FindByID(ctx, countryID)
	if err == db.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load country %s: %w", countryID, err)
	}
	if country.Timezone == "" {
		return false, nil
	}

	hours, err := s.hoursRepo.FindByCountryID(ctx, countryID)
	if err == db.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load operational hours for %s: %w", countryID, err)
	}

	loc, err := time.LoadLocation(country.Timezone)
	if err != nil {
		// Unresolvable zone name; the evaluator degrades to the operational
		// default rather than failing the refresh
		log.Printf("Unknown timezone %q for country %s", country.Timezone, countryID)
		loc = nil
	}

	result := evaluator.Evaluate(s.now().UTC(), loc, hours)

	statusRow := &models.MarketplaceStatus{
		CountryID:        countryID,
		CurrentStatus:    result.Status,
		CurrentTimeLocal: result.LocalTime,
		StatusMessage:    result.Message,
		LastUpdated:      s.now().UTC(),
	}
	if result.NextOpening != nil {
		next := result.NextOpening.UTC()
		statusRow.NextOperationalTime = &next
	}

	if err := s.dbManager.UpsertMarketplaceStatus(s.statusRepo, ctx, statusRow); err != nil {
		return false, fmt.Errorf("failed to upsert marketplace status for %s: %w", countryID, err)
	}
	return true, nil
}

// RefreshAll recomputes the status of every active country. One country's
// failure does not stop the batch; errors are collected and returned together
// with the count of refreshed countries.
func (s *StatusService) RefreshAll(ctx context.Context) (int, error) {
	countries, err := s.countryRepo.FindAllActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active countries: %w", err)
	}

	refreshed := 0
	var errs []error
	for _, country := range countries {
		ok, err := s.RefreshOne(ctx, country.ID)
		if err != nil {
			log.Printf("Failed to refresh marketplace status for %s: %v", country.ID, err)
			errs = append(errs, err)
			continue
		}
		if ok {
			refreshed++
		}
	}
	return refreshed, errors.Join(errs...)
}

// UpdateOperationalHours validates and persists a country's operating window,
// then refreshes its status immediately so the cached row is never stale
// relative to configuration.
func (s *StatusService) UpdateOperationalHours(ctx context.Context, countryID string, hours *models.OperationalHours) error {
	if _, err := s.countryRepo.FindByID(ctx, countryID); err != nil {
		if err == db.ErrNotFound {
			return fmt.Errorf("%w: unknown country: %s", ErrInvalidInput, countryID)
		}
		return fmt.Errorf("failed to look up country %s: %w", countryID, err)
	}
	if err := validateHours(hours); err != nil {
		return err
	}

	hours.CountryID = countryID
	if err := s.dbManager.UpsertOperationalHours(s.hoursRepo, ctx, hours); err != nil {
		return fmt.Errorf("failed to upsert operational hours: %w", err)
	}

	if _, err := s.RefreshOne(ctx, countryID); err != nil {
		return err
	}
	return nil
}

// AllOperationalHours lists every configured operating window joined with
// country display fields.
func (s *StatusService) AllOperationalHours(ctx context.Context) ([]*models.OperationalHoursDetail, error) {
	return s.hoursRepo.FindAllDetails(ctx)
}

// TimezoneOffset returns the country's current UTC offset in seconds, zero
// when the country or its timezone is unknown.
func (s *StatusService) TimezoneOffset(ctx context.Context, countryCode string) int {
	country, err := s.countryRepo.FindByCode(ctx, countryCode)
	if err != nil || country.Timezone == "" {
		return 0
	}
	loc, err := time.LoadLocation(country.Timezone)
	if err != nil {
		return 0
	}
	_, offset := s.now().In(loc).Zone()
	return offset
}

func validateHours(hours *models.OperationalHours) error {
	if hours == nil {
		return fmt.Errorf("%w: operational hours are required", ErrInvalidInput)
	}
	if hours.Timezone == "" {
		return fmt.Errorf("%w: timezone is required", ErrInvalidInput)
	}
	if _, err := time.LoadLocation(hours.Timezone); err != nil {
		return fmt.Errorf("%w: unknown timezone: %q", ErrInvalidInput, hours.Timezone)
	}
	start, err := evaluator.ParseClock(hours.OperationalStart)
	if err != nil {
		return fmt.Errorf("%w: invalid operational_start: %q", ErrInvalidInput, hours.OperationalStart)
	}
	end, err := evaluator.ParseClock(hours.OperationalEnd)
	if err != nil {
		return fmt.Errorf("%w: invalid operational_end: %q", ErrInvalidInput, hours.OperationalEnd)
	}
	if start >= end {
		return fmt.Errorf("%w: operational_start must be earlier than operational_end; overnight windows are not supported", ErrInvalidInput)
	}
	return nil
}
