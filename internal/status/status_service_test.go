package status

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"marketops/db"
	"marketops/internal/testutil"
	"marketops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver struct {
	code string
}

func (s *stubResolver) ResolveCountry(ctx context.Context, ip string) string {
	return s.code
}

type fixture struct {
	service    *StatusService
	database   *sql.DB
	hoursRepo  db.OperationalHoursRepository
	statusRepo db.MarketplaceStatusRepository
	resolver   *stubResolver
	cleanup    func()
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	database, cleanupDB := testutil.SetupTestDatabase(t)
	factory := db.NewRepositoryFactory(database, "marketops_test")
	manager := db.NewDBManager()
	resolver := &stubResolver{}

	service := NewStatusService(
		factory.NewCountryRepository(),
		factory.NewOperationalHoursRepository(),
		factory.NewMarketplaceStatusRepository(),
		resolver,
		manager,
	)

	return &fixture{
		service:    service,
		database:   database,
		hoursRepo:  factory.NewOperationalHoursRepository(),
		statusRepo: factory.NewMarketplaceStatusRepository(),
		resolver:   resolver,
		cleanup: func() {
			manager.Stop()
			cleanupDB()
		},
	}
}

func (f *fixture) insertCountry(t *testing.T, id, code, timezone string) {
	t.Helper()
	testutil.InsertTestCountry(t, f.database, &models.Country{
		ID:             id,
		Code:           code,
		Name:           "Country " + code,
		Timezone:       timezone,
		CurrencyCode:   "USD",
		CurrencySymbol: "$",
		IsActive:       true,
	})
}

func (f *fixture) insertHours(t *testing.T, countryID, timezone string, weekend bool) {
	t.Helper()
	err := f.hoursRepo.Upsert(context.Background(), &models.OperationalHours{
		CountryID:          countryID,
		Timezone:           timezone,
		OperationalStart:   "09:00:00",
		OperationalEnd:     "18:00:00",
		IsOperational:      true,
		WeekendOperational: weekend,
		HolidayOperational: true,
	})
	require.NoError(t, err)
}

// fixedNow pins the service clock to a known instant.
func (f *fixture) fixedNow(t time.Time) {
	f.service.now = func() time.Time { return t }
}

func TestGetStatusByCountry_LazyDefault(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")

	detail, err := f.service.GetStatusByCountry(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusOperational, detail.CurrentStatus)
	assert.Equal(t, models.MessageOperational, detail.StatusMessage)
	assert.Equal(t, "Country IN", detail.CountryName)
	assert.Equal(t, "Asia/Kolkata", detail.CountryTimezone)
	assert.Nil(t, detail.NextOperationalTime)

	// The default row is persisted, not just synthesized
	again, err := f.service.GetStatusByCountry(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, detail.LastUpdated.Unix(), again.LastUpdated.Unix())
}

func TestGetStatusByCountry_UnknownCountry(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()

	_, err := f.service.GetStatusByCountry(context.Background(), "missing")
	assert.Equal(t, db.ErrNotFound, err)
}

func TestRefreshOne_ComputesAndPersists(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.insertHours(t, "1", "Asia/Kolkata", false)

	// Tuesday 14:30 UTC is 20:00 IST, past the 18:00 close
	f.fixedNow(time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC))

	ok, err := f.service.RefreshOne(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, ok)

	detail, err := f.service.GetStatusByCountry(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNonOperational, detail.CurrentStatus)
	assert.Equal(t, "20:00:00", detail.CurrentTimeLocal)
	require.NotNil(t, detail.NextOperationalTime)
	// Wednesday 09:00 IST is 03:30 UTC
	assert.Equal(t, time.Date(2025, 1, 8, 3, 30, 0, 0, time.UTC),
		detail.NextOperationalTime.UTC())
	assert.Equal(t, "Marketplace is currently closed. Opens at 09:00:00", detail.StatusMessage)
}

func TestRefreshOne_Idempotent(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.insertHours(t, "1", "Asia/Kolkata", false)
	f.fixedNow(time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC))

	ok, err := f.service.RefreshOne(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, ok)
	first, err := f.service.GetStatusByCountry(context.Background(), "1")
	require.NoError(t, err)

	ok, err = f.service.RefreshOne(context.Background(), "1")
	require.NoError(t, err)
	require.True(t, ok)
	second, err := f.service.GetStatusByCountry(context.Background(), "1")
	require.NoError(t, err)

	assert.Equal(t, first.CurrentStatus, second.CurrentStatus)
	assert.Equal(t, first.CurrentTimeLocal, second.CurrentTimeLocal)
	assert.Equal(t, first.NextOperationalTime.UTC(), second.NextOperationalTime.UTC())
}

func TestRefreshOne_MissingConfigIsSkip(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()

	// Unknown country
	ok, err := f.service.RefreshOne(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// Country without operational hours
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	ok, err = f.service.RefreshOne(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshAll_BatchIsolation(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.insertHours(t, "1", "Asia/Kolkata", false)
	f.insertCountry(t, "2", "AE", "Asia/Dubai") // no operational hours
	f.fixedNow(time.Date(2025, 1, 7, 14, 30, 0, 0, time.UTC))

	count, err := f.service.RefreshAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The configured country was refreshed
	detail, err := f.statusRepo.FindDetailByCountryID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNonOperational, detail.CurrentStatus)

	// The unconfigured one was left untouched
	_, err = f.statusRepo.FindDetailByCountryID(context.Background(), "2")
	assert.Equal(t, db.ErrNotFound, err)
}

func TestGetStatusByIP_GracefulDegradation(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.resolver.code = ""

	detail := f.service.GetStatusByIP(context.Background(), "203.0.113.9")
	assert.Equal(t, models.StatusOperational, detail.CurrentStatus)
	assert.Equal(t, "Unknown", detail.CountryName)
	assert.Equal(t, "UTC", detail.CountryTimezone)
	assert.Equal(t, "USD", detail.CurrencyCode)
}

func TestGetStatusByIP_Resolved(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.insertHours(t, "1", "Asia/Kolkata", false)
	f.fixedNow(time.Date(2025, 1, 7, 7, 0, 0, 0, time.UTC)) // 12:30 IST, open

	_, err := f.service.RefreshOne(context.Background(), "1")
	require.NoError(t, err)

	f.resolver.code = "IN"
	detail := f.service.GetStatusByIP(context.Background(), "203.0.113.9")
	assert.Equal(t, models.StatusOperational, detail.CurrentStatus)
	assert.Equal(t, "Country IN", detail.CountryName)
}

func TestGetStatusByIP_ResolvedButNoStatusRow(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.resolver.code = "IN"

	// No status row persisted yet: the default payload is returned
	detail := f.service.GetStatusByIP(context.Background(), "203.0.113.9")
	assert.Equal(t, "Unknown", detail.CountryName)
	assert.Equal(t, models.StatusOperational, detail.CurrentStatus)
}

func TestUpdateOperationalHours_RefreshesImmediately(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "GB", "Europe/London")
	// Wednesday 12:00 London time
	f.fixedNow(time.Date(2025, 1, 8, 12, 0, 0, 0, time.UTC))

	err := f.service.UpdateOperationalHours(context.Background(), "1", &models.OperationalHours{
		Timezone:           "Europe/London",
		OperationalStart:   "09:00:00",
		OperationalEnd:     "17:00:00",
		IsOperational:      true,
		WeekendOperational: false,
	})
	require.NoError(t, err)

	detail, err := f.statusRepo.FindDetailByCountryID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOperational, detail.CurrentStatus)

	// Shrinking the window past noon flips the cached status in the same call
	err = f.service.UpdateOperationalHours(context.Background(), "1", &models.OperationalHours{
		Timezone:           "Europe/London",
		OperationalStart:   "09:00:00",
		OperationalEnd:     "11:00:00",
		IsOperational:      true,
		WeekendOperational: false,
	})
	require.NoError(t, err)

	detail, err = f.statusRepo.FindDetailByCountryID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNonOperational, detail.CurrentStatus)
}

func TestUpdateOperationalHours_Validation(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "GB", "Europe/London")

	cases := []struct {
		name  string
		hours *models.OperationalHours
	}{
		{"nil hours", nil},
		{"missing timezone", &models.OperationalHours{
			OperationalStart: "09:00:00", OperationalEnd: "18:00:00"}},
		{"unknown timezone", &models.OperationalHours{
			Timezone: "Mars/Olympus", OperationalStart: "09:00:00", OperationalEnd: "18:00:00"}},
		{"bad start", &models.OperationalHours{
			Timezone: "Europe/London", OperationalStart: "9am", OperationalEnd: "18:00:00"}},
		{"overnight window", &models.OperationalHours{
			Timezone: "Europe/London", OperationalStart: "22:00:00", OperationalEnd: "06:00:00"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.service.UpdateOperationalHours(context.Background(), "1", tc.hours)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	// No partial write happened
	_, err := f.hoursRepo.FindByCountryID(context.Background(), "1")
	assert.Equal(t, db.ErrNotFound, err)
}

func TestUpdateOperationalHours_UnknownCountry(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()

	err := f.service.UpdateOperationalHours(context.Background(), "missing", &models.OperationalHours{
		Timezone: "UTC", OperationalStart: "09:00:00", OperationalEnd: "18:00:00"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateOperationalHours_StoreFailureIsNotInvalidInput(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "GB", "Europe/London")

	// A broken store must surface as an internal error, not as bad input
	require.NoError(t, f.database.Close())
	err := f.service.UpdateOperationalHours(context.Background(), "1", &models.OperationalHours{
		Timezone: "Europe/London", OperationalStart: "09:00:00", OperationalEnd: "17:00:00"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestTimezoneOffset(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.fixedNow(time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 19800, f.service.TimezoneOffset(context.Background(), "IN"))
	assert.Equal(t, 0, f.service.TimezoneOffset(context.Background(), "XX"))
}

func TestAllOperationalHours(t *testing.T) {
	f := setupFixture(t)
	defer f.cleanup()
	f.insertCountry(t, "1", "IN", "Asia/Kolkata")
	f.insertCountry(t, "2", "AE", "Asia/Dubai")
	f.insertHours(t, "1", "Asia/Kolkata", false)
	f.insertHours(t, "2", "Asia/Dubai", true)

	details, err := f.service.AllOperationalHours(context.Background())
	require.NoError(t, err)
	require.Len(t, details, 2)
	// Ordered by country name
	assert.Equal(t, "AE", details[0].CountryCode)
	assert.Equal(t, "IN", details[1].CountryCode)
	assert.True(t, details[0].WeekendOperational)
}
