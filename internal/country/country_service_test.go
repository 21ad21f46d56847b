package country

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"marketops/db"
	"marketops/internal/testutil"
	"marketops/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dbRepo(t *testing.T, database *sql.DB) db.CountryRepository {
	t.Helper()
	return db.NewRepositoryFactory(database, "marketops_test").NewCountryRepository()
}

func TestCountryList(t *testing.T) {
	database, cleanup := testutil.SetupTestDatabase(t)
	defer cleanup()

	testutil.InsertTestCountry(t, database, &models.Country{
		ID: "1", Code: "IN", Name: "India", FlagIcon: "🇮🇳",
		Timezone: "Asia/Kolkata", CurrencyCode: "INR", CurrencySymbol: "₹", IsActive: true,
	})
	testutil.InsertTestCountry(t, database, &models.Country{
		ID: "2", Code: "AE", Name: "United Arab Emirates", FlagIcon: "🇦🇪",
		Timezone: "Asia/Dubai", CurrencyCode: "AED", CurrencySymbol: "د.إ", IsActive: true,
	})

	service := NewCountryService(dbRepo(t, database))
	handlers := NewHandlers(service)

	req := httptest.NewRequest("GET", "/api/countries", nil)
	rec := httptest.NewRecorder()
	handlers.List(rec, req)

	assert.Equal(t, 200, rec.Code)
	var countries []models.Country
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &countries))
	require.Len(t, countries, 2)
	assert.Equal(t, "India", countries[0].Name)
	assert.Equal(t, "AE", countries[1].Code)
}

func TestCountryList_Empty(t *testing.T) {
	database, cleanup := testutil.SetupTestDatabase(t)
	defer cleanup()

	handlers := NewHandlers(NewCountryService(dbRepo(t, database)))

	req := httptest.NewRequest("GET", "/api/countries", nil)
	rec := httptest.NewRecorder()
	handlers.List(rec, req)

	// An empty registry is an empty array, not an error
	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
