package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"marketops/db"
	"marketops/models"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// SetupTestDatabase opens a throwaway SQLite database with the full schema.
func SetupTestDatabase(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	testDB, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on")
	require.NoError(t, err)

	err = db.InitializeSchema(testDB)
	require.NoError(t, err)

	cleanup := func() {
		testDB.Close()
	}

	return testDB, cleanup
}

// SetupTestRepositoryFactory returns a repository factory over a throwaway
// database.
func SetupTestRepositoryFactory(t *testing.T) (*db.RepositoryFactory, func()) {
	t.Helper()
	testDB, cleanup := SetupTestDatabase(t)
	return db.NewRepositoryFactory(testDB, "marketops_test"), cleanup
}

// InsertTestCountry inserts a country row for tests.
func InsertTestCountry(t *testing.T, database *sql.DB, country *models.Country) {
	t.Helper()
	_, err := database.Exec(`INSERT INTO countries
		(id, code, name, flag_icon, timezone, currency_code, currency_symbol, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		country.ID, country.Code, country.Name, country.FlagIcon,
		country.Timezone, country.CurrencyCode, country.CurrencySymbol, country.IsActive)
	require.NoError(t, err)
}
