package models

// Country is a supported marketplace country. Rows are managed by the admin
// side; this service only reads them.
type Country struct {
	ID             string `db:"id" json:"id"`
	Code           string `db:"code" json:"code"`
	Name           string `db:"name" json:"name"`
	FlagIcon       string `db:"flag_icon" json:"flag_icon"`
	Timezone       string `db:"timezone" json:"timezone"`
	CurrencyCode   string `db:"currency_code" json:"currency_code"`
	CurrencySymbol string `db:"currency_symbol" json:"currency_symbol"`
	IsActive       bool   `db:"is_active" json:"is_active"`
}

// OperationalHours is the per-country daily operating window. Start and end
// are wall-clock local times in "HH:MM:SS" form, start earlier than end within
// a single day. Overnight windows are not supported.
type OperationalHours struct {
	CountryID          string `db:"country_id" json:"country_id"`
	Timezone           string `db:"timezone" json:"timezone"`
	OperationalStart   string `db:"operational_start" json:"operational_start"`
	OperationalEnd     string `db:"operational_end" json:"operational_end"`
	IsOperational      bool   `db:"is_operational" json:"is_operational"`
	WeekendOperational bool   `db:"weekend_operational" json:"weekend_operational"`
	// HolidayOperational is stored and round-tripped but not yet consulted by
	// the evaluator; it waits on a holiday-calendar source.
	HolidayOperational bool `db:"holiday_operational" json:"holiday_operational"`
}

// OperationalHoursDetail is OperationalHours joined with country display
// fields for listing endpoints.
type OperationalHoursDetail struct {
	OperationalHours
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
}
