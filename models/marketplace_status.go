package models

import "time"

// MarketplaceStatusValue is the computed open/closed state of a marketplace.
type MarketplaceStatusValue string

const (
	StatusOperational    MarketplaceStatusValue = "operational"
	StatusNonOperational MarketplaceStatusValue = "non-operational"
	// StatusLimited is reserved for partial-hours scenarios; nothing emits it
	// yet but the schema and callers accept it.
	StatusLimited MarketplaceStatusValue = "limited"
)

const (
	MessageOperational  = "Marketplace is currently operational"
	MessageClosedPrefix = "Marketplace is currently closed. Opens at "
)

// MarketplaceStatus is the persisted per-country status row. It is a cache of
// the evaluator's output so reads don't recompute.
type MarketplaceStatus struct {
	CountryID           string                 `db:"country_id" json:"country_id"`
	CurrentStatus       MarketplaceStatusValue `db:"current_status" json:"current_status"`
	CurrentTimeLocal    string                 `db:"current_time_local" json:"current_time_local"`
	NextOperationalTime *time.Time             `db:"next_operational_time" json:"next_operational_time"`
	StatusMessage       string                 `db:"status_message" json:"status_message"`
	LastUpdated         time.Time              `db:"last_updated" json:"last_updated"`
}

// MarketplaceStatusDetail is MarketplaceStatus joined with the country display
// fields the status endpoints return.
type MarketplaceStatusDetail struct {
	MarketplaceStatus
	CountryName     string `json:"country_name"`
	CountryTimezone string `json:"country_timezone"`
	CurrencyCode    string `json:"currency_code"`
	CurrencySymbol  string `json:"currency_symbol"`
}

// DefaultMarketplaceStatus is the context-free payload returned when a caller
// cannot be mapped to a known country. A configuration gap degrades to this
// rather than an error.
func DefaultMarketplaceStatus() *MarketplaceStatusDetail {
	return &MarketplaceStatusDetail{
		MarketplaceStatus: MarketplaceStatus{
			CurrentStatus:    StatusOperational,
			CurrentTimeLocal: "12:00:00",
			StatusMessage:    MessageOperational,
		},
		CountryName:     "Unknown",
		CountryTimezone: "UTC",
		CurrencyCode:    "USD",
		CurrencySymbol:  "$",
	}
}
