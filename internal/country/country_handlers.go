package country

import (
	"encoding/json"
	"net/http"
)

// Handlers holds the country HTTP handlers
type Handlers struct {
	Service *CountryService
}

// NewHandlers creates new country HTTP handlers
func NewHandlers(service *CountryService) *Handlers {
	return &Handlers{Service: service}
}

// List handles fetching the country registry. It returns a bare array; an
// empty registry is an empty array, not an error.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	countries, err := h.Service.List(r.Context())
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "A database error occurred while fetching countries",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(countries)
}
