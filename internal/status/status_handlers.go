package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"marketops/db"
	"marketops/models"
)

// Handlers holds the marketplace status HTTP handlers
type Handlers struct {
	Service *StatusService
}

// NewHandlers creates new marketplace status HTTP handlers
func NewHandlers(service *StatusService) *Handlers {
	return &Handlers{Service: service}
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Success: false, Message: message})
}

// GetStatus handles GET requests for marketplace status. It accepts either a
// country_id or an ip query parameter; with neither, the caller's own IP is
// used.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if countryID := query.Get("country_id"); countryID != "" {
		detail, err := h.Service.GetStatusByCountry(r.Context(), countryID)
		if err != nil {
			if err == db.ErrNotFound {
				writeFailure(w, http.StatusNotFound, "Country not found")
				return
			}
			writeFailure(w, http.StatusInternalServerError, "Failed to get marketplace status")
			return
		}
		writeData(w, detail)
		return
	}

	ip := query.Get("ip")
	if ip == "" {
		ip = clientIP(r)
	}
	writeData(w, h.Service.GetStatusByIP(r.Context(), ip))
}

type postRequest struct {
	Action           string                   `json:"action"`
	CountryID        string                   `json:"country_id"`
	OperationalHours *models.OperationalHours `json:"operational_hours"`
}

// PostStatus handles refresh and configuration actions:
// update_all, update_country, update_operational_hours.
func (h *Handlers) PostStatus(w http.ResponseWriter, r *http.Request) {
	var input postRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON input")
		return
	}

	switch input.Action {
	case "update_all":
		refreshed, err := h.Service.RefreshAll(r.Context())
		if err != nil {
			// Partial failures don't abort the batch; report what succeeded
			writeFailure(w, http.StatusInternalServerError,
				fmt.Sprintf("Marketplace status updated for %d countries, some refreshes failed", refreshed))
			return
		}
		writeJSON(w, http.StatusOK, envelope{
			Success: true,
			Message: fmt.Sprintf("Marketplace status updated for %d countries", refreshed),
		})

	case "update_country":
		if input.CountryID == "" {
			writeFailure(w, http.StatusBadRequest, "Country ID is required")
			return
		}
		ok, err := h.Service.RefreshOne(r.Context(), input.CountryID)
		if err != nil {
			writeFailure(w, http.StatusInternalServerError, "Failed to update marketplace status")
			return
		}
		if !ok {
			writeFailure(w, http.StatusNotFound, "Country or operational hours not configured")
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Marketplace status updated for country"})

	case "update_operational_hours":
		if input.CountryID == "" || input.OperationalHours == nil {
			writeFailure(w, http.StatusBadRequest, "Country ID and operational hours are required")
			return
		}
		if err := h.Service.UpdateOperationalHours(r.Context(), input.CountryID, input.OperationalHours); err != nil {
			if errors.Is(err, ErrInvalidInput) {
				writeFailure(w, http.StatusBadRequest, err.Error())
				return
			}
			writeFailure(w, http.StatusInternalServerError, "Failed to update operational hours")
			return
		}
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Operational hours updated successfully"})

	case "":
		writeFailure(w, http.StatusBadRequest, "Action is required")

	default:
		writeFailure(w, http.StatusBadRequest, "Invalid action")
	}
}

// ListOperationalHours handles GET requests for all configured operating
// windows.
func (h *Handlers) ListOperationalHours(w http.ResponseWriter, r *http.Request) {
	details, err := h.Service.AllOperationalHours(r.Context())
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Failed to get operational hours")
		return
	}
	writeData(w, details)
}

// GetTimezoneOffset handles GET requests for a country's current UTC offset.
func (h *Handlers) GetTimezoneOffset(w http.ResponseWriter, r *http.Request) {
	countryCode := r.URL.Query().Get("country_code")
	if countryCode == "" {
		writeFailure(w, http.StatusBadRequest, "country_code is required")
		return
	}
	writeData(w, map[string]int{"offset_seconds": h.Service.TimezoneOffset(r.Context(), countryCode)})
}

// clientIP extracts the caller's IP, preferring proxy headers over the socket
// address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The first entry is the original client
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if clientIP := r.Header.Get("X-Client-IP"); clientIP != "" {
		return clientIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
