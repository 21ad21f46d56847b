package web

import (
	"marketops/internal/country"
	"marketops/internal/status"

	"github.com/gorilla/mux"
)

// SetupRoutes wires the API endpoints onto a mux router.
func SetupRoutes(statusHandlers *status.Handlers, countryHandlers *country.Handlers) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/countries", countryHandlers.List).Methods("GET")
	api.HandleFunc("/marketplace/status", statusHandlers.GetStatus).Methods("GET")
	api.HandleFunc("/marketplace/status", statusHandlers.PostStatus).Methods("POST")
	api.HandleFunc("/marketplace/operational-hours", statusHandlers.ListOperationalHours).Methods("GET")
	api.HandleFunc("/marketplace/timezone-offset", statusHandlers.GetTimezoneOffset).Methods("GET")

	return r
}
