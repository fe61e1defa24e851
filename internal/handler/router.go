package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/savings-ledger/pkg/response"
)

// Registrar mounts a resource's routes under the API prefix
type Registrar interface {
	Register(api *mux.Router)
}

func NewRouter(logger *slog.Logger, health *HealthHandler, resources ...Registrar) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger), response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)
	router.HandleFunc("/health/ready", health.Ready).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	for _, resource := range resources {
		resource.Register(api)
	}

	return router
}
