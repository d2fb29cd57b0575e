package handlers

import (
	"log"
	"net/http"

	"github.com/olekhv/contactbook/internal/http/respond"
	"github.com/olekhv/contactbook/internal/storage"
)

// HealthHandler is the liveness probe backed by a trivial database query.
type HealthHandler struct {
	db storage.Pinger
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(db storage.Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health_checker", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		log.Printf("health check: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "Error connecting to the database")
		return
	}
	respond.Message(w, http.StatusOK, "Database is healthy")
}
