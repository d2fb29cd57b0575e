package handlers

import (
	"encoding/base64"
	"log"
	"net/http"
)

// trackingPixel is a 1x1 transparent PNG embedded in outgoing emails.
var trackingPixel, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")

// EmailTrackHandler serves the open-tracking pixel referenced by the
// transactional emails and logs each open.
type EmailTrackHandler struct{}

// NewEmailTrackHandler creates the tracking-pixel handler.
func NewEmailTrackHandler() *EmailTrackHandler {
	return &EmailTrackHandler{}
}

// Register wires the handler into a ServeMux.
func (h *EmailTrackHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/email/{username}", h.handle)
}

func (h *EmailTrackHandler) handle(w http.ResponseWriter, r *http.Request) {
	log.Printf("email opened by %s", r.PathValue("username"))

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(trackingPixel); err != nil {
		log.Printf("write tracking pixel: %v", err)
	}
}
