package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/rpattn/influencer-api/internal/middleware"
)

type Handler struct {
	service *Service
	logger  *log.Logger
}

func newHandler(service *Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}
}

// NewCategoriesHandler serves GET /api/categories.
func NewCategoriesHandler(service *Service, logger *log.Logger) http.Handler {
	h := newHandler(service, logger)
	return h.guard(func(w http.ResponseWriter, r *http.Request) {
		payload, err := h.service.Categories(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})
}

// NewLocationsHandler serves GET /api/locations.
func NewLocationsHandler(service *Service, logger *log.Logger) http.Handler {
	h := newHandler(service, logger)
	return h.guard(func(w http.ResponseWriter, r *http.Request) {
		payload, err := h.service.Locations(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	})
}

func (h *Handler) guard(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			next(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		}
	})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("catalog request failed",
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"err", err,
	)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
