package influencer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/rpattn/influencer-api/internal/domain"
	"github.com/rpattn/influencer-api/internal/middleware"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// ListPath and ExportPath are the only routes the handler answers.
	ListPath   = "/api/influencers"
	ExportPath = ListPath + "/export"
)

type Handler struct {
	service *Service
	logger  *log.Logger
}

func NewHTTPHandler(service *Service, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{service: service, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch strings.TrimSuffix(r.URL.Path, "/") {
	case ListPath:
		h.handleGet(w, r)
	case ExportPath:
		h.handleExport(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	query := ParseQuery(r.URL.Query(), h.service.Limits())
	resp, err := h.service.Get(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Body())
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	query := ParseQuery(r.URL.Query(), h.service.Limits())
	rows, err := h.service.ExportRows(r.Context(), query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// Buffer so a failed encode can still answer 500.
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, rows); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", "influencers.xlsx"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Influencer not found")
		return
	}
	h.logger.Error("influencer request failed",
		"path", r.URL.Path,
		"request_id", middleware.RequestIDFromContext(r.Context()),
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
