package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/bookresolver/internal/catalog"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
	"github.com/lehigh-university-libraries/bookresolver/internal/storage"
)

// Handler serves the resolve, search and scan history endpoints
type Handler struct {
	resolver  *resolver.Resolver
	catalog   catalog.Source
	scanStore *storage.ScanStore
}

// New returns a Handler resolving against src. A nil store gets a default
// sized ScanStore.
func New(r *resolver.Resolver, src catalog.Source, store *storage.ScanStore) *Handler {
	if store == nil {
		store = storage.New(0)
	}
	return &Handler{
		resolver:  r,
		catalog:   src,
		scanStore: store,
	}
}

// writeJSON encodes data as a 200 JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message, "status", code)
	} else {
		slog.Debug(message, "status", code)
	}
	http.Error(w, message, code)
}

// Scan helpers
func (h *Handler) getScanOrError(w http.ResponseWriter, scanID string) (*models.ScanSession, bool) {
	scan, exists := h.scanStore.Get(scanID)
	if !exists {
		h.writeError(w, "Scan not found", http.StatusNotFound)
		return nil, false
	}
	return scan, true
}
