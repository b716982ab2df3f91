package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

// HandleSearch runs a fuzzy catalog search for ?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	entries, err := h.catalog.Entries(r.Context())
	if err != nil {
		slog.Error("Failed to load catalog", "err", err)
		h.writeError(w, "Failed to load catalog", http.StatusBadGateway)
		return
	}

	results := h.resolver.Search(query, entries)
	h.scanStore.Save(&models.ScanSession{
		Kind:     "search",
		ClientID: r.URL.Query().Get("client_id"),
		Input:    query,
		Results:  results,
	})

	h.writeJSON(w, results)
}
