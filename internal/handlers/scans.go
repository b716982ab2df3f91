package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) HandleScans(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.scanStore.List())
}

func (h *Handler) HandleScanDetail(w http.ResponseWriter, r *http.Request) {
	scan, ok := h.getScanOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.writeJSON(w, scan)
}

func (h *Handler) HandleDeleteScan(w http.ResponseWriter, r *http.Request) {
	scan, ok := h.getScanOrError(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.scanStore.Delete(scan.ID)
	w.WriteHeader(http.StatusNoContent)
}
