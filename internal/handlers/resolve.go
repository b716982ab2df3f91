package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
	"github.com/lehigh-university-libraries/bookresolver/internal/storage"
)

// maxTextBytes caps the OCR text accepted in one request
const maxTextBytes = 1 << 20

type ResolveRequest struct {
	Text     string `json:"text"`
	ClientID string `json:"client_id"`
}

type ResolveResponse struct {
	ScanID string `json:"scan_id"`
	resolver.Resolution
}

// HandleResolve resolves OCR text to catalog matches. A newer request from
// the same client_id cancels this one, which then answers 409.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBytes)).Decode(&req); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		h.writeError(w, "text is required", http.StatusBadRequest)
		return
	}

	ctx, done := h.scanStore.Begin(r.Context(), req.ClientID)
	defer done()

	entries, err := h.catalog.Entries(ctx)
	if superseded(ctx) {
		h.writeError(w, storage.ErrSuperseded.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("Failed to load catalog", "err", err)
		h.writeError(w, "Failed to load catalog", http.StatusBadGateway)
		return
	}

	res := h.resolver.ResolveDetailed(ctx, req.Text, entries)
	if superseded(ctx) {
		h.writeError(w, storage.ErrSuperseded.Error(), http.StatusConflict)
		return
	}

	scan := h.scanStore.Save(&models.ScanSession{
		Kind:       "resolve",
		ClientID:   req.ClientID,
		Input:      req.Text,
		Candidate:  res.Candidate,
		Source:     res.Source,
		Confidence: res.Extraction.Confidence,
		Matches:    res.Matches,
	})

	slog.Info("Resolved scan", "scan_id", scan.ID, "candidate", res.Candidate, "source", res.Source, "matches", len(res.Matches))
	h.writeJSON(w, ResolveResponse{ScanID: scan.ID, Resolution: res})
}

func superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), storage.ErrSuperseded)
}
