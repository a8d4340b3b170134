package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/duetlabs/duet/internal/apperr"
	"github.com/duetlabs/duet/internal/journal"
)

func entryID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListEntries handles GET /entries. Any authenticated role may read.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	entries, total, err := h.journal.List(r.Context(), limit, offset, q.Get("q"))
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

// AddEntry handles POST /add-entry (author only).
func (h *Handler) AddEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, detailBody("content is required"))
		return
	}

	entry, err := h.journal.Add(r.Context(), req.Content)
	if err != nil {
		slog.Error("add entry failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// UpdateEntry handles PUT /entries/{id} (author only).
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id, err := entryID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid entry id"))
		return
	}
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, detailBody("content is required"))
		return
	}

	entry, err := h.journal.Update(r.Context(), id, req.Content)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, detailBody("Entry not found"))
			return
		}
		slog.Error("update entry failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry handles DELETE /entries/{id} (author only).
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody("invalid entry id"))
		return
	}
	if err := h.journal.Delete(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, detailBody("Entry not found"))
			return
		}
		slog.Error("delete entry failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, detailBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
