package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/frelsi/frelsi-api/internal/application/item"
	"github.com/frelsi/frelsi-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

type ItemHandler struct {
	service item.Service
}

func NewItemHandler(service item.Service) *ItemHandler {
	return &ItemHandler{service: service}
}

// ListPublic handles GET /api/items. Supports ?type=, ?author= and ?q=
// filters; only public items are returned.
func (h *ItemHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	filter := domain.ItemFilter{
		Type:   r.URL.Query().Get("type"),
		Author: r.URL.Query().Get("author"),
		Query:  r.URL.Query().Get("q"),
	}
	items, err := h.service.ListPublic(r.Context(), filter)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListAll handles GET /api/items/admin (admin only).
func (h *ItemHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListAll(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}. Private items are only served when the
// request carries a bearer token.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "id")
	authenticated := strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ")

	i, err := h.service.Get(r.Context(), itemID, authenticated)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// Create handles POST /api/items (admin only).
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	i, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}

// Update handles PUT /api/items/{id} (admin only).
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	i, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// TogglePublic handles PATCH /api/items/{id}/toggle-public (admin only).
func (h *ItemHandler) TogglePublic(w http.ResponseWriter, r *http.Request) {
	i, err := h.service.TogglePublic(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, i)
}

// Delete handles DELETE /api/items/{id} (admin only).
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Like handles POST /api/likes/{id}. Unauthenticated but rate limited per
// client address.
func (h *ItemHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.service.Like(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "likes": likes})
}
