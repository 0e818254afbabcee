package groups

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/httputil"
)

// Handler exposes item-group HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1/groups", func(r chi.Router) {
		r.Post("/", h.createGroup)
		r.Get("/", h.listGroups)
		r.Get("/{id}", h.getGroup)
		r.Put("/{id}", h.updateGroup)
		r.Delete("/{id}", h.deleteGroup)

		r.Get("/{id}/items", h.listItems)
		r.Post("/{id}/items", h.addItem)
		r.Delete("/{id}/items/{itemID}", h.removeItem)
	})
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	g, err := h.service.CreateGroup(r.Context(), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, g)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListGroups(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, list)
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, g)
}

func (h *Handler) updateGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	g, err := h.service.UpdateGroup(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, g)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "group deleted"})
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListItems(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	gi, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, gi)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "item removed from group"})
}
