package inventory

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/httputil"
	"github.com/xenith-eng/xenith-backend/internal/modules/auth"
)

// Handler exposes inventory HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1/inventory", func(r chi.Router) {
		r.Post("/items", h.createItem)
		r.Get("/items", h.listItems) // ?status=...&type=...&search=...
		r.Get("/items/{id}", h.getItem)
		r.Patch("/items/{id}", h.updateItem)
		r.Delete("/items/{id}", h.deleteItem)
		r.Get("/items/{id}/contents", h.listContents)

		r.Post("/items/{id}/check-in", h.checkIn)
		r.Post("/items/{id}/check-out", h.checkOut)
		r.Post("/items/{id}/adjust", h.adjust)
		r.Post("/items/{id}/transfer", h.transfer)

		r.Get("/movements", h.listMovements)
		r.Get("/summary", h.summary)
	})
}

func performedBy(r *http.Request) *uuid.UUID {
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		id := p.UserID
		return &id
	}
	return nil
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	item, err := h.service.CreateItem(r.Context(), req, performedBy(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, item)
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	filter := ItemFilter{
		Status: ItemStatus(r.URL.Query().Get("status")),
		Type:   ItemType(r.URL.Query().Get("type")),
		Search: r.URL.Query().Get("search"),
	}
	items, err := h.service.ListItems(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

func (h *Handler) listContents(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListContents(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, items)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	item, err := h.service.UpdateItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	movement, err := h.service.CheckIn(r.Context(), chi.URLParam(r, "id"), req, performedBy(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	movement, err := h.service.CheckOut(r.Context(), chi.URLParam(r, "id"), req, performedBy(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	movement, err := h.service.Adjust(r.Context(), chi.URLParam(r, "id"), req, performedBy(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	movement, err := h.service.Transfer(r.Context(), chi.URLParam(r, "id"), req, performedBy(r))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	filter := MovementFilter{
		Type: MovementType(r.URL.Query().Get("type")),
	}
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		uid, err := uuid.Parse(raw)
		if err != nil {
			httputil.Error(w, r, apperror.Validation("invalid item_id filter"))
			return
		}
		filter.ItemID = &uid
	}
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.Error(w, r, apperror.Validation("invalid from filter, expected RFC3339"))
			return
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.Error(w, r, apperror.Validation("invalid to filter, expected RFC3339"))
			return
		}
		filter.To = &t
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.Error(w, r, apperror.Validation("invalid limit filter"))
			return
		}
		filter.Limit = limit
	}

	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, movements)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, summary)
}
