package rfid

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xenith-eng/xenith-backend/internal/apperror"
	"github.com/xenith-eng/xenith-backend/internal/httputil"
)

// Handler exposes RFID HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1/rfid", func(r chi.Router) {
		r.Post("/detections", h.recordDetection)
		r.Get("/tags", h.listTags) // ?status=...
		r.Get("/tags/unknown", h.listUnknownTags)
		r.Get("/tags/{id}", h.getTag)
		r.Get("/tags/{id}/detections", h.listDetections)
		r.Post("/tags/enroll", h.enroll)
		r.Post("/tags/unenroll", h.unenroll)
		r.Delete("/tags/{id}", h.deleteTag)
	})
}

func (h *Handler) recordDetection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EPC string `json:"epc"`
		TID string `json:"tid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	tag, err := h.service.RecordDetection(r.Context(), req.EPC, req.TID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tag)
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListTags(r.Context(), TagStatus(r.URL.Query().Get("status")))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tags)
}

func (h *Handler) listUnknownTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.service.ListUnknownTags(r.Context())
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tags)
}

func (h *Handler) getTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.service.GetTag(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tag)
}

func (h *Handler) listDetections(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httputil.Error(w, r, apperror.Validation("invalid limit filter"))
			return
		}
		limit = n
	}
	detections, err := h.service.ListDetections(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, detections)
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EPC             string `json:"epc"`
		InventoryItemID string `json:"inventory_item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	tag, err := h.service.Enroll(r.Context(), req.EPC, req.InventoryItemID)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tag)
}

func (h *Handler) unenroll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EPC string `json:"epc"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, r, apperror.Validation("invalid request body"))
		return
	}
	tag, err := h.service.Unenroll(r.Context(), req.EPC)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, tag)
}

func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTag(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
