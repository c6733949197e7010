package matching

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
	"github.com/MrJamesThe3rd/tradebook/internal/matching"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)
	r.Post("/", h.learn)
}

type suggestResponse struct {
	Raw           string `json:"raw"`
	PreferredName string `json:"preferredName"`
}

type learnRequest struct {
	RawPattern    string `json:"rawPattern" validate:"required"`
	PreferredName string `json:"preferredName" validate:"required"`
}

type listResponse struct {
	Mappings []matching.Mapping `json:"mappings"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("raw")
	if raw == "" {
		httpio.Error(w, r, fmt.Errorf("raw query parameter is required: %w", trade.ErrValidation))
		return
	}

	preferred, err := h.svc.Suggest(r.Context(), raw)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, suggestResponse{Raw: raw, PreferredName: preferred})
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	var req learnRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	if err := h.svc.Learn(r.Context(), req.RawPattern, req.PreferredName); err != nil {
		httpio.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.Mappings(r.Context())
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	if mappings == nil {
		mappings = []matching.Mapping{}
	}

	httpio.JSON(w, http.StatusOK, listResponse{Mappings: mappings})
}
