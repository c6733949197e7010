package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tradebook/internal/export"
	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
	r.Get("/digest", h.digest)
}

type digestResponse struct {
	Transactions []*trade.Transaction `json:"transactions"`
	Digest       string               `json:"digest"`
}

// download renders the selection fully before the first byte is sent, so a
// failed export still gets a proper error status.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	f, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	c, err := httpio.Criteria(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.svc.Export(r.Context(), f, c, &buf); err != nil {
		httpio.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", f.FileName(h.now())))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "format", f, "error", err)
	}
}

func (h *Handler) digest(w http.ResponseWriter, r *http.Request) {
	c, err := httpio.Criteria(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	txs, err := h.svc.Select(r.Context(), c)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, digestResponse{
		Transactions: txs,
		Digest:       export.Digest(txs),
	})
}
