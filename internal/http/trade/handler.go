package trade

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

type Handler struct {
	svc *trade.Service
}

func NewHandler(svc *trade.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Get("/goods", h.goods)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.replace)
		r.Patch("/", h.rename)
		r.Delete("/", h.delete)
		r.Patch("/status", h.setStatus)
		r.Put("/purchase", h.updatePurchase)
		r.Put("/transport", h.updateTransport)
		r.Delete("/transport", h.removeTransport)
		r.Put("/sale", h.updateSale)
		r.Post("/payments", h.addPayment)
		r.Put("/payments", h.replacePayments)
		r.Post("/notes", h.addNote)
		r.Delete("/notes/{noteID}", h.removeNote)
		r.Post("/attachments", h.addAttachment)
		r.Delete("/attachments/{attachmentID}", h.removeAttachment)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	date, err := form.ParseDate(req.Date)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	params := trade.CreateParams{ID: req.ID, Name: req.Name, Date: date}

	if req.Purchase != nil {
		p, err := req.Purchase.params()
		if err != nil {
			httpio.Error(w, r, err)
			return
		}

		params.Purchase = &p
	}

	tx, err := h.svc.Create(r.Context(), params)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusCreated, tx)
}

// selected lists the stored trades matching the request's filter parameters, newest first.
func (h *Handler) selected(r *http.Request) ([]*trade.Transaction, error) {
	c, err := httpio.Criteria(r)
	if err != nil {
		return nil, err
	}

	txs, err := h.svc.List(r.Context())
	if err != nil {
		return nil, err
	}

	txs = query.Apply(txs, c)
	query.SortByDate(txs)

	return txs, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	txs, err := h.selected(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, listResponse{Transactions: txs, Count: len(txs)})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	txs, err := h.selected(r)
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, query.Summarize(txs))
}

func (h *Handler) goods(w http.ResponseWriter, r *http.Request) {
	txs, err := h.svc.List(r.Context())
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	names := query.GoodsNames(txs)
	if names == nil {
		names = []string{}
	}

	httpio.JSON(w, http.StatusOK, goodsResponse{Goods: names})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	httpio.JSON(w, http.StatusOK, tx)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpio.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var tx trade.Transaction
	if err := httpio.Decode(r, &tx); err != nil {
		httpio.Error(w, r, err)
		return
	}

	if tx.Status != "" && !tx.Status.Valid() {
		httpio.Error(w, r, form.FieldErrors{"status": "oneof"})
		return
	}

	tx.ID = chi.URLParam(r, "id")

	h.respond(w, r)(h.svc.Replace(r.Context(), &tx))
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.Rename(r.Context(), chi.URLParam(r, "id"), req.Name))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.SetStatus(r.Context(), chi.URLParam(r, "id"), trade.Status(req.Status)))
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	params, err := req.params()
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.UpdatePurchase(r.Context(), chi.URLParam(r, "id"), params))
}

func (h *Handler) updateTransport(w http.ResponseWriter, r *http.Request) {
	var req transportRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	leg, err := req.leg()
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.UpdateTransport(r.Context(), chi.URLParam(r, "id"), leg))
}

func (h *Handler) removeTransport(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.RemoveTransport(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	params, err := req.params()
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.UpdateSale(r.Context(), chi.URLParam(r, "id"), params))
}

func (h *Handler) addPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	params, err := req.params()
	if err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.AddPayment(r.Context(), chi.URLParam(r, "id"), params))
}

func (h *Handler) replacePayments(w http.ResponseWriter, r *http.Request) {
	var req replacePaymentsRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.ReplacePayments(r.Context(), chi.URLParam(r, "id"), req.Payments))
}

func (h *Handler) addNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.AddNote(r.Context(), chi.URLParam(r, "id"), req.Content))
}

func (h *Handler) removeNote(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.RemoveNote(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "noteID")))
}

func (h *Handler) addAttachment(w http.ResponseWriter, r *http.Request) {
	var req attachmentRequest
	if err := httpio.Decode(r, &req); err != nil {
		httpio.Error(w, r, err)
		return
	}

	h.respond(w, r)(h.svc.AddAttachment(r.Context(), chi.URLParam(r, "id"), trade.AttachmentParams{
		Name:        req.Name,
		Type:        req.Type,
		URI:         req.URI,
		Description: req.Description,
	}))
}

func (h *Handler) removeAttachment(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)(h.svc.RemoveAttachment(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "attachmentID")))
}

// respond writes the outcome of a mutation: the updated trade or the error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request) func(*trade.Transaction, error) {
	return func(tx *trade.Transaction, err error) {
		if err != nil {
			httpio.Error(w, r, err)
			return
		}

		httpio.JSON(w, http.StatusOK, tx)
	}
}
