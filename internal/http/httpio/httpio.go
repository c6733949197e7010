// Package httpio holds the request decoding and response writing shared by
// the API handlers.
package httpio

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusFor maps the trade error taxonomy onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, trade.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, trade.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, trade.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, trade.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	}

	return http.StatusInternalServerError
}

// Error writes err as a JSON body. Internal errors are logged and not echoed.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)

	resp := errorResponse{Message: err.Error()}

	var fields form.FieldErrors
	if errors.As(err, &fields) {
		resp.Message = "validation failed"
		resp.Errors = fields
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Message = "internal error"
	}

	JSON(w, status, resp)
}

// Decode reads a JSON body into v and validates it.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w: %w", trade.ErrValidation, err)
	}

	return form.Validate(v)
}

// Criteria reads the shared filter parameters:
// q, status (repeatable), goods (repeatable), min_amount, max_amount, start_date, end_date.
func Criteria(r *http.Request) (query.Criteria, error) {
	q := r.URL.Query()

	c := query.Criteria{Text: q.Get("q")}

	for _, s := range q["status"] {
		st := trade.Status(s)
		if !st.Valid() {
			return c, fmt.Errorf("unknown status %q: %w", s, trade.ErrValidation)
		}

		c.Filter.Statuses = append(c.Filter.Statuses, st)
	}

	c.Filter.GoodsName = q["goods"]

	var err error

	if c.Filter.Amount.Min, err = amountParam(q.Get("min_amount")); err != nil {
		return c, err
	}

	if c.Filter.Amount.Max, err = amountParam(q.Get("max_amount")); err != nil {
		return c, err
	}

	if c.Filter.Dates.Start, err = query.ParseDay(q.Get("start_date")); err != nil {
		return c, err
	}

	if c.Filter.Dates.End, err = query.ParseDay(q.Get("end_date")); err != nil {
		return c, err
	}

	return c, nil
}

func amountParam(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, trade.ErrValidation)
	}

	return &v, nil
}
