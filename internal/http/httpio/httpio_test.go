package httpio_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/http/httpio"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, httpio.StatusFor(fmt.Errorf("id x: %w", trade.ErrNotFound)))
	assert.Equal(t, http.StatusConflict, httpio.StatusFor(trade.ErrDuplicateKey))
	assert.Equal(t, http.StatusUnprocessableEntity, httpio.StatusFor(form.FieldErrors{"amount": "gt"}))
	assert.Equal(t, http.StatusServiceUnavailable, httpio.StatusFor(trade.ErrStorageUnavailable))
	assert.Equal(t, http.StatusInternalServerError, httpio.StatusFor(errors.New("boom")))
}

func TestError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	httpio.Error(rec, req, errors.New("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal error"}`, rec.Body.String())
}

func TestError_FieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	httpio.Error(rec, req, form.FieldErrors{"amount": "gt"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"message":"validation failed","errors":{"amount":"gt"}}`, rec.Body.String())
}

func TestCriteria(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/?q=north&status=pending&status=completed&goods=Wheat&min_amount=100&end_date=2024-03-15", nil)

	c, err := httpio.Criteria(req)
	require.NoError(t, err)

	assert.Equal(t, "north", c.Text)
	assert.Equal(t, []trade.Status{trade.StatusPending, trade.StatusCompleted}, c.Filter.Statuses)
	assert.Equal(t, []string{"Wheat"}, c.Filter.GoodsName)
	require.NotNil(t, c.Filter.Amount.Min)
	assert.Equal(t, 100.0, *c.Filter.Amount.Min)
	assert.Nil(t, c.Filter.Amount.Max)
	assert.Nil(t, c.Filter.Dates.Start)
	require.NotNil(t, c.Filter.Dates.End)
	assert.Equal(t, 15, c.Filter.Dates.End.Day())
}

func TestCriteria_Invalid(t *testing.T) {
	for _, raw := range []string{"status=lost", "min_amount=lots", "start_date=15-03-2024"} {
		req := httptest.NewRequest(http.MethodGet, "/?"+raw, nil)

		_, err := httpio.Criteria(req)
		assert.ErrorIs(t, err, trade.ErrValidation, raw)
	}
}

type payload struct {
	Name string `json:"name" validate:"required"`
}

func TestDecode(t *testing.T) {
	var p payload

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, httpio.Decode(req, &p))
	assert.Equal(t, "x", p.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
	assert.ErrorIs(t, httpio.Decode(req, &p), trade.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.ErrorIs(t, httpio.Decode(req, &p), trade.ErrValidation)
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpio.JSON(rec, http.StatusCreated, map[string]int{"n": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got["n"])
}
