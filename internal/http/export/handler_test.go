package export_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/tradebook/internal/export"
	httpexport "github.com/MrJamesThe3rd/tradebook/internal/http/export"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

func listing() []*trade.Transaction {
	return []*trade.Transaction{
		{
			ID:          "a",
			Name:        "Wheat lot",
			Date:        time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			Status:      trade.StatusPending,
			TotalAmount: 1000,
			LoadBuy:     &trade.LoadBuy{SupplierName: "Northern Farms Ltd.", GoodsName: "Wheat", TotalCost: 1000},
		},
		{
			ID:          "b",
			Name:        "Rice run",
			Date:        time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			Status:      trade.StatusCompleted,
			TotalAmount: 500,
		},
	}
}

func newRouter(t *testing.T, setupMock func(m *trade.MockRepository)) http.Handler {
	t.Helper()

	repo := trade.NewMockRepository(gomock.NewController(t))
	if setupMock != nil {
		setupMock(repo)
	}

	r := chi.NewRouter()
	httpexport.NewHandler(export.NewService(trade.NewService(repo))).Routes(r)

	return r
}

func TestHandler_Download(t *testing.T) {
	router := newRouter(t, func(m *trade.MockRepository) {
		m.EXPECT().ListTransactions(gomock.Any()).Return(listing(), nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?format=csv&status=pending", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Northern Farms Ltd.")
}

func TestHandler_DownloadUnknownFormat(t *testing.T) {
	router := newRouter(t, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?format=docx", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_DownloadStoreDown(t *testing.T) {
	router := newRouter(t, func(m *trade.MockRepository) {
		m.EXPECT().ListTransactions(gomock.Any()).Return(nil, trade.ErrStorageUnavailable)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?format=pdf", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
}

func TestHandler_Digest(t *testing.T) {
	router := newRouter(t, func(m *trade.MockRepository) {
		m.EXPECT().ListTransactions(gomock.Any()).Return(listing(), nil)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/digest", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Transactions []trade.Transaction `json:"transactions"`
		Digest       string              `json:"digest"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	require.Len(t, got.Transactions, 2)
	assert.Equal(t, "b", got.Transactions[0].ID)
	assert.Equal(t,
		"* 2024-03-16 | Rice run | - | 500.00 | completed | payable 0.00 | receivable 0.00 | 0 attachment(s)\n"+
			"* 2024-03-15 | Wheat lot | Wheat | 1000.00 | pending | payable 0.00 | receivable 0.00 | 0 attachment(s)\n",
		got.Digest)
}
