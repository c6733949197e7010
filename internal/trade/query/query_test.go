package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

func ids(txs []*trade.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, tx.ID)
	}

	return out
}

func day(t *testing.T, s string) *time.Time {
	t.Helper()

	d, err := query.ParseDay(s)
	require.NoError(t, err)

	return d
}

func fixtures() []*trade.Transaction {
	return []*trade.Transaction{
		{
			ID:          "a",
			Name:        "March wheat",
			Date:        time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			Status:      trade.StatusPending,
			TotalAmount: 100,
			LoadBuy:     &trade.LoadBuy{SupplierName: "Northern Farms Ltd.", GoodsName: "Wheat", TotalCost: 100},
		},
		{
			ID:          "b",
			Name:        "Rice run",
			Date:        time.Date(2024, 3, 16, 8, 0, 0, 0, time.UTC),
			Status:      trade.StatusCompleted,
			TotalAmount: 500,
			LoadBuy:     &trade.LoadBuy{SupplierName: "Delta Agro", GoodsName: "Rice", TotalCost: 500},
			LoadSold:    &trade.LoadSold{BuyerName: "Harbor Mills"},
		},
		{
			ID:          "c",
			Name:        "Unsorted",
			TotalAmount: 0,
		},
	}
}

func TestApply(t *testing.T) {
	type testCase struct {
		name     string
		criteria func(t *testing.T) query.Criteria
		want     []string
	}

	tests := []testCase{
		{
			name:     "NoCriteria",
			criteria: func(*testing.T) query.Criteria { return query.Criteria{} },
			want:     []string{"a", "b", "c"},
		},
		{
			name: "StatusCompleted",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{Statuses: []trade.Status{trade.StatusCompleted}}}
			},
			want: []string{"b"},
		},
		{
			name: "UnsetStatusReadsAsPending",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{Statuses: []trade.Status{trade.StatusPending}}}
			},
			want: []string{"a", "c"},
		},
		{
			name: "SupplierTextAnyCase",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Text: "NoRtH"}
			},
			want: []string{"a"},
		},
		{
			name: "BuyerText",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Text: "harbor"}
			},
			want: []string{"b"},
		},
		{
			name: "GoodsOrWithinField",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{GoodsName: []string{"Wheat", "Rice"}}}
			},
			want: []string{"a", "b"},
		},
		{
			name: "AmountRange",
			criteria: func(*testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{Amount: query.AmountRange{Min: new(100.0), Max: new(499.0)}}}
			},
			want: []string{"a"},
		},
		{
			name: "SameDayInclusive",
			criteria: func(t *testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{Dates: query.DateRange{Start: day(t, "2024-03-15"), End: day(t, "2024-03-15")}}}
			},
			want: []string{"a"},
		},
		{
			name: "OpenEndedStart",
			criteria: func(t *testing.T) query.Criteria {
				return query.Criteria{Filter: query.Filter{Dates: query.DateRange{Start: day(t, "2024-03-16")}}}
			},
			want: []string{"b"},
		},
		{
			name: "FieldsCombineWithAnd",
			criteria: func(t *testing.T) query.Criteria {
				return query.Criteria{
					Text: "rice",
					Filter: query.Filter{
						Statuses: []trade.Status{trade.StatusPending},
					},
				}
			},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.Apply(fixtures(), tt.criteria(t))
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMatchText(t *testing.T) {
	tx := &trade.Transaction{ID: "7f3c1a", Name: "Chana lot"}

	assert.True(t, query.MatchText(tx, "7F3C"))
	assert.True(t, query.MatchText(tx, "chana "))
	assert.True(t, query.MatchText(tx, " LOT"))
	assert.True(t, query.MatchText(tx, ""))
	assert.False(t, query.MatchText(tx, "  chana "))
	assert.False(t, query.MatchText(tx, " "))
	assert.False(t, query.MatchText(tx, "wheat"))
}

func TestDateRange_Match(t *testing.T) {
	dated := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.True(t, query.DateRange{Start: day(t, "2024-03-15"), End: day(t, "2024-03-15")}.Match(dated))
	assert.False(t, query.DateRange{Start: day(t, "2024-03-16")}.Match(dated))
	assert.True(t, query.DateRange{End: day(t, "2024-03-15")}.Match(time.Date(2024, 3, 15, 23, 59, 59, 999_000_000, time.UTC)))
	assert.False(t, query.DateRange{End: day(t, "2024-03-15")}.Match(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.False(t, query.DateRange{Start: day(t, "2024-01-01")}.Match(time.Time{}))
	assert.True(t, query.DateRange{}.Match(time.Time{}))
}

func TestParseDay(t *testing.T) {
	d, err := query.ParseDay("")
	require.NoError(t, err)
	assert.Nil(t, d)

	_, err = query.ParseDay("15/03/2024")
	assert.ErrorIs(t, err, trade.ErrValidation)
}

func TestSortByDate(t *testing.T) {
	txs := fixtures()
	query.SortByDate(txs)

	assert.Equal(t, []string{"b", "a", "c"}, ids(txs))
}

func TestGoodsNames(t *testing.T) {
	txs := append(fixtures(), &trade.Transaction{ID: "d", LoadBuy: &trade.LoadBuy{GoodsName: "Wheat"}})

	assert.Equal(t, []string{"Rice", "Wheat"}, query.GoodsNames(txs))
}

func TestSummarize(t *testing.T) {
	txs := []*trade.Transaction{
		{
			Status:         trade.StatusPending,
			LoadBuy:        &trade.LoadBuy{TotalCost: 5000, Balance: 3500},
			LoadSold:       &trade.LoadSold{TotalSaleAmount: 6000, PendingBalance: 6000},
			Transportation: &trade.Transportation{Charges: 400},
			Payments: []trade.Payment{
				{Amount: 1500},
			},
		},
		{
			Status:   trade.StatusCompleted,
			LoadBuy:  &trade.LoadBuy{TotalCost: 1000},
			LoadSold: &trade.LoadSold{TotalSaleAmount: 1200},
			Payments: []trade.Payment{
				{Amount: 1000},
				{Amount: 1200, IsIncoming: true},
			},
		},
		{
			Status:  trade.StatusCancelled,
			LoadBuy: &trade.LoadBuy{TotalCost: 99999},
		},
	}

	s := query.Summarize(txs)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.ByStatus[trade.StatusCancelled])
	assert.Equal(t, 6000.0, s.Purchases)
	assert.Equal(t, 7200.0, s.Sales)
	assert.Equal(t, 3500.0, s.Payable)
	assert.Equal(t, 6000.0, s.Receivable)
	assert.Equal(t, 800.0, s.GrossMargin)
	assert.Equal(t, 1200.0, s.PaymentsIn)
	assert.Equal(t, 2500.0, s.PaymentsOut)
}
