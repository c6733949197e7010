package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

func TestTimeframe_Range(t *testing.T) {
	now := time.Date(2024, 5, 20, 15, 0, 0, 0, time.UTC)

	type testCase struct {
		name      string
		tf        Timeframe
		wantStart string
		wantEnd   string
	}

	tests := []testCase{
		{name: "ThisMonth", tf: TimeframeThisMonth, wantStart: "2024-05-01", wantEnd: "2024-05-20"},
		{name: "LastMonth", tf: TimeframeLastMonth, wantStart: "2024-04-01", wantEnd: "2024-04-30"},
		{name: "ThisQuarter", tf: TimeframeThisQuarter, wantStart: "2024-04-01", wantEnd: "2024-05-20"},
		{name: "ThisYear", tf: TimeframeThisYear, wantStart: "2024-01-01", wantEnd: "2024-05-20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.tf.Range(now)

			require.NotNil(t, r.Start)
			require.NotNil(t, r.End)
			assert.Equal(t, tt.wantStart, r.Start.Format(time.DateOnly))
			assert.Equal(t, tt.wantEnd, r.End.Format(time.DateOnly))
		})
	}

	all := TimeframeAll.Range(now)
	assert.Nil(t, all.Start)
	assert.Nil(t, all.End)
}

func TestTimeframe_LastMonthInJanuary(t *testing.T) {
	r := TimeframeLastMonth.Range(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "2023-12-01", r.Start.Format(time.DateOnly))
	assert.Equal(t, "2023-12-31", r.End.Format(time.DateOnly))
}

func TestDraft_Params(t *testing.T) {
	d := &draft{
		name:     " Wheat lot ",
		date:     "2024-03-15",
		withBuy:  true,
		supplier: "Northern Farms Ltd.",
		goods:    "Wheat",
		quantity: "1,000",
		rate:     "₹ 25.50",
		paid:     "",
	}

	p, err := d.params()
	require.NoError(t, err)

	assert.Equal(t, "Wheat lot", p.Name)
	assert.Equal(t, "2024-03-15", p.Date.Format(time.DateOnly))
	require.NotNil(t, p.Purchase)
	assert.Equal(t, 1000.0, p.Purchase.Quantity)
	assert.Equal(t, 25.5, p.Purchase.PurchaseRate)
	assert.Zero(t, p.Purchase.AmountPaid)

	d.withBuy = false
	p, err = d.params()
	require.NoError(t, err)
	assert.Nil(t, p.Purchase)

	d.date = "15/03/2024"
	_, err = d.params()
	assert.ErrorIs(t, err, trade.ErrValidation)
}

func TestListModel_Filters(t *testing.T) {
	txs := []*trade.Transaction{
		{ID: "a", Name: "Wheat lot", Status: trade.StatusPending, LoadBuy: &trade.LoadBuy{GoodsName: "Wheat"}},
		{ID: "b", Name: "Rice run", Status: trade.StatusCompleted, LoadBuy: &trade.LoadBuy{GoodsName: "Rice"}},
	}

	var m tea.Model = NewListModel(nil)

	m, _ = m.Update(loadListMsg{txs: txs})
	assert.Len(t, m.(ListModel).txs, 2)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.Len(t, m.(ListModel).txs, 1)
	assert.Equal(t, "a", m.(ListModel).txs[0].ID)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	require.Len(t, m.(ListModel).txs, 1)
	assert.Equal(t, "b", m.(ListModel).txs[0].ID)

	assert.Contains(t, m.View(), "1 of 2 trades")
}
