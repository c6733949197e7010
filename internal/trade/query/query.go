// Package query derives the visible subset of trades from the full list: free
// text search, structured filters, ordering and summary figures. Everything
// here works on an in-memory slice and never touches the store.
package query

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// Criteria combines a free-text query with a structured filter.
type Criteria struct {
	Text   string
	Filter Filter
}

// Filter fields are each optional. Fields combine with AND; values inside a
// field combine with OR.
type Filter struct {
	Statuses  []trade.Status
	GoodsName []string
	Amount    AmountRange
	Dates     DateRange
}

type AmountRange struct {
	Min *float64
	Max *float64
}

// DateRange bounds are widened to whole days: Start from 00:00:00.000 and End
// to 23:59:59.999, both in the bound's own location.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Apply returns the trades of txs matching c, preserving input order.
func Apply(txs []*trade.Transaction, c Criteria) []*trade.Transaction {
	out := make([]*trade.Transaction, 0, len(txs))

	for _, tx := range txs {
		if MatchText(tx, c.Text) && c.Filter.Match(tx) {
			out = append(out, tx)
		}
	}

	return out
}

// MatchText reports whether q occurs, ignoring case, in the name, id, supplier,
// buyer or goods name of tx. The query is not trimmed; only an empty query
// matches everything.
func MatchText(tx *trade.Transaction, q string) bool {
	q = strings.ToLower(q)
	if q == "" {
		return true
	}

	fields := []string{tx.Name, tx.ID}

	if tx.LoadBuy != nil {
		fields = append(fields, tx.LoadBuy.SupplierName, tx.LoadBuy.GoodsName)
	}

	if tx.LoadSold != nil {
		fields = append(fields, tx.LoadSold.BuyerName)
	}

	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}

	return false
}

func (f Filter) Match(tx *trade.Transaction) bool {
	return f.matchStatus(tx) && f.matchGoods(tx) && f.Amount.Match(tx.TotalAmount) && f.Dates.Match(tx.Date)
}

func (f Filter) matchStatus(tx *trade.Transaction) bool {
	if len(f.Statuses) == 0 {
		return true
	}

	return slices.Contains(f.Statuses, tx.Status.Effective())
}

func (f Filter) matchGoods(tx *trade.Transaction) bool {
	if len(f.GoodsName) == 0 {
		return true
	}

	if tx.LoadBuy == nil {
		return false
	}

	return slices.Contains(f.GoodsName, tx.LoadBuy.GoodsName)
}

func (r AmountRange) Match(v float64) bool {
	if r.Min != nil && v < *r.Min {
		return false
	}

	if r.Max != nil && v > *r.Max {
		return false
	}

	return true
}

// Match reports whether t falls inside the range. A zero t never matches a
// range with either bound set.
func (r DateRange) Match(t time.Time) bool {
	if r.Start == nil && r.End == nil {
		return true
	}

	if t.IsZero() {
		return false
	}

	if r.Start != nil && t.Before(startOfDay(*r.Start)) {
		return false
	}

	if r.End != nil && t.After(endOfDay(*r.End)) {
		return false
	}

	return true
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// ParseDay parses a YYYY-MM-DD bound. An empty string yields nil.
func ParseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, trade.ErrValidation)
	}

	return &t, nil
}

// SortByDate orders trades newest first. Undated trades go last; ties are
// broken by id so the order is stable across reloads.
func SortByDate(txs []*trade.Transaction) {
	slices.SortStableFunc(txs, func(a, b *trade.Transaction) int {
		switch {
		case a.Date.IsZero() && !b.Date.IsZero():
			return 1
		case !a.Date.IsZero() && b.Date.IsZero():
			return -1
		}

		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})
}

// GoodsNames lists the distinct purchase goods names in txs, sorted.
func GoodsNames(txs []*trade.Transaction) []string {
	seen := make(map[string]struct{})

	var names []string

	for _, tx := range txs {
		if tx.LoadBuy == nil || tx.LoadBuy.GoodsName == "" {
			continue
		}

		if _, ok := seen[tx.LoadBuy.GoodsName]; ok {
			continue
		}

		seen[tx.LoadBuy.GoodsName] = struct{}{}
		names = append(names, tx.LoadBuy.GoodsName)
	}

	slices.Sort(names)

	return names
}
