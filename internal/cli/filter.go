package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

// filterFlags are the selection flags shared by list, summary and export.
type filterFlags struct {
	text      string
	statuses  []string
	goods     []string
	minAmount string
	maxAmount string
	from      string
	to        string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.text, "query", "q", "", "text to look for in name, id, supplier, buyer or goods")
	flags.StringSliceVar(&f.statuses, "status", nil, "pending, completed or cancelled (repeatable)")
	flags.StringSliceVar(&f.goods, "goods", nil, "exact goods name (repeatable)")
	flags.StringVar(&f.minAmount, "min-amount", "", "lowest total amount")
	flags.StringVar(&f.maxAmount, "max-amount", "", "highest total amount")
	flags.StringVar(&f.from, "from", "", "first trade day, YYYY-MM-DD")
	flags.StringVar(&f.to, "to", "", "last trade day, YYYY-MM-DD")
}

func (f *filterFlags) criteria() (query.Criteria, error) {
	c := query.Criteria{Text: f.text}

	for _, s := range f.statuses {
		st := trade.Status(s)
		if !st.Valid() {
			return c, fmt.Errorf("unknown status %q: %w", s, trade.ErrValidation)
		}

		c.Filter.Statuses = append(c.Filter.Statuses, st)
	}

	c.Filter.GoodsName = f.goods

	var err error

	if c.Filter.Amount.Min, err = amountFlag(f.minAmount); err != nil {
		return c, err
	}

	if c.Filter.Amount.Max, err = amountFlag(f.maxAmount); err != nil {
		return c, err
	}

	if c.Filter.Dates.Start, err = query.ParseDay(f.from); err != nil {
		return c, err
	}

	if c.Filter.Dates.End, err = query.ParseDay(f.to); err != nil {
		return c, err
	}

	return c, nil
}

func amountFlag(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}

	v, err := form.ParseAmount(s)
	if err != nil {
		return nil, err
	}

	return &v, nil
}
