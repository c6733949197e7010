package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		filter filterFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := filter.criteria()
			if err != nil {
				return err
			}

			txs, err := rootOpts.app.Exporter.Select(cmd.Context(), c)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), txs)
			}

			return writeTable(cmd.OutOrStdout(), txs)
		},
	}

	filter.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one trade as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tx, err := rootOpts.app.Trades.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), tx)
		},
	}
}

func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var filter filterFlags

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total purchases, sales and open balances of the selected trades",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := filter.criteria()
			if err != nil {
				return err
			}

			txs, err := rootOpts.app.Exporter.Select(cmd.Context(), c)
			if err != nil {
				return err
			}

			s := query.Summarize(txs)

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Trades:      %d (pending %d, completed %d, cancelled %d)\n", s.Count,
				s.ByStatus[trade.StatusPending], s.ByStatus[trade.StatusCompleted], s.ByStatus[trade.StatusCancelled])
			fmt.Fprintf(w, "Purchases:   %s\n", form.FormatAmount(s.Purchases))
			fmt.Fprintf(w, "Sales:       %s\n", form.FormatAmount(s.Sales))
			fmt.Fprintf(w, "Transport:   %s\n", form.FormatAmount(s.Transport))
			fmt.Fprintf(w, "Margin:      %s\n", form.FormatAmount(s.GrossMargin))
			fmt.Fprintf(w, "Payable:     %s\n", form.FormatAmount(s.Payable))
			fmt.Fprintf(w, "Receivable:  %s\n", form.FormatAmount(s.Receivable))

			return nil
		},
	}

	filter.register(cmd)

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeTable(w io.Writer, txs []*trade.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "No trades found.")
		return err
	}

	rows := make([][]string, 0, len(txs))

	for _, tx := range txs {
		goods, supplier, buyer := "", "", ""

		if tx.LoadBuy != nil {
			goods, supplier = tx.LoadBuy.GoodsName, tx.LoadBuy.SupplierName
		}

		if tx.LoadSold != nil {
			buyer = tx.LoadSold.BuyerName
		}

		rows = append(rows, []string{
			shortID(tx.ID),
			day(tx.Date),
			tx.Name,
			goods,
			supplier,
			buyer,
			form.FormatAmount(tx.TotalAmount),
			string(tx.Status.Effective()),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "NAME", "GOODS", "SUPPLIER", "BUYER", "AMOUNT", "STATUS").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}

			return cellStyle
		})

	_, err := fmt.Fprintln(w, t.Render())

	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}

	return id
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.DateOnly)
}
