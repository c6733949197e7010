package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

// draft is the huh binding for a new trade and its purchase leg.
type draft struct {
	name     string
	date     string
	withBuy  bool
	supplier string
	goods    string
	quantity string
	unit     string
	rate     string
	paid     string
}

func (d *draft) params() (trade.CreateParams, error) {
	date, err := form.ParseDate(d.date)
	if err != nil {
		return trade.CreateParams{}, err
	}

	p := trade.CreateParams{Name: strings.TrimSpace(d.name), Date: date}

	if !d.withBuy {
		return p, nil
	}

	p.Purchase = &trade.PurchaseParams{
		SupplierName: strings.TrimSpace(d.supplier),
		GoodsName:    strings.TrimSpace(d.goods),
		Quantity:     form.Amount(d.quantity),
		Unit:         strings.TrimSpace(d.unit),
		PurchaseRate: form.Amount(d.rate),
		AmountPaid:   form.Amount(d.paid),
		PurchaseDate: date,
	}

	return p, nil
}

type CreateModel struct {
	trades *trade.Service

	form  *huh.Form
	draft *draft

	done    bool
	created *trade.Transaction
	err     error
}

func NewCreateModel(trades *trade.Service) CreateModel {
	d := &draft{withBuy: true, unit: "kg"}

	return CreateModel{
		trades: trades,
		draft:  d,
		form:   newTradeForm(d),
	}
}

func newTradeForm(d *draft) *huh.Form {
	amount := func(s string) error {
		if _, err := form.ParseAmount(s); err != nil {
			return fmt.Errorf("not a number")
		}

		return nil
	}

	date := func(s string) error {
		if _, err := form.ParseDate(s); err != nil {
			return fmt.Errorf("use YYYY-MM-DD")
		}

		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Description("Left empty, a name is made from the date").
				Value(&d.name),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD, empty for today").
				Value(&d.date).
				Validate(date),
			huh.NewConfirm().
				Title("Record the purchase now?").
				Value(&d.withBuy),
		),
		huh.NewGroup(
			huh.NewInput().Title("Supplier").Value(&d.supplier).Validate(required("supplier")),
			huh.NewInput().Title("Goods").Value(&d.goods).Validate(required("goods")),
			huh.NewInput().Title("Quantity").Value(&d.quantity).Validate(amount),
			huh.NewInput().Title("Unit").Value(&d.unit),
			huh.NewInput().Title("Rate").Value(&d.rate).Validate(amount),
			huh.NewInput().Title("Amount paid").Value(&d.paid).Validate(amount),
		).WithHideFunc(func() bool { return !d.withBuy }),
	).WithWidth(50).WithShowHelp(false)
}

func (m CreateModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m CreateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.done {
			return m, nil
		}

	case createdMsg:
		m.created, m.err = msg.tx, msg.err
		return m, nil
	}

	if m.done {
		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.form = hf
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.done = true

	return m, m.createCmd()
}

func (m CreateModel) View() string {
	switch {
	case m.err != nil:
		return pageStyle.Render(errorStyle.Render("Error: "+m.err.Error()) + "\n\n(Esc to go back)")
	case m.created != nil:
		return pageStyle.Render(okStyle.Render("Created "+m.created.Name) + "\n\n" + detail(m.created) + "\n\n(Esc to go back)")
	case m.done:
		return pageStyle.Render("Saving...")
	}

	return pageStyle.Render("New Trade\n\n" + m.form.View() + "\n" + faintStyle.Render("Esc: cancel"))
}

type createdMsg struct {
	tx  *trade.Transaction
	err error
}

func (m CreateModel) createCmd() tea.Cmd {
	d := m.draft

	return func() tea.Msg {
		params, err := d.params()
		if err != nil {
			return createdMsg{err: err}
		}

		ctx, cancel := storeCtx()
		defer cancel()

		tx, err := m.trades.Create(ctx, params)

		return createdMsg{tx: tx, err: err}
	}
}
