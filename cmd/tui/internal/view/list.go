package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

type listState int

const (
	listStateBrowse listState = iota
	listStateSearch
	listStateDetail
	listStateForm
)

var (
	statusCycle    = []trade.Status{"", trade.StatusPending, trade.StatusCompleted, trade.StatusCancelled}
	timeframeCycle = []Timeframe{TimeframeAll, TimeframeThisMonth, TimeframeLastMonth, TimeframeThisYear}
)

// edits holds the huh form bindings. It lives on the heap so the form keeps
// writing to the same fields while the model is copied between updates.
type edits struct {
	name     string
	status   string
	amount   string
	incoming bool
	mode     string
	party    string
	note     string
	confirm  bool
}

type ListModel struct {
	trades *trade.Service

	state  listState
	table  table.Model
	search textinput.Model

	all []*trade.Transaction
	txs []*trade.Transaction

	statusIdx    int
	timeframeIdx int

	form   *huh.Form
	target *trade.Transaction
	edits  *edits
	submit func(*trade.Service, *trade.Transaction, *edits) tea.Cmd

	loading bool
	err     error
	message string
}

func NewListModel(trades *trade.Service) ListModel {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Name", Width: 24},
		{Title: "Goods", Width: 12},
		{Title: "Supplier", Width: 20},
		{Title: "Buyer", Width: 20},
		{Title: "Amount", Width: 12},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name, id, supplier, buyer or goods"
	search.Width = 40

	return ListModel{
		trades:  trades,
		table:   t,
		search:  search,
		loading: true,
	}
}

func (m ListModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m ListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadListMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.all = msg.txs
			m.applyFilter()
		}

		return m, nil

	case listSaveMsg:
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		m.message = msg.done
		if msg.err != nil {
			m.message = errorStyle.Render("Error: " + msg.err.Error())
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-12, 5))
		return m, nil
	}

	switch m.state {
	case listStateSearch:
		return m.updateSearch(msg)
	case listStateDetail:
		return m.updateDetail(msg)
	case listStateForm:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m ListModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, Back
		case "/":
			m.state = listStateSearch
			m.table.Blur()

			return m, m.search.Focus()
		case "s":
			m.statusIdx = (m.statusIdx + 1) % len(statusCycle)
			m.applyFilter()

			return m, nil
		case "d":
			m.timeframeIdx = (m.timeframeIdx + 1) % len(timeframeCycle)
			m.applyFilter()

			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			if m.selected() != nil {
				m.state = listStateDetail
			}

			return m, nil
		case "e":
			return m.openForm(editForm)
		case "p":
			return m.openForm(paymentForm)
		case "n":
			return m.openForm(noteForm)
		case "x":
			return m.openForm(deleteForm)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ListModel) updateSearch(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc:
			m.search.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.state = listStateBrowse
			m.search.Blur()
			m.table.Focus()
			m.applyFilter()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyFilter()

	return m, cmd
}

func (m ListModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "enter":
			m.state = listStateBrowse
		case "e":
			return m.openForm(editForm)
		case "p":
			return m.openForm(paymentForm)
		case "n":
			return m.openForm(noteForm)
		}
	}

	return m, nil
}

func (m ListModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = listStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.form = hf
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.submit(m.trades, m.target, m.edits)
}

func (m ListModel) selected() *trade.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

// formBuilder builds a huh form over e for tx and says how to apply it.
type formBuilder func(tx *trade.Transaction, e *edits) (*huh.Form, func(*trade.Service, *trade.Transaction, *edits) tea.Cmd)

func (m ListModel) openForm(build formBuilder) (tea.Model, tea.Cmd) {
	tx := m.selected()
	if tx == nil {
		return m, nil
	}

	m.target = tx
	m.edits = &edits{}
	m.form, m.submit = build(tx, m.edits)
	m.form = m.form.WithWidth(45).WithShowHelp(false)
	m.state = listStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func editForm(tx *trade.Transaction, e *edits) (*huh.Form, func(*trade.Service, *trade.Transaction, *edits) tea.Cmd) {
	e.name = tx.Name
	e.status = string(tx.Status.Effective())

	// Completed is shown only to keep a settled trade as it is.
	statuses := []huh.Option[string]{
		huh.NewOption("Pending", string(trade.StatusPending)),
		huh.NewOption("Cancelled", string(trade.StatusCancelled)),
	}
	if tx.Status == trade.StatusCompleted {
		statuses = append([]huh.Option[string]{huh.NewOption("Completed", string(trade.StatusCompleted))}, statuses...)
	}

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Value(&e.name).
			Validate(required("name")),
		huh.NewSelect[string]().
			Title("Status").
			Options(statuses...).
			Value(&e.status),
	))

	return f, func(svc *trade.Service, tx *trade.Transaction, e *edits) tea.Cmd {
		return saveCmd("Saved.", func() error {
			ctx, cancel := storeCtx()
			defer cancel()

			if _, err := svc.Rename(ctx, tx.ID, strings.TrimSpace(e.name)); err != nil {
				return err
			}

			if trade.Status(e.status) == tx.Status.Effective() {
				return nil
			}

			_, err := svc.SetStatus(ctx, tx.ID, trade.Status(e.status))

			return err
		})
	}
}

func paymentForm(_ *trade.Transaction, e *edits) (*huh.Form, func(*trade.Service, *trade.Transaction, *edits) tea.Cmd) {
	e.mode = string(trade.PaymentCash)

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Amount").
			Value(&e.amount).
			Validate(func(s string) error {
				v, err := form.ParseAmount(s)
				if err != nil || v <= 0 {
					return fmt.Errorf("enter an amount above zero")
				}

				return nil
			}),
		huh.NewConfirm().
			Title("Direction").
			Affirmative("Received from buyer").
			Negative("Paid to supplier").
			Value(&e.incoming),
		huh.NewSelect[string]().
			Title("Mode").
			Options(huh.NewOptions("cash", "bank", "upi", "cheque", "other")...).
			Value(&e.mode),
		huh.NewInput().
			Title("Counterparty").
			Value(&e.party),
	))

	return f, func(svc *trade.Service, tx *trade.Transaction, e *edits) tea.Cmd {
		return saveCmd("Payment recorded.", func() error {
			ctx, cancel := storeCtx()
			defer cancel()

			_, err := svc.AddPayment(ctx, tx.ID, trade.PaymentParams{
				Amount:       form.Amount(e.amount),
				Mode:         trade.PaymentMode(e.mode),
				Counterparty: e.party,
				IsIncoming:   e.incoming,
			})

			return err
		})
	}
}

func noteForm(_ *trade.Transaction, e *edits) (*huh.Form, func(*trade.Service, *trade.Transaction, *edits) tea.Cmd) {
	f := huh.NewForm(huh.NewGroup(
		huh.NewText().
			Title("Note").
			Value(&e.note).
			Validate(required("note")),
	))

	return f, func(svc *trade.Service, tx *trade.Transaction, e *edits) tea.Cmd {
		return saveCmd("Note added.", func() error {
			ctx, cancel := storeCtx()
			defer cancel()

			_, err := svc.AddNote(ctx, tx.ID, strings.TrimSpace(e.note))

			return err
		})
	}
}

func deleteForm(tx *trade.Transaction, e *edits) (*huh.Form, func(*trade.Service, *trade.Transaction, *edits) tea.Cmd) {
	f := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", tx.Name)).
			Description("Its id can never be used again.").
			Value(&e.confirm),
	))

	return f, func(svc *trade.Service, tx *trade.Transaction, e *edits) tea.Cmd {
		if !e.confirm {
			return func() tea.Msg { return listSaveMsg{} }
		}

		return saveCmd("Deleted.", func() error {
			ctx, cancel := storeCtx()
			defer cancel()

			return svc.Delete(ctx, tx.ID)
		})
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

// criteria is the selection currently shown.
func (m ListModel) criteria() query.Criteria {
	c := query.Criteria{Text: strings.TrimSpace(m.search.Value())}

	if st := statusCycle[m.statusIdx]; st != "" {
		c.Filter.Statuses = []trade.Status{st}
	}

	c.Filter.Dates = timeframeCycle[m.timeframeIdx].Range(time.Now())

	return c
}

func (m *ListModel) applyFilter() {
	m.txs = query.Apply(m.all, m.criteria())
	query.SortByDate(m.txs)

	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		var goods, supplier, buyer string

		if tx.LoadBuy != nil {
			goods, supplier = tx.LoadBuy.GoodsName, tx.LoadBuy.SupplierName
		}

		if tx.LoadSold != nil {
			buyer = tx.LoadSold.BuyerName
		}

		rows = append(rows, table.Row{
			day(tx.Date),
			tx.Name,
			goods,
			supplier,
			buyer,
			money(tx.TotalAmount),
			string(tx.Status.Effective()),
		})
	}

	m.table.SetRows(rows)

	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m ListModel) View() string {
	if m.loading {
		return pageStyle.Render("Loading trades...")
	}

	if m.err != nil {
		return pageStyle.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	status := "All"
	if st := statusCycle[m.statusIdx]; st != "" {
		status = string(st)
	}

	header := fmt.Sprintf("[s] Status: %s | [d] Date: %s | %d of %d trades",
		accentStyle.Render(status),
		accentStyle.Render(timeframeCycle[m.timeframeIdx].String()),
		len(m.txs), len(m.all),
	)

	if m.state == listStateSearch || m.search.Value() != "" {
		header += "\n" + m.search.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	switch m.state {
	case listStateDetail:
		if tx := m.selected(); tx != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(52).Render(detail(tx)))
		}
	case listStateForm:
		if m.form != nil {
			content = lipgloss.JoinHorizontal(lipgloss.Top, content, panelStyle.Width(48).Render(m.form.View()))
		}
	}

	if m.message != "" {
		content = faintStyle.Render(m.message) + "\n" + content
	}

	help := "Esc: back | /: search | Enter: details | e: edit | p: payment | n: note | x: delete | r: reload"
	if m.state == listStateForm {
		help = "Esc: cancel"
	}

	return pageStyle.Render(content + "\n" + faintStyle.Render(help))
}

// detail renders every leg of tx for the side panel.
func detail(tx *trade.Transaction) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n%s  %s\n", lipgloss.NewStyle().Bold(true).Render(tx.Name), tx.ID, day(tx.Date))
	fmt.Fprintf(&sb, "Status: %s   Total: %s\n", tx.Status.Effective(), money(tx.TotalAmount))

	if b := tx.LoadBuy; b != nil {
		fmt.Fprintf(&sb, "\nBought %g %s of %s from %s\n", b.Quantity, b.Unit, orDash(b.GoodsName), orDash(b.SupplierName))
		fmt.Fprintf(&sb, "  rate %s  cost %s  paid %s  due %s\n",
			money(b.PurchaseRate), money(b.TotalCost), money(b.AmountPaid), money(b.Balance))
	}

	if t := tx.Transportation; t != nil {
		fmt.Fprintf(&sb, "\nTruck %s: %s -> %s\n", t.VehicleNumber, orDash(t.Origin), orDash(t.Destination))
		fmt.Fprintf(&sb, "  net %g  charges %s\n", t.NetWeight, money(t.Charges))
	}

	if s := tx.LoadSold; s != nil {
		fmt.Fprintf(&sb, "\nSold %g to %s\n", s.QuantitySold, orDash(s.BuyerName))
		fmt.Fprintf(&sb, "  rate %s  total %s  received %s  pending %s\n",
			money(s.SaleRate), money(s.TotalSaleAmount), money(s.AmountReceived), money(s.PendingBalance))
	}

	if len(tx.Payments) > 0 {
		sb.WriteString("\nPayments:\n")

		for _, p := range tx.Payments {
			dir := "out"
			if p.IsIncoming {
				dir = "in "
			}

			fmt.Fprintf(&sb, "  %s %s %s %s\n", day(p.Date), dir, money(p.Amount), p.Mode)
		}
	}

	for _, n := range tx.Notes {
		fmt.Fprintf(&sb, "\n%s: %s", day(n.Date), n.Content)
	}

	if len(tx.Attachments) > 0 {
		fmt.Fprintf(&sb, "\n%d attachment(s)", len(tx.Attachments))
	}

	return sb.String()
}

type loadListMsg struct {
	txs []*trade.Transaction
	err error
}

func (m ListModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := storeCtx()
		defer cancel()

		txs, err := m.trades.List(ctx)

		return loadListMsg{txs: txs, err: err}
	}
}

type listSaveMsg struct {
	done string
	err  error
}

func saveCmd(done string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return listSaveMsg{err: err}
		}

		return listSaveMsg{done: done}
	}
}
