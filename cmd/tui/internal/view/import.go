package view

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tradebook/internal/importer"
	"github.com/MrJamesThe3rd/tradebook/internal/trade"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateConflicts
	importStateResult
)

type ImportModel struct {
	trades   *trade.Service
	importer *importer.Service

	state      importState
	filePicker filepicker.Model

	imported     int
	conflicts    []*trade.Transaction
	conflictList list.Model
	selected     map[int]bool

	status string
	err    error
}

func NewImportModel(trades *trade.Service, imp *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".json", ".csv", ".txt", ".xlsx"}
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		trades:     trades,
		importer:   imp,
		filePicker: fp,
		selected:   make(map[int]bool),
	}
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateConflicts {
			return m.updateConflicts(msg)
		}

	case importResultMsg:
		if msg.err != nil {
			m.state = importStateResult
			m.err = msg.err

			return m, nil
		}

		m.imported = len(msg.result.Imported)

		if len(msg.result.Conflicts) == 0 {
			m.state = importStateResult
			m.status = fmt.Sprintf("Imported %d trades.", m.imported)

			return m, nil
		}

		m.conflicts = msg.result.Conflicts
		m.selected = make(map[int]bool)
		m.state = importStateConflicts

		items := make([]list.Item, len(m.conflicts))
		for i, tx := range m.conflicts {
			items[i] = conflictItem{tx: tx, index: i}
		}

		m.conflictList = list.New(items, conflictDelegate{selected: m.selected}, 80, 20)
		m.conflictList.Title = fmt.Sprintf("Imported %d. These ids already exist; pick the ones to overwrite", m.imported)
		m.conflictList.SetShowStatusBar(false)
		m.conflictList.SetFilteringEnabled(false)
		m.conflictList.SetShowHelp(false)

		return m, nil

	case overwriteResultMsg:
		m.state = importStateResult
		m.err = msg.err

		if msg.err == nil {
			m.status = fmt.Sprintf("Imported %d trades, overwrote %d.", m.imported, msg.count)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateResult, importStateConflicts:
		m.state = importStateFilePick
		m.conflicts = nil
		m.err = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateConflicts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		idx := m.conflictList.Index()
		m.selected[idx] = !m.selected[idx]

		return m, nil
	case "a":
		for i := range m.conflicts {
			m.selected[i] = true
		}

		return m, nil
	case "n":
		clear(m.selected)
		return m, nil
	case "enter":
		return m, m.overwriteCmd()
	}

	var cmd tea.Cmd
	m.conflictList, cmd = m.conflictList.Update(msg)

	return m, cmd
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateFilePick:
		return pageStyle.Render("Select a JSON backup, CSV or xlsx file:\n\n" + m.filePicker.View())
	case importStateImporting:
		return pageStyle.Render(m.status)
	case importStateConflicts:
		return pageStyle.Render(m.conflictList.View() + "\n" +
			faintStyle.Render("Space: toggle | a: all | n: none | Enter: overwrite selected | Esc: keep existing"))
	case importStateResult:
		if m.err != nil {
			return pageStyle.Render(errorStyle.Render("Error: "+m.err.Error()) + "\n\n(Esc to go back)")
		}

		return pageStyle.Render(okStyle.Render(m.status) + "\n\n(Esc to go back)")
	}

	return ""
}

type importResultMsg struct {
	result *trade.ImportResult
	err    error
}

type overwriteResultMsg struct {
	count int
	err   error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		format, err := importer.ParseFormat(path)
		if err != nil {
			return importResultMsg{err: err}
		}

		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importer.Import(ctx, format, f)

		return importResultMsg{result: result, err: err}
	}
}

// overwriteCmd replaces the stored trades with the selected incoming versions.
func (m ImportModel) overwriteCmd() tea.Cmd {
	var chosen []*trade.Transaction

	for i, tx := range m.conflicts {
		if m.selected[i] {
			chosen = append(chosen, tx)
		}
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		for i, tx := range chosen {
			if _, err := m.trades.Replace(ctx, tx); err != nil {
				return overwriteResultMsg{count: i, err: err}
			}
		}

		return overwriteResultMsg{count: len(chosen)}
	}
}

type conflictItem struct {
	tx    *trade.Transaction
	index int
}

func (i conflictItem) Title() string       { return i.tx.Name }
func (i conflictItem) Description() string { return i.tx.ID }
func (i conflictItem) FilterValue() string { return i.tx.Name }

type conflictDelegate struct {
	selected map[int]bool
}

func (d conflictDelegate) Height() int                             { return 2 }
func (d conflictDelegate) Spacing() int                            { return 1 }
func (d conflictDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d conflictDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(conflictItem)
	if !ok {
		return
	}

	checkbox := "[ ]"
	if d.selected[item.index] {
		checkbox = "[x]"
	}

	cursor := "  "
	if index == m.Index() {
		cursor = "> "
	}

	tx := item.tx

	goods := ""
	if tx.LoadBuy != nil {
		goods = tx.LoadBuy.GoodsName
	}

	fmt.Fprintf(w, "%s%s %s  %s  %s\n      id %s  %s",
		cursor, checkbox, day(tx.Date), money(tx.TotalAmount), tx.Name, tx.ID, orDash(goods))
}
