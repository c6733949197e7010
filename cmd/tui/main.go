package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tradebook/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tradebook/internal/app"
	"github.com/MrJamesThe3rd/tradebook/internal/config"
)

type View int

const (
	ViewMenu View = iota
	ViewList
	ViewCreate
	ViewImport
	ViewExport
)

type model struct {
	app *app.App

	currentView View

	listView   view.ListModel
	createView view.CreateModel
	importView view.ImportModel
	exportView view.ExportModel
}

func newModel(a *app.App) model {
	return model{
		app:         a,
		currentView: ViewMenu,
		importView:  view.NewImportModel(a.Trades, a.Importer),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewList
				m.listView = view.NewListModel(m.app.Trades)

				return m, m.listView.Init()
			case "2":
				m.currentView = ViewCreate
				m.createView = view.NewCreateModel(m.app.Trades)

				return m, m.createView.Init()
			case "3":
				m.currentView = ViewImport
				return m, m.importView.Init()
			case "4":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.app.Exporter)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	var (
		next tea.Model
		cmd  tea.Cmd
	)

	switch m.currentView {
	case ViewList:
		next, cmd = m.listView.Update(msg)
		m.listView = next.(view.ListModel)
	case ViewCreate:
		next, cmd = m.createView.Update(msg)
		m.createView = next.(view.CreateModel)
	case ViewImport:
		next, cmd = m.importView.Update(msg)
		m.importView = next.(view.ImportModel)
	case ViewExport:
		next, cmd = m.exportView.Update(msg)
		m.exportView = next.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.app.Config.App.Name + "\n\n" +
				"1. Browse & Search Trades\n" +
				"2. New Trade\n" +
				"3. Import Trades\n" +
				"4. Export Trades\n\n" +
				"q. Quit",
		)
	case ViewList:
		return m.listView.View()
	case ViewCreate:
		return m.createView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs go to a file when LOG_FILE is set.
	var logOut io.Writer = io.Discard

	if path := os.Getenv("LOG_FILE"); path != "" {
		f, err := tea.LogToFile(path, "tui")
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		logOut = f
	}

	logger, err := cfg.Logger(logOut)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = tea.NewProgram(newModel(a), tea.WithAltScreen()).Run()

	return err
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
