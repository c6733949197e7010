package view

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tradebook/internal/form"
)

const storeTimeout = 5 * time.Second

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	pageStyle   = lipgloss.NewStyle().Padding(1)
	panelStyle  = lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))
)

// storeCtx bounds a single store call made from a tea.Cmd.
func storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storeTimeout)
}

func money(v float64) string {
	return form.FormatAmount(v)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format(time.DateOnly)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
