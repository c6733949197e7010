package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tradebook/internal/export"
	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

const exportTimeout = 2 * time.Minute

type exportState int

const (
	exportStateTimeframe exportState = iota
	exportStateOptions
	exportStateExporting
	exportStateResult
)

// exportOptions is the huh binding for the output step.
type exportOptions struct {
	format string
	dir    string
}

type ExportModel struct {
	exporter *export.Service

	state           exportState
	timeframePicker TimeframePicker
	criteria        query.Criteria
	label           string

	form    *huh.Form
	options *exportOptions
	spinner spinner.Model

	path   string
	digest string
	err    error
}

func NewExportModel(svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = accentStyle

	return ExportModel{
		exporter:        svc,
		timeframePicker: NewTimeframePicker(),
		options:         &exportOptions{format: string(export.FormatXLSX), dir: "./exports"},
		spinner:         s,
	}
}

func (m ExportModel) Init() tea.Cmd {
	return nil
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if tf, ok := msg.(TimeframeSelectedMsg); ok {
		m.criteria = query.Criteria{Filter: query.Filter{Dates: tf.Range}}
		m.label = tf.Label
		m.form = m.buildOptionsForm()
		m.state = exportStateOptions

		return m, m.form.Init()
	}

	switch m.state {
	case exportStateTimeframe:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && m.timeframePicker.IsSelecting() {
			return m, Back
		}

		var cmd tea.Cmd
		m.timeframePicker, cmd = m.timeframePicker.Update(msg)

		return m, cmd

	case exportStateOptions:
		return m.updateOptions(msg)

	case exportStateExporting:
		if result, ok := msg.(exportResultMsg); ok {
			m.state = exportStateResult
			m.path, m.digest, m.err = result.path, result.digest, result.err

			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case exportStateResult:
		if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
			return m, Back
		}
	}

	return m, nil
}

func (m ExportModel) updateOptions(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		m.state = exportStateTimeframe
		m.timeframePicker.Reset()

		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		m.form = hf
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateExporting

	return m, tea.Batch(m.spinner.Tick, m.runExportCmd())
}

func (m ExportModel) buildOptionsForm() *huh.Form {
	formats := make([]huh.Option[string], 0, len(export.Formats))
	for _, f := range export.Formats {
		formats = append(formats, huh.NewOption(string(f), string(f)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Format").
				Description("zip bundles JSON, CSV, a digest and every attachment").
				Options(formats...).
				Value(&m.options.format),
			huh.NewInput().
				Title("Output Directory").
				Description("Created if it does not exist").
				Value(&m.options.dir),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateTimeframe:
		return pageStyle.Render(m.timeframePicker.View())

	case exportStateOptions:
		return pageStyle.Render("Export " + accentStyle.Render(m.label) + "\n\n" + m.form.View())

	case exportStateExporting:
		return pageStyle.Render(fmt.Sprintf("%s Exporting trades...", m.spinner.View()))

	case exportStateResult:
		if m.err != nil {
			return pageStyle.Render(errorStyle.Render("Error: "+m.err.Error()) + "\n\n(Esc to go back)")
		}

		header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")).Render("Export Complete!")

		return pageStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			"Written to "+m.path,
			"",
			orDash(m.digest),
			faintStyle.Render("(Esc to go back)"),
		))
	}

	return ""
}

type exportResultMsg struct {
	path   string
	digest string
	err    error
}

func (m ExportModel) runExportCmd() tea.Cmd {
	opts := *m.options
	c := m.criteria

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		f, err := export.ParseFormat(opts.format)
		if err != nil {
			return exportResultMsg{err: err}
		}

		txs, err := m.exporter.Select(ctx, c)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := os.MkdirAll(opts.dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating %s: %w", opts.dir, err)}
		}

		path := filepath.Join(opts.dir, f.FileName(time.Now()))

		out, err := os.Create(path)
		if err != nil {
			return exportResultMsg{err: err}
		}

		if err := m.exporter.Write(ctx, f, txs, out); err != nil {
			out.Close()
			os.Remove(path)

			return exportResultMsg{err: err}
		}

		if err := out.Close(); err != nil {
			return exportResultMsg{err: err}
		}

		return exportResultMsg{path: path, digest: export.Digest(txs)}
	}
}
