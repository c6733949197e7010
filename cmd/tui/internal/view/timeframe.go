package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/tradebook/internal/trade/query"
)

// Timeframe is a preset trade-date range offered by the picker.
type Timeframe int

const (
	TimeframeAll Timeframe = iota
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeThisQuarter
	TimeframeThisYear
	TimeframeCustom
)

var timeframeLabels = map[Timeframe]string{
	TimeframeAll:         "All Time",
	TimeframeThisMonth:   "This Month",
	TimeframeLastMonth:   "Last Month",
	TimeframeThisQuarter: "This Quarter",
	TimeframeThisYear:    "This Year",
	TimeframeCustom:      "Custom Range",
}

func (t Timeframe) String() string {
	if s, ok := timeframeLabels[t]; ok {
		return s
	}

	return "Unknown"
}

// Range returns the day range the preset covers on the date of now. Bounds are
// whole days; query.DateRange widens them when matching. TimeframeAll and
// TimeframeCustom return an open range.
func (t Timeframe) Range(now time.Time) query.DateRange {
	y, m, _ := now.Date()
	loc := now.Location()

	var start time.Time

	switch t {
	case TimeframeThisMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, loc)
	case TimeframeLastMonth:
		start = time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
	case TimeframeThisQuarter:
		start = time.Date(y, m-(m-1)%3, 1, 0, 0, 0, 0, loc)
	case TimeframeThisYear:
		start = time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
	default:
		return query.DateRange{}
	}

	end := now
	if t == TimeframeLastMonth {
		end = start.AddDate(0, 1, -1)
	}

	return query.DateRange{Start: &start, End: &end}
}

// TimeframeSelectedMsg carries the chosen range. An open range means all time.
type TimeframeSelectedMsg struct {
	Label string
	Range query.DateRange
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker lets the user pick a preset range or type one in.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	inputs [2]textinput.Model
	focus  int

	err error
}

func NewTimeframePicker() TimeframePicker {
	var inputs [2]textinput.Model

	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		inputs[i] = in
	}

	return TimeframePicker{
		selected: TimeframeThisMonth,
		now:      time.Now,
		inputs:   inputs,
	}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == timeframeStateCustom {
			return m.updateInputs(msg)
		}

		return m, nil
	}

	if m.state == timeframeStateCustom {
		return m.updateCustom(key)
	}

	switch key.Type {
	case tea.KeyUp:
		if m.selected > TimeframeAll {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.focus = 0
			m.inputs[0].Focus()

			return m, textinput.Blink
		}

		selected := TimeframeSelectedMsg{Label: m.selected.String(), Range: m.selected.Range(m.now())}

		return m, func() tea.Msg { return selected }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(key tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch key.String() {
	case "tab", "shift+tab":
		m.inputs[m.focus].Blur()
		m.focus = 1 - m.focus
		m.inputs[m.focus].Focus()

		return m, textinput.Blink

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil

	case "enter":
		start, err := query.ParseDay(m.inputs[0].Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		end, err := query.ParseDay(m.inputs[1].Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		if start != nil && end != nil && end.Before(*start) {
			m.err = fmt.Errorf("the end date is before the start date")
			return m, nil
		}

		m.err = nil
		selected := TimeframeSelectedMsg{
			Label: fmt.Sprintf("%s to %s", orDash(m.inputs[0].Value()), orDash(m.inputs[1].Value())),
			Range: query.DateRange{Start: start, End: end},
		}

		return m, func() tea.Msg { return selected }
	}

	return m.updateInputs(key)
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m TimeframePicker) View() string {
	var sb strings.Builder

	if m.state == timeframeStateCustom {
		sb.WriteString("Trade dates (either bound may be left empty):\n\n")
		sb.WriteString(m.inputs[0].View() + "\n" + m.inputs[1].View())
		sb.WriteString("\n\n(Enter to confirm, Tab to switch, Esc to go back)")
	} else {
		sb.WriteString("Select Timeframe:\n\n")

		for t := TimeframeAll; t <= TimeframeCustom; t++ {
			cursor := "  "
			if t == m.selected {
				cursor = "> "
			}

			sb.WriteString(cursor + t.String() + "\n")
		}

		sb.WriteString("\n(Enter to select, Esc to go back)")
	}

	if m.err != nil {
		sb.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	return sb.String()
}

// IsSelecting reports whether the picker shows the preset list.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil

	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
}
