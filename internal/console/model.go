// Package console renders the prediction form in a terminal.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"prediction-form/internal/form"
	"prediction-form/internal/predict"
	"prediction-form/internal/render"
)

// Styles groups the lipgloss styles used by the view.
type Styles struct {
	Title      lipgloss.Style
	Label      lipgloss.Style
	Focused    lipgloss.Style
	Error      lipgloss.Style
	Prediction lipgloss.Style
	Muted      lipgloss.Style
	Block      lipgloss.Style
}

// DefaultStyles returns the stock palette.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Label:      lipgloss.NewStyle().Width(26),
		Focused:    lipgloss.NewStyle().Width(26).Bold(true).Foreground(lipgloss.Color("212")),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Prediction: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		Muted:      lipgloss.NewStyle().Faint(true),
		Block:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// predictionMsg carries the outcome of a prediction call back to Update.
type predictionMsg struct {
	result *predict.Result
	err    error
}

// Model is the bubbletea model for the form. Form state changes only
// through form.Reduce.
type Model struct {
	state     form.State
	labels    []string
	sample    form.Fields
	predictor form.Predictor
	inputs    []textinput.Model
	focus     int
	styles    Styles
}

// New builds the model. labels may be empty for the default naming.
func New(predictor form.Predictor, sample []float64, labels []string) (Model, error) {
	if predictor == nil {
		return Model{}, errors.New("predictor required")
	}
	fields, err := form.SampleFields(sample)
	if err != nil {
		return Model{}, err
	}

	views := render.Fields(labels, form.Fields{})
	inputs := make([]textinput.Model, form.FieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = "0.0"
		ti.Width = 14
		inputs[i] = ti
	}
	inputs[0].Focus()

	resolved := make([]string, len(views))
	for i, v := range views {
		resolved[i] = v.Label
	}

	return Model{
		labels:    resolved,
		sample:    fields,
		predictor: predictor,
		inputs:    inputs,
		styles:    DefaultStyles(),
	}, nil
}

// State returns the current form snapshot.
func (m Model) State() form.State {
	return m.state
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case predictionMsg:
		m.state = form.Reduce(m.state, form.Outcome(msg.result, msg.err))
		if msg.err != nil {
			logrus.WithError(msg.err).Warn("prediction failed")
		} else if msg.result != nil {
			logrus.WithField("result", string(msg.result.Raw)).Debug("prediction result")
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.setFocus(m.focus + 1)
		case "shift+tab", "up":
			return m, m.setFocus(m.focus - 1)
		case "ctrl+s":
			return m.submit()
		case "ctrl+f":
			m.state = form.Reduce(m.state, form.FillSample{Values: m.sample})
			m.syncInputs()
			return m, nil
		case "ctrl+r":
			m.state = form.Reduce(m.state, form.Reset{})
			m.syncInputs()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	if value := m.inputs[m.focus].Value(); value != m.state.Fields[m.focus] {
		m.state = form.Reduce(m.state, form.UpdateField{Index: m.focus, Value: value})
	}
	return m, cmd
}

// submit validates on the event loop and hands the network call to a command.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.state = form.Reduce(m.state, form.SubmitStarted{})
	features, err := form.ParseFeatures(m.state.Fields)
	if err != nil {
		m.state = form.Reduce(m.state, form.SubmitFailed{Message: form.ErrorMessage(err)})
		return m, nil
	}
	predictor := m.predictor
	return m, func() tea.Msg {
		result, err := predictor.Predict(context.Background(), features)
		return predictionMsg{result: result, err: err}
	}
}

func (m *Model) setFocus(index int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (index + form.FieldCount) % form.FieldCount
	return m.inputs[m.focus].Focus()
}

func (m *Model) syncInputs() {
	for i := range m.inputs {
		m.inputs[i].SetValue(m.state.Fields[i])
	}
}

// View renders the form in two columns followed by the status area.
func (m Model) View() string {
	page := render.Page(m.labels, m.state)
	half := form.FieldCount / 2

	column := func(from, to int) string {
		rows := make([]string, 0, to-from)
		for i := from; i < to; i++ {
			style := m.styles.Label
			if i == m.focus {
				style = m.styles.Focused
			}
			rows = append(rows, style.Render(page.Fields[i].Label)+" "+m.inputs[i].View())
		}
		return strings.Join(rows, "\n")
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Prediction Form"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, column(0, half), "    ", column(half, form.FieldCount)))
	b.WriteString("\n\n")
	b.WriteString(m.statusView(page))
	b.WriteString(m.styles.Muted.Render("tab/shift+tab move • ctrl+s predict • ctrl+f fill sample • ctrl+r reset • esc quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusView(page render.PageView) string {
	var b strings.Builder
	if page.InFlight {
		b.WriteString(m.styles.Muted.Render("Predicting…"))
		b.WriteString("\n")
	}
	if page.Error != "" {
		b.WriteString(m.styles.Error.Render(page.Error))
		b.WriteString("\n")
	}
	if r := page.Result; r != nil {
		var block strings.Builder
		switch {
		case r.NumericPrediction:
			fmt.Fprintf(&block, "Prediction: %s\n", m.styles.Prediction.Render(r.Prediction))
			if r.Confidence != "" {
				fmt.Fprintf(&block, "Confidence: %s\n", r.Confidence)
			}
		case r.HasPrediction:
			fmt.Fprintf(&block, "Prediction:\n%s\n", r.Prediction)
		}
		if r.Details != "" {
			fmt.Fprintf(&block, "Details:\n%s\n", r.Details)
		}
		fmt.Fprintf(&block, "Raw response:\n%s", r.Raw)
		b.WriteString(m.styles.Block.Render(block.String()))
		b.WriteString("\n")
	}
	return b.String()
}
