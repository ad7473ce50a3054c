package popup

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/aread/pkg/orchestrator"
)

// Runner performs one popup action.
type Runner interface {
	Run(ctx context.Context, a orchestrator.Action) error
}

type button struct {
	label    string
	shortcut key.Binding
	action   orchestrator.Action
}

func newButton(label, shortcut string, action orchestrator.Action) button {
	return button{
		label:    label,
		shortcut: key.NewBinding(key.WithKeys(shortcut), key.WithHelp(shortcut, label)),
		action:   action,
	}
}

var buttons = []button{
	newButton("Save page", "s", orchestrator.ActionSavePage),
	newButton("Read later", "r", orchestrator.ActionReadLater),
	newButton("Send to Kindle", "k", orchestrator.ActionSendToKindle),
	newButton("Reading list", "l", orchestrator.ActionReadingList),
}

// actionDoneMsg reports the end of a running action.
type actionDoneMsg struct {
	action orchestrator.Action
	err    error
}

type model struct {
	ctx     context.Context
	runner  Runner
	keys    keyMap
	help    help.Model
	spinner spinner.Model

	cursor  int
	busy    bool
	err     error
	done    orchestrator.Action
	closing bool
}

func newModel(ctx context.Context, runner Runner) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = busyStyle

	return &model{
		ctx:     ctx,
		runner:  runner,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: s,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.done = msg.action
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Close):
		m.closing = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.cursor = (m.cursor + 1) % len(buttons)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.cursor = (m.cursor + len(buttons) - 1) % len(buttons)
		return m, nil
	case key.Matches(msg, m.keys.Run):
		return m, m.start(m.cursor)
	}

	for i, b := range buttons {
		if key.Matches(msg, b.shortcut) {
			return m, m.start(i)
		}
	}
	return m, nil
}

func (m *model) start(i int) tea.Cmd {
	m.cursor = i
	m.busy = true
	m.err = nil

	ctx, runner, action := m.ctx, m.runner, buttons[i].action
	run := func() tea.Msg {
		return actionDoneMsg{action: action, err: runner.Run(ctx, action)}
	}
	return tea.Batch(m.spinner.Tick, run)
}

func (m *model) View() string {
	if m.closing || m.done != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("aread"))
	b.WriteString("\n")

	rendered := make([]string, len(buttons))
	for i, btn := range buttons {
		style := buttonStyle
		if i == m.cursor {
			style = selectedButtonStyle
		}
		label := btn.label + " " + shortcutStyle.Render("("+btn.shortcut.Help().Key+")")
		rendered[i] = style.Render(label)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	b.WriteString("\n\n")

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " " + busyStyle.Render(buttons[m.cursor].label+"..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(errorText(m.err)))
	default:
		b.WriteString(m.help.View(m.keys))
	}

	return containerStyle.Render(b.String())
}

// errorText is the banner shown for a failed action.
func errorText(err error) string {
	if hint := orchestrator.Hint(err); hint != "" {
		return err.Error() + "\n" + hint
	}
	return err.Error()
}
