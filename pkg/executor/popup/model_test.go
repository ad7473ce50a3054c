package popup

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/aread/pkg/orchestrator"
)

type fakeRunner struct {
	mu   sync.Mutex
	err  error
	runs []orchestrator.Action
}

func (r *fakeRunner) Run(_ context.Context, a orchestrator.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, a)
	return r.err
}

// collect runs cmd and any batched commands, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findDone(t *testing.T, msgs []tea.Msg) actionDoneMsg {
	t.Helper()
	for _, msg := range msgs {
		if done, ok := msg.(actionDoneMsg); ok {
			return done
		}
	}
	t.Fatalf("no actionDoneMsg in %v", msgs)
	return actionDoneMsg{}
}

func isQuit(msgs []tea.Msg) bool {
	for _, msg := range msgs {
		if _, ok := msg.(tea.QuitMsg); ok {
			return true
		}
	}
	return false
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_ButtonsInOrder(t *testing.T) {
	labels := make([]string, len(buttons))
	for i, b := range buttons {
		labels[i] = b.label
	}
	assert.Equal(t, []string{"Save page", "Read later", "Send to Kindle", "Reading list"}, labels)

	view := newModel(context.Background(), &fakeRunner{}).View()
	for _, l := range labels {
		assert.Contains(t, view, l)
	}
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(context.Background(), &fakeRunner{})

	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, 1, m.cursor)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 2, m.cursor)
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.cursor, "wraps forward")
	m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, 3, m.cursor, "wraps backward")
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.cursor)
}

func TestModel_EnterRunsSelectedAndQuits(t *testing.T) {
	runner := &fakeRunner{}
	m := newModel(context.Background(), runner)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.busy)
	assert.Contains(t, m.View(), "Read later...")

	done := findDone(t, collect(cmd))
	assert.Equal(t, orchestrator.ActionReadLater, done.action)
	assert.Equal(t, []orchestrator.Action{orchestrator.ActionReadLater}, runner.runs)

	_, cmd = m.Update(done)
	assert.False(t, m.busy)
	assert.Equal(t, orchestrator.ActionReadLater, m.done)
	assert.True(t, isQuit(collect(cmd)))
}

func TestModel_Shortcuts(t *testing.T) {
	tests := map[string]orchestrator.Action{
		"s": orchestrator.ActionSavePage,
		"r": orchestrator.ActionReadLater,
		"k": orchestrator.ActionSendToKindle,
		"l": orchestrator.ActionReadingList,
	}

	for shortcut, want := range tests {
		t.Run(shortcut, func(t *testing.T) {
			runner := &fakeRunner{}
			m := newModel(context.Background(), runner)
			_, cmd := m.Update(runes(shortcut))
			assert.Equal(t, want, findDone(t, collect(cmd)).action)
			assert.Equal(t, []orchestrator.Action{want}, runner.runs)
		})
	}
}

func TestModel_IgnoresInputWhileBusy(t *testing.T) {
	runner := &fakeRunner{}
	m := newModel(context.Background(), runner)

	_, first := m.Update(runes("s"))
	require.True(t, m.busy)

	_, cmd := m.Update(runes("k"))
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, m.cursor)

	findDone(t, collect(first))
	assert.Equal(t, []orchestrator.Action{orchestrator.ActionSavePage}, runner.runs)
}

func TestModel_FailureKeepsPopupOpen(t *testing.T) {
	missing := goerrors.New("service URL and token are not configured", goerrors.CategoryValidation).
		WithTextCode(string(orchestrator.KindConfigurationMissing))
	runner := &fakeRunner{err: missing}
	m := newModel(context.Background(), runner)

	_, cmd := m.Update(runes("r"))
	_, cmd = m.Update(findDone(t, collect(cmd)))
	assert.Nil(t, cmd, "popup must not quit on failure")
	assert.Equal(t, orchestrator.Action(""), m.done)
	assert.False(t, m.busy)

	view := m.View()
	assert.Contains(t, view, "not configured")
	assert.Contains(t, view, "aread options")

	// A retry clears the banner.
	runner.err = nil
	_, cmd = m.Update(runes("r"))
	assert.Nil(t, m.err)
	findDone(t, collect(cmd))
}

func TestModel_Close(t *testing.T) {
	for _, msg := range []tea.KeyMsg{{Type: tea.KeyEsc}, runes("q"), {Type: tea.KeyCtrlC}} {
		m := newModel(context.Background(), &fakeRunner{})
		_, cmd := m.Update(msg)
		assert.True(t, isQuit(collect(cmd)), msg.String())
		assert.True(t, m.closing)
		assert.Empty(t, m.View())
	}
}

func TestModel_SpinnerOnlyTicksWhileBusy(t *testing.T) {
	m := newModel(context.Background(), &fakeRunner{})
	_, cmd := m.Update(m.spinner.Tick())
	assert.Nil(t, cmd)
}

func TestErrorText(t *testing.T) {
	assert.Equal(t, "boom", errorText(errors.New("boom")))

	notFound := goerrors.New("no story link on this page", goerrors.CategoryNotFound).
		WithTextCode(string(orchestrator.KindPageLinkNotFound))
	assert.Contains(t, errorText(notFound), "Open the story itself")

	lookup := goerrors.New("no focused tab", goerrors.CategoryNotFound).
		WithTextCode(string(orchestrator.KindTabLookupFailure))
	assert.Contains(t, errorText(lookup), "remote debugging")
}

func TestRun(t *testing.T) {
	runner := &fakeRunner{}
	var out bytes.Buffer

	action, err := Run(context.Background(), runner,
		tea.WithInput(strings.NewReader("k")),
		tea.WithOutput(&out),
	)
	require.NoError(t, err)
	assert.Equal(t, orchestrator.ActionSendToKindle, action)
	assert.Equal(t, []orchestrator.Action{orchestrator.ActionSendToKindle}, runner.runs)
}
