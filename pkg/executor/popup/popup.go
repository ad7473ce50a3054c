// Package popup is the transient action picker. It lives only for one action:
// it exits once the chosen action has completed, and stays open on failure so
// the error can be read.
package popup

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/entrhq/aread/pkg/orchestrator"
)

// Run shows the popup and blocks until an action succeeds or the user closes
// it. It returns the completed action, or "" when closed without one.
func Run(ctx context.Context, runner Runner, opts ...tea.ProgramOption) (orchestrator.Action, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(newModel(ctx, runner), opts...)

	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("popup failed: %w", err)
	}
	m, ok := final.(*model)
	if !ok {
		return "", fmt.Errorf("popup returned unexpected model %T", final)
	}
	return m.done, nil
}
