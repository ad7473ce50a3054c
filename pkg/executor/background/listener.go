// Package background is the long-lived command listener. It stands in for
// keyboard shortcuts: a hotkey daemon or a shell writes one command name per
// line, and every command becomes an independent invocation.
package background

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/entrhq/aread/pkg/logging"
	"github.com/entrhq/aread/pkg/orchestrator"
)

// Runner performs one command.
type Runner interface {
	Run(ctx context.Context, a orchestrator.Action) error
}

// Listener reads commands from a stream.
type Listener struct {
	runner Runner
	logger logging.Log

	// OnResult, when set, is called after each command finishes.
	OnResult func(a orchestrator.Action, err error)
}

// New returns a Listener dispatching to runner.
func New(runner Runner, logger logging.Log) *Listener {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Listener{runner: runner, logger: logger}
}

// Listen consumes r until it ends or ctx is cancelled, then waits for the
// commands already started. Blank lines and lines starting with '#' are
// ignored; unknown names are logged and skipped.
func (l *Listener) Listen(ctx context.Context, r io.Reader) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			l.logger.Infof("listener stopping: %v", ctx.Err())
			return nil
		case line, ok := <-lines:
			if !ok {
				var err error
				select {
				case err = <-scanErr:
				default:
				}
				if err != nil {
					return fmt.Errorf("failed to read commands: %w", err)
				}
				l.logger.Infof("command stream closed")
				return nil
			}
			l.handle(ctx, &wg, line)
		}
	}
}

func (l *Listener) handle(ctx context.Context, wg *sync.WaitGroup, line string) {
	name := strings.TrimSpace(line)
	if name == "" || strings.HasPrefix(name, "#") {
		return
	}
	action, err := orchestrator.ParseAction(name)
	if err != nil {
		l.logger.Warnf("skipping command: %v", err)
		return
	}

	l.logger.Debugf("received %s", action)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := l.runner.Run(ctx, action)
		if err != nil {
			l.logger.Errorf("%s failed (%s): %v", action, orchestrator.Kind(err), err)
		} else {
			l.logger.Infof("%s done", action)
		}
		if l.OnResult != nil {
			l.OnResult(action, err)
		}
	}()
}
