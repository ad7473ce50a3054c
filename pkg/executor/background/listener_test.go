package background

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/aread/pkg/orchestrator"
)

type fakeRunner struct {
	mu      sync.Mutex
	actions []orchestrator.Action
	err     error
	block   chan struct{}
	started chan orchestrator.Action
}

func (r *fakeRunner) Run(ctx context.Context, a orchestrator.Action) error {
	if r.started != nil {
		r.started <- a
	}
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, a)
	return r.err
}

func (r *fakeRunner) sorted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	for i, a := range r.actions {
		out[i] = string(a)
	}
	sort.Strings(out)
	return out
}

func TestListen_RunsKnownCommands(t *testing.T) {
	runner := &fakeRunner{}
	l := New(runner, nil)

	input := "save-page\n\n  send-to-kindle  \n# comment\nbogus\nread-later\n"
	require.NoError(t, l.Listen(context.Background(), strings.NewReader(input)))

	assert.Equal(t, []string{"read-later", "save-page", "send-to-kindle"}, runner.sorted())
}

func TestListen_ReportsResults(t *testing.T) {
	boom := errors.New("tab gone")
	runner := &fakeRunner{err: boom}
	l := New(runner, nil)

	var mu sync.Mutex
	results := map[orchestrator.Action]error{}
	l.OnResult = func(a orchestrator.Action, err error) {
		mu.Lock()
		defer mu.Unlock()
		results[a] = err
	}

	require.NoError(t, l.Listen(context.Background(), strings.NewReader("save-page\n")))
	assert.ErrorIs(t, results[orchestrator.ActionSavePage], boom)
}

func TestListen_WaitsForInFlight(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{}), started: make(chan orchestrator.Action, 2)}
	l := New(runner, nil)

	done := make(chan error, 1)
	go func() {
		done <- l.Listen(context.Background(), strings.NewReader("save-page\nsend-to-kindle\n"))
	}()

	// Both commands start before either finishes.
	<-runner.started
	<-runner.started

	select {
	case <-done:
		t.Fatal("Listen returned before commands finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"save-page", "send-to-kindle"}, runner.sorted())
}

func TestListen_StopsOnCancel(t *testing.T) {
	runner := &fakeRunner{}
	l := New(runner, nil)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Listen(ctx, pr) }()

	_, err := pw.Write([]byte("read-later\n"))
	require.NoError(t, err)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after cancel")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("fifo vanished") }

func TestListen_ReadError(t *testing.T) {
	err := New(&fakeRunner{}, nil).Listen(context.Background(), failingReader{})
	assert.ErrorContains(t, err, "fifo vanished")
}
