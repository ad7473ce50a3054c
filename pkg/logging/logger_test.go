package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// resetGlobals points the package at a fresh temp directory and session.
func resetGlobals(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv(EnvLogDir, dir)

	logDir = ""
	initErr = nil
	initOnce = sync.Once{}
	sessionID = ""
	sessionIDOnce = sync.Once{}

	return dir
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	content, err := os.ReadFile(l.LogPath())
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	return string(content)
}

func TestNewLogger(t *testing.T) {
	dir := resetGlobals(t)

	logger, err := NewLogger("orchestrator")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	if logger.SessionID() == "" {
		t.Error("Expected non-empty session ID")
	}
	if filepath.Dir(logger.LogPath()) != dir {
		t.Errorf("Expected log in %s, got %s", dir, logger.LogPath())
	}
	if _, err := os.Stat(logger.LogPath()); err != nil {
		t.Errorf("Log file does not exist at %s: %v", logger.LogPath(), err)
	}
}

func TestLoggerLevels(t *testing.T) {
	resetGlobals(t)

	logger, err := NewLogger("popup")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	logger.Debugf("debug %d", 1)
	logger.Infof("info %s", "two")
	logger.Warnf("warn")
	logger.Errorf("error")

	content := readLog(t, logger)
	for _, pattern := range []string{
		"[popup] [DEBUG] debug 1",
		"[popup] [INFO] info two",
		"[popup] [WARN] warn",
		"[popup] [ERROR] error",
	} {
		if !strings.Contains(content, pattern) {
			t.Errorf("Log content missing %q\nContent:\n%s", pattern, content)
		}
	}
}

func TestComponentsShareSessionFile(t *testing.T) {
	resetGlobals(t)

	a, err := NewLogger("browser")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer a.Close()
	b, err := NewLogger("listener")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer b.Close()

	if a.LogPath() != b.LogPath() {
		t.Errorf("Expected same log path, got %q and %q", a.LogPath(), b.LogPath())
	}

	a.Infof("from a")
	b.Infof("from b")

	content := readLog(t, a)
	if !strings.Contains(content, "[browser]") || !strings.Contains(content, "[listener]") {
		t.Errorf("Expected both components in log, got:\n%s", content)
	}
}

func TestLogPathFormat(t *testing.T) {
	resetGlobals(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Close()

	name := filepath.Base(logger.LogPath())
	if !strings.HasSuffix(name, "-aread.log") {
		t.Errorf("Expected log file to end with '-aread.log', got %q", name)
	}
	if got := strings.TrimSuffix(name, "-aread.log"); got != GetSessionID() {
		t.Errorf("Expected session id %q in file name, got %q", GetSessionID(), got)
	}
}

func TestFallbackToStderr(t *testing.T) {
	resetGlobals(t)

	// A regular file where the directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogDir, filepath.Join(blocker, "logs"))

	logger, err := NewLogger("test")
	if err == nil {
		t.Fatal("Expected an error from an unusable log directory")
	}
	if logger == nil {
		t.Fatal("Expected a fallback logger")
	}
	if logger.LogPath() != "" {
		t.Errorf("Expected empty log path for stderr logger, got %q", logger.LogPath())
	}
	if logger.Writer() != os.Stderr {
		t.Error("Expected stderr writer")
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Close on stderr logger failed: %v", err)
	}
}

func TestLoggerClose(t *testing.T) {
	resetGlobals(t)

	logger, err := NewLogger("test")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestDiscard(t *testing.T) {
	var l Log = Discard()
	l.Debugf("x")
	l.Infof("x")
	l.Warnf("x")
	l.Errorf("x")
}
