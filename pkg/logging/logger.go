package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EnvLogDir relocates the log directory.
const EnvLogDir = "AREAD_LOG_DIR"

// Log is what components accept. *Logger satisfies it, as does Discard().
type Log interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Logger writes component-tagged lines to the process's session log in
// ~/.aread/logs/. Every method writes unconditionally; there is no level
// filtering.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	logger    *log.Logger
	mu        sync.Mutex
	logPath   string
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		dir := os.Getenv(EnvLogDir)
		if dir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			dir = filepath.Join(homeDir, ".aread", "logs")
		}

		if err := os.MkdirAll(dir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
		logDir = dir
	})
	return initErr
}

// NewLogger creates a logger for component writing to
// <log dir>/<session-id>-aread.log.
//
// When the file cannot be opened the returned logger writes to stderr and the
// error is returned alongside it, so callers may keep going.
func NewLogger(component string) (*Logger, error) {
	if err := initLogDirectory(); err != nil {
		return newFallbackLogger(component, err), err
	}

	sessID := getSessionID()
	logPath := filepath.Join(logDir, fmt.Sprintf("%s-aread.log", sessID))

	// Several components append to the same file.
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(component, err), err
	}

	return &Logger{
		sessionID: sessID,
		component: component,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

// MustLogger is NewLogger for callers that accept the stderr fallback.
func MustLogger(component string) *Logger {
	l, _ := NewLogger(component)
	return l
}

func newFallbackLogger(component string, err error) *Logger {
	logger := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	logger.Printf("WARNING: file logging unavailable, using stderr: %v", err)

	return &Logger{
		sessionID: getSessionID(),
		component: component,
		logger:    logger,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	l.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, fmt.Sprintf(format, v...))
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.write("INFO", format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.write("WARN", format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Writer returns the underlying destination, for libraries that take an
// io.Writer.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

func (l *Logger) SessionID() string { return l.sessionID }

// LogPath is empty for a stderr logger.
func (l *Logger) LogPath() string { return l.logPath }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}

// GetSessionID returns the session id shared by every logger in the process.
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory log files are written to.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}

type discard struct{}

func (discard) Debugf(string, ...interface{}) {}
func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Discard returns a Log that drops everything.
func Discard() Log { return discard{} }
