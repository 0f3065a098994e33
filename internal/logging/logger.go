// Package logging writes the per-run processing log.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// FileName is the log file created inside each output directory.
const FileName = "processing.log"

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry is one logged event.
type Entry struct {
	Time  time.Time
	Level Level
	Text  string
}

// String formats e the way it is written to the log file.
func (e Entry) String() string {
	return e.Time.Format("2006-01-02 15:04:05") + " [" + string(e.Level) + "] " + e.Text
}

// Logger is a leveled log sink with an optional file and any number of hooks.
// It is safe for concurrent use; entries are written one at a time.
type Logger struct {
	mu    sync.Mutex
	file  *os.File
	path  string
	hooks []func(Entry)
	now   func() time.Time
}

// Open creates (or truncates) the log file at path.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Logger{file: f, path: path, now: time.Now}, nil
}

// New returns a Logger without a file; entries only reach the hooks.
func New() *Logger {
	return &Logger{now: time.Now}
}

// Path returns the log file path, or "" when there is no file.
func (l *Logger) Path() string { return l.path }

// AddHook registers fn to receive every subsequent entry. Hooks run with the
// logger locked and must not log.
func (l *Logger) AddHook(fn func(Entry)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, fn)
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level Level, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := Entry{Time: l.now(), Level: level, Text: text}
	if l.file != nil {
		_, _ = io.WriteString(l.file, e.String()+"\n")
		_ = l.file.Sync()
	}
	for _, fn := range l.hooks {
		fn(e)
	}
}

func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, fmt.Sprintf(format, args...))
}

// WriterHook returns a hook that prints each entry's text on its own line.
func WriterHook(w io.Writer) func(Entry) {
	return func(e Entry) {
		if e.Level == LevelInfo {
			fmt.Fprintln(w, e.Text)
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", e.Level, e.Text)
	}
}
