// Package logger provides the leveled file logger used across touchmeter.
//
// The wizard owns the terminal, so output is discarded unless a log file is
// configured through TOUCHMETER_LOG_FILE or Configure.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level represents a log level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of a log level
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a log level string
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}

// DefaultMaxSize is the log file size at which the file is rotated.
const DefaultMaxSize int64 = 5 << 20

// Logger is a leveled logger writing "[LEVEL] message" lines. A log file is
// rotated to "<path>.1" after the write that takes it past the size limit, keeping a single
// backup on the meter's small disk.
type Logger struct {
	mu      sync.Mutex
	level   Level
	logger  *log.Logger
	out     *sizeWriter
	path    string
	maxSize int64
}

// sizeWriter counts the bytes written to the log file.
type sizeWriter struct {
	f *os.File
	n int64
}

func (w *sizeWriter) Write(p []byte) (int, error) {
	n, err := w.f.Write(p)
	w.n += int64(n)
	return n, err
}

// Default is the process-wide logger.
var Default = New()

// New creates a logger from TOUCHMETER_LOG_LEVEL and TOUCHMETER_LOG_FILE.
func New() *Logger {
	l := &Logger{
		level:   LevelInfo,
		logger:  log.New(io.Discard, "", log.LstdFlags),
		maxSize: DefaultMaxSize,
	}

	if levelStr := os.Getenv("TOUCHMETER_LOG_LEVEL"); levelStr != "" {
		if level, err := ParseLevel(levelStr); err == nil {
			l.level = level
		}
	}

	if logFile := os.Getenv("TOUCHMETER_LOG_FILE"); logFile != "" {
		_ = l.openFile(logFile)
	}

	return l
}

// Configure applies a level and an optional log file, typically from config.
// An empty path keeps the current output.
func (l *Logger) Configure(level, path string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.SetLevel(lvl)

	if path == "" {
		return nil
	}
	return l.openFile(path)
}

func (l *Logger) openFile(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.openLocked(path)
}

func (l *Logger) openLocked(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	var size int64
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	if l.out != nil {
		_ = l.out.f.Close()
	}
	l.out = &sizeWriter{f: f, n: size}
	l.path = path
	l.logger = log.New(l.out, "", log.LstdFlags)
	return nil
}

// rotateLocked moves the current file to "<path>.1" and starts a new one.
func (l *Logger) rotateLocked() {
	_ = l.out.f.Close()
	l.out = nil
	_ = os.Rename(l.path, l.path+".1")
	if err := l.openLocked(l.path); err != nil {
		l.logger.SetOutput(io.Discard)
	}
}

// SetMaxSize sets the rotation threshold. Zero or less disables rotation.
func (l *Logger) SetMaxSize(n int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxSize = n
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.out == nil {
		return nil
	}
	err := l.out.f.Close()
	l.out = nil
	l.path = ""
	l.logger.SetOutput(io.Discard)
	return err
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.SetOutput(w)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...any) {
	l.log(LevelDebug, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...any) {
	l.log(LevelInfo, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...any) {
	l.log(LevelWarn, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...any) {
	l.log(LevelError, format, v...)
}

func (l *Logger) log(level Level, format string, v ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}
	l.logger.Printf("[%s] %s", level, fmt.Sprintf(format, v...))
	if l.out != nil && l.maxSize > 0 && l.out.n >= l.maxSize {
		l.rotateLocked()
	}
}

// Configure configures the default logger.
func Configure(level, path string) error {
	return Default.Configure(level, path)
}

// Debug logs a debug message using the default logger
func Debug(format string, v ...any) {
	Default.Debug(format, v...)
}

// Info logs an info message using the default logger
func Info(format string, v ...any) {
	Default.Info(format, v...)
}

// Warn logs a warning message using the default logger
func Warn(format string, v ...any) {
	Default.Warn(format, v...)
}

// Error logs an error message using the default logger
func Error(format string, v ...any) {
	Default.Error(format, v...)
}

// Close closes the default logger
func Close() error {
	return Default.Close()
}
