package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

const logFileName = "classbook.log"

var levelNames = map[LogLevel]string{
	DEBUG:    "DEBUG",
	INFO:     "INFO",
	WARNING:  "WARNING",
	ERROR:    "ERROR",
	CRITICAL: "CRITICAL",
}

func (lv LogLevel) String() string {
	if name, ok := levelNames[lv]; ok {
		return name
	}
	return strconv.Itoa(int(lv))
}

// UnmarshalText accepts either a level name ("info", "WARN") or its number.
func (lv *LogLevel) UnmarshalText(text []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(text)))
	if n, err := strconv.Atoi(s); err == nil {
		if n < int(DEBUG) || n > int(CRITICAL) {
			return fmt.Errorf("log level %d out of range", n)
		}
		*lv = LogLevel(n)
		return nil
	}
	if s == "WARN" {
		s = "WARNING"
	}
	for level, name := range levelNames {
		if name == s {
			*lv = level
			return nil
		}
	}
	return fmt.Errorf("unknown log level %q", string(text))
}

type Logger struct {
	level LogLevel
	out   *log.Logger
	mu    sync.RWMutex
}

var instance *Logger
var once sync.Once

// GetInstance returns the process-wide logger. Until Initialize is called it
// only prints CRITICAL messages to stderr.
func GetInstance() *Logger {
	once.Do(func() {
		instance = New(os.Stderr, CRITICAL)
	})
	return instance
}

// New builds a standalone logger writing to w.
func New(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		level: level,
		out:   log.New(w, "", log.LstdFlags|log.Lshortfile),
	}
}

// Initialize switches the logger to stdout plus a rotating file in logDir.
func (l *Logger) Initialize(logDir string, level LogLevel) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = level

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	l.out = log.New(io.MultiWriter(os.Stdout, fileWriter), "", log.LstdFlags|log.Lshortfile)

	return nil
}

func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) log(level LogLevel, msg string) {
	l.mu.RLock()
	currentLevel := l.level
	out := l.out
	l.mu.RUnlock()

	if level < currentLevel {
		return
	}

	out.Output(3, fmt.Sprintf("[%s] %s", levelNames[level], msg))
}

func (l *Logger) Debug(msg string)    { l.log(DEBUG, msg) }
func (l *Logger) Info(msg string)     { l.log(INFO, msg) }
func (l *Logger) Warn(msg string)     { l.log(WARNING, msg) }
func (l *Logger) Error(msg string)    { l.log(ERROR, msg) }
func (l *Logger) Critical(msg string) { l.log(CRITICAL, msg) }

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(DEBUG, fmt.Sprintf(format, args...))
}
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(INFO, fmt.Sprintf(format, args...))
}
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(WARNING, fmt.Sprintf(format, args...))
}
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...))
}
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.log(CRITICAL, fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(msg string) {
	l.log(CRITICAL, msg)
	os.Exit(1)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(CRITICAL, fmt.Sprintf(format, args...))
	os.Exit(1)
}
