package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARN:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

type Logger struct {
	level  LogLevel
	zl     zerolog.Logger
	fields map[string]interface{}
	mode   string // "server", "cli" or empty
}

type Config struct {
	Level  LogLevel
	Output io.Writer
	Format string // "json" or "text" (default)
	Mode   string
}

func New() *Logger {
	return NewWithConfig(Config{
		Level:  INFO,
		Output: os.Stdout,
		Format: "text",
	})
}

func NewWithConfig(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	return &Logger{
		level:  config.Level,
		zl:     newZerolog(config.Output, config.Format),
		fields: make(map[string]interface{}),
		mode:   config.Mode,
	}
}

func newZerolog(out io.Writer, format string) zerolog.Logger {
	if strings.EqualFold(format, "json") {
		zerolog.TimeFieldFormat = timeFormat
		return zerolog.New(out).With().Timestamp().Logger()
	}

	cw := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    true,
		TimeFormat: timeFormat,
		FormatLevel: func(i interface{}) string {
			return fmt.Sprintf("[%s]", strings.ToUpper(fmt.Sprintf("%v", i)))
		},
	}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// SetMode sets the mode for the logger (e.g., "server", "cli")
func (l *Logger) SetMode(mode string) {
	l.mode = mode
}

// GetMode tells you what mode this logger is running in
func (l *Logger) GetMode() string {
	return l.mode
}

func (l *Logger) WithFields(keyVals ...interface{}) *Logger {
	newLogger := &Logger{
		level:  l.level,
		zl:     l.zl,
		fields: make(map[string]interface{}, len(l.fields)+len(keyVals)/2),
		mode:   l.mode,
	}

	for k, v := range l.fields {
		newLogger.fields[k] = v
	}

	for i := 0; i+1 < len(keyVals); i += 2 {
		newLogger.fields[fmt.Sprintf("%v", keyVals[i])] = keyVals[i+1]
	}

	return newLogger
}

// WithField creates a new logger that includes an extra bit of context,
// for example "component=orchestrator".
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(key, value)
}

// WithMode creates a new logger set to a specific mode.
func (l *Logger) WithMode(mode string) *Logger {
	newLogger := l.WithFields()
	newLogger.mode = mode
	return newLogger
}

func (l *Logger) Debug(msg string, keyVals ...interface{}) {
	l.log(DEBUG, msg, keyVals...)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.log(INFO, msg, kv...)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.log(WARN, msg, kv...)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.log(ERROR, msg, kv...)
}

func (l *Logger) Fatal(msg string, kv ...interface{}) {
	l.log(ERROR, msg, kv...)
	os.Exit(1)
}

func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.log(ERROR, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, msg string, kv ...interface{}) {
	if level < l.level {
		return
	}

	allFields := make(map[string]interface{}, len(l.fields)+len(kv)/2+1)
	for k, v := range l.fields {
		allFields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		allFields[fmt.Sprintf("%v", kv[i])] = kv[i+1]
	}
	if l.mode != "" {
		allFields["mode"] = l.mode
	}

	l.zl.WithLevel(level.zerolog()).Fields(allFields).Msg(msg)
}

func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Logger) GetLevel() LogLevel {
	return l.level
}

func (l *Logger) IsDebugEnabled() bool {
	return l.level <= DEBUG
}

func (l *Logger) IsInfoEnabled() bool {
	return l.level <= INFO
}

// global logger instance for the convenience
var globalLogger = New()

// Configure replaces the global logger output, format and level.
func Configure(config Config) {
	globalLogger = NewWithConfig(config)
}

// SetGlobalMode sets the mode for the global logger
func SetGlobalMode(mode string) {
	globalLogger.SetMode(mode)
}

func Debug(msg string, keyvals ...interface{}) {
	globalLogger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	globalLogger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	globalLogger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	globalLogger.Error(msg, keyvals...)
}

func Fatal(msg string, keyvals ...interface{}) {
	globalLogger.Fatal(msg, keyvals...)
}

func Fatalf(format string, args ...interface{}) {
	globalLogger.Fatalf(format, args...)
}

func WithFields(keyvals ...interface{}) *Logger {
	return globalLogger.WithFields(keyvals...)
}

func WithField(key string, value interface{}) *Logger {
	return globalLogger.WithField(key, value)
}

func WithMode(mode string) *Logger {
	return globalLogger.WithMode(mode)
}

func SetLevel(level LogLevel) {
	globalLogger.SetLevel(level)
}

func ParseLevel(level string) (LogLevel, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level: %s", level)
	}
}

// Since returns the elapsed time as a value suitable for a log field.
func Since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
