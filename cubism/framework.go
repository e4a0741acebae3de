// Package cubism provides the process-wide render framework lifetime: it is
// started once with an Option carrying a log sink and a verbosity level,
// initialized when a GL surface exists, and disposed and cleaned up when the
// host stops.
package cubism

import (
	"fmt"
	"strings"
)

// LogLevel is the framework log verbosity. Messages below the configured
// level are not passed to the log function.
type LogLevel int

const (
	LogVerbose LogLevel = iota
	LogDebug
	LogInfo
	LogWarning
	LogError
	LogOff
)

// String returns the string representation of the level.
func (l LogLevel) String() string {
	switch l {
	case LogVerbose:
		return "verbose"
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	case LogOff:
		return "off"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name as written in the config file.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "":
		return LogVerbose, nil
	case "debug":
		return LogDebug, nil
	case "info":
		return LogInfo, nil
	case "warning", "warn":
		return LogWarning, nil
	case "error":
		return LogError, nil
	case "off", "none":
		return LogOff, nil
	}
	return LogOff, fmt.Errorf("can't parse framework log level %q", s)
}

// LogFunc receives formatted framework messages.
type LogFunc func(message string)

// Option is the framework configuration passed to StartUp. It is immutable
// once the framework has started.
type Option struct {
	LogFunction  LogFunc
	LoggingLevel LogLevel
}

// Framework tracks the started/initialized state of the render framework.
type Framework struct {
	started     bool
	initialized bool
	opt         Option
}

// New returns a framework that has not been started.
func New() *Framework {
	return &Framework{}
}

// StartUp records opt and marks the framework started. Starting twice keeps
// the first option.
func (f *Framework) StartUp(opt Option) bool {
	if f.started {
		f.logf(LogInfo, "StartUp() is already done.")
		return f.started
	}
	f.opt = opt
	f.started = true
	f.logf(LogInfo, "StartUp() is complete.")
	return f.started
}

// CleanUp forgets the option and both state flags so StartUp can run again.
func (f *Framework) CleanUp() {
	f.started = false
	f.initialized = false
	f.opt = Option{}
}

// Initialize prepares the framework for rendering. It needs a prior StartUp.
func (f *Framework) Initialize() {
	if !f.started {
		f.logf(LogWarning, "Framework is not started.")
		return
	}
	if f.initialized {
		f.logf(LogWarning, "Initialize() skipped, already initialized.")
		return
	}
	f.initialized = true
	f.logf(LogInfo, "Initialize() is complete.")
}

// Dispose releases what Initialize prepared. The framework stays started.
func (f *Framework) Dispose() {
	if !f.started {
		f.logf(LogWarning, "Framework is not started.")
		return
	}
	if !f.initialized {
		f.logf(LogWarning, "Dispose() skipped, not initialized.")
		return
	}
	f.initialized = false
	f.logf(LogInfo, "Dispose() is complete.")
}

func (f *Framework) IsStarted() bool     { return f.started }
func (f *Framework) IsInitialized() bool { return f.initialized }

// Option returns the option the framework was started with.
func (f *Framework) Option() Option { return f.opt }

// Logf sends a message to the configured log function when level passes the
// configured verbosity.
func (f *Framework) Logf(level LogLevel, format string, args ...interface{}) {
	f.logf(level, format, args...)
}

func (f *Framework) logf(level LogLevel, format string, args ...interface{}) {
	if f.opt.LogFunction == nil || f.opt.LoggingLevel == LogOff || level < f.opt.LoggingLevel {
		return
	}
	f.opt.LogFunction(fmt.Sprintf("[CSM][%s] %s", strings.ToUpper(level.String()), fmt.Sprintf(format, args...)))
}
