// Package logging configures logrus for the app and provides an in-memory
// log buffer, a repeat throttle and the sink for framework messages.
package logging

import (
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logger to write to out at the named level.
func Setup(out io.Writer, level string) error {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05.000",
		FullTimestamp:   true,
	})
	if out != nil {
		log.SetOutput(out)
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("can't parse log level: %v", err)
	}
	log.SetLevel(lvl)
	return nil
}

// FrameworkLogFunc returns a framework log sink writing through logger with
// a module field.
func FrameworkLogFunc(logger log.FieldLogger, module string) func(string) {
	entry := logger.WithField("module", module)
	return func(message string) {
		entry.Info(message)
	}
}

// DefaultBufferSize is the number of entries a Buffer keeps by default.
const DefaultBufferSize = 400

// Entry is one buffered log line.
type Entry struct {
	Time    time.Time
	Level   log.Level
	Message string
	Fields  log.Fields
}

// Buffer is a logrus hook keeping the most recent entries for in-app
// viewing.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewBuffer returns a buffer holding up to size entries.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Buffer{entries: make([]Entry, size)}
}

// Levels implements log.Hook.
func (b *Buffer) Levels() []log.Level {
	return log.AllLevels
}

// Fire implements log.Hook.
func (b *Buffer) Fire(e *log.Entry) error {
	fields := make(log.Fields, len(e.Data))
	for k, v := range e.Data {
		fields[k] = v
	}
	b.mu.Lock()
	b.entries[b.next] = Entry{Time: e.Time, Level: e.Level, Message: e.Message, Fields: fields}
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
	b.mu.Unlock()
	return nil
}

// Entries returns the buffered entries, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return append([]Entry(nil), b.entries[:b.next]...)
	}
	out := make([]Entry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	return append(out, b.entries[:b.next]...)
}

// Clear drops every buffered entry.
func (b *Buffer) Clear() {
	b.mu.Lock()
	for i := range b.entries {
		b.entries[i] = Entry{}
	}
	b.next = 0
	b.full = false
	b.mu.Unlock()
}

// Throttle suppresses repeats of the same key within a per-level window.
type Throttle struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[log.Level]time.Duration
	last    map[string]time.Time
}

// NewThrottle returns a throttle with the default windows: chatty levels
// are limited harder than warnings, errors are never dropped.
func NewThrottle() *Throttle {
	return &Throttle{
		now: time.Now,
		windows: map[log.Level]time.Duration{
			log.TraceLevel: 500 * time.Millisecond,
			log.DebugLevel: 250 * time.Millisecond,
			log.InfoLevel:  100 * time.Millisecond,
			log.WarnLevel:  50 * time.Millisecond,
		},
		last: make(map[string]time.Time),
	}
}

// Allow reports whether a message with key at level should be written now.
func (t *Throttle) Allow(level log.Level, key string) bool {
	window, ok := t.windows[level]
	if !ok || window <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	k := level.String() + "|" + key
	now := t.now()
	if prev, seen := t.last[k]; seen && now.Sub(prev) < window {
		return false
	}
	t.last[k] = now
	return true
}

// Logf writes through logger at level unless key was logged too recently.
func (t *Throttle) Logf(logger log.FieldLogger, level log.Level, key, format string, args ...interface{}) {
	if !t.Allow(level, key) {
		return
	}
	switch level {
	case log.TraceLevel, log.DebugLevel:
		logger.Debugf(format, args...)
	case log.InfoLevel:
		logger.Infof(format, args...)
	case log.WarnLevel:
		logger.Warnf(format, args...)
	default:
		logger.Errorf(format, args...)
	}
}
