package utils

import "sync"

// TestLogger records log calls for assertions in tests. It is safe for
// concurrent use since tool notifications log from their own goroutine.
type TestLogger struct {
	mu      sync.Mutex
	Entries []TestLogEntry
}

type TestLogEntry struct {
	Level   string
	Message string
	Fields  []any
}

func NewTestLogger() *TestLogger { return &TestLogger{} }

func (t *TestLogger) record(level, msg string, kv []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Entries = append(t.Entries, TestLogEntry{Level: level, Message: msg, Fields: kv})
}

func (t *TestLogger) Debug(msg string, kv ...any) { t.record("DEBUG", msg, kv) }
func (t *TestLogger) Info(msg string, kv ...any)  { t.record("INFO", msg, kv) }
func (t *TestLogger) Warn(msg string, kv ...any)  { t.record("WARN", msg, kv) }
func (t *TestLogger) Error(msg string, kv ...any) { t.record("ERROR", msg, kv) }
func (t *TestLogger) SetLevel(LogLevel)           {}

// Messages returns the recorded messages at the given level.
func (t *TestLogger) Messages(level string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []string
	for _, e := range t.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
