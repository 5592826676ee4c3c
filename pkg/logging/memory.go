package logging

import "sync"

// MemoryEntry is a captured log line
type MemoryEntry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// MemoryLogger keeps entries in memory. Tests use it to assert on
// warnings without parsing JSON.
type MemoryLogger struct {
	mu      *sync.Mutex
	entries *[]MemoryEntry
	level   Level
	fields  []Field
}

// NewMemoryLogger creates a MemoryLogger capturing every level
func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{
		mu:      &sync.Mutex{},
		entries: &[]MemoryEntry{},
		level:   DebugLevel,
	}
}

func (m *MemoryLogger) add(level Level, msg string, fields []Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level < m.level {
		return
	}
	fm := make(map[string]any, len(m.fields)+len(fields))
	for _, f := range m.fields {
		fm[f.Key] = f.Value
	}
	for _, f := range fields {
		fm[f.Key] = f.Value
	}
	*m.entries = append(*m.entries, MemoryEntry{Level: level, Message: msg, Fields: fm})
}

func (m *MemoryLogger) Debug(msg string, fields ...Field) { m.add(DebugLevel, msg, fields) }
func (m *MemoryLogger) Info(msg string, fields ...Field)  { m.add(InfoLevel, msg, fields) }
func (m *MemoryLogger) Warn(msg string, fields ...Field)  { m.add(WarnLevel, msg, fields) }
func (m *MemoryLogger) Error(msg string, fields ...Field) { m.add(ErrorLevel, msg, fields) }

// With returns a child sharing the same entry buffer
func (m *MemoryLogger) With(fields ...Field) Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	nf := make([]Field, len(m.fields)+len(fields))
	copy(nf, m.fields)
	copy(nf[len(m.fields):], fields)
	return &MemoryLogger{mu: m.mu, entries: m.entries, level: m.level, fields: nf}
}

func (m *MemoryLogger) SetLevel(level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = level
}

func (m *MemoryLogger) GetLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// Entries returns a copy of the captured entries
func (m *MemoryLogger) Entries() []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryEntry, len(*m.entries))
	copy(out, *m.entries)
	return out
}

// Count returns the number of captured entries at the given level
func (m *MemoryLogger) Count(level Level) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range *m.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
