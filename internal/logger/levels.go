package logger

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel — уровень ниже Debug, в zap его нет.
const TraceLevel = zapcore.DebugLevel - 1

// OffLevel выше любого уровня, который zap способен записать.
const OffLevel = zapcore.FatalLevel + 1

// ParseLevel разбирает имя уровня: trace, debug, info, warn, error, off.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "all":
		return TraceLevel, nil
	case "off", "none":
		return OffLevel, nil
	}
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return 0, fmt.Errorf("parse level %q: %w", s, err)
	}
	return lvl, nil
}

// Levels хранит пороги логирования по пространствам имён.
// Имена иерархические через точку: "persistence.sql" наследует
// порог "persistence", а тот — корневой.
type Levels struct {
	mu     sync.RWMutex
	root   zapcore.Level
	byName map[string]zapcore.Level
}

// NewLevels создаёт набор порогов с корневым уровнем root.
func NewLevels(root zapcore.Level) *Levels {
	return &Levels{root: root, byName: make(map[string]zapcore.Level)}
}

// Set задаёт порог для пространства имён. Пустое имя — корень.
func (l *Levels) Set(namespace string, lvl zapcore.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if namespace == "" {
		l.root = lvl
		return
	}
	l.byName[namespace] = lvl
}

// Replace атомарно заменяет все пороги (используется при перечитывании конфига).
func (l *Levels) Replace(root zapcore.Level, byName map[string]zapcore.Level) {
	next := make(map[string]zapcore.Level, len(byName))
	for k, v := range byName {
		next[k] = v
	}
	l.mu.Lock()
	l.root = root
	l.byName = next
	l.mu.Unlock()
}

// Effective возвращает действующий порог: ближайший заданный предок или корень.
func (l *Levels) Effective(namespace string) zapcore.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for name := namespace; name != ""; {
		if lvl, ok := l.byName[name]; ok {
			return lvl
		}
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			break
		}
		name = name[:i]
	}
	return l.root
}

// Enabled сообщает, пропускает ли пространство имён уровень lvl.
func (l *Levels) Enabled(namespace string, lvl zapcore.Level) bool {
	return lvl >= l.Effective(namespace)
}

// enabler возвращает LevelEnabler, привязанный к пространству имён.
// Порог читается при каждой проверке, поэтому изменения видны сразу.
func (l *Levels) enabler(namespace string) zapcore.LevelEnabler {
	return zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return l.Enabled(namespace, lvl) })
}
