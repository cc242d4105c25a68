// Package sessionlog направляет внутренние события слоя хранения в zap.
//
// Пороги больше не задаются в самом слое хранения: они берутся из бэкенда
// логирования (см. logger.Levels) для пространства имён категории.
// Категории и их логгеры:
//
//	default          persistence
//	sql              persistence.sql
//	transaction      persistence.transaction
//	...              persistence.<category>
//
// Соответствие уровней:
//
//	All, Finest, Finer -> TRACE
//	Fine               -> DEBUG
//	Config, Info       -> INFO
//	Warning            -> WARN
//	Severe             -> ERROR
//	остальное          -> не пишется
package sessionlog

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Name — полное имя адаптера. Слой хранения подключает SessionLog,
// только если свойство persistence.logging.logger равно Name.
const Name = "HotelDataClickHouse/internal/sessionlog.SessionLog"

// RootNamespace — корневое пространство имён, оно же логгер категории default.
const RootNamespace = "persistence"

// Категории событий слоя хранения.
const (
	CategoryDefault       = "default"
	CategorySQL           = "sql"
	CategoryTransaction   = "transaction"
	CategoryEvent         = "event"
	CategoryConnection    = "connection"
	CategoryQuery         = "query"
	CategoryCache         = "cache"
	CategoryPropagation   = "propagation"
	CategorySequencing    = "sequencing"
	CategoryEJB           = "ejb"
	CategoryEJBOrMetadata = "ejb_or_metadata"
	CategoryWeaver        = "weaver"
	CategoryProperties    = "properties"
	CategoryServer        = "server"
)

// Categories возвращает все известные категории, включая default.
func Categories() []string {
	return []string{
		CategoryDefault,
		CategorySQL,
		CategoryTransaction,
		CategoryEvent,
		CategoryConnection,
		CategoryQuery,
		CategoryCache,
		CategoryPropagation,
		CategorySequencing,
		CategoryEJB,
		CategoryEJBOrMetadata,
		CategoryWeaver,
		CategoryProperties,
		CategoryServer,
	}
}

// Namespace возвращает пространство имён логгера категории.
func Namespace(category string) string {
	if category == CategoryDefault {
		return RootNamespace
	}
	return RootNamespace + "." + category
}

// Backend выдаёт логгер для пространства имён.
type Backend interface {
	Logger(namespace string) *zap.Logger
}

// Display — какие служебные сведения добавлять перед сообщением.
type Display struct {
	Data       bool
	Connection bool
	Date       bool
	Session    bool
	Thread     bool
}

// DefaultDisplay: данные показываем, остальное нет.
func DefaultDisplay() Display {
	return Display{Data: true}
}

// Entry — одно событие слоя хранения.
type Entry struct {
	Level      Level
	Category   string
	Message    string
	Params     []any // аргументы для Message в стиле fmt
	Bind       []any // значения bind-параметров SQL
	Session    string
	Connection string
	Thread     string
	Date       time.Time
	Err        error
}

// SessionLog — адаптер событий слоя хранения к zap.
// После New реестры не меняются, поэтому блокировки не нужны.
type SessionLog struct {
	loggers map[string]*zap.Logger
	display atomic.Pointer[Display]
}

// New создаёт адаптер и сразу получает логгеры для всех категорий.
func New(backend Backend) *SessionLog {
	s := &SessionLog{
		loggers: make(map[string]*zap.Logger, len(Categories())),
	}
	for _, category := range Categories() {
		s.loggers[category] = backend.Logger(Namespace(category))
	}
	s.SetDisplay(DefaultDisplay())
	return s
}

// SetDisplay заменяет флаги отображения.
func (s *SessionLog) SetDisplay(d Display) {
	s.display.Store(&d)
}

// Display возвращает текущие флаги отображения.
func (s *SessionLog) Display() Display {
	return *s.display.Load()
}

// Logger возвращает логгер категории; пустая или неизвестная
// категория даёт логгер default.
func (s *SessionLog) Logger(category string) *zap.Logger {
	if l, ok := s.loggers[category]; ok {
		return l
	}
	return s.loggers[CategoryDefault]
}

// resolve находит логгер и уровень zap; ok == false, если событие не пишется.
func (s *SessionLog) resolve(level Level, category string) (*zap.Logger, Severity, bool) {
	sev := Translate(level)
	lvl, ok := sev.ZapLevel()
	if !ok {
		return nil, SeverityOff, false
	}
	l := s.Logger(category)
	return l, sev, l.Core().Enabled(lvl)
}

// ShouldLog сообщает, будет ли записано событие level в категории category.
func (s *SessionLog) ShouldLog(level Level, category string) bool {
	_, _, ok := s.resolve(level, category)
	return ok
}

// ShouldLogDefault — ShouldLog для категории default.
func (s *SessionLog) ShouldLogDefault(level Level) bool {
	return s.ShouldLog(level, CategoryDefault)
}

// Log пишет событие одной строкой. Сообщение форматируется только
// после проверки порога.
func (s *SessionLog) Log(e Entry) {
	l, sev, ok := s.resolve(e.Level, e.Category)
	if !ok {
		return
	}
	lvl, _ := sev.ZapLevel()
	d := s.Display()

	var b strings.Builder
	writeSupplement(&b, e, d)
	writeMessage(&b, e, d)

	if e.Err != nil {
		l.Log(lvl, b.String(), zap.Error(e.Err))
		return
	}
	l.Log(lvl, b.String())
}

// Printf возвращает функцию в стиле Printf, пишущую в категорию category.
// Подходит для отладочных хуков драйверов.
func (s *SessionLog) Printf(level Level, category string) func(format string, v ...any) {
	return func(format string, v ...any) {
		s.Log(Entry{Level: level, Category: category, Message: format, Params: v})
	}
}

const dateLayout = "2006.01.02 15:04:05.000"

func writeSupplement(b *strings.Builder, e Entry, d Display) {
	if d.Date {
		date := e.Date
		if date.IsZero() {
			date = time.Now()
		}
		b.WriteString(date.Format(dateLayout))
		b.WriteString("--")
	}
	if d.Session && e.Session != "" {
		b.WriteString(e.Session)
		b.WriteString("--")
	}
	if d.Connection && e.Connection != "" {
		b.WriteString("Connection(")
		b.WriteString(e.Connection)
		b.WriteString(")--")
	}
	if d.Thread && e.Thread != "" {
		b.WriteString("Thread(")
		b.WriteString(e.Thread)
		b.WriteString(")--")
	}
}

func writeMessage(b *strings.Builder, e Entry, d Display) {
	if len(e.Params) > 0 {
		fmt.Fprintf(b, e.Message, e.Params...)
	} else {
		b.WriteString(e.Message)
	}
	if d.Data && len(e.Bind) > 0 {
		b.WriteString("\n\tbind => [")
		for i, v := range e.Bind {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprint(b, v)
		}
		b.WriteString("]")
	}
}
