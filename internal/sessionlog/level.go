package sessionlog

import (
	"HotelDataClickHouse/internal/logger"

	"go.uber.org/zap/zapcore"
)

// Level — уровень события слоя хранения. Коды фиксированы.
type Level int

const (
	All Level = iota
	Finest
	Finer
	Fine
	Config
	Info
	Warning
	Severe
	Off
)

func (l Level) String() string {
	switch l {
	case All:
		return "ALL"
	case Finest:
		return "FINEST"
	case Finer:
		return "FINER"
	case Fine:
		return "FINE"
	case Config:
		return "CONFIG"
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Severe:
		return "SEVERE"
	case Off:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// Severity — уровень, с которым событие уходит в zap.
type Severity int

const (
	SeverityOff Severity = iota
	SeverityTrace
	SeverityDebug
	SeverityInfo
	SeverityWarn
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityTrace:
		return "TRACE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "OFF"
	}
}

// ZapLevel возвращает уровень zap. Для SeverityOff ok == false.
func (s Severity) ZapLevel() (lvl zapcore.Level, ok bool) {
	switch s {
	case SeverityTrace:
		return logger.TraceLevel, true
	case SeverityDebug:
		return zapcore.DebugLevel, true
	case SeverityInfo:
		return zapcore.InfoLevel, true
	case SeverityWarn:
		return zapcore.WarnLevel, true
	case SeverityError:
		return zapcore.ErrorLevel, true
	default:
		return 0, false
	}
}

// severities заполняется один раз и только читается
var severities = map[Level]Severity{
	All:     SeverityTrace,
	Finest:  SeverityTrace,
	Finer:   SeverityTrace,
	Fine:    SeverityDebug,
	Config:  SeverityInfo,
	Info:    SeverityInfo,
	Warning: SeverityWarn,
	Severe:  SeverityError,
}

// Translate переводит уровень события в Severity.
// Неизвестные коды (в том числе Off) дают SeverityOff: такое событие
// подавляется, а не повышается.
func Translate(level Level) Severity {
	if s, ok := severities[level]; ok {
		return s
	}
	return SeverityOff
}
