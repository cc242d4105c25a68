package logger

import (
	"HotelDataClickHouse/internal/config"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Tree — дерево именованных логгеров поверх одного ядра zap.
// У каждого пространства имён свой порог (см. Levels), ядро общее.
type Tree struct {
	base   *zap.Logger
	levels *Levels
}

// NewTree собирает дерево поверх готового ядра. Ядро должно пропускать
// все уровни начиная с TraceLevel: фильтрацию выполняет levels.
func NewTree(core zapcore.Core, levels *Levels, opts ...zap.Option) *Tree {
	return &Tree{base: zap.New(core, opts...), levels: levels}
}

// Logger возвращает логгер для пространства имён namespace.
func (t *Tree) Logger(namespace string) *zap.Logger {
	enab := t.levels.enabler(namespace)
	return t.base.Named(namespace).WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		filtered, err := zapcore.NewIncreaseLevelCore(c, enab)
		if err != nil {
			return c
		}
		return filtered
	}))
}

// Levels возвращает пороги дерева.
func (t *Tree) Levels() *Levels {
	return t.levels
}

// Apply применяет уровни из конфигурации. При ошибке разбора
// действующие пороги не меняются.
func (t *Tree) Apply(cfg *config.LoggingConfig) error {
	root, byName, err := parseLevels(cfg)
	if err != nil {
		return err
	}
	t.levels.Replace(root, byName)
	return nil
}

// Sync сбрасывает буферы ядра.
func (t *Tree) Sync() error {
	return t.base.Sync()
}

func parseLevels(cfg *config.LoggingConfig) (zapcore.Level, map[string]zapcore.Level, error) {
	root := zapcore.InfoLevel
	if cfg.Level != "" {
		lvl, err := ParseLevel(cfg.Level)
		if err != nil {
			return 0, nil, err
		}
		root = lvl
	}
	byName := make(map[string]zapcore.Level, len(cfg.Levels))
	for _, lc := range cfg.Levels {
		lvl, err := ParseLevel(lc.Level)
		if err != nil {
			return 0, nil, fmt.Errorf("namespace %s: %w", lc.Namespace, err)
		}
		byName[lc.Namespace] = lvl
	}
	return root, byName, nil
}

// EncodeLevel — CapitalLevelEncoder, знающий про TRACE.
func EncodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("TRACE")
		return
	}
	zapcore.CapitalLevelEncoder(l, enc)
}

// EncoderConfig — общая конфигурация энкодера (plain text).
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		CallerKey:      "C",
		MessageKey:     "M",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    EncodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// InitZap инициализирует дерево логгеров:
// - в консоль выводятся сообщения, пропущенные порогами пространства имён;
// - в файл — только ошибки (Error+);
// - при EnableSentry отправляет Error+ в Sentry.
func InitZap(cfg *config.LoggingConfig) (*Tree, error) {
	root, byName, err := parseLevels(cfg)
	if err != nil {
		return nil, err
	}
	levels := NewLevels(root)
	levels.Replace(root, byName)

	// 1) Создаём директорию для лог-файла
	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
			}
		}
	}

	encoderCfg := EncoderConfig()

	// 2) WriteSyncer для файла
	var fileWS zapcore.WriteSyncer
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть лог-файл %s: %w", cfg.LogFile, err)
		}
		fileWS = zapcore.AddSync(f)
	}

	fileLevel := zapcore.ErrorLevel

	// 3) Консольное ядро пропускает всё, пороги решает Levels
	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= TraceLevel }),
		),
	}
	if fileWS != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderCfg),
			fileWS,
			zap.LevelEnablerFunc(func(lvl zapcore.Level) bool { return lvl >= fileLevel }),
		))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(fileLevel)}

	// 4) Интеграция с Sentry (Error+)
	if cfg.EnableSentry && cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			fmt.Fprintf(os.Stderr, "Sentry init failed: %v\n", err)
		} else {
			opts = append(opts, zap.Hooks(func(entry zapcore.Entry) error {
				if entry.Level >= zapcore.ErrorLevel {
					sentry.CaptureMessage(fmt.Sprintf("%s:%d — %s", entry.Caller.File, entry.Caller.Line, entry.Message))
					sentry.Flush(2 * time.Second)
				}
				return nil
			}))
		}
	}

	return NewTree(zapcore.NewTee(cores...), levels, opts...), nil
}
