package persistence

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"time"

	"HotelDataClickHouse/internal/config"
	"HotelDataClickHouse/internal/sessionlog"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Свойства слоя хранения
const (
	PropertyWeaving = "persistence.weaving"
	PropertyLogger  = "persistence.logging.logger"
)

// Режимы weaving
const (
	WeavingDynamic = "true"
	WeavingStatic  = "static"
)

// InstrumentationAvailable сообщает, собран ли бинарник с инструментированием
// (-race, -msan или -asan).
func InstrumentationAvailable() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "-race", "-msan", "-asan":
			if s.Value == "true" {
				return true
			}
		}
	}
	return false
}

// WeavingMode возвращает "true", если инструментирование доступно, иначе "static".
func WeavingMode(available bool) string {
	if available {
		return WeavingDynamic
	}
	return WeavingStatic
}

// VendorAdapter собирает свойства и опции драйвера ClickHouse.
type VendorAdapter struct {
	clickHouse  config.ClickHouseConfig
	persistence config.PersistenceConfig
	log         *sessionlog.SessionLog
	detect      func() bool
}

// NewVendorAdapter создаёт адаптер. log может быть nil: тогда драйвер
// пишет отладку своим встроенным логгером.
func NewVendorAdapter(cfg *config.Config, log *sessionlog.SessionLog) *VendorAdapter {
	return &VendorAdapter{
		clickHouse:  cfg.ClickHouse,
		persistence: cfg.Persistence,
		log:         log,
		detect:      InstrumentationAvailable,
	}
}

// VendorProperties возвращает свойства слоя хранения.
func (a *VendorAdapter) VendorProperties() map[string]string {
	weaving := a.persistence.Weaving
	if weaving == "" || weaving == "auto" {
		weaving = WeavingMode(a.detect())
	}
	props := map[string]string{PropertyWeaving: weaving}
	if a.log != nil {
		props[PropertyLogger] = sessionlog.Name
	}
	return props
}

// Options собирает опции драйвера. Отладка драйвера идёт в SessionLog
// (категория connection), только если свойство логгера указывает на него.
func (a *VendorAdapter) Options(props map[string]string) *clickhouse.Options {
	protocol := clickhouse.Native
	if a.clickHouse.Protocol == "http" {
		protocol = clickhouse.HTTP
	}
	opts := &clickhouse.Options{
		Addr: []string{a.clickHouse.Address},
		Auth: clickhouse.Auth{
			Database: a.clickHouse.Database,
			Username: a.clickHouse.Username,
			Password: a.clickHouse.Password,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
		Protocol:    protocol,
	}
	if a.log != nil && props[PropertyLogger] == sessionlog.Name {
		// порог проверяет Printf на каждом вызове: уровень connection
		// можно поднять перечитыванием конфига без переподключения
		opts.Debug = true
		opts.Debugf = a.log.Printf(sessionlog.Fine, sessionlog.CategoryConnection)
	}
	return opts
}

// Session — имя сессии для служебного префикса сообщений.
func (a *VendorAdapter) Session() string {
	return fmt.Sprintf("ClickHouseSession(%s@%s)", a.clickHouse.Database, a.clickHouse.Address)
}

// Open открывает соединение с ClickHouse и проверяет его.
func (a *VendorAdapter) Open(ctx context.Context) (driver.Conn, error) {
	props := a.VendorProperties()
	a.logProperties(props)

	conn, err := clickhouse.Open(a.Options(props))
	if err != nil {
		a.logf(sessionlog.Severe, sessionlog.CategoryConnection, err, "clickhouse open %s", a.clickHouse.Address)
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(pingCtx); err != nil {
		a.logf(sessionlog.Severe, sessionlog.CategoryConnection, err, "clickhouse ping %s", a.clickHouse.Address)
		_ = conn.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	a.logf(sessionlog.Config, sessionlog.CategoryConnection, nil, "connected to %s, database %s", a.clickHouse.Address, a.clickHouse.Database)
	return conn, nil
}

func (a *VendorAdapter) logProperties(props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		a.logf(sessionlog.Config, sessionlog.CategoryProperties, nil, "%s=%s", k, props[k])
	}
}

func (a *VendorAdapter) logf(level sessionlog.Level, category string, err error, format string, args ...any) {
	if a.log == nil {
		return
	}
	a.log.Log(sessionlog.Entry{
		Level:    level,
		Category: category,
		Message:  format,
		Params:   args,
		Session:  a.Session(),
		Err:      err,
	})
}
