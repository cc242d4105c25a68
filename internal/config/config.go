package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix — префикс переменных окружения, переопределяющих конфиг
// (HOTELS_CLICKHOUSE_PASSWORD и т.п.).
const EnvPrefix = "HOTELS"

// ClickHouseConfig содержит настройки подключения к ClickHouse
// Поля обязательны: Address, Database
type ClickHouseConfig struct {
	Address  string `mapstructure:"Address"`
	Username string `mapstructure:"Username"`
	Password string `mapstructure:"Password"`
	Database string `mapstructure:"Database"`
	Protocol string `mapstructure:"Protocol"` // "native" или "http"
}

// RedisConfig содержит настройки подключения к Redis
type RedisConfig struct {
	Host     string `mapstructure:"Host"`
	Port     int    `mapstructure:"Port"`
	DB       int    `mapstructure:"DB"`
	Password string `mapstructure:"Password"`
	Key      string `mapstructure:"Key"`
}

// LevelConfig — порог для одного пространства имён логгеров.
// Задаётся списком, а не map: viper разбивает ключи с точками.
type LevelConfig struct {
	Namespace string `mapstructure:"Namespace"`
	Level     string `mapstructure:"Level"`
}

// DisplayConfig управляет служебными префиксами в сообщениях слоя хранения
type DisplayConfig struct {
	Data       bool `mapstructure:"Data"`       // показывать значения bind-параметров
	Connection bool `mapstructure:"Connection"` // Connection(id)
	Date       bool `mapstructure:"Date"`
	Session    bool `mapstructure:"Session"`
	Thread     bool `mapstructure:"Thread"`
}

// LoggingConfig содержит настройки логирования и интеграции с Sentry
type LoggingConfig struct {
	LogFile      string        `mapstructure:"LogFile"`      // путь к файлу логов
	SentryDSN    string        `mapstructure:"SentryDSN"`    // DSN для Sentry
	EnableSentry bool          `mapstructure:"EnableSentry"` // включить отправку ошибок в Sentry
	Level        string        `mapstructure:"Level"`        // корневой порог
	Levels       []LevelConfig `mapstructure:"Levels"`
	Display      DisplayConfig `mapstructure:"Display"`
}

// PersistenceConfig — свойства слоя хранения
type PersistenceConfig struct {
	Weaving string `mapstructure:"Weaving"` // "auto", "true" или "static"
	Table   string `mapstructure:"Table"`
}

// IngestConfig — откуда и как забирать файлы отзывов
type IngestConfig struct {
	ReviewDirectory  string `mapstructure:"ReviewDirectory"`
	FilePattern      string `mapstructure:"FilePattern"`
	BatchSize        int    `mapstructure:"BatchSize"`
	BatchInterval    int    `mapstructure:"BatchInterval"`    // секунды
	RescanInterval   int    `mapstructure:"RescanInterval"`   // секунды
	ProcessedStorage string `mapstructure:"ProcessedStorage"` // "file" или "redis"
	ProcessedFile    string `mapstructure:"ProcessedFile"`
}

// Config описывает основные настройки сервиса
// Загружается из YAML, переменные окружения HOTELS_* имеют приоритет
type Config struct {
	ClickHouse  ClickHouseConfig  `mapstructure:"ClickHouse"`
	Redis       RedisConfig       `mapstructure:"Redis"`
	Logging     LoggingConfig     `mapstructure:"Logging"`
	Persistence PersistenceConfig `mapstructure:"Persistence"`
	Ingest      IngestConfig      `mapstructure:"Ingest"`
}

// BatchInterval возвращает интервал отправки batch
func (c *Config) BatchInterval() time.Duration {
	return time.Duration(c.Ingest.BatchInterval) * time.Second
}

// RescanInterval возвращает интервал периодического сканирования каталога
func (c *Config) RescanInterval() time.Duration {
	return time.Duration(c.Ingest.RescanInterval) * time.Second
}

// LoadConfig читает и парсит конфиг из YAML-файла по указанному пути.
// Шаги:
// 1. Чтение сырого файла
// 2. Очистка данных: удаление BOM, замена табуляций
// 3. Парсинг YAML через viper (умолчания + окружение)
// 4. Валидация обязательных полей
func LoadConfig(path string) (*Config, error) {
	// 1. Чтение
	raw, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// 2. Очистка
	sanitized := sanitize(raw)

	// 3. Парсинг
	cfg, err := parseYAML(sanitized)
	if err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	// 4. Валидация
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ClickHouse.Protocol", "native")
	v.SetDefault("Redis.Port", 6379)
	v.SetDefault("Redis.Key", "hotels:processed_files")
	v.SetDefault("Logging.Level", "info")
	v.SetDefault("Logging.Display.Data", true)
	v.SetDefault("Persistence.Weaving", "auto")
	v.SetDefault("Persistence.Table", "hotel_reviews")
	v.SetDefault("Ingest.FilePattern", "*.log")
	v.SetDefault("Ingest.BatchSize", 1000)
	v.SetDefault("Ingest.BatchInterval", 5)
	v.SetDefault("Ingest.RescanInterval", 60)
	v.SetDefault("Ingest.ProcessedStorage", "file")
	v.SetDefault("Ingest.ProcessedFile", "processed_files.json")
	return v
}

// parseYAML парсит YAML-данные в структуру Config
func parseYAML(data []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
