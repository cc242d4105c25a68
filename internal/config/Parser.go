package config

import (
	"bytes"
	"fmt"
	"os"
)

// readFile читает все байты из файла по пути
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// sanitize удаляет BOM и табуляции
func sanitize(data []byte) []byte {
	// Удаляем UTF-8 BOM
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	// Заменяем табы на два пробела
	data = bytes.ReplaceAll(data, []byte("\t"), []byte("  "))
	return data
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.ClickHouse.Address == "" {
		return fmt.Errorf("ClickHouse.Address must not be empty")
	}
	if c.ClickHouse.Database == "" {
		return fmt.Errorf("ClickHouse.Database must not be empty")
	}
	if p := c.ClickHouse.Protocol; p != "native" && p != "http" {
		return fmt.Errorf("ClickHouse.Protocol must be native or http, got %q", p)
	}
	switch c.Persistence.Weaving {
	case "auto", "true", "static":
	default:
		return fmt.Errorf("Persistence.Weaving must be auto, true or static, got %q", c.Persistence.Weaving)
	}
	if c.Persistence.Table == "" {
		return fmt.Errorf("Persistence.Table must not be empty")
	}
	for i, lc := range c.Logging.Levels {
		if lc.Namespace == "" {
			return fmt.Errorf("Logging.Levels[%d].Namespace must not be empty", i)
		}
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("BatchSize must be positive")
	}
	if c.Ingest.BatchInterval <= 0 {
		return fmt.Errorf("BatchInterval must be positive")
	}
	switch c.Ingest.ProcessedStorage {
	case "file", "redis":
	default:
		return fmt.Errorf("ProcessedStorage must be file or redis, got %q", c.Ingest.ProcessedStorage)
	}
	return nil
}

// ValidateIngest дополнительно проверяет поля, нужные только для загрузки отзывов
func (c *Config) ValidateIngest() error {
	if c.Ingest.ReviewDirectory == "" {
		return fmt.Errorf("Ingest.ReviewDirectory must not be empty")
	}
	if c.Ingest.FilePattern == "" {
		return fmt.Errorf("Ingest.FilePattern must not be empty")
	}
	if c.Ingest.RescanInterval <= 0 {
		return fmt.Errorf("RescanInterval must be positive")
	}
	if c.Ingest.ProcessedStorage == "redis" && c.Redis.Host == "" {
		return fmt.Errorf("Redis.Host must not be empty when ProcessedStorage is redis")
	}
	return nil
}
