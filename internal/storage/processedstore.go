package storage

// ProcessedStore — интерфейс для загрузки/сохранения смещений в прочитанных файлах отзывов.
type ProcessedStore interface {
	Load() (map[string]int64, error)
	Save(data map[string]int64) error
}
