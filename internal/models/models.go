package models

import "time"

// Review — запись из файла отзывов после разбора
// Timestamp = время отзыва как в файле (RFC3339 или "2006-01-02 15:04:05")
type Review struct {
	Timestamp  string
	EventType  string // второе поле строки, обычно "review"
	Hotel      string
	City       string
	State      string
	Country    string
	Rating     uint8
	Title      string
	User       string
	File       string // файл, из которого прочитана запись
	InsertedAt time.Time
}

// ReviewRow — строка таблицы отзывов в ClickHouse
type ReviewRow struct {
	ReviewDate string
	ReviewTime time.Time
	EventType  string
	Hotel      string
	City       string
	State      string
	Country    string
	Rating     uint8
	Title      *string
	User       string
	InsertedAt time.Time
}
