package transform

import (
	"HotelDataClickHouse/internal/models"
	"fmt"
	"strings"
	"time"
)

// MinRating и MaxRating — допустимый диапазон оценки
const (
	MinRating = 1
	MaxRating = 5
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
}

// TransformReview проверяет Review и превращает его в строку таблицы.
func TransformReview(r models.Review) (models.ReviewRow, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(r.Timestamp), "\uFEFF")
	if raw == "" {
		return models.ReviewRow{}, fmt.Errorf("пустое время отзыва")
	}
	var (
		reviewTime time.Time
		err        error
	)
	for _, layout := range timeLayouts {
		if reviewTime, err = time.Parse(layout, raw); err == nil {
			break
		}
	}
	if err != nil {
		return models.ReviewRow{}, fmt.Errorf("недопустимое время отзыва %q: %w", r.Timestamp, err)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return models.ReviewRow{}, fmt.Errorf("оценка %d вне диапазона %d..%d", r.Rating, MinRating, MaxRating)
	}
	if r.Hotel == "" || r.City == "" {
		return models.ReviewRow{}, fmt.Errorf("не указан отель или город: hotel=%q city=%q", r.Hotel, r.City)
	}

	var title *string
	if r.Title != "" {
		t := r.Title
		title = &t
	}
	eventType := r.EventType
	if eventType == "" {
		eventType = "review"
	}
	insertedAt := r.InsertedAt
	if insertedAt.IsZero() {
		insertedAt = time.Now()
	}

	return models.ReviewRow{
		ReviewDate: reviewTime.UTC().Format("2006-01-02"),
		ReviewTime: reviewTime.UTC(),
		EventType:  eventType,
		Hotel:      r.Hotel,
		City:       r.City,
		State:      r.State,
		Country:    r.Country,
		Rating:     r.Rating,
		Title:      title,
		User:       r.User,
		InsertedAt: insertedAt,
	}, nil
}
