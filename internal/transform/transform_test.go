package transform

import (
	"testing"
	"time"

	"HotelDataClickHouse/internal/models"
)

func validReview() models.Review {
	return models.Review{
		Timestamp: "2025-05-26T07:00:03+02:00",
		Hotel:     "The Bath Priory Hotel",
		City:      "Bath",
		Country:   "UK",
		Rating:    4,
		Title:     "Lovely",
	}
}

func TestTransformReview(t *testing.T) {
	row, err := TransformReview(validReview())
	if err != nil {
		t.Fatalf("TransformReview: %v", err)
	}
	if row.ReviewDate != "2025-05-26" || !row.ReviewTime.Equal(time.Date(2025, 5, 26, 5, 0, 3, 0, time.UTC)) {
		t.Errorf("time: %s %s", row.ReviewDate, row.ReviewTime)
	}
	if row.EventType != "review" || row.Title == nil || *row.Title != "Lovely" {
		t.Errorf("row: %+v", row)
	}
	if row.InsertedAt.IsZero() {
		t.Errorf("InsertedAt must default to now")
	}
}

func TestTransformReviewPlainTime(t *testing.T) {
	r := validReview()
	r.Timestamp = "2025-05-26 07:00:03"
	r.Title = ""
	row, err := TransformReview(r)
	if err != nil {
		t.Fatalf("TransformReview: %v", err)
	}
	if row.Title != nil {
		t.Errorf("empty title must be NULL")
	}
}

func TestTransformReviewRejects(t *testing.T) {
	cases := map[string]func(*models.Review){
		"empty time":  func(r *models.Review) { r.Timestamp = "" },
		"bad time":    func(r *models.Review) { r.Timestamp = "yesterday" },
		"zero rating": func(r *models.Review) { r.Rating = 0 },
		"high rating": func(r *models.Review) { r.Rating = 6 },
		"no hotel":    func(r *models.Review) { r.Hotel = "" },
		"no city":     func(r *models.Review) { r.City = "" },
	}
	for name, mutate := range cases {
		r := validReview()
		mutate(&r)
		if _, err := TransformReview(r); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
