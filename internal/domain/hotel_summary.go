package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// ratingPrecision — число значащих цифр в AverageRating (HALF_UP).
const ratingPrecision = 2

// City — город отеля
type City struct {
	Name    string
	State   string
	Country string
}

// HotelSummary — read-model отеля со средней оценкой.
// Значения округляются один раз, в конструкторе.
type HotelSummary struct {
	city                 City
	name                 string
	averageRating        *float64
	averageRatingRounded *int
}

// NewHotelSummary создаёт сводку. averageRating == nil означает,
// что отзывов нет: тогда обе оценки тоже nil.
func NewHotelSummary(city City, name string, averageRating *float64) HotelSummary {
	s := HotelSummary{city: city, name: name}
	if averageRating != nil {
		precise := roundSignificant(*averageRating, ratingPrecision)
		rounded := int(math.Floor(*averageRating + 0.5))
		s.averageRating = &precise
		s.averageRatingRounded = &rounded
	}
	return s
}

func (s HotelSummary) City() City {
	return s.city
}

func (s HotelSummary) Name() string {
	return s.name
}

// AverageRating — средняя оценка, две значащие цифры.
func (s HotelSummary) AverageRating() *float64 {
	return s.averageRating
}

// AverageRatingRounded — средняя оценка, округлённая до целого.
func (s HotelSummary) AverageRatingRounded() *int {
	return s.averageRatingRounded
}

// roundSignificant округляет v до precision значащих цифр, половина — вверх
// (от нуля). Округляется точное двоичное значение v, а не его кратчайшая
// десятичная запись: 1.15 хранится как 1.1499…, поэтому даёт 1.1.
func roundSignificant(v float64, precision int) float64 {
	d := decimal.NewFromFloat(v)
	if d.IsZero() {
		return 0
	}
	// позиция старшей значащей цифры относительно запятой
	msd := d.NumDigits() + int(d.Exponent()) - 1
	f, _ := decimal.NewFromFloatWithExponent(v, int32(msd-precision+1)).Float64()
	return f
}
