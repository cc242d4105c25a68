package parser

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"HotelDataClickHouse/internal/models"
)

// ErrEmptyLine — пустая строка или строка без полей
var ErrEmptyLine = errors.New("empty review line")

// ParseLine разбирает одну строку файла отзывов в Review.
// Формат: <время>,<тип>,key=value,key='value, с запятой',...
func ParseLine(line string) (models.Review, error) {
	line = strings.TrimPrefix(strings.TrimSpace(line), "\uFEFF")
	if line == "" {
		return models.Review{}, ErrEmptyLine
	}
	header := parseHeader(splitFields(line))

	return models.Review{
		Timestamp:  safe(header, "Timestamp"),
		EventType:  safe(header, "EventType"),
		Hotel:      safe(header, "hotel"),
		City:       safe(header, "city"),
		State:      safe(header, "state"),
		Country:    safe(header, "country"),
		Rating:     parseUint8(safe(header, "rating")),
		Title:      safe(header, "title"),
		User:       safe(header, "user"),
		InsertedAt: time.Now(),
	}, nil
}

// parseHeader раскладывает поля: первые два позиционные, остальные key=value.
func parseHeader(parts []string) map[string]string {
	res := make(map[string]string)
	if len(parts) > 0 {
		res["Timestamp"] = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		res["EventType"] = strings.TrimSpace(parts[1])
	}
	if len(parts) < 3 {
		return res
	}
	for _, part := range parts[2:] {
		if eq := strings.Index(part, "="); eq > 0 {
			k := strings.TrimSpace(part[:eq])
			v := unquote(strings.TrimSpace(part[eq+1:]))
			res[k] = v
		}
	}
	return res
}

// splitFields режет строку по запятым вне кавычек ' и ".
// Обратный слеш экранирует следующий символ.
func splitFields(s string) []string {
	var (
		fields   []string
		b        strings.Builder
		quote    byte
		inEscape bool
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inEscape:
			inEscape = false
			b.WriteByte(c)
		case c == '\\':
			inEscape = true
			b.WriteByte(c)
		case quote != 0:
			if c == quote {
				quote = 0
			}
			b.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			b.WriteByte(c)
		case c == ',':
			fields = append(fields, b.String())
			b.Reset()
		default:
			b.WriteByte(c)
		}
	}
	return append(fields, b.String())
}

// unquote снимает кавычки и экранирование
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '\'' || v[0] == '"') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	inEscape := false
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && !inEscape {
			inEscape = true
			continue
		}
		inEscape = false
		b.WriteByte(v[i])
	}
	return b.String()
}

// --- Безопасные преобразования ---
func safe(m map[string]string, k string) string {
	if v, ok := m[k]; ok {
		return v
	}
	return ""
}

func parseUint8(s string) uint8 {
	n, _ := strconv.ParseUint(s, 10, 8)
	return uint8(n)
}
