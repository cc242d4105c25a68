package repository

import (
	"HotelDataClickHouse/internal/domain"
	"HotelDataClickHouse/internal/models"
	"HotelDataClickHouse/internal/sessionlog"
	"HotelDataClickHouse/internal/transform"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"
)

const insertColumns = "ReviewDate, ReviewTime, EventType, Hotel, City, State, Country, Rating, Title, User, InsertedAt"

// Client — доступ к таблице отзывов.
// SQL и границы batch пишутся в SessionLog (категории sql, transaction, query).
type Client struct {
	conn    driver.Conn
	table   string
	session string
	log     *sessionlog.SessionLog
	Logger  *zap.Logger
}

// New создаёт клиента поверх открытого соединения
func New(conn driver.Conn, table, session string, log *sessionlog.SessionLog, logger *zap.Logger) *Client {
	return &Client{conn: conn, table: table, session: session, log: log, Logger: logger}
}

// InsertReviews конвертирует Review в ReviewRow через transform и отправляет одним batch.
// Некорректные записи пропускаются.
func (c *Client) InsertReviews(ctx context.Context, reviews []models.Review) error {
	// Отдельный контекст с таймаутом, чтобы остановка сервиса не прерывала вставку
	dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 60*time.Second)
	defer cancel()

	query := "INSERT INTO " + c.table + " (" + insertColumns + ")"
	c.trace(sessionlog.Finer, sessionlog.CategoryTransaction, nil, "begin batch into %s", c.table)
	c.sql(query, nil)

	batch, err := c.conn.PrepareBatch(dbCtx, query)
	if err != nil {
		c.trace(sessionlog.Severe, sessionlog.CategoryTransaction, err, "rollback batch into %s", c.table)
		return fmt.Errorf("prepare batch: %w", err)
	}

	appended := 0
	for _, review := range reviews {
		row, err := transform.TransformReview(review)
		if err != nil {
			c.Logger.Warn("Некорректный отзыв, запись пропущена", zap.Error(err), zap.String("file", review.File))
			continue
		}
		if err := batch.Append(
			row.ReviewDate,
			row.ReviewTime,
			row.EventType,
			row.Hotel,
			row.City,
			row.State,
			row.Country,
			row.Rating,
			row.Title,
			row.User,
			row.InsertedAt,
		); err != nil {
			_ = batch.Abort()
			c.trace(sessionlog.Severe, sessionlog.CategoryTransaction, err, "rollback batch into %s", c.table)
			return fmt.Errorf("append: %w", err)
		}
		appended++
	}

	if appended == 0 {
		_ = batch.Abort()
		c.trace(sessionlog.Finer, sessionlog.CategoryTransaction, nil, "nothing to commit into %s", c.table)
		return nil
	}
	if err := batch.Send(); err != nil {
		c.trace(sessionlog.Severe, sessionlog.CategoryTransaction, err, "rollback batch into %s", c.table)
		return fmt.Errorf("send batch: %w", err)
	}
	c.trace(sessionlog.Finer, sessionlog.CategoryTransaction, nil, "commit batch into %s: %d rows", c.table, appended)
	return nil
}

// HotelSummaries возвращает сводки по отелям города; пустой city — по всем.
func (c *Client) HotelSummaries(ctx context.Context, city string) ([]domain.HotelSummary, error) {
	query := "SELECT City, State, Country, Hotel, avgOrNull(Rating) FROM " + c.table
	var args []any
	if city != "" {
		query += " WHERE City = ?"
		args = append(args, city)
	}
	query += " GROUP BY City, State, Country, Hotel ORDER BY Hotel"

	c.trace(sessionlog.Fine, sessionlog.CategoryQuery, nil, "execute query HotelSummaries(city=%q)", city)
	c.sql(query, args)

	rows, err := c.conn.Query(ctx, query, args...)
	if err != nil {
		c.trace(sessionlog.Severe, sessionlog.CategoryQuery, err, "query HotelSummaries failed")
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []domain.HotelSummary
	for rows.Next() {
		var (
			cty  domain.City
			name string
			avg  *float64
		)
		if err := rows.Scan(&cty.Name, &cty.State, &cty.Country, &name, &avg); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, domain.NewHotelSummary(cty, name, avg))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read summaries: %w", err)
	}
	c.trace(sessionlog.Finest, sessionlog.CategoryQuery, nil, "HotelSummaries returned %d rows", len(out))
	return out, nil
}

// Close закрывает соединение с ClickHouse
func (c *Client) Close() error {
	c.trace(sessionlog.Config, sessionlog.CategoryConnection, nil, "disconnect")
	return c.conn.Close()
}

func (c *Client) sql(query string, bind []any) {
	c.log.Log(sessionlog.Entry{
		Level:    sessionlog.Fine,
		Category: sessionlog.CategorySQL,
		Message:  query,
		Bind:     bind,
		Session:  c.session,
	})
}

func (c *Client) trace(level sessionlog.Level, category string, err error, format string, args ...any) {
	c.log.Log(sessionlog.Entry{
		Level:    level,
		Category: category,
		Message:  format,
		Params:   args,
		Session:  c.session,
		Err:      err,
	})
}
