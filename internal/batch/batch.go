package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"HotelDataClickHouse/internal/models"
)

// Inserter отправляет пачку отзывов в хранилище
type Inserter interface {
	InsertReviews(ctx context.Context, reviews []models.Review) error
}

// Batcher накапливает пачку отзывов и отправляет их пачками
// batchSize — сколько записей отправлять за раз
// batchInterval — максимальный интервал между отправками
type Batcher struct {
	batchSize     int
	batchInterval time.Duration
	logger        *zap.Logger
	inserter      Inserter
}

// NewBatcher создает новый batcher
func NewBatcher(batchSize int, batchInterval time.Duration, logger *zap.Logger, inserter Inserter) *Batcher {
	return &Batcher{
		batchSize:     batchSize,
		batchInterval: batchInterval,
		logger:        logger,
		inserter:      inserter,
	}
}

// Run собирает batch и отправляет его до отмены ctx или закрытия in
func (b *Batcher) Run(ctx context.Context, in <-chan models.Review) {
	batch := make([]models.Review, 0, b.batchSize)
	timer := time.NewTimer(b.batchInterval)
	defer timer.Stop()

	flush := func(reason string) {
		if len(batch) == 0 {
			return
		}
		b.logger.Info("Отправляем batch в ClickHouse", zap.Int("count", len(batch)), zap.String("reason", reason))
		if err := b.inserter.InsertReviews(ctx, batch); err != nil {
			b.logger.Error("Ошибка при отправке batch в ClickHouse", zap.Error(err))
		} else {
			b.logger.Info("Batch успешно отправлен", zap.Int("count", len(batch)))
		}
		batch = make([]models.Review, 0, b.batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			flush("graceful shutdown")
			return
		case entry, ok := <-in:
			if !ok {
				flush("input closed")
				return
			}
			batch = append(batch, entry)
			if len(batch) >= b.batchSize {
				flush("batch size reached")
				timer.Reset(b.batchInterval)
			}
		case <-timer.C:
			flush("interval")
			timer.Reset(b.batchInterval)
		}
	}
}
