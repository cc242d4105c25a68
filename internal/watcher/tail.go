package watcher

import (
	"HotelDataClickHouse/internal/parser"
	"errors"
	"io"
	"os"

	"github.com/hpcloud/tail"
	"go.uber.org/zap"
)

// startTail запускает tail для файла, начиная с сохранённого смещения
func (w *Watcher) startTail(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, exists := w.files[path]; exists {
		return
	}
	if w.ctx.Err() != nil {
		return
	}
	offset := w.processed[path]
	// Файл перезаписан и стал короче — читаем с начала
	if info, err := os.Stat(path); err == nil && info.Size() < offset {
		offset = 0
	}
	loc := tail.SeekInfo{Offset: offset, Whence: io.SeekStart}
	t, err := tail.TailFile(path, tail.Config{Follow: true, ReOpen: true, MustExist: false, Location: &loc, Logger: tail.DiscardingLogger})
	if err != nil {
		w.cfg.Logger.Error("Ошибка открытия tail", zap.String("file", path), zap.Error(err))
		return
	}
	w.files[path] = t
	w.cfg.Logger.Info("Запущен tail для файла", zap.String("file", path), zap.Int64("offset", offset))
	w.tails.Add(1)
	go w.readTail(path, t, offset)
}

// stopTail останавливает tail и сохраняет processed
func (w *Watcher) stopTail(path string) {
	w.mu.Lock()
	t, ok := w.files[path]
	if ok {
		delete(w.files, path)
	}
	w.mu.Unlock()
	if ok {
		_ = t.Stop()
		t.Cleanup()
		w.saveProcessed()
	}
}

// readTail читает строки, разбирает отзывы и обновляет offset.
// Offset считается по отданным строкам, а не по t.Tell(): tail уже может
// читать следующую строку. При Follow tail отдаёт только строки с '\n'.
// Выходим, когда tail закроет Lines после Stop, ни одна строка не теряется.
func (w *Watcher) readTail(path string, t *tail.Tail, offset int64) {
	defer w.tails.Done()
	defer func() {
		if r := recover(); r != nil {
			w.cfg.Logger.Error("Паника в readTail восстановлена", zap.Any("error", r))
		}
	}()

	for line := range t.Lines {
		if line.Err != nil {
			w.cfg.Logger.Warn("Ошибка чтения строки", zap.String("file", path), zap.Error(line.Err))
			continue
		}
		review, err := parser.ParseLine(line.Text)
		if err != nil {
			if !errors.Is(err, parser.ErrEmptyLine) {
				w.cfg.Logger.Warn("Не удалось разобрать строку", zap.String("file", path), zap.Error(err))
			}
		} else {
			review.File = path
			w.batchCh <- review
		}
		offset += int64(len(line.Text)) + 1
		w.mu.Lock()
		w.processed[path] = offset
		w.mu.Unlock()
	}
}
