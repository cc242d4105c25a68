package watcher

import (
	"HotelDataClickHouse/internal/config"
	"HotelDataClickHouse/internal/models"
	"HotelDataClickHouse/internal/storage"
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hpcloud/tail"
	"go.uber.org/zap"
)

// saveInterval — как часто сохранять смещения
const saveInterval = 30 * time.Second

type Config struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger
	Store      storage.ProcessedStore
	// OnReload вызывается после успешного перечитывания конфига
	OnReload func(*config.Config)
}

// Watcher следит за каталогом отзывов и отправляет разобранные записи в batchCh
type Watcher struct {
	cfg         Config
	store       storage.ProcessedStore
	batchCh     chan<- models.Review
	files       map[string]*tail.Tail
	processed   map[string]int64
	mu          sync.RWMutex
	ctx         context.Context
	tails       sync.WaitGroup
	watchedDirs map[string]struct{} // Отслеживаемые директории
}

func New(cfg Config, batchCh chan<- models.Review) *Watcher {
	processed, err := cfg.Store.Load()
	if err != nil {
		cfg.Logger.Error("Не удалось загрузить processed_files", zap.Error(err))
		processed = make(map[string]int64)
	}

	return &Watcher{
		cfg:         cfg,
		store:       cfg.Store,
		batchCh:     batchCh,
		files:       make(map[string]*tail.Tail),
		processed:   processed,
		watchedDirs: make(map[string]struct{}),
		ctx:         context.Background(),
	}
}

// current возвращает действующий конфиг
func (w *Watcher) current() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg.Config
}

// addWatchers рекурсивно добавляет наблюдателей для директорий
func (w *Watcher) addWatchers(dir string, dw *fsnotify.Watcher) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.cfg.Logger.Debug("Ошибка при обходе директории", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			w.mu.Lock()
			if _, exists := w.watchedDirs[path]; !exists {
				if err := dw.Add(path); err != nil {
					w.cfg.Logger.Error("Ошибка добавления наблюдателя", zap.String("dir", path), zap.Error(err))
				} else {
					w.watchedDirs[path] = struct{}{}
					w.cfg.Logger.Debug("Добавлен наблюдатель для директории", zap.String("dir", path))
				}
			}
			w.mu.Unlock()
		}
		return nil
	})
}

// runPeriodicScan периодически сканирует директорию
func (w *Watcher) runPeriodicScan() {
	ticker := time.NewTicker(w.current().RescanInterval())
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			w.cfg.Logger.Info("Периодическое сканирование завершено")
			return
		case <-ticker.C:
			w.cfg.Logger.Debug("Запуск периодического сканирования директорий")
			w.ScanInitialFiles()
		}
	}
}

// saveProcessed сохраняет снимок смещений
func (w *Watcher) saveProcessed() {
	w.mu.RLock()
	snapshot := make(map[string]int64, len(w.processed))
	for k, v := range w.processed {
		snapshot[k] = v
	}
	w.mu.RUnlock()
	if err := w.store.Save(snapshot); err != nil {
		w.cfg.Logger.Error("Не удалось сохранить processed_files", zap.Error(err))
	}
}

// Start блокируется до отмены ctx. batchCh должен читаться, пока Start
// не вернётся: строки, уже прочитанные tail, отправляются до конца.
func (w *Watcher) Start(ctx context.Context) error {
	w.ctx = ctx

	dw, err := fsnotify.NewWatcher()
	if err != nil {
		w.cfg.Logger.Error("Ошибка создания watcher для каталогов", zap.Error(err))
		return err
	}
	defer dw.Close()

	dir := w.current().Ingest.ReviewDirectory
	if err := w.addWatchers(dir, dw); err != nil {
		w.cfg.Logger.Debug("Ошибка при добавлении наблюдателей", zap.String("dir", dir), zap.Error(err))
	}

	// Начальное сканирование
	w.ScanInitialFiles()

	var bg sync.WaitGroup
	run := func(f func()) {
		bg.Add(1)
		go func() {
			defer bg.Done()
			f()
		}()
	}
	run(func() { w.handleDirEvents(dw) })
	if w.cfg.ConfigPath != "" {
		run(w.watchConfig)
	}
	run(w.runPeriodicScan)

	// Периодическое сохранение processed
	run(func() {
		ticker := time.NewTicker(saveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.saveProcessed()
			}
		}
	})

	<-ctx.Done()
	w.cfg.Logger.Info("Watcher остановлен по сигналу shutdown")
	w.mu.Lock()
	tails := w.files
	w.files = make(map[string]*tail.Tail)
	w.mu.Unlock()
	// Stop ждёт, пока tail отдаст последнюю строку, поэтому без блокировки
	for _, t := range tails {
		_ = t.Stop()
		t.Cleanup()
	}
	w.tails.Wait()
	bg.Wait()
	w.saveProcessed()
	return nil
}
