package watcher

import (
	"HotelDataClickHouse/internal/config"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// compilePattern переводит шаблон вида "*.log" в регулярное выражение
func compilePattern(pattern string) (*regexp.Regexp, error) {
	patternStr := regexp.QuoteMeta(pattern)
	patternStr = strings.ReplaceAll(patternStr, `\*`, ".*")
	patternStr = strings.ReplaceAll(patternStr, `\?`, ".")
	return regexp.Compile("^" + patternStr + "$")
}

// watchConfig следит за изменениями конфига. Наблюдаем за каталогом:
// редакторы часто заменяют файл целиком.
func (w *Watcher) watchConfig() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.cfg.Logger.Error("Не удалось создать watcher для конфига", zap.Error(err))
		return
	}
	defer watcher.Close()
	target := filepath.Clean(w.cfg.ConfigPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		w.cfg.Logger.Error("Не удалось наблюдать за конфигом", zap.String("path", target), zap.Error(err))
		return
	}
	for {
		select {
		case <-w.ctx.Done():
			return
		case ev := <-watcher.Events:
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.cfg.Logger.Info("Конфиг изменился, перечитываем", zap.String("path", target))
			newCfg, err := config.LoadConfig(target)
			if err != nil {
				w.cfg.Logger.Error("Ошибка загрузки конфига", zap.Error(err))
				continue
			}
			w.mu.Lock()
			w.cfg.Config = newCfg
			w.mu.Unlock()
			if w.cfg.OnReload != nil {
				w.cfg.OnReload(newCfg)
			}
		case err := <-watcher.Errors:
			w.cfg.Logger.Error("Ошибка watcher-а конфига", zap.Error(err))
		}
	}
}

// handleDirEvents обрабатывает fsnotify события в папках
func (w *Watcher) handleDirEvents(dw *fsnotify.Watcher) {
	pattern := w.current().Ingest.FilePattern
	filePattern, err := compilePattern(pattern)
	if err != nil {
		w.cfg.Logger.Error("Неверный FilePattern в конфиге", zap.String("pattern", pattern), zap.Error(err))
	}

	for {
		select {
		case <-w.ctx.Done():
			return
		case ev := <-dw.Events:
			if ev.Op&fsnotify.Create != 0 {
				info, err := os.Stat(ev.Name)
				if err == nil && info.IsDir() {
					_ = w.addWatchers(ev.Name, dw)
					w.ScanInitialFiles()
					continue
				}
			}
			if filePattern == nil || !filePattern.MatchString(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				w.startTail(ev.Name)
			}
			if ev.Op&fsnotify.Remove != 0 {
				w.stopTail(ev.Name)
			}
		case err := <-dw.Errors:
			w.cfg.Logger.Error("Ошибка watcher для каталогов", zap.Error(err))
		}
	}
}

// ScanInitialFiles запускает tail для всех подходящих файлов каталога,
// от старых к новым. Уже открытые файлы пропускаются в startTail.
func (w *Watcher) ScanInitialFiles() {
	cfg := w.current()
	pattern, err := compilePattern(cfg.Ingest.FilePattern)
	if err != nil {
		w.cfg.Logger.Error("Неверный FilePattern", zap.String("pattern", cfg.Ingest.FilePattern), zap.Error(err))
		return
	}

	type fileWithTime struct {
		Path string
		Mod  time.Time
	}
	var sorted []fileWithTime
	_ = filepath.Walk(cfg.Ingest.ReviewDirectory, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if pattern.MatchString(filepath.Base(path)) {
			sorted = append(sorted, fileWithTime{Path: path, Mod: info.ModTime()})
		}
		return nil
	})
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Mod.Before(sorted[j].Mod)
	})
	for _, f := range sorted {
		w.startTail(f.Path)
	}
}
