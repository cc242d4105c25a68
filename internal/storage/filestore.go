package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// fileState — запись о файле отзывов: сколько байт прочитано и какого
// размера был файл в момент сохранения
type fileState struct {
	Offset int64 `json:"offset"`
	Size   int64 `json:"size"`
}

// FileStore хранит смещения в JSON-файле.
// При загрузке файлы, которых больше нет, отбрасываются, а у файлов,
// ставших короче сохранённого размера, смещение сбрасывается в 0.
type FileStore struct {
	Path string
	mu   sync.Mutex
	stat func(string) (fs.FileInfo, error)
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, stat: os.Stat}
}

func (f *FileStore) Load() (map[string]int64, error) {
	processed := make(map[string]int64)
	bs, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return processed, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	var states map[string]fileState
	if err := json.Unmarshal(bs, &states); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	for path, st := range states {
		info, err := f.stat(path)
		if err != nil {
			continue
		}
		// файл перезаписан или обрезан
		if info.Size() < st.Size || info.Size() < st.Offset {
			processed[path] = 0
			continue
		}
		processed[path] = st.Offset
	}
	return processed, nil
}

func (f *FileStore) Save(data map[string]int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	states := make(map[string]fileState, len(data))
	for path, offset := range data {
		st := fileState{Offset: offset, Size: offset}
		if info, err := f.stat(path); err == nil && info.Size() > offset {
			st.Size = info.Size()
		}
		states[path] = st
	}
	bs, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, bs, 0o644); err != nil {
		return err
	}
	// Удаляем старый файл, чтобы Rename не ошибся (актуально для Windows)
	_ = os.Remove(f.Path)
	return os.Rename(tmp, f.Path)
}
