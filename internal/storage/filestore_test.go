package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeReviews(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Repeat("x", size)), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileStoreLoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty map, got %v", got)
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")
	writeReviews(t, a, 100)
	writeReviews(t, b, 7)
	path := filepath.Join(t.TempDir(), "processed.json")
	s := NewFileStore(path)

	if err := s.Save(map[string]int64{a: 10}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(map[string]int64{a: 42, b: 7}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[a] != 42 || got[b] != 7 || len(got) != 2 {
		t.Errorf("unexpected offsets: %v", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file must be renamed away")
	}
}

func TestFileStoreDetectsTruncation(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	writeReviews(t, file, 200)
	s := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	if err := s.Save(map[string]int64{file: 120}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// файл перезаписан: короче прежнего, но длиннее offset
	writeReviews(t, file, 150)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if off, ok := got[file]; !ok || off != 0 {
		t.Errorf("truncated file must restart from 0, got %v", got)
	}
}

func TestFileStoreKeepsGrowingFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	writeReviews(t, file, 120)
	s := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	if err := s.Save(map[string]int64{file: 120}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	writeReviews(t, file, 300)
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[file] != 120 {
		t.Errorf("offset = %d, want 120", got[file])
	}
}

func TestFileStoreDropsRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	writeReviews(t, file, 10)
	s := NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	if err := s.Save(map[string]int64{file: 10}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := got[file]; ok {
		t.Errorf("removed file must be dropped, got %v", got)
	}
}

func TestFileStoreCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path).Load(); err == nil {
		t.Fatalf("expected error for corrupted file")
	}
}
