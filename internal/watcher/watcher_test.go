package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"HotelDataClickHouse/internal/config"
	"HotelDataClickHouse/internal/models"
	"HotelDataClickHouse/internal/storage"

	"go.uber.org/zap/zaptest"
)

func TestCompilePattern(t *testing.T) {
	re, err := compilePattern("reviews-*.log")
	if err != nil {
		t.Fatalf("compilePattern: %v", err)
	}
	for name, want := range map[string]bool{
		"reviews-2025.log":  true,
		"reviews-.log":      true,
		"reviews-2025.logx": false,
		"reviews-2025Xlog":  false,
		"other.log":         false,
	} {
		if got := re.MatchString(name); got != want {
			t.Errorf("%q: got %v, want %v", name, got, want)
		}
	}
}

func testConfig(dir string) *config.Config {
	return &config.Config{
		Ingest: config.IngestConfig{
			ReviewDirectory: dir,
			FilePattern:     "*.log",
			RescanInterval:  60,
		},
	}
}

func receive(t *testing.T, ch <-chan models.Review) models.Review {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(5 * time.Second):
		t.Fatalf("no review received")
	}
	return models.Review{}
}

func TestWatcherTailsReviewFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	body := "2025-05-26T07:00:03Z,review,hotel='Bath Priory',city=Bath,rating=5\n" +
		"\n" +
		"2025-05-26T08:00:00Z,review,hotel=Travelodge,city=Bath,rating=2\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := storage.NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	ch := make(chan models.Review, 10)
	w := New(Config{Config: testConfig(dir), Logger: zaptest.NewLogger(t), Store: store}, ch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	first := receive(t, ch)
	second := receive(t, ch)
	if first.Hotel != "Bath Priory" || second.Hotel != "Travelodge" {
		t.Errorf("unexpected reviews: %+v, %+v", first, second)
	}
	if first.File != file {
		t.Errorf("file = %q", first.File)
	}

	// даём readTail записать смещение последней строки
	time.Sleep(200 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}

	offsets, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if offsets[file] != int64(len(body)) {
		t.Errorf("offset = %d, want %d", offsets[file], len(body))
	}
}

func TestWatcherResumesFromOffset(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	old := "2025-05-26T07:00:03Z,review,hotel=Old,city=Bath,rating=5\n"
	fresh := "2025-05-27T07:00:03Z,review,hotel=New,city=Bath,rating=4\n"
	if err := os.WriteFile(file, []byte(old+fresh), 0o644); err != nil {
		t.Fatal(err)
	}
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "processed.json"))
	if err := store.Save(map[string]int64{file: int64(len(old))}); err != nil {
		t.Fatal(err)
	}

	ch := make(chan models.Review, 10)
	w := New(Config{Config: testConfig(dir), Logger: zaptest.NewLogger(t), Store: store}, ch)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	defer func() { cancel(); <-done }()

	if r := receive(t, ch); r.Hotel != "New" {
		t.Errorf("expected to resume after saved offset, got %q", r.Hotel)
	}
}

func TestWatcherStopMidFileLosesNothing(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "reviews.log")
	const total = 40
	var body string
	var sizes []int64
	for i := 0; i < total; i++ {
		line := fmt.Sprintf("2025-05-26T07:00:%02dZ,review,hotel=H%02d,city=Bath,rating=4\n", i, i)
		body += line
		sizes = append(sizes, int64(len(line)))
	}
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "processed.json"))

	// первый запуск: останавливаемся, получив часть файла
	ch := make(chan models.Review, 2)
	w := New(Config{Config: testConfig(dir), Logger: zaptest.NewLogger(t), Store: store}, ch)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	var got []string
	for len(got) < 3 {
		got = append(got, receive(t, ch).Hotel)
	}
	cancel()
	// потребитель продолжает читать, пока watcher не остановится
	stopped := false
	for !stopped {
		select {
		case r := <-ch:
			got = append(got, r.Hotel)
		case err := <-done:
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			stopped = true
		case <-time.After(5 * time.Second):
			t.Fatalf("watcher did not stop")
		}
	}
	for len(ch) > 0 {
		got = append(got, (<-ch).Hotel)
	}

	offsets, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var want int64
	for _, n := range sizes[:len(got)] {
		want += n
	}
	if offsets[file] != want {
		t.Fatalf("offset = %d after %d delivered lines, want %d", offsets[file], len(got), want)
	}

	// второй запуск продолжает ровно со следующей строки
	if len(got) < total {
		ch2 := make(chan models.Review, total)
		w2 := New(Config{Config: testConfig(dir), Logger: zaptest.NewLogger(t), Store: store}, ch2)
		ctx2, cancel2 := context.WithCancel(context.Background())
		done2 := make(chan error, 1)
		go func() { done2 <- w2.Start(ctx2) }()
		defer func() { cancel2(); <-done2 }()
		for len(got) < total {
			got = append(got, receive(t, ch2).Hotel)
		}
	}
	for i, h := range got {
		if h != fmt.Sprintf("H%02d", i) {
			t.Fatalf("review %d = %q: lines lost or duplicated: %v", i, h, got)
		}
	}
}

func TestWatcherReloadsConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	write := func(level string) {
		body := "ClickHouse:\n  Address: localhost:9000\n  Database: hotels\nLogging:\n  Level: " + level + "\n"
		if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("info")

	reloaded := make(chan *config.Config, 64)
	w := New(Config{
		Config:     testConfig(dir),
		ConfigPath: cfgPath,
		Logger:     zaptest.NewLogger(t),
		Store:      storage.NewFileStore(filepath.Join(t.TempDir(), "processed.json")),
		OnReload:   func(c *config.Config) { reloaded <- c },
	}, make(chan models.Review))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()
	defer func() { cancel(); <-done }()

	// watchConfig запускается асинхронно; пишем, пока не увидим перечитывание
	deadline := time.After(5 * time.Second)
	for {
		write("debug")
		select {
		case c := <-reloaded:
			if c.Logging.Level != "debug" {
				t.Fatalf("level = %q", c.Logging.Level)
			}
			if w.current().Logging.Level != "debug" {
				t.Fatalf("watcher must keep the reloaded config")
			}
			return
		case <-deadline:
			t.Fatalf("config was not reloaded")
		case <-time.After(100 * time.Millisecond):
		}
	}
}
