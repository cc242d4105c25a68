package cli

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HotelDataClickHouse/internal/batch"
	"HotelDataClickHouse/internal/config"
	"HotelDataClickHouse/internal/models"
	"HotelDataClickHouse/internal/persistence"
	"HotelDataClickHouse/internal/repository"
	"HotelDataClickHouse/internal/storage"
	"HotelDataClickHouse/internal/watcher"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Следить за каталогом отзывов и загружать их в ClickHouse",
	RunE:  runIngest,
}

func newStore(cfg *config.Config) (storage.ProcessedStore, error) {
	if cfg.Ingest.ProcessedStorage == "redis" {
		rs, err := storage.NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	return storage.NewFileStore(cfg.Ingest.ProcessedFile), nil
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(cfgFile)
	if err != nil {
		printError("запуск", err)
		return err
	}
	lg := rt.tree.Logger("main")
	defer lg.Sync()
	lg.Info("Сервис загрузки отзывов стартует…", zap.String("config", cfgFile))

	cfg := rt.cfg
	if err := cfg.ValidateIngest(); err != nil {
		lg.Error("Некорректная секция Ingest", zap.Error(err))
		return fmt.Errorf("validate ingest: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		lg.Error("Ошибка хранилища processed_files", zap.Error(err))
		return err
	}

	adapter := persistence.NewVendorAdapter(cfg, rt.log)
	conn, err := adapter.Open(ctx)
	if err != nil {
		lg.Error("Ошибка подключения к ClickHouse", zap.Error(err))
		return err
	}
	client := repository.New(conn, cfg.Persistence.Table, adapter.Session(), rt.log, rt.tree.Logger("clickhouse"))
	defer client.Close()

	batchCh := make(chan models.Review, cfg.Ingest.BatchSize*2)

	w := watcher.New(watcher.Config{
		Config:     cfg,
		ConfigPath: cfgFile,
		Logger:     rt.tree.Logger("watcher"),
		Store:      store,
		OnReload:   rt.reload,
	}, batchCh)
	batcher := batch.NewBatcher(cfg.Ingest.BatchSize, cfg.BatchInterval(), rt.tree.Logger("batcher"), client)

	// batcher останавливается по закрытию batchCh, чтобы отправить всё,
	// что watcher успел прочитать до остановки
	done := make(chan struct{})
	go func() {
		defer close(done)
		batcher.Run(context.Background(), batchCh)
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(batchCh)
		if err := w.Start(ctx); err != nil {
			lg.Error("Watcher завершился с ошибкой", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("Получен сигнал остановки, начинаем завершение работы")
	wg.Wait()
	<-done
	lg.Info("Сервис завершил работу")
	return nil
}
