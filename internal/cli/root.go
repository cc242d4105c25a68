package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HotelDataClickHouse/internal/config"
	"HotelDataClickHouse/internal/logger"
	"HotelDataClickHouse/internal/sessionlog"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "hotels",
	Short: "Отзывы об отелях в ClickHouse",
	Long: `hotels загружает отзывы об отелях в ClickHouse и строит по ним сводки.

Внутренние события слоя хранения (SQL, транзакции, соединения, драйвер
ClickHouse) пишутся через zap в пространства имён persistence.<категория>;
пороги задаются в Logging.Levels конфига и перечитываются на лету.`,
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "путь к конфигу (YAML)")
	rootCmd.AddCommand(ingestCmd, summariesCmd, propertiesCmd)
}

// app — то, что нужно всем командам
type app struct {
	cfg  *config.Config
	tree *logger.Tree
	log  *sessionlog.SessionLog
}

func bootstrap(path string) (*app, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("загрузка %s: %w", path, err)
	}
	tree, err := logger.InitZap(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("инициализация логгера: %w", err)
	}
	log := sessionlog.New(tree)
	log.SetDisplay(display(cfg.Logging.Display))
	return &app{cfg: cfg, tree: tree, log: log}, nil
}

// reload применяет логирование из перечитанного конфига
func (rt *app) reload(cfg *config.Config) {
	lg := rt.tree.Logger("main")
	if err := rt.tree.Apply(&cfg.Logging); err != nil {
		lg.Error("Новые уровни логирования не применены", zap.Error(err))
		return
	}
	rt.log.SetDisplay(display(cfg.Logging.Display))
	lg.Info("Уровни логирования обновлены")
}

func display(d config.DisplayConfig) sessionlog.Display {
	return sessionlog.Display{
		Data:       d.Data,
		Connection: d.Connection,
		Date:       d.Date,
		Session:    d.Session,
		Thread:     d.Thread,
	}
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Ошибка: %s: %v\n", msg, err)
}
