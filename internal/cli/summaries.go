package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"HotelDataClickHouse/internal/domain"
	"HotelDataClickHouse/internal/persistence"
	"HotelDataClickHouse/internal/repository"
)

var summaryCity string

var summariesCmd = &cobra.Command{
	Use:   "summaries",
	Short: "Средний рейтинг отелей (точный и округлённый)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := bootstrap(cfgFile)
		if err != nil {
			printError("запуск", err)
			return err
		}
		lg := rt.tree.Logger("main")
		defer lg.Sync()

		adapter := persistence.NewVendorAdapter(rt.cfg, rt.log)
		conn, err := adapter.Open(cmd.Context())
		if err != nil {
			lg.Error("Ошибка подключения к ClickHouse", zap.Error(err))
			return err
		}
		client := repository.New(conn, rt.cfg.Persistence.Table, adapter.Session(), rt.log, rt.tree.Logger("clickhouse"))
		defer client.Close()

		summaries, err := client.HotelSummaries(cmd.Context(), summaryCity)
		if err != nil {
			lg.Error("Ошибка чтения сводок", zap.Error(err))
			return err
		}
		return writeSummaries(cmd.OutOrStdout(), summaries)
	},
}

func init() {
	summariesCmd.Flags().StringVar(&summaryCity, "city", "", "только отели этого города")
}

func writeSummaries(out io.Writer, summaries []domain.HotelSummary) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CITY\tSTATE\tCOUNTRY\tHOTEL\tRATING\tROUNDED")
	for _, s := range summaries {
		rating, rounded := "-", "-"
		if r := s.AverageRating(); r != nil {
			rating = strconv.FormatFloat(*r, 'f', -1, 64)
		}
		if r := s.AverageRatingRounded(); r != nil {
			rounded = strconv.Itoa(*r)
		}
		c := s.City()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.Name, c.State, c.Country, s.Name(), rating, rounded)
	}
	return tw.Flush()
}
