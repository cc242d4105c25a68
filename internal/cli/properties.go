package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"HotelDataClickHouse/internal/persistence"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Свойства слоя хранения, которые получит драйвер",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := bootstrap(cfgFile)
		if err != nil {
			printError("запуск", err)
			return err
		}
		defer rt.tree.Sync()
		writeProperties(cmd.OutOrStdout(), persistence.NewVendorAdapter(rt.cfg, rt.log).VendorProperties())
		return nil
	},
}

func writeProperties(out io.Writer, props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "%s=%s\n", k, props[k])
	}
}
