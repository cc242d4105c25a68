package main

import (
	"os"

	"HotelDataClickHouse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
