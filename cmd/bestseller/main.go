package main

import (
	"os"

	"github.com/maltedev/bestseller-scraper/cmd/bestseller/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
