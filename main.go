package main

import (
	"os"

	"github.com/rogersnm/sheetkeep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
