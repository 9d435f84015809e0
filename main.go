package main

import (
	"os"

	"github.com/davidmtz-dev/bancos-reader/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
