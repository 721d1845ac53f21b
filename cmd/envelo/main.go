package main

import (
	"os"

	"github.com/envelo-dev/envelo/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
