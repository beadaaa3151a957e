package main

import (
	"os"

	"github.com/levanchungit/qlct/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
