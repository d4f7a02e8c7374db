package main

import (
	"os"

	"github.com/expenseiq/expenseiq/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
