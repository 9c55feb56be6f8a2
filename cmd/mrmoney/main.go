package main

import (
	"os"

	"github.com/LebsNeo/mrmoney-sub000/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
