package main

import (
	"os"

	"github.com/teranos/apidefs/cmd/apidefs/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		commands.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
