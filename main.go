package main

import (
	"os"

	"github.com/abhisek/vault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
