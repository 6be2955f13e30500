package main

import (
	"os"

	"cbrbot/internal/entrypoint/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
