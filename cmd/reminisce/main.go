package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/careloom/reminisce/internal/cli"
)

func main() {
	// Optional .env for local development; missing file is fine.
	godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
