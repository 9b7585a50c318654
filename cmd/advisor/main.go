package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/logimind/advisor/internal/cli"
)

func main() {
	// A missing .env is fine, shell environment still applies.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
