package main

import (
	"os"

	"github.com/wonny/rollover/cmd/rollover/commands"
)

// main is the entry point for the rollover CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/rollover [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
