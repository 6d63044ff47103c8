package main

import (
	"log"

	"github.com/octopilot/server-selector/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
