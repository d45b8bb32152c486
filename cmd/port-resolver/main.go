// Package main is the entry point for the port-resolver.
package main

import (
	"os"

	"github.com/cploetz77/port-to-port-map-generator/cmd/port-resolver/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
