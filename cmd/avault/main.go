// Package main is the entry point for the AssetVault CLI.
package main

import (
	"os"

	"github.com/abdul-hamid-achik/assetvault/cmd/avault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
