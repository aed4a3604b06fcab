// Package main implements the sdg CLI.
// It builds system dependence graphs for Go source and answers slicing and
// dependency queries over them.
package main

import (
	"os"

	"github.com/l3aro/go-sdg/cmd/sdg/commands"
)

var version = "dev"

func main() {
	commands.RootCmd.Version = version
	commands.RootCmd.SetVersionTemplate(`sdg version {{.Version}}
`)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
