// Package main is the entry point for the kgit CLI.
package main

import (
	"os"

	"kgit/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
