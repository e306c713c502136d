// Package main is the entry point for the verdin command line client.
package main

import "github.com/verdinapp/verdin/internal/cli"

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date
	cli.Execute()
}
