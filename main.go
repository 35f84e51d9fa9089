package main

import (
	_ "time/tzdata"

	"github.com/joescharf/adosprint/cmd"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
