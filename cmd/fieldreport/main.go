// cmd/fieldreport/main.go
package main

import (
	"github.com/mwiater/fieldreport/internal/commands"
)

// Populated by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	setVersionInfo = commands.SetVersionInfo
	executeCmd     = commands.Execute
)

// main hands control to the cobra root command.
func main() {
	setVersionInfo(version, commit, date)
	executeCmd()
}
