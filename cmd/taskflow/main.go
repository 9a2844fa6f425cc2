// cmd/taskflow/main.go
//
// Entry point for the taskflow CLI. Everything lives in internal/cli; main
// only maps an error onto the exit status.

package main

import (
	"os"

	"github.com/kingrea/taskflow/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
