// main is the entry point of the benchtable CLI.
package main

import (
	"github.com/huangsam/benchtable/cmd"
	"github.com/huangsam/benchtable/internal/contract"
	"github.com/huangsam/benchtable/internal/history"
)

func main() {
	defer contract.SyncLogger()
	defer history.CloseHistory()

	if err := cmd.Execute(); err != nil {
		history.CloseHistory()
		contract.LogFatal("Command failed", err)
	}
}
