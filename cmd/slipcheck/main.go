// main is the entry point for the slipcheck CLI.
package main

import (
	"fmt"
	"os"

	"github.com/slipcheck/slipcheck/cmd"
	"github.com/slipcheck/slipcheck/internal/iocache"
)

func main() {
	// The global manager is wired in before any command runs; stores are
	// initialized lazily by each command's PreRunE setup.
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseStores()

	err := cmd.Execute()

	if profErr := cmd.StopProfiling(); profErr != nil {
		fmt.Fprintln(os.Stderr, "Warning: could not stop profiling:", profErr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		iocache.CloseStores()
		os.Exit(1)
	}
}
