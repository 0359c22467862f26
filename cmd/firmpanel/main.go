// Command firmpanel builds an annual firm-level panel of 10-K style filings
// from a filing-metadata table.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "firmpanel:", err)
		os.Exit(1)
	}
}
