// Command spatialbench builds ball trees over synthetic vectors, checks them
// against a linear scan and reports build and query timings.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
