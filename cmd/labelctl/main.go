// Command labelctl is the operator CLI for the candle label API: browse the
// catalogue, adjust copy counts, import candles and print label sheets.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
