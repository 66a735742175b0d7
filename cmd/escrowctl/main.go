// Command escrowctl derives escrow addresses, encodes and decodes escrow
// instructions, inspects on-chain escrow state and syncs it to postgres.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand(newEnv(os.Stdout, os.Stderr)).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}
