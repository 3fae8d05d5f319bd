// Command leadformctl renders, validates and assembles lead forms offline
// and maintains the submission journal.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
