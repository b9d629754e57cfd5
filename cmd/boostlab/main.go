// Package main implements the boostlab CLI: search, evaluate and tune
// field boosts, and serve the retrieval API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
