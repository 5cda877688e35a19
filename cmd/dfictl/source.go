package main

import (
	"io"
	"os"
)

// readDescriptorSource reads the bytes for a `<file|->` positional
// argument: "-" means stdin, anything else is a file path. Shared by
// parse, print, and diff so all three honor the same contract.
func readDescriptorSource(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}
