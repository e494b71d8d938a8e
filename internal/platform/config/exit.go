package config

import (
	"fmt"
	"os"
)

// Exitf prints a formatted message to stderr and exits with code 1. The
// key tools use it so startup failures read the same everywhere.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
