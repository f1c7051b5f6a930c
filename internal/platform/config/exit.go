package config

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Exitf flushes the process logger, writes a formatted error message to
// stderr and exits with code 1.
func Exitf(format string, args ...any) {
	_ = zap.L().Sync()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
