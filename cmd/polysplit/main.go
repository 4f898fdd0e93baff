// Command polysplit splits multichannel WAV/AIFF recordings into labeled
// mono files.
//
// The root command runs the split. The inspect subcommand probes the
// source tree without writing anything and check reports on the local
// ffmpeg install.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	cmd := newRootCommand(newCommandContext())
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "polysplit: %v\n", err)
		}
		os.Exit(1)
	}
}
