// lazya2l is a terminal editor for A2L calibration files.
// It provides a lazygit-inspired interface for browsing modules, measurements,
// characteristics and axis points, editing them and importing ELF symbols.
//
// Usage:
//
//	lazya2l [FILE]
//	lazya2l serve
//	lazya2l tree FILE
//
// Configuration is loaded from ~/.lazya2l/config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marjoballabani/lazya2l/pkg/app"
	"github.com/marjoballabani/lazya2l/pkg/cli"
)

// Build information, set via ldflags during compilation:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=$(git rev-parse HEAD)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Short -v flag; cobra handles --version
	if len(os.Args) > 1 && os.Args[1] == "-v" {
		fmt.Printf("lazya2l %s (%s, %s)\n", version, commit, date)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildInfo := &app.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	if err := cli.New(ctx, buildInfo).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
