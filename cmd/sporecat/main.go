// Package main provides the sporecat CLI for decoding game-audio streams
// to WAV or raw PCM.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/spore/internal/version"
)

func main() {
	ctx := context.Background()

	app := &cli.Command{
		Name:    version.Name(),
		Usage:   "Game-audio container/stream decoding cli",
		Version: version.Version() + " (" + version.Commit() + " - " + version.Date() + ")",
		Commands: []*cli.Command{
			decodeCommand(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)

		os.Exit(1)
	}
}
