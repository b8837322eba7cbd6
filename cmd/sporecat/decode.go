package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/mycophonic/spore"
	"github.com/mycophonic/spore/internal/wavwriter"
	"github.com/mycophonic/spore/ioreader"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path")

const renderChunkSamples = 4096

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a game-audio stream to WAV (or raw PCM with --raw)",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file path (- for stdout)",
			},
			&cli.BoolFlag{
				Name:    "info",
				Aliases: []string{"i"},
				Usage:   "print format info and exit without decoding",
			},
			&cli.BoolFlag{
				Name:  "raw",
				Usage: "output raw interleaved PCM16LE instead of WAV",
			},
			&cli.BoolFlag{
				Name:  "no-loop",
				Usage: "ignore loop points and decode exactly once through",
			},
			&cli.IntFlag{
				Name:  "loop-count",
				Value: 2, //nolint:mnd
				Usage: "number of times to play the loop body before stopping",
			},
			&cli.IntFlag{
				Name:  "fade-ms",
				Value: 10000, //nolint:mnd
				Usage: "fade-out duration in milliseconds applied after the final loop",
			},
		},
		Action: runDecode,
	}
}

func runDecode(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()

	host, err := ioreader.OpenOSIo(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}

	s, err := spore.Open(host)
	if err != nil {
		_ = host.Close()

		return fmt.Errorf("detecting format: %w", err)
	}
	defer s.Close()

	applyPlaybackFlags(s, cmd)

	if cmd.Bool("info") {
		printInfo(s)

		return nil
	}

	if cmd.Bool("raw") {
		return renderTo(s, cmd.String("output"), writeRawFrame)
	}

	return renderTo(s, cmd.String("output"), nil)
}

// applyPlaybackFlags rebuilds the Stream's PlaybackState from CLI flags.
// spore.Open always produces a sane default (loop forever with no fade),
// which is the wrong default for a one-shot CLI decode.
func applyPlaybackFlags(s *spore.Stream, cmd *cli.Command) {
	cfg := spore.PlaybackConfig{
		IgnoreLoop:  cmd.Bool("no-loop"),
		LoopCount:   float64(cmd.Int("loop-count")),
		FadeSeconds: float64(cmd.Int("fade-ms")) / 1000, //nolint:mnd
	}

	s.Playback = spore.NewPlaybackState(cfg, int(s.SampleRate))
}

func printInfo(s *spore.Stream) {
	info := s.Describe()

	_, _ = fmt.Fprintf(os.Stderr, "codec:       %s\n", info.Codec)
	_, _ = fmt.Fprintf(os.Stderr, "layout:      %s\n", info.Layout)
	_, _ = fmt.Fprintf(os.Stderr, "container:   %s\n", info.Meta)
	_, _ = fmt.Fprintf(os.Stderr, "sample rate: %d Hz\n", info.SampleRate)
	_, _ = fmt.Fprintf(os.Stderr, "channels:    %d\n", info.Channels)
	_, _ = fmt.Fprintf(os.Stderr, "samples:     %d\n", info.NumSamples)
	_, _ = fmt.Fprintf(os.Stderr, "bitrate:     %.0f bps\n", info.BitrateEstimate)

	if info.Looping {
		_, _ = fmt.Fprintf(os.Stderr, "loop:        %d - %d\n", info.LoopStart, info.LoopEnd)
	} else {
		_, _ = fmt.Fprintln(os.Stderr, "loop:        none")
	}
}

// frameWriter is called once per render chunk; it receives the raw int16
// buffer actually filled (written*channels samples).
type frameWriter func(w io.Writer, samples []int16) error

func writeRawFrame(w io.Writer, samples []int16) error {
	buf := make([]byte, len(samples)*2) //nolint:mnd

	for i, smp := range samples {
		buf[i*2] = byte(smp)      //nolint:mnd
		buf[i*2+1] = byte(smp >> 8) //nolint:mnd
	}

	_, err := w.Write(buf)

	return err
}

func renderTo(s *spore.Stream, output string, raw frameWriter) error {
	var w io.Writer

	if output == "-" {
		w = os.Stdout
	} else {
		file, err := os.Create(output) //nolint:gosec // CLI tool creates user-specified output files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}

		defer file.Close()

		w = file
	}

	channels := int(s.Channels)
	buf := make([]int16, renderChunkSamples*channels)

	if raw == nil {
		return renderWAV(s, w, buf, channels)
	}

	for {
		written, err := s.Render(buf, renderChunkSamples)
		if written > 0 {
			if werr := raw(w, buf[:written*channels]); werr != nil {
				return fmt.Errorf("writing output: %w", werr)
			}
		}

		if err != nil {
			return fmt.Errorf("decoding: %w", err)
		}

		if written == 0 {
			return nil
		}
	}
}

// renderWAV buffers the fully decoded PCM in memory so the WAV header's
// data-size field can be written up front; sporecat trades memory for a
// seekless, single-pass output writer.
func renderWAV(s *spore.Stream, w io.Writer, buf []int16, channels int) error {
	var all []int16

	for {
		written, err := s.Render(buf, renderChunkSamples)
		if written > 0 {
			all = append(all, buf[:written*channels]...)
		}

		if err != nil {
			return fmt.Errorf("decoding: %w", err)
		}

		if written == 0 {
			break
		}
	}

	if err := wavwriter.Write(w, all, channels, int(s.SampleRate)); err != nil {
		return fmt.Errorf("writing wav: %w", err)
	}

	return nil
}
