package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/erain9/chunkbook/pkg/logging"
	"github.com/erain9/chunkbook/pkg/simulator"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		n      int
		output string
		seed   uint64
	)
	fs.IntVar(&n, "n", 10, "Number of events to simulate")
	fs.IntVar(&n, "num-updates", 10, "Same as -n")
	fs.StringVar(&output, "o", "-", "Output file for events")
	fs.StringVar(&output, "output", "-", "Same as -o")
	fs.Uint64Var(&seed, "seed", 0, "Random seed (default time based)")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	cfg := logging.DefaultConfig()
	cfg.Output = stderr
	cfg.Pretty = true
	logger := logging.Setup(cfg)

	if n < 0 {
		logger.Error().Int("n", n).Msg("Number of events must not be negative")
		return 2
	}

	seedSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})
	if !seedSet {
		seed = uint64(time.Now().UnixNano())
	}

	w := stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to create output file")
			return 1
		}
		defer f.Close()
		w = f
	}

	gen := simulator.NewSeeded(seed)
	if err := gen.Write(w, n); err != nil {
		logger.Error().Err(err).Msg("Failed to write events")
		return 1
	}

	logger.Debug().
		Int("events", n).
		Int64("creates", gen.Creates()).
		Str("seed", fmt.Sprint(seed)).
		Msg("Simulation written")
	return 0
}
