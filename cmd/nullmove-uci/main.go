package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/nullmove/internal/config"
	"github.com/hailam/nullmove/internal/engine"
	"github.com/hailam/nullmove/internal/storage"
	"github.com/hailam/nullmove/internal/uci"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nullmove-uci: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	// UCI owns stdout; diagnostics go to stderr.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// Start CPU profiling if requested (via flag or environment variable)
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", cfg.CPUProfile).Msg("cpu-profiling")
	}

	eng := engine.NewEngine(engine.MaterialEvaluator{})
	protocol := uci.New(eng, os.Stdin, os.Stdout)
	protocol.SetMoveTime(cfg.MoveTime)

	if cfg.Journal {
		dir, err := storage.GetJournalDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("journal directory: %w", err)
		}
		j, err := storage.Open(dir)
		if err != nil {
			return err
		}
		defer j.Close()
		protocol.SetJournal(j)
		log.Info().Str("dir", dir).Msg("journal-enabled")
	}

	log.Debug().Dur("movetime", cfg.MoveTime).Msg("engine-ready")
	return protocol.Run()
}
