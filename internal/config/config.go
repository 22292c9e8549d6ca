// Package config loads engine settings from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultMoveTime is the search time for a bare "go".
const DefaultMoveTime = 3 * time.Second

// Config holds the settings for one engine process.
type Config struct {
	MoveTime   time.Duration
	DataDir    string
	Journal    bool
	LogLevel   string
	CPUProfile string
}

// FromEnv reads NULLMOVE_* variables, falling back to defaults.
func FromEnv() (Config, error) {
	moveTime, err := parseMoveTime(getenv("NULLMOVE_MOVETIME", DefaultMoveTime.String()))
	if err != nil {
		return Config{}, fmt.Errorf("NULLMOVE_MOVETIME: %w", err)
	}
	journal, err := strconv.ParseBool(getenv("NULLMOVE_JOURNAL", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("NULLMOVE_JOURNAL: %w", err)
	}

	return Config{
		MoveTime:   moveTime,
		DataDir:    getenv("NULLMOVE_DATA_DIR", ""),
		Journal:    journal,
		LogLevel:   getenv("NULLMOVE_LOG_LEVEL", "info"),
		CPUProfile: getenv("CPUPROFILE", ""),
	}, nil
}

// Load reads the environment and then lets args override it.
func Load(args []string) (Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return cfg, err
	}

	fs := flag.NewFlagSet("nullmove-uci", flag.ContinueOnError)
	fs.Func("movetime", "search time when go has no time control, as a duration or milliseconds (default "+cfg.MoveTime.String()+")", func(s string) error {
		d, err := parseMoveTime(s)
		if err != nil {
			return err
		}
		cfg.MoveTime = d
		return nil
	})
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "data directory (default: platform data dir)")
	fs.BoolVar(&cfg.Journal, "journal", cfg.Journal, "record completed searches in the journal")
	fs.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "log level: debug, info, warn, error, disabled")
	fs.StringVar(&cfg.CPUProfile, "cpuprofile", cfg.CPUProfile, "write cpu profile to file")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if cfg.MoveTime <= 0 {
		return cfg, fmt.Errorf("movetime must be positive, got %v", cfg.MoveTime)
	}
	return cfg, nil
}

// parseMoveTime accepts a duration ("2.5s") or plain milliseconds ("2500").
func parseMoveTime(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func getenv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
