// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every tunable the engine and runner read at startup.
type Config struct {
	LogLevel logrus.Level

	CardsPerPlayer   int
	SetupPeekCount   int
	PenaltyDrawCount int
	BotThinkDelay    time.Duration

	// Seed of 0 means "derive from the clock".
	Seed uint64

	BotCount   int
	PlayerName string
}

// Load reads the environment, after merging in a .env file when one exists.
// A missing .env is not an error; a malformed value is.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		LogLevel:         logrus.WarnLevel,
		CardsPerPlayer:   4,
		SetupPeekCount:   2,
		PenaltyDrawCount: 1,
		BotThinkDelay:    0,
		BotCount:         2,
		PlayerName:       "You",
	}

	if v := os.Getenv("VINTO_LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("VINTO_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}

	var err error
	if cfg.CardsPerPlayer, err = intEnv("VINTO_CARDS_PER_PLAYER", cfg.CardsPerPlayer); err != nil {
		return cfg, err
	}
	if cfg.SetupPeekCount, err = intEnv("VINTO_SETUP_PEEKS", cfg.SetupPeekCount); err != nil {
		return cfg, err
	}
	if cfg.PenaltyDrawCount, err = intEnv("VINTO_PENALTY_DRAWS", cfg.PenaltyDrawCount); err != nil {
		return cfg, err
	}
	if cfg.BotCount, err = intEnv("VINTO_BOTS", cfg.BotCount); err != nil {
		return cfg, err
	}
	if v := os.Getenv("VINTO_BOT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("VINTO_BOT_DELAY: %w", err)
		}
		cfg.BotThinkDelay = d
	}
	if v := os.Getenv("VINTO_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("VINTO_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("VINTO_PLAYER_NAME"); v != "" {
		cfg.PlayerName = v
	}
	return cfg, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	if n < 0 {
		return def, fmt.Errorf("%s: must not be negative", key)
	}
	return n, nil
}
