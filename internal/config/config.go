package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	RoundSeconds   int
	WordChoices    int
	GuessCooldown  time.Duration
	LogLevel       zerolog.Level
	WordsFile      string
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from lookup, applying defaults for unset keys.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Port:           "5000",
		AllowedOrigins: []string{"*"},
		RoundSeconds:   30,
		WordChoices:    3,
		GuessCooldown:  time.Second,
		LogLevel:       zerolog.InfoLevel,
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		if _, err := strconv.ParseUint(v, 10, 16); err != nil {
			return Config{}, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = v
	}

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		cfg.AllowedOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			origin = strings.TrimSpace(origin)
			if origin == "" {
				continue
			}
			if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
				return Config{}, fmt.Errorf("ALLOWED_ORIGINS: %q needs an http:// or https:// scheme", origin)
			}
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	var err error
	if cfg.RoundSeconds, err = positiveInt(lookup, "ROUND_SECONDS", cfg.RoundSeconds); err != nil {
		return Config{}, err
	}
	if cfg.WordChoices, err = positiveInt(lookup, "WORD_CHOICES", cfg.WordChoices); err != nil {
		return Config{}, err
	}

	if v, ok := lookup("GUESS_COOLDOWN"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("GUESS_COOLDOWN: invalid duration %q", v)
		}
		cfg.GuessCooldown = d
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(v))
		if err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	if v, ok := lookup("WORDS_FILE"); ok {
		cfg.WordsFile = strings.TrimSpace(v)
	}

	return cfg, nil
}

func positiveInt(lookup func(string) (string, bool), key string, def int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, v)
	}
	return n, nil
}
