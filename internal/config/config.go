package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/DoyleJ11/ludo-backend/internal/engine"
	"github.com/DoyleJ11/ludo-backend/internal/session"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Addr             string
	LogLevel         string
	LogDev           bool
	DatabaseURL      string // empty disables the match archive
	LayoutFile       string // empty uses engine.DefaultLayout
	Rules            session.Rules
	SubscriberBuffer int
	OriginPatterns   []string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getEnv("ADDR", ":8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LayoutFile:  os.Getenv("BOARD_LAYOUT_FILE"),
	}

	var err error
	if cfg.LogDev, err = getBool("LOG_DEV", false); err != nil {
		return Config{}, err
	}
	if cfg.Rules.AutoStartAt, err = getInt("AUTO_START_PLAYERS", session.MinPlayers); err != nil {
		return Config{}, err
	}
	if a := cfg.Rules.AutoStartAt; a != 0 && (a < session.MinPlayers || a > session.MaxPlayers) {
		return Config{}, fmt.Errorf("%w: AUTO_START_PLAYERS must be 0 or %d..%d", ErrInvalidConfig, session.MinPlayers, session.MaxPlayers)
	}
	if cfg.Rules.MaxConsecutiveSixes, err = getInt("MAX_CONSECUTIVE_SIXES", 0); err != nil {
		return Config{}, err
	}
	if cfg.Rules.MaxConsecutiveSixes < 0 {
		return Config{}, fmt.Errorf("%w: MAX_CONSECUTIVE_SIXES must not be negative", ErrInvalidConfig)
	}
	if cfg.SubscriberBuffer, err = getInt("SUBSCRIBER_BUFFER", 16); err != nil {
		return Config{}, err
	}
	if origins := os.Getenv("WS_ORIGIN_PATTERNS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.OriginPatterns = append(cfg.OriginPatterns, o)
			}
		}
	}
	return cfg, nil
}

// Layout returns the configured board geometry.
func (c Config) Layout() (engine.Layout, error) {
	if c.LayoutFile == "" {
		return engine.DefaultLayout(), nil
	}
	return LoadLayout(c.LayoutFile)
}

func LoadLayout(path string) (engine.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Layout{}, fmt.Errorf("read layout: %w", err)
	}
	var l engine.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return engine.Layout{}, fmt.Errorf("%w: layout %s: %v", ErrInvalidConfig, path, err)
	}
	if err := l.Validate(); err != nil {
		return engine.Layout{}, err
	}
	return l, nil
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, k, v)
	}
	return n, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, k, v)
	}
	return b, nil
}
