// internal/config/config.go
//
// Process configuration read from the environment.
// A `.env` file in the working directory is loaded first when present
// (development convenience); real environment variables win over it.
//
// Variables (defaults in parentheses):
//   PORT (5175)                  HTTP listen port
//   LOG_LEVEL (info)             zerolog level name
//   DB_PATH (./data/connections.db)
//   PUZZLES_FILE ("")            dataset path; empty uses the embedded sample
//   DAILY_SALT (local_dev_salt)  key for the puzzle-of-the-day fallback
//   JWT_SECRET (dev_secret_change_me)
//   JWT_EXPIRES_DAYS (14)
//   TRACK_COMPLETED (true)       persist results of finished sessions
//   SHOW_STATS (true)            expose /stats/me
//   CLIENT_ORIGIN (http://localhost:5173)  allowed CORS origin
//   SESSION_TTL (1h)             keep finished sessions in memory this long
//   SESSION_IDLE_TTL (24h)       drop untouched sessions after this long

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	Port           string
	LogLevel       zerolog.Level
	DBPath         string
	PuzzlesFile    string
	DailySalt      string
	JWTSecret      string
	JWTExpiry      time.Duration
	TrackCompleted bool
	ShowStats      bool
	ClientOrigin   string
	SessionTTL     time.Duration
	IdleTTL        time.Duration
}

// Load reads .env (if any) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{
		Port:         getEnv("PORT", "5175"),
		DBPath:       getEnv("DB_PATH", "./data/connections.db"),
		PuzzlesFile:  os.Getenv("PUZZLES_FILE"),
		DailySalt:    getEnv("DAILY_SALT", "local_dev_salt"),
		JWTSecret:    getEnv("JWT_SECRET", "dev_secret_change_me"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
	}

	lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	c.LogLevel = lvl

	days, err := strconv.Atoi(getEnv("JWT_EXPIRES_DAYS", "14"))
	if err != nil || days <= 0 {
		return nil, fmt.Errorf("config: JWT_EXPIRES_DAYS must be a positive integer, got %q", os.Getenv("JWT_EXPIRES_DAYS"))
	}
	c.JWTExpiry = time.Duration(days) * 24 * time.Hour

	if c.SessionTTL, err = getDuration("SESSION_TTL", time.Hour); err != nil {
		return nil, err
	}
	if c.IdleTTL, err = getDuration("SESSION_IDLE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if c.TrackCompleted, err = getBool("TRACK_COMPLETED", true); err != nil {
		return nil, err
	}
	if c.ShowStats, err = getBool("SHOW_STATS", true); err != nil {
		return nil, err
	}
	return c, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", k, err)
	}
	return b, nil
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", k, v)
	}
	return d, nil
}
