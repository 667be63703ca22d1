// Package config resolves process configuration into an explicit object that
// gets passed to constructors. Nothing here mutates global state beyond the
// environment variables godotenv loads; credentials are read once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvAPIKey is the environment variable holding the Materials Project API key.
const EnvAPIKey = "MATERIALS_PROJECT_API_KEY"

// EnvJournalPath optionally overrides where the run journal database lives.
const EnvJournalPath = "MATPROJ_HISTORY_DB"

const defaultBaseURL = "https://materialsproject.org"

// ErrMissingAPIKey indicates no API key could be resolved from any source.
var ErrMissingAPIKey = errors.New("no Materials Project API key configured")

// Config holds everything the CLI needs to talk to the remote database and
// keep its local journal.
type Config struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	JournalPath string
}

// Load resolves configuration with the following API-key precedence:
//
//  1. apiKeyFlag (command-line flag)
//  2. MATERIALS_PROJECT_API_KEY already set in the environment
//  3. .env in the current directory
//  4. .env in the user's home directory
//
// godotenv.Load never overrides variables that are already set, so loading
// the .env files after checking the environment preserves that order.
//
// Errors:
//   - ErrMissingAPIKey (wrapped) when no source yields a key.
func Load(apiKeyFlag string) (Config, error) {
	cfg := Config{
		BaseURL: defaultBaseURL,
		Timeout: 30 * time.Second,
	}

	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	} else if home, herr := os.UserHomeDir(); herr == nil {
		homeEnv := filepath.Join(home, ".env")
		if _, err := os.Stat(homeEnv); err == nil {
			_ = godotenv.Load(homeEnv)
		}
	}

	key := strings.TrimSpace(apiKeyFlag)
	if key == "" {
		key = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if key == "" {
		return Config{}, fmt.Errorf(
			"%w: set %s in the environment or a .env file (get a key at https://materialsproject.org/dashboard)",
			ErrMissingAPIKey, EnvAPIKey,
		)
	}
	cfg.APIKey = key

	cfg.JournalPath = DefaultJournalPath()

	return cfg, nil
}

// DefaultJournalPath resolves where the run journal lives: the
// MATPROJ_HISTORY_DB override, else ~/.matproj/history.db, else "" when no
// home directory exists (journaling is then skipped).
func DefaultJournalPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvJournalPath)); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".matproj", "history.db")
	}
	return ""
}
