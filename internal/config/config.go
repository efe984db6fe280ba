package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Model points at the precomputed catalog and similarity artifacts. Both files
// must be produced together: row i of the matrix describes catalog entry i.
type Model struct {
	CatalogPath string `toml:"catalog_path"`
	MatrixPath  string `toml:"matrix_path"`
}

// TMDB contains configuration for The Movie Database poster lookups.
type TMDB struct {
	APIKey                 string  `toml:"api_key"`
	BaseURL                string  `toml:"base_url"`
	ImageBaseURL           string  `toml:"image_base_url"`
	Language               string  `toml:"language"`
	TimeoutSeconds         int     `toml:"timeout_seconds"`
	RequestsPerSecond      float64 `toml:"requests_per_second"`
	Burst                  int     `toml:"burst"`
	CacheSize              int     `toml:"cache_size"`
	MaxConcurrent          int     `toml:"max_concurrent"`
	BreakerFailures        int     `toml:"breaker_failures"`
	BreakerCooldownSeconds int     `toml:"breaker_cooldown_seconds"`
}

// Server contains configuration for the HTTP API.
type Server struct {
	Bind               string `toml:"bind"`
	SessionTTLMinutes  int    `toml:"session_ttl_minutes"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute"`
}

// Recommend contains defaults for recommendation requests.
type Recommend struct {
	DefaultCount int `toml:"default_count"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Marquee.
//
// Configuration sections by subsystem:
//   - Paths: data, state (user database, lock file) and log directories
//   - Model: catalog and similarity matrix artifacts
//   - TMDB: poster lookups via The Movie Database
//   - Server: HTTP bind address, session lifetime, login throttling
//   - Recommend: default result count
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Model     Model     `toml:"model"`
	TMDB      TMDB      `toml:"tmdb"`
	Server    Server    `toml:"server"`
	Recommend Recommend `toml:"recommend"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. An explicit path
// that does not exist is not an error: defaults are used and exists is false.
// The returned config has all path fields expanded and normalized.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved, exists, err = resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loaded := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := loaded.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := loaded.Validate(); err != nil {
		return nil, "", false, err
	}
	return &loaded, resolved, exists, nil
}

// resolveConfigPath honours an explicit path, otherwise tries the per-user
// default and then ./marquee.toml.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories. The data directory
// is read-only input and is never created.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// UsersDBPath returns the location of the credential database.
func (c *Config) UsersDBPath() string {
	return filepath.Join(c.Paths.StateDir, "users.db")
}

// LockPath returns the lock file that guards a running server.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "marquee.lock")
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}

// TMDBTimeout returns the per-request timeout for poster lookups.
func (c *Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDB.TimeoutSeconds) * time.Second
}

// BreakerCooldown returns how long the poster circuit stays open after tripping.
func (c *Config) BreakerCooldown() time.Duration {
	return time.Duration(c.TMDB.BreakerCooldownSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
