package config

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
//
// The TMDB API key is deliberately optional here: without it recommendations
// are still served, only without posters.
func (c *Config) Validate() error {
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := ensurePositiveMap(map[string]int{
		"server.session_ttl_minutes":   c.Server.SessionTTLMinutes,
		"server.login_rate_per_minute": c.Server.LoginRatePerMinute,
		"recommend.default_count":      c.Recommend.DefaultCount,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateModel() error {
	if strings.TrimSpace(c.Model.CatalogPath) == "" {
		return errors.New("model.catalog_path must be set")
	}
	if strings.TrimSpace(c.Model.MatrixPath) == "" {
		return errors.New("model.matrix_path must be set")
	}
	if c.Model.CatalogPath == c.Model.MatrixPath {
		return errors.New("model.catalog_path and model.matrix_path must point at different files")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	for key, value := range map[string]string{
		"tmdb.base_url":       c.TMDB.BaseURL,
		"tmdb.image_base_url": c.TMDB.ImageBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, value)
		}
	}
	if c.TMDB.RequestsPerSecond <= 0 {
		return errors.New("tmdb.requests_per_second must be positive")
	}
	if c.TMDB.CacheSize < 0 {
		return errors.New("tmdb.cache_size must be >= 0")
	}
	return ensurePositiveMap(map[string]int{
		"tmdb.timeout_seconds":          c.TMDB.TimeoutSeconds,
		"tmdb.burst":                    c.TMDB.Burst,
		"tmdb.max_concurrent":           c.TMDB.MaxConcurrent,
		"tmdb.breaker_failures":         c.TMDB.BreakerFailures,
		"tmdb.breaker_cooldown_seconds": c.TMDB.BreakerCooldownSeconds,
	})
}

// ensurePositiveMap reports the first non-positive key in sorted order so
// error messages are stable across runs.
func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
