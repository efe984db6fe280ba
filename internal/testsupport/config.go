package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// No TMDB key is set, so poster lookups are off unless WithTMDB is applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "model")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Model.CatalogPath = filepath.Join(cfgVal.Paths.DataDir, "movies.csv")
	cfgVal.Model.MatrixPath = filepath.Join(cfgVal.Paths.DataDir, "similarity.bin")
	cfgVal.Server.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDB points poster lookups at a test server.
func WithTMDB(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.TMDB.APIKey = apiKey
		b.cfg.TMDB.RequestsPerSecond = 1000
		b.cfg.TMDB.Burst = 100
	}
}

// WithLoginRate overrides the per-minute login limit.
func WithLoginRate(perMinute int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.LoginRatePerMinute = perMinute
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
