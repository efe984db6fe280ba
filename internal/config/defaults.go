package config

const (
	defaultConfigPath             = "~/.config/marquee/config.toml"
	projectConfigName             = "marquee.toml"
	defaultDataDir                = "~/.local/share/marquee/model"
	defaultStateDir               = "~/.local/share/marquee/state"
	defaultLogDir                 = "~/.local/share/marquee/logs"
	defaultCatalogFile            = "movies.csv"
	defaultMatrixFile             = "similarity.bin"
	defaultTMDBBaseURL            = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL       = "https://image.tmdb.org/t/p/w500"
	defaultTMDBLanguage           = "en-US"
	defaultTMDBTimeoutSeconds     = 10
	defaultTMDBRequestsPerSecond  = 20
	defaultTMDBBurst              = 10
	defaultTMDBCacheSize          = 1024
	defaultTMDBMaxConcurrent      = 5
	defaultTMDBBreakerFailures    = 5
	defaultTMDBBreakerCooldownSec = 30
	defaultServerBind             = "127.0.0.1:8501"
	defaultSessionTTLMinutes      = 720
	defaultLoginRatePerMinute     = 10
	defaultRecommendCount         = 10
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:                defaultTMDBBaseURL,
			ImageBaseURL:           defaultTMDBImageBaseURL,
			Language:               defaultTMDBLanguage,
			TimeoutSeconds:         defaultTMDBTimeoutSeconds,
			RequestsPerSecond:      defaultTMDBRequestsPerSecond,
			Burst:                  defaultTMDBBurst,
			CacheSize:              defaultTMDBCacheSize,
			MaxConcurrent:          defaultTMDBMaxConcurrent,
			BreakerFailures:        defaultTMDBBreakerFailures,
			BreakerCooldownSeconds: defaultTMDBBreakerCooldownSec,
		},
		Server: Server{
			Bind:               defaultServerBind,
			SessionTTLMinutes:  defaultSessionTTLMinutes,
			LoginRatePerMinute: defaultLoginRatePerMinute,
		},
		Recommend: Recommend{
			DefaultCount: defaultRecommendCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
