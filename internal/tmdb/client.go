package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"marquee/internal/config"
	"marquee/internal/logging"
)

var (
	// ErrNoPoster reports a movie that TMDB knows but has no poster for.
	ErrNoPoster = errors.New("tmdb has no poster for movie")
	// ErrMovieNotFound reports a movie id that TMDB does not recognise.
	ErrMovieNotFound = errors.New("tmdb movie not found")
	// ErrUnavailable reports that lookups are suspended after repeated failures.
	ErrUnavailable = errors.New("tmdb temporarily unavailable")
)

// Movie is the subset of the TMDB movie details payload used for display.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// PosterFetcher resolves a catalog movie id to a displayable poster URL.
type PosterFetcher interface {
	PosterURL(ctx context.Context, movieID int64) (string, error)
}

// Client talks to the TMDB v3 API. Requests are rate limited, guarded by a
// circuit breaker, and resolved poster URLs are cached by movie id.
type Client struct {
	apiKey       string
	baseURL      string
	imageBaseURL string
	language     string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cacheSize    int
	cache        *lru.Cache[int64, string]
	failures     uint32
	cooldown     time.Duration
	breaker      *gobreaker.CircuitBreaker[*Movie]
	logger       *slog.Logger
}

var _ PosterFetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithImageBaseURL sets the prefix joined with poster paths.
func WithImageBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.imageBaseURL = base
		}
	}
}

// WithRateLimit caps outgoing requests. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithCacheSize sets how many poster URLs are remembered. Zero disables the cache.
func WithCacheSize(size int) Option {
	return func(c *Client) {
		c.cacheSize = size
	}
}

// WithBreaker opens the circuit after failures consecutive errors and keeps it
// open for cooldown.
func WithBreaker(failures int, cooldown time.Duration) Option {
	return func(c *Client) {
		if failures > 0 {
			c.failures = uint32(failures)
		}
		if cooldown > 0 {
			c.cooldown = cooldown
		}
	}
}

// WithLogger attaches a logger for breaker transitions and cache misses.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "tmdb")
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		imageBaseURL: "https://image.tmdb.org/t/p/w500",
		language:     strings.TrimSpace(language),
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		failures:     5,
		cooldown:     30 * time.Second,
		logger:       logging.NewComponentLogger(nil, "tmdb"),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cacheSize > 0 {
		cache, err := lru.New[int64, string](client.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create poster cache: %w", err)
		}
		client.cache = cache
	}
	client.breaker = gobreaker.NewCircuitBreaker[*Movie](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Timeout:     client.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= client.failures
		},
		// Unknown movies and caller cancellation say nothing about TMDB health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrMovieNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			client.logger.Info("circuit breaker state change",
				logging.String("breaker", name),
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			)
		},
	})
	return client, nil
}

// NewFromConfig builds a client from the [tmdb] section. It returns (nil, nil)
// when no API key is configured so callers can run without posters.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil || cfg.TMDB.APIKey == "" {
		return nil, nil
	}
	return New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
		WithHTTPClient(&http.Client{Timeout: cfg.TMDBTimeout()}),
		WithImageBaseURL(cfg.TMDB.ImageBaseURL),
		WithRateLimit(cfg.TMDB.RequestsPerSecond, cfg.TMDB.Burst),
		WithCacheSize(cfg.TMDB.CacheSize),
		WithBreaker(cfg.TMDB.BreakerFailures, cfg.BreakerCooldown()),
		WithLogger(logger),
	)
}

// GetMovieDetails fetches movie details by TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*Movie, error) {
	if movieID <= 0 {
		return nil, errors.New("movie id must be positive")
	}
	movie, err := c.breaker.Execute(func() (*Movie, error) {
		return c.fetchMovie(ctx, movieID)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return movie, err
}

func (c *Client) fetchMovie(ctx context.Context, movieID int64) (*Movie, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limit: %w", err)
		}
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/movie/%d", c.baseURL, movieID))
	if err != nil {
		return nil, fmt.Errorf("parse tmdb url: %w", err)
	}
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: id %d", ErrMovieNotFound, movieID)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tmdb movie details returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload Movie
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode movie details: %w", err)
	}
	return &payload, nil
}

// PosterURL returns the full image URL for a movie's poster. The error wraps
// ErrNoPoster when TMDB has no poster path for the movie.
func (c *Client) PosterURL(ctx context.Context, movieID int64) (string, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(movieID); ok {
			return cached, nil
		}
	}
	movie, err := c.GetMovieDetails(ctx, movieID)
	if err != nil {
		return "", err
	}
	posterURL, err := c.ImageURL(movie.PosterPath)
	if err != nil {
		return "", fmt.Errorf("movie %d: %w", movieID, err)
	}
	if c.cache != nil {
		c.cache.Add(movieID, posterURL)
	}
	return posterURL, nil
}

// ImageURL joins a TMDB poster path onto the configured image base.
func (c *Client) ImageURL(posterPath string) (string, error) {
	posterPath = strings.TrimLeft(strings.TrimSpace(posterPath), "/")
	if posterPath == "" {
		return "", ErrNoPoster
	}
	return c.imageBaseURL + "/" + posterPath, nil
}
