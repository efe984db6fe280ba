package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/config"
	"marquee/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestNewFromConfigWithoutKeyReturnsNil(t *testing.T) {
	cfg := config.Default()
	client, err := tmdb.NewFromConfig(&cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if client != nil {
		t.Fatal("expected nil client without api key")
	}
}

func TestGetMovieDetailsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/19995" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" {
			t.Errorf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("language") != "en-US" {
			t.Errorf("expected language query parameter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":19995,"title":"Avatar","poster_path":"/abc.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	movie, err := client.GetMovieDetails(context.Background(), 19995)
	if err != nil {
		t.Fatalf("GetMovieDetails returned error: %v", err)
	}
	if movie.Title != "Avatar" || movie.PosterPath != "/abc.jpg" {
		t.Fatalf("unexpected movie %#v", movie)
	}
}

func TestPosterURLJoinsImageBase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"poster_path":"/p.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithImageBaseURL("https://img.example/t/p/w500/"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	got, err := client.PosterURL(context.Background(), 1)
	if err != nil {
		t.Fatalf("PosterURL returned error: %v", err)
	}
	if want := "https://img.example/t/p/w500/p.jpg"; got != want {
		t.Fatalf("PosterURL = %q, want %q", got, want)
	}
}

func TestPosterURLMissingPoster(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"poster_path":null}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.PosterURL(context.Background(), 1); !errors.Is(err, tmdb.ErrNoPoster) {
		t.Fatalf("expected ErrNoPoster, got %v", err)
	}
}

func TestPosterURLIsCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"id":7,"poster_path":"/seven.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithCacheSize(8))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for range 3 {
		if _, err := client.PosterURL(context.Background(), 7); err != nil {
			t.Fatalf("PosterURL returned error: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected 1 upstream request, got %d", got)
	}
}

func TestGetMovieDetailsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_code":34}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithBreaker(1, time.Minute))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for range 3 {
		if _, err := client.GetMovieDetails(context.Background(), 5); !errors.Is(err, tmdb.ErrMovieNotFound) {
			t.Fatalf("expected ErrMovieNotFound (breaker must stay closed), got %v", err)
		}
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithBreaker(2, time.Minute))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for range 2 {
		if _, err := client.GetMovieDetails(context.Background(), 1); err == nil {
			t.Fatal("expected error when TMDB returns 500")
		}
	}
	if _, err := client.GetMovieDetails(context.Background(), 1); !errors.Is(err, tmdb.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once the breaker opens, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected breaker to block the third request, got %d upstream hits", got)
	}
}

func TestRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"poster_path":"/p.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "", tmdb.WithRateLimit(0.001, 1))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.GetMovieDetails(context.Background(), 1); err != nil {
		t.Fatalf("first request should use the burst: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GetMovieDetails(ctx, 2); err == nil {
		t.Fatal("expected rate limiter to fail once the context deadline cannot be met")
	}
}

func TestImageURL(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.ImageURL("  "); !errors.Is(err, tmdb.ErrNoPoster) {
		t.Fatalf("expected ErrNoPoster, got %v", err)
	}
	got, err := client.ImageURL("/x.jpg")
	if err != nil {
		t.Fatalf("ImageURL returned error: %v", err)
	}
	if got != "https://image.tmdb.org/t/p/w500/x.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}
