package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/api"
	"marquee/internal/catalog"
	"marquee/internal/users"
)

func TestRecommendPlainOutput(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "recommend", "Alien", "-k", "2")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out)
	}
	if lines[0] != "1\tAliens\t679\t0.8000" {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2\tRonin\t") {
		t.Fatalf("unexpected second line %q", lines[1])
	}
}

func TestRecommendMultiWordTitleAndJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "recommend", "Toy", "Story", "--json", "-k", "1")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var resp api.RecommendResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode json: %v (%q)", err, out)
	}
	if resp.Query != "Toy Story" || resp.Count != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRecommendUnknownTitleSuggests(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := env.run(t, "", "recommend", "Alien 3")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected catalog.ErrNotFound, got %v", err)
	}
	requireContains(t, stderr, "Did you mean:")
	requireContains(t, stderr, "Aliens")
}

func TestRecommendWithPostersFromDotenvKey(t *testing.T) {
	tmdbServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "from-dotenv" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/movie/")
		fmt.Fprintf(w, `{"id":%s,"poster_path":"/%s.jpg"}`, id, id)
	}))
	t.Cleanup(tmdbServer.Close)

	env := setupCLITestEnv(t)
	env.cfg.TMDB.BaseURL = tmdbServer.URL
	writeTestConfig(t, env.configPath, env.cfg)
	if err := os.Unsetenv("TMDB_API_KEY"); err != nil {
		t.Fatalf("unsetenv: %v", err)
	}
	env.envPath = filepath.Join(env.baseDir, ".env")
	if err := os.WriteFile(env.envPath, []byte("TMDB_API_KEY=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	out, _, err := env.run(t, "", "recommend", "Heat", "-k", "1", "--posters")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	requireContains(t, out, "Ronin")
	requireContains(t, out, "https://img.example/w500/8195.jpg")
}

func TestTitlesSearch(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "titles", "--search", "alien")
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	if strings.TrimSpace(out) != "348\tAlien\n679\tAliens" {
		t.Fatalf("unexpected titles output %q", out)
	}

	out, _, err = env.run(t, "", "titles", "--search", "zzz")
	if err != nil {
		t.Fatalf("titles: %v", err)
	}
	requireContains(t, out, "No titles match")
}

func TestUserAddAndCheck(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "secret1\n", "user", "add", "alice")
	if err != nil {
		t.Fatalf("user add: %v", err)
	}
	requireContains(t, out, "Created account alice")

	out, _, err = env.run(t, "", "user", "check", "alice", "--password", "secret1")
	if err != nil {
		t.Fatalf("user check: %v", err)
	}
	requireContains(t, out, "Logged in as alice")

	if _, _, err := env.run(t, "", "user", "check", "alice", "--password", "nope-nope"); !errors.Is(err, users.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, _, err := env.run(t, "secret1\n", "user", "add", "alice"); !errors.Is(err, users.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	out, _, err = env.run(t, "", "user", "list")
	if err != nil {
		t.Fatalf("user list: %v", err)
	}
	requireContains(t, out, "alice")
}

func TestModelCheckAndPack(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "model", "check")
	if err != nil {
		t.Fatalf("model check: %v", err)
	}
	requireContains(t, out, "Model OK")

	source := filepath.Join(env.baseDir, "tiny.json")
	target := filepath.Join(env.baseDir, "packed", "tiny.bin")
	if err := os.WriteFile(source, []byte("[[1,0.5],[0.5,1]]"), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}
	out, _, err = env.run(t, "", "model", "pack", source, target)
	if err != nil {
		t.Fatalf("model pack: %v", err)
	}
	requireContains(t, out, "Wrote 2x2 matrix")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected packed matrix: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "", "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "no TMDB API key")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = env.run(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := env.run(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
