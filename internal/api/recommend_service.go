package api

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/model"
	"marquee/internal/posters"
	"marquee/internal/recommend"
	"marquee/internal/tmdb"
)

// DefaultSuggestionLimit caps the titles offered after a failed lookup.
const DefaultSuggestionLimit = 5

// RecommendService answers title queries for both the CLI and the HTTP
// server.
type RecommendService struct {
	model       *model.Model
	fetcher     tmdb.PosterFetcher
	concurrency int
	defaultK    int
	logger      *slog.Logger
}

// RecommendOptions tunes a RecommendService.
type RecommendOptions struct {
	// DefaultK applies when a request passes k <= 0.
	DefaultK int
	// Concurrency bounds in-flight poster lookups.
	Concurrency int
	Logger      *slog.Logger
}

// NewRecommendService wraps a loaded model. fetcher may be nil, in which case
// results never carry posters.
func NewRecommendService(m *model.Model, fetcher tmdb.PosterFetcher, opts RecommendOptions) *RecommendService {
	if m == nil {
		return nil
	}
	if opts.DefaultK <= 0 {
		opts.DefaultK = recommend.DefaultK
	}
	return &RecommendService{
		model:       m,
		fetcher:     fetcher,
		concurrency: opts.Concurrency,
		defaultK:    opts.DefaultK,
		logger:      logging.NewComponentLogger(opts.Logger, "recommend"),
	}
}

// NewRecommendServiceFromConfig wires the TMDB client described by cfg. A
// missing API key disables posters with a warning.
func NewRecommendServiceFromConfig(cfg *config.Config, m *model.Model, logger *slog.Logger) (*RecommendService, error) {
	client, err := tmdb.NewFromConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	var fetcher tmdb.PosterFetcher
	if client != nil {
		fetcher = client
	} else {
		logging.WarnWithContext(logger, "tmdb api key not configured", "posters_disabled",
			logging.String(logging.FieldErrorHint, "set tmdb.api_key or TMDB_API_KEY"),
			logging.String(logging.FieldImpact, "recommendations are shown without posters"),
		)
	}
	return NewRecommendService(m, fetcher, RecommendOptions{
		DefaultK:    cfg.Recommend.DefaultCount,
		Concurrency: cfg.TMDB.MaxConcurrent,
		Logger:      logger,
	}), nil
}

// PostersEnabled reports whether a poster source is wired.
func (s *RecommendService) PostersEnabled() bool {
	return s != nil && s.fetcher != nil
}

// Size returns the number of catalog entries.
func (s *RecommendService) Size() int {
	if s == nil {
		return 0
	}
	return s.model.Catalog.Len()
}

// Recommend ranks titles similar to title. k <= 0 selects the configured
// default. When withPosters is set and a poster source exists, each card is
// decorated with its poster URL. Unknown titles return an error wrapping
// catalog.ErrNotFound.
func (s *RecommendService) Recommend(ctx context.Context, title string, k int, withPosters bool) (*RecommendResponse, error) {
	if s == nil {
		return nil, errors.New("recommend service unavailable")
	}
	if k <= 0 {
		k = s.defaultK
	}
	recs, err := s.model.Recommender.Recommend(title, k)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			logging.WithContext(ctx, s.logger).Debug("unknown title requested", logging.String("title", title))
		}
		return nil, err
	}

	var fetcher tmdb.PosterFetcher
	if withPosters {
		fetcher = s.fetcher
	}
	cards := posters.Resolve(ctx, fetcher, recs, s.concurrency, logging.WithContext(ctx, s.logger))

	logging.WithContext(ctx, s.logger).Debug("recommendations served",
		logging.String("title", title),
		logging.Int("k", k),
		logging.Int("results", len(cards)),
	)
	return &RecommendResponse{
		Query:   title,
		Count:   len(cards),
		Posters: fetcher != nil,
		Results: FromCards(cards),
	}, nil
}

// Titles lists catalog titles containing query, case-insensitively. An empty
// query lists everything; limit <= 0 means no limit.
func (s *RecommendService) Titles(query string, limit int) TitlesResponse {
	if s == nil {
		return TitlesResponse{}
	}
	matches := s.model.Catalog.Suggest(query, limit)
	return TitlesResponse{Titles: FromEntries(matches), Total: len(matches)}
}

// Suggestions offers close titles for a failed lookup. Substring matches on
// the whole query come first; otherwise titles are ranked by weighted word
// overlap and topped up with substring matches on each word of three or more
// characters.
func (s *RecommendService) Suggestions(title string, limit int) []string {
	if s == nil {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	cat := s.model.Catalog
	matches := cat.Suggest(title, limit)
	if len(matches) == 0 {
		matches = cat.Closest(title, limit)
		for _, word := range strings.Fields(title) {
			if len(matches) >= limit {
				break
			}
			if len([]rune(word)) < 3 {
				continue
			}
			matches = appendUnique(matches, cat.Suggest(word, limit), limit)
		}
	}
	out := make([]string, len(matches))
	for i, entry := range matches {
		out[i] = entry.Title
	}
	return out
}

func appendUnique(dst, src []catalog.Entry, limit int) []catalog.Entry {
	for _, entry := range src {
		if len(dst) >= limit {
			break
		}
		if slices.ContainsFunc(dst, func(e catalog.Entry) bool { return e.Title == entry.Title }) {
			continue
		}
		dst = append(dst, entry)
	}
	return dst
}
