package posters

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/tmdb"
)

// DefaultConcurrency bounds in-flight lookups when the caller passes zero.
const DefaultConcurrency = 5

// Card pairs a recommendation with its poster. Err is set when the lookup
// failed; the card is still shown without an image.
type Card struct {
	recommend.Recommendation
	PosterURL string `json:"poster_url,omitempty"`
	Err       error  `json:"-"`
}

// Resolve looks up a poster for every recommendation with at most limit
// requests in flight. Cards come back in the same order as recs. A nil
// fetcher yields cards without posters. Lookup failures are recorded on the
// card and logged; they never fail the batch.
func Resolve(ctx context.Context, fetcher tmdb.PosterFetcher, recs []recommend.Recommendation, limit int, logger *slog.Logger) []Card {
	cards := make([]Card, len(recs))
	for i, rec := range recs {
		cards[i] = Card{Recommendation: rec}
	}
	if fetcher == nil || len(recs) == 0 {
		return cards
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	logger = logging.NewComponentLogger(logger, "posters")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range cards {
		g.Go(func() error {
			url, err := fetcher.PosterURL(gctx, cards[i].ID)
			if err != nil {
				cards[i].Err = err
				logging.WarnWithContext(logging.WithContext(ctx, logger), "poster lookup failed", "poster_lookup_failed",
					logging.Int64("movie_id", cards[i].ID),
					logging.String("title", cards[i].Title),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check tmdb.api_key and network access"),
					logging.String(logging.FieldImpact, "recommendation shown without poster"),
				)
				return nil
			}
			cards[i].PosterURL = url
			return nil
		})
	}
	_ = g.Wait()
	return cards
}
