package posters_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marquee/internal/posters"
	"marquee/internal/recommend"
	"marquee/internal/tmdb"
)

type fakeFetcher struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
	delay    func(id int64) time.Duration
	fail     map[int64]error
}

func (f *fakeFetcher) PosterURL(ctx context.Context, id int64) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inFlight++
	f.peak = max(f.peak, f.inFlight)
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := f.fail[id]; err != nil {
		return "", err
	}
	return fmt.Sprintf("https://img.example/%d.jpg", id), nil
}

func recs(ids ...int64) []recommend.Recommendation {
	out := make([]recommend.Recommendation, len(ids))
	for i, id := range ids {
		out[i] = recommend.Recommendation{ID: id, Title: fmt.Sprintf("Movie %d", id), Score: 1 / float64(i+1)}
	}
	return out
}

func TestResolvePreservesRankOrder(t *testing.T) {
	fetcher := &fakeFetcher{
		// Earlier ranks finish last.
		delay: func(id int64) time.Duration { return time.Duration(10-id) * 2 * time.Millisecond },
	}
	cards := posters.Resolve(context.Background(), fetcher, recs(1, 2, 3, 4, 5), 5, nil)

	for i, card := range cards {
		wantID := int64(i + 1)
		if card.ID != wantID {
			t.Fatalf("card %d has id %d, want %d", i, card.ID, wantID)
		}
		if want := fmt.Sprintf("https://img.example/%d.jpg", wantID); card.PosterURL != want {
			t.Fatalf("card %d poster = %q, want %q", i, card.PosterURL, want)
		}
	}
}

func TestResolveRecordsPerItemErrors(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[int64]error{2: tmdb.ErrNoPoster}}
	cards := posters.Resolve(context.Background(), fetcher, recs(1, 2, 3), 2, nil)

	if !errors.Is(cards[1].Err, tmdb.ErrNoPoster) || cards[1].PosterURL != "" {
		t.Fatalf("expected card 1 to carry ErrNoPoster, got %+v", cards[1])
	}
	if cards[0].Err != nil || cards[2].Err != nil {
		t.Fatalf("expected neighbours to succeed, got %+v / %+v", cards[0], cards[2])
	}
	if cards[2].PosterURL == "" {
		t.Fatal("expected failure not to stop later lookups")
	}
}

func TestResolveBoundsConcurrency(t *testing.T) {
	fetcher := &fakeFetcher{delay: func(int64) time.Duration { return 5 * time.Millisecond }}
	posters.Resolve(context.Background(), fetcher, recs(1, 2, 3, 4, 5, 6, 7, 8), 2, nil)

	if fetcher.peak > 2 {
		t.Fatalf("expected at most 2 concurrent lookups, saw %d", fetcher.peak)
	}
	if got := fetcher.calls.Load(); got != 8 {
		t.Fatalf("expected 8 lookups, got %d", got)
	}
}

func TestResolveWithoutFetcher(t *testing.T) {
	cards := posters.Resolve(context.Background(), nil, recs(4, 5), 0, nil)
	if len(cards) != 2 || cards[0].PosterURL != "" || cards[0].Err != nil || cards[1].ID != 5 {
		t.Fatalf("unexpected cards %+v", cards)
	}
}
