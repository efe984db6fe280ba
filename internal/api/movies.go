package api

import (
	"time"

	"marquee/internal/catalog"
	"marquee/internal/posters"
	"marquee/internal/session"
)

// Movie is a catalog entry in transport form.
type Movie struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// TitlesResponse lists selectable titles.
type TitlesResponse struct {
	Titles []Movie `json:"titles"`
	Total  int     `json:"total"`
}

// RecommendationCard is one ranked result with its optional poster.
type RecommendationCard struct {
	Rank        int     `json:"rank"`
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	PosterURL   string  `json:"posterUrl,omitempty"`
	PosterError string  `json:"posterError,omitempty"`
}

// RecommendResponse is the ranked answer for one query title.
type RecommendResponse struct {
	Query   string               `json:"query"`
	Count   int                  `json:"count"`
	Posters bool                 `json:"posters"`
	Results []RecommendationCard `json:"results"`
}

// ErrorResponse is the JSON body for every failed HTTP request.
type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// SessionResponse describes a logged-in session.
type SessionResponse struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	State     string `json:"state"`
	ExpiresAt string `json:"expiresAt"`
}

// Credentials is the sign-up and login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HealthResponse reports server readiness.
type HealthResponse struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Posters bool   `json:"posters"`
}

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// FromEntries converts catalog entries to transport movies.
func FromEntries(entries []catalog.Entry) []Movie {
	out := make([]Movie, len(entries))
	for i, entry := range entries {
		out[i] = Movie{ID: entry.ID, Title: entry.Title}
	}
	return out
}

// FromCards converts resolved poster cards to ranked transport cards.
func FromCards(cards []posters.Card) []RecommendationCard {
	out := make([]RecommendationCard, len(cards))
	for i, card := range cards {
		out[i] = RecommendationCard{
			Rank:      i + 1,
			ID:        card.ID,
			Title:     card.Title,
			Score:     card.Score,
			PosterURL: card.PosterURL,
		}
		if card.Err != nil {
			out[i].PosterError = card.Err.Error()
		}
	}
	return out
}

// FromSession converts a session to its transport form.
func FromSession(s session.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		Username:  s.Username,
		State:     string(s.State),
		ExpiresAt: s.ExpiresAt.UTC().Format(dateTimeFormat),
	}
}

// ParseTimestamp reads a timestamp produced by this package.
func ParseTimestamp(value string) (time.Time, error) {
	return time.Parse(dateTimeFormat, value)
}
