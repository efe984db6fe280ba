package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"marquee/internal/api"
	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/session"
	"marquee/internal/users"
)

const maxBodyBytes = 1 << 16

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.HealthResponse{
		Status:  "ok",
		Entries: s.svc.Size(),
		Posters: s.svc.PostersEnabled(),
	})
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}
	user, err := s.users.SignUp(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, users.ErrUserExists):
		s.writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, users.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.internalError(w, r, "sign up failed", err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("account created", logging.String(logging.FieldUser, user.Username))
	s.writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds, ok := s.decodeCredentials(w, r)
	if !ok {
		return
	}
	user, err := s.users.Authenticate(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, users.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, users.ErrAccountNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, users.ErrInvalidPassword):
		s.writeError(w, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		s.internalError(w, r, "login failed", err)
		return
	}
	sess := s.sessions.Login(user.Username)
	logging.WithContext(r.Context(), s.logger).Info("user logged in", logging.String(logging.FieldUser, user.Username))
	s.writeJSON(w, http.StatusOK, api.FromSession(sess))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := sessionFrom(r.Context()); ok {
		s.sessions.Logout(sess.Token)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSession reports which screen the caller's token is on. Logged-out
// tokens answer with the login state until they expire.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, session.ErrUnauthorized.Error())
		return
	}
	sess, ok := s.sessions.Lookup(token)
	if !ok {
		s.writeError(w, http.StatusUnauthorized, session.ErrUnauthorized.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromSession(sess))
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}
	s.writeJSON(w, http.StatusOK, s.svc.Titles(query.Get("q"), limit))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	title := query.Get("title")
	if strings.TrimSpace(title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	k := 0
	if raw := strings.TrimSpace(query.Get("k")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, recommend.ErrInvalidCount.Error())
			return
		}
		k = parsed
	}
	withPosters := query.Get("posters") != "false" && query.Get("posters") != "0"

	resp, err := s.svc.Recommend(r.Context(), title, k, withPosters)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, api.ErrorResponse{
			Error:       err.Error(),
			Suggestions: s.svc.Suggestions(title, api.DefaultSuggestionLimit),
		})
		return
	case errors.Is(err, recommend.ErrInvalidCount):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.internalError(w, r, "recommendation failed", err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) decodeCredentials(w http.ResponseWriter, r *http.Request) (api.Credentials, bool) {
	var creds api.Credentials
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&creds); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return api.Credentials{}, false
	}
	return creds, true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), msg, "request_failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}
