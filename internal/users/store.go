package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"marquee/internal/config"
)

const (
	// MinUsernameLength is the shortest accepted username, in characters.
	MinUsernameLength = 3
	// MinPasswordLength is the shortest accepted password, in characters.
	MinPasswordLength = 6
)

var (
	// ErrUserExists reports a sign-up for a username that is already taken.
	ErrUserExists = errors.New("username already exists")
	// ErrAccountNotFound reports a login for an unknown username.
	ErrAccountNotFound = errors.New("account does not exist")
	// ErrInvalidPassword reports a login with the wrong password.
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrValidation reports credentials that fail the length rules.
	ErrValidation = errors.New("invalid credentials")
)

// User is a stored account without its password hash.
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists accounts in SQLite with bcrypt password hashes.
type Store struct {
	db   *sql.DB
	path string
	cost int
}

// Option configures a Store.
type Option func(*Store)

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Store) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// Open connects to the account database under the configured state
// directory and applies migrations.
func Open(cfg *config.Config, opts ...Option) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(context.Background(), cfg.UsersDBPath(), opts...)
}

// OpenPath connects to the account database at path.
func OpenPath(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// SignUp creates an account. A taken username is reported before the input
// is validated.
func (s *Store) SignUp(ctx context.Context, username, password string) (*User, error) {
	exists, err := s.Exists(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrUserExists, username)
	}
	if err := ValidateCredentials(username, password, "sign up"); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	created := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)",
		username, string(hash), created.Format(time.RFC3339Nano),
	)
	if err != nil {
		// Lost a race with a concurrent sign-up for the same name.
		if taken, existsErr := s.Exists(ctx, username); existsErr == nil && taken {
			return nil, fmt.Errorf("%w: %q", ErrUserExists, username)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &User{Username: username, CreatedAt: created}, nil
}

// Authenticate checks a username and password pair.
func (s *Store) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if err := ValidateCredentials(username, password, "log in"); err != nil {
		return nil, err
	}

	var (
		hash    string
		created string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT password_hash, created_at FROM users WHERE username = ?", username,
	).Scan(&hash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrAccountNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidPassword
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return &User{Username: username, CreatedAt: parseTime(created)}, nil
}

// Exists reports whether username has an account.
func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)", username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query user: %w", err)
	}
	return exists, nil
}

// List returns every account ordered by username.
func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT username, created_at FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var name, created string
		if err := rows.Scan(&name, &created); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, User{Username: name, CreatedAt: parseTime(created)})
	}
	return out, rows.Err()
}

// ValidateCredentials applies the length rules shared by sign-up and login.
// action names the attempted operation in the empty-input message.
func ValidateCredentials(username, password, action string) error {
	switch {
	case strings.TrimSpace(username) == "" && password == "":
		return fmt.Errorf("%w: you haven't typed anything to %s", ErrValidation, action)
	case utf8.RuneCountInString(username) < MinUsernameLength:
		return fmt.Errorf("%w: username must be at least %d characters", ErrValidation, MinUsernameLength)
	case utf8.RuneCountInString(password) < MinPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}
	return nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
