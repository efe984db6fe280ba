package testsupport

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"marquee/internal/config"
	"marquee/internal/users"
)

// MustOpenUsers opens the account database for cfg with the cheapest bcrypt
// cost and closes it when the test ends.
func MustOpenUsers(t testing.TB, cfg *config.Config) *users.Store {
	t.Helper()

	store, err := users.Open(cfg, users.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open users: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
