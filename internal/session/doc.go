// Package session tracks which screen each client is on.
//
// A client starts on the login screen and reaches the main screen only by
// logging in, which issues a random token. Logging out returns it to the
// login screen until the token expires. The state is an authorization
// gate for the HTTP layer; the recommender never consults it.
package session
