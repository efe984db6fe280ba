// Package server exposes sign-up, login and recommendations over HTTP.
//
// Routes are served by chi. Login and sign-up are rate limited per client
// IP, and every other data route requires a bearer token for a session on the
// main screen. /api/session reports a token's current screen. Errors are JSON
// objects with an "error" field; an unknown title also lists suggestions.
// Serve holds a file lock in the state directory so only one server owns the
// account database at a time.
package server
