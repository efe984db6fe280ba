// Package users stores login accounts in SQLite.
//
// Passwords are hashed with bcrypt and never leave the store. Sign-up and
// login share the same length rules, and failures are reported through
// sentinel errors so callers can tell a taken name, an unknown account, and
// a wrong password apart. The schema is managed by embedded SQL migrations.
package users
