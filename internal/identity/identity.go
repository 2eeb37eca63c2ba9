// Package identity resolves the acting user. This is a single-machine
// app, so identity is an environment concern, not an auth flow: a named
// user gets durable progress in SQLite, while the anonymous user plays
// against the in-memory store and loses nothing worth keeping.
package identity

import "os"

// AnonymousID is the user id for unauthenticated play. Sessions under
// this id are never persisted to disk.
const AnonymousID = "anonymous"

// User identifies who is studying.
type User struct {
	ID string
}

// Anonymous reports whether this is the unauthenticated user.
func (u User) Anonymous() bool {
	return u.ID == AnonymousID
}

// Current resolves the acting user from REVISE_USER, falling back to
// the anonymous user.
func Current() User {
	if id := os.Getenv("REVISE_USER"); id != "" {
		return User{ID: id}
	}
	return User{ID: AnonymousID}
}
