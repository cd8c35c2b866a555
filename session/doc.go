// Package session owns the client-side session model and its durable
// persistence.
//
// # Storage layout
//
// A session is persisted as a small set of flat string keys (access token,
// refresh token, serialized current-user, login theme) behind a [Backend]
// interface. Two backends ship with the package: [FileBackend] for a single
// local client and [RedisBackend] for shared or kiosk deployments. The key
// names are fixed by [Keys] so a session written by one process is readable
// by the next.
//
// # Architecture boundaries
//
// This package decides whether a session is still valid (token present and
// unexpired) but nothing more. It does NOT authorize routes, talk to the
// backend API, or interpret the menu tree — those responsibilities belong to
// the route and api packages and the App.
package session
