// Package codereview is the client core of the code-review platform: the
// session, authorization, and transport logic the administrative UI runs on.
//
// # Layering
//
//   - [github.com/ant-lat/code-review-sub000/session] persists the session.
//   - [github.com/ant-lat/code-review-sub000/menu] models the
//     permission-filtered menu tree.
//   - [github.com/ant-lat/code-review-sub000/route] authorizes navigation
//     against the tree and materializes views.
//   - [github.com/ant-lat/code-review-sub000/api] talks to the REST backend
//     through the interceptor pipeline.
//
// This package ties them together behind [App], built with [Builder]. All
// mutable client state (session, menu tree, pending redirects) lives behind
// a single-writer loop: every mutation is an action applied by one consumer
// goroutine, so there are never concurrent writers.
//
// # Usage
//
//	app, err := codereview.New().
//		WithConfig(cfg).
//		WithStorageBackend(backend).
//		Build()
//	if err != nil { ... }
//	defer app.Close()
//
//	if _, err := app.Login(ctx, "alice", "secret"); err != nil { ... }
//	decision := app.Navigate("/projects", nil)
package codereview
