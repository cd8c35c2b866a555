// Package route decides, per navigation attempt, whether the client may
// render a path. The decision is driven by the session's validity and the
// server-delivered menu tree; before the tree arrives a static fallback page
// set keeps the client navigable.
//
// The package also owns the view registry that materializes routes from
// menu data: a map from route path to view factory, with a placeholder view
// for paths the menu permits but no view claims.
package route
