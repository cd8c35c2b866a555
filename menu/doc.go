// Package menu models the permission-filtered navigation tree the backend
// delivers after login. The tree is the authoritative statement of which
// routes this session may reach; the route package walks it to authorize
// navigation.
package menu
