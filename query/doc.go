// Package query exposes go-command Queriers for the read-only SquadUp
// handlers. Every squad-scoped query resolves the caller's membership through
// the scope guard before reading.
package query
