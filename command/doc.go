// Package command exposes go-command compatible handlers for every SquadUp
// mutation: the auth bridge, squad lifecycle, messaging, activity logging and
// the onboarding assistant. Commands are wired by the service layer and can be
// invoked by any transport.
package command
