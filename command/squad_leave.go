package command

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

// SquadLeaveInput identifies the squad the caller leaves.
type SquadLeaveInput struct {
	ActorID uuid.UUID
	SquadID uuid.UUID
}

// Type implements gocommand.Message.
func (SquadLeaveInput) Type() string {
	return "command.squad.leave"
}

// Validate implements gocommand.Message.
func (input SquadLeaveInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.SquadID == uuid.Nil:
		return squadIDRequired()
	}
	return nil
}

// SquadLeaveCommand removes the caller's membership.
type SquadLeaveCommand struct {
	squads types.SquadRepository
	guard  scope.Guard
	clock  types.Clock
	logger types.Logger
}

// SquadLeaveCommandConfig wires dependencies for the leave command.
type SquadLeaveCommandConfig struct {
	Squads     types.SquadRepository
	ScopeGuard scope.Guard
	Clock      types.Clock
	Logger     types.Logger
}

// NewSquadLeaveCommand constructs the leave handler.
func NewSquadLeaveCommand(cfg SquadLeaveCommandConfig) *SquadLeaveCommand {
	return &SquadLeaveCommand{
		squads: cfg.Squads,
		guard:  safeScopeGuard(cfg.ScopeGuard, cfg.Squads),
		clock:  safeClock(cfg.Clock),
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[SquadLeaveInput] = (*SquadLeaveCommand)(nil)

// Execute deletes the membership. A captain may only leave an otherwise
// empty squad.
func (c *SquadLeaveCommand) Execute(ctx context.Context, input SquadLeaveInput) error {
	if c.squads == nil {
		return types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	member, err := c.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgSquadNotMember)
	if err != nil {
		return err
	}
	if member.IsCaptain() {
		count, err := c.squads.CountMembers(ctx, input.SquadID)
		if err != nil {
			return apperr.Internal(err, "squad leave: count members")
		}
		if count > 1 {
			return invalid(msgCaptainCannotLeave, "CAPTAIN_CANNOT_LEAVE")
		}
	}

	err = c.squads.RemoveMember(ctx, input.SquadID, input.ActorID, now(c.clock))
	switch {
	case errors.Is(err, types.ErrNotMember):
		return forbidden(msgSquadNotMember, "SQUAD_MEMBERSHIP_REQUIRED")
	case err != nil:
		c.logger.Error("squad leave rolled back", err, "squad_id", input.SquadID, "profile_id", input.ActorID)
		return apperr.Internal(err, "squad leave: remove member")
	}
	c.logger.Info("squad left", "squad_id", input.SquadID, "profile_id", input.ActorID)
	return nil
}
