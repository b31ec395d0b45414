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

// SquadDeleteInput identifies the squad the captain deletes.
type SquadDeleteInput struct {
	ActorID uuid.UUID
	SquadID uuid.UUID
}

// Type implements gocommand.Message.
func (SquadDeleteInput) Type() string {
	return "command.squad.delete"
}

// Validate implements gocommand.Message.
func (input SquadDeleteInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.SquadID == uuid.Nil:
		return squadIDRequired()
	}
	return nil
}

// SquadDeleteCommand removes a squad and, through cascades, everything
// hanging off it.
type SquadDeleteCommand struct {
	squads types.SquadRepository
	guard  scope.Guard
	logger types.Logger
}

// SquadDeleteCommandConfig wires dependencies for the delete command.
type SquadDeleteCommandConfig struct {
	Squads     types.SquadRepository
	ScopeGuard scope.Guard
	Logger     types.Logger
}

// NewSquadDeleteCommand constructs the delete handler.
func NewSquadDeleteCommand(cfg SquadDeleteCommandConfig) *SquadDeleteCommand {
	return &SquadDeleteCommand{
		squads: cfg.Squads,
		guard:  safeScopeGuard(cfg.ScopeGuard, cfg.Squads),
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[SquadDeleteInput] = (*SquadDeleteCommand)(nil)

// Execute deletes the squad when the caller is its captain.
func (c *SquadDeleteCommand) Execute(ctx context.Context, input SquadDeleteInput) error {
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
	if !member.IsCaptain() {
		return forbidden(msgCaptainOnlyDelete, "CAPTAIN_REQUIRED")
	}

	err = c.squads.Delete(ctx, input.SquadID)
	switch {
	case errors.Is(err, types.ErrSquadNotFound):
		return apperr.NotFound(msgSquadNotFound, "SQUAD_NOT_FOUND")
	case err != nil:
		return apperr.Internal(err, "squad delete")
	}
	c.logger.Info("squad deleted", "squad_id", input.SquadID, "profile_id", input.ActorID)
	return nil
}
