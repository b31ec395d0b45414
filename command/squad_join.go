package command

import (
	"context"
	"errors"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/squad"
)

// SquadJoinInput captures an invite code redemption.
type SquadJoinInput struct {
	ActorID    uuid.UUID
	InviteCode string
	Result     *types.Squad
}

// Type implements gocommand.Message.
func (SquadJoinInput) Type() string {
	return "command.squad.join"
}

// Validate implements gocommand.Message.
func (input SquadJoinInput) Validate() error {
	if input.ActorID == uuid.Nil {
		return ErrActorRequired
	}
	if len(input.InviteCode) != squad.InviteCodeLength {
		return invalid(msgInviteInvalid, "INVITE_CODE_INVALID")
	}
	return nil
}

// SquadJoinCommand adds the caller to the squad behind an invite code.
type SquadJoinCommand struct {
	squads types.SquadRepository
	clock  types.Clock
	idGen  types.IDGenerator
	logger types.Logger
}

// SquadJoinCommandConfig wires dependencies for the join command.
type SquadJoinCommandConfig struct {
	Squads types.SquadRepository
	Clock  types.Clock
	IDGen  types.IDGenerator
	Logger types.Logger
}

// NewSquadJoinCommand constructs the join handler.
func NewSquadJoinCommand(cfg SquadJoinCommandConfig) *SquadJoinCommand {
	return &SquadJoinCommand{
		squads: cfg.Squads,
		clock:  safeClock(cfg.Clock),
		idGen:  safeIDGen(cfg.IDGen),
		logger: safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[SquadJoinInput] = (*SquadJoinCommand)(nil)

// Execute resolves the invite code and records the membership.
func (c *SquadJoinCommand) Execute(ctx context.Context, input SquadJoinInput) error {
	if c.squads == nil {
		return types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	target, err := c.squads.GetByInviteCode(ctx, strings.ToUpper(input.InviteCode))
	if err != nil {
		return apperr.Internal(err, "squad join: lookup invite code")
	}
	if target == nil {
		return invalid(msgInviteInvalid, "INVITE_CODE_INVALID")
	}

	joined, err := c.squads.AddMember(ctx, types.SquadMember{
		ID:                   c.idGen.UUID(),
		SquadID:              target.ID,
		ProfileID:            input.ActorID,
		Role:                 types.SquadRoleMember,
		JoinedAt:             now(c.clock),
		NotificationsEnabled: true,
	})
	switch {
	case errors.Is(err, types.ErrAlreadyMember):
		return invalid(msgAlreadyMember, "ALREADY_MEMBER")
	case errors.Is(err, types.ErrSquadFull):
		return invalid(msgSquadFull, "SQUAD_FULL")
	case errors.Is(err, types.ErrSquadNotFound):
		return invalid(msgInviteInvalid, "INVITE_CODE_INVALID")
	case err != nil:
		c.logger.Error("squad join rolled back", err, "squad_id", target.ID, "profile_id", input.ActorID)
		return apperr.Internal(err, "squad join: add member")
	}

	c.logger.Info("squad joined", "squad_id", joined.ID, "profile_id", input.ActorID)
	if input.Result != nil {
		*input.Result = *joined
	}
	return nil
}
