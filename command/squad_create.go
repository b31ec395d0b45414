package command

import (
	"context"
	"strings"
	"unicode/utf8"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/squad"
)

const (
	squadNameMin = 3
	squadNameMax = 30
	// maxInviteCodeAttempts bounds how many candidate codes are checked.
	maxInviteCodeAttempts = 10
)

// InviteCodeSource draws candidate invite codes.
type InviteCodeSource func() (string, error)

// SquadCreateInput captures the payload for creating a squad.
type SquadCreateInput struct {
	ActorID     uuid.UUID
	Name        string
	Description *string
	AvatarURL   *string
	Result      *types.Squad
}

// Type implements gocommand.Message.
func (SquadCreateInput) Type() string {
	return "command.squad.create"
}

// Validate implements gocommand.Message.
func (input SquadCreateInput) Validate() error {
	if input.ActorID == uuid.Nil {
		return ErrActorRequired
	}
	length := utf8.RuneCountInString(strings.TrimSpace(input.Name))
	switch {
	case length < squadNameMin:
		return invalid(msgNameTooShort, "SQUAD_NAME_TOO_SHORT")
	case length > squadNameMax:
		return invalid(msgNameTooLong, "SQUAD_NAME_TOO_LONG")
	}
	return nil
}

// SquadCreateCommand creates a squad with the caller as captain.
type SquadCreateCommand struct {
	squads      types.SquadRepository
	clock       types.Clock
	idGen       types.IDGenerator
	logger      types.Logger
	inviteCodes InviteCodeSource
}

// SquadCreateCommandConfig wires dependencies for the create command.
type SquadCreateCommandConfig struct {
	Squads      types.SquadRepository
	Clock       types.Clock
	IDGen       types.IDGenerator
	Logger      types.Logger
	InviteCodes InviteCodeSource
}

// NewSquadCreateCommand constructs the create handler.
func NewSquadCreateCommand(cfg SquadCreateCommandConfig) *SquadCreateCommand {
	codes := cfg.InviteCodes
	if codes == nil {
		codes = squad.NewInviteCode
	}
	return &SquadCreateCommand{
		squads:      cfg.Squads,
		clock:       safeClock(cfg.Clock),
		idGen:       safeIDGen(cfg.IDGen),
		logger:      safeLogger(cfg.Logger),
		inviteCodes: codes,
	}
}

var _ gocommand.Commander[SquadCreateInput] = (*SquadCreateCommand)(nil)

// Execute allocates an invite code and inserts the squad with its captain.
func (c *SquadCreateCommand) Execute(ctx context.Context, input SquadCreateInput) error {
	if c.squads == nil {
		return types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	code, err := c.allocateInviteCode(ctx)
	if err != nil {
		return err
	}

	at := now(c.clock)
	created, err := c.squads.CreateWithCaptain(ctx, types.Squad{
		ID:          c.idGen.UUID(),
		Name:        strings.TrimSpace(input.Name),
		Description: types.TrimmedOrNil(input.Description),
		InviteCode:  code,
		Visibility:  types.SquadVisibilityPrivate,
		AvatarURL:   types.TrimmedOrNil(input.AvatarURL),
		ExpertNames: types.DefaultExpertNames(),
		CreatedAt:   at,
		UpdatedAt:   at,
	}, types.SquadMember{
		ID:                   c.idGen.UUID(),
		ProfileID:            input.ActorID,
		Role:                 types.SquadRoleCaptain,
		JoinedAt:             at,
		NotificationsEnabled: true,
	})
	if err != nil {
		return apperr.Internal(err, "squad create: insert")
	}

	c.logger.Info("squad created", "squad_id", created.ID, "profile_id", input.ActorID)
	if input.Result != nil {
		*input.Result = *created
	}
	return nil
}

func (c *SquadCreateCommand) allocateInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxInviteCodeAttempts; attempt++ {
		code, err := c.inviteCodes()
		if err != nil {
			return "", apperr.Internal(err, "squad create: draw invite code")
		}
		exists, err := c.squads.InviteCodeExists(ctx, code)
		if err != nil {
			return "", apperr.Internal(err, "squad create: check invite code")
		}
		if !exists {
			return code, nil
		}
	}
	return "", invalid(msgInviteExhausted, "INVITE_CODE_EXHAUSTED")
}
