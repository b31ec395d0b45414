package command

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

// checkinActivityKey is the metadata field naming the activity a check-in
// message reports.
const checkinActivityKey = "activityId"

// MessageSendInput captures a chat message posted to a squad.
type MessageSendInput struct {
	ActorID     uuid.UUID
	SquadID     uuid.UUID
	MessageType string
	Content     *string
	Metadata    map[string]any
	ReplyToID   *uuid.UUID
	Result      *types.Message
}

// Type implements gocommand.Message.
func (MessageSendInput) Type() string {
	return "command.message.send"
}

// Validate implements gocommand.Message.
func (input MessageSendInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.SquadID == uuid.Nil, input.MessageType == "":
		return invalid(msgSendFieldsRequired, "MESSAGE_FIELDS_REQUIRED")
	}
	return nil
}

// MessageSendCommand persists a message from a squad member.
type MessageSendCommand struct {
	messages types.MessageRepository
	guard    scope.Guard
	clock    types.Clock
	idGen    types.IDGenerator
	logger   types.Logger
}

// MessageSendCommandConfig wires dependencies for the send command.
type MessageSendCommandConfig struct {
	Messages   types.MessageRepository
	Squads     types.SquadRepository
	ScopeGuard scope.Guard
	Clock      types.Clock
	IDGen      types.IDGenerator
	Logger     types.Logger
}

// NewMessageSendCommand constructs the send handler.
func NewMessageSendCommand(cfg MessageSendCommandConfig) *MessageSendCommand {
	return &MessageSendCommand{
		messages: cfg.Messages,
		guard:    safeScopeGuard(cfg.ScopeGuard, cfg.Squads),
		clock:    safeClock(cfg.Clock),
		idGen:    safeIDGen(cfg.IDGen),
		logger:   safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[MessageSendInput] = (*MessageSendCommand)(nil)

// Execute checks membership, normalizes the type and stores the message.
// Check-in messages naming one of the caller's activities also update the
// squad and member totals.
func (c *MessageSendCommand) Execute(ctx context.Context, input MessageSendInput) error {
	if c.messages == nil {
		return types.ErrMissingMessageRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if _, err := c.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgSendNotMember); err != nil {
		return err
	}

	kind, ok := types.ParseMessageType(input.MessageType)
	if !ok {
		return invalid(msgInvalidMessageType, "MESSAGE_TYPE_INVALID")
	}

	if input.ReplyToID != nil && *input.ReplyToID != uuid.Nil {
		parent, err := c.messages.Get(ctx, *input.ReplyToID)
		if err != nil {
			return apperr.Internal(err, "message send: load reply target")
		}
		if parent == nil || parent.SquadID != input.SquadID {
			return invalid(msgReplyInvalid, "REPLY_TARGET_INVALID")
		}
	}

	at := now(c.clock)
	draft := types.MessageDraft{
		ID:        c.idGen.UUID(),
		SquadID:   input.SquadID,
		ProfileID: input.ActorID,
		Type:      kind,
		Content:   nonEmpty(input.Content),
		Metadata:  input.Metadata,
		ReplyToID: nonNilID(input.ReplyToID),
		CreatedAt: at,
	}
	if draft.Metadata == nil {
		draft.Metadata = map[string]any{}
	}
	if kind == types.MessageTypeActivityCheckin {
		activityID, present, err := checkinActivity(draft.Metadata)
		if err != nil {
			return err
		}
		if present {
			draft.Checkin = &types.Checkin{
				ID:         c.idGen.UUID(),
				ActivityID: activityID,
				CreatedAt:  at,
			}
		}
	}

	sent, err := c.messages.Send(ctx, draft)
	switch {
	case errors.Is(err, types.ErrActivityNotFound):
		return invalid(msgActivityInvalid, "ACTIVITY_NOT_FOUND")
	case errors.Is(err, types.ErrActivityAlreadyCheckedIn):
		return invalid(msgActivityCheckedIn, "ACTIVITY_ALREADY_CHECKED_IN")
	case errors.Is(err, types.ErrNotMember):
		return forbidden(msgSendNotMember, "SQUAD_MEMBERSHIP_REQUIRED")
	case errors.Is(err, types.ErrSquadNotFound):
		return apperr.NotFound(msgSquadNotFound, "SQUAD_NOT_FOUND")
	case err != nil:
		c.logger.Error("message send failed", err, "squad_id", input.SquadID, "profile_id", input.ActorID)
		return apperr.Internal(err, "message send")
	}

	if input.Result != nil {
		*input.Result = *sent
	}
	return nil
}

func checkinActivity(metadata map[string]any) (uuid.UUID, bool, error) {
	raw, ok := metadata[checkinActivityKey]
	if !ok || raw == nil {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(fmt.Sprint(raw))
	if err != nil {
		return uuid.Nil, false, invalid(msgActivityInvalid, "ACTIVITY_NOT_FOUND")
	}
	return id, true, nil
}

func nonEmpty(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	return value
}

func nonNilID(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}
