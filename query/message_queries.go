package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/message"
	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

// MessageDetailInput addresses one message.
type MessageDetailInput struct {
	ActorID   uuid.UUID
	MessageID uuid.UUID
}

// Type implements gocommand.Message.
func (MessageDetailInput) Type() string {
	return "query.message.detail"
}

// Validate implements gocommand.Message.
func (input MessageDetailInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.MessageID == uuid.Nil:
		return apperr.Validation(msgMessageIDRequired, "MESSAGE_ID_REQUIRED")
	}
	return nil
}

// MessageDetailQuery loads a message with its reply target, reactions and
// read receipts.
type MessageDetailQuery struct {
	messages types.MessageRepository
	guard    scope.Guard
}

// NewMessageDetailQuery constructs the detail query.
func NewMessageDetailQuery(messages types.MessageRepository, squads types.SquadRepository, guard scope.Guard) *MessageDetailQuery {
	return &MessageDetailQuery{messages: messages, guard: safeScopeGuard(guard, squads)}
}

var _ gocommand.Querier[MessageDetailInput, *types.Message] = (*MessageDetailQuery)(nil)

// Query returns the message when the caller belongs to its squad.
func (q *MessageDetailQuery) Query(ctx context.Context, input MessageDetailInput) (*types.Message, error) {
	if q.messages == nil {
		return nil, types.ErrMissingMessageRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	msg, err := q.messages.GetDetail(ctx, input.MessageID)
	if err != nil {
		return nil, apperr.Internal(err, "message detail")
	}
	if msg == nil {
		return nil, apperr.NotFound(msgMessageNotFound, "MESSAGE_NOT_FOUND")
	}
	if _, err := q.guard.RequireMember(ctx, msg.SquadID, input.ActorID, msgMessageForbidden); err != nil {
		return nil, err
	}
	return msg, nil
}

// MessageFeedInput pages backwards through a squad's messages.
type MessageFeedInput struct {
	ActorID         uuid.UUID
	SquadID         uuid.UUID
	Limit           int
	BeforeMessageID *uuid.UUID
}

// Type implements gocommand.Message.
func (MessageFeedInput) Type() string {
	return "query.message.feed"
}

// Validate implements gocommand.Message.
func (input MessageFeedInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.SquadID == uuid.Nil:
		return squadIDRequired()
	}
	return nil
}

// MessageFeedQuery returns a page of non-deleted messages in ascending order.
type MessageFeedQuery struct {
	messages types.MessageRepository
	guard    scope.Guard
}

// NewMessageFeedQuery constructs the feed query.
func NewMessageFeedQuery(messages types.MessageRepository, squads types.SquadRepository, guard scope.Guard) *MessageFeedQuery {
	return &MessageFeedQuery{messages: messages, guard: safeScopeGuard(guard, squads)}
}

var _ gocommand.Querier[MessageFeedInput, []types.Message] = (*MessageFeedQuery)(nil)

// Query resolves the optional reference message into a created_at cursor.
// An unknown reference means no cursor.
func (q *MessageFeedQuery) Query(ctx context.Context, input MessageFeedInput) ([]types.Message, error) {
	if q.messages == nil {
		return nil, types.ErrMissingMessageRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := q.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgFeedNotMember); err != nil {
		return nil, err
	}

	filter := types.MessageFeedFilter{
		SquadID: input.SquadID,
		Limit:   message.ClampFeedLimit(input.Limit),
	}
	if input.BeforeMessageID != nil && *input.BeforeMessageID != uuid.Nil {
		ref, err := q.messages.Get(ctx, *input.BeforeMessageID)
		if err != nil {
			return nil, apperr.Internal(err, "message feed: load cursor")
		}
		if ref != nil {
			before := ref.CreatedAt
			filter.Before = &before
		}
	}

	msgs, err := q.messages.ListFeed(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err, "message feed")
	}
	if msgs == nil {
		msgs = []types.Message{}
	}
	return msgs, nil
}
