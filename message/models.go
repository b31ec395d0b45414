package message

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the squad_messages row.
type Record struct {
	bun.BaseModel `bun:"table:squad_messages,alias:msg"`

	ID        uuid.UUID      `bun:"id,pk,type:uuid"`
	SquadID   uuid.UUID      `bun:"squad_id,type:uuid"`
	ProfileID uuid.UUID      `bun:"profile_id,type:uuid"`
	Type      string         `bun:"type"`
	Content   *string        `bun:"content"`
	Metadata  map[string]any `bun:"metadata,type:jsonb"`
	ReplyToID *uuid.UUID     `bun:"reply_to_id,type:uuid"`
	EditedAt  *time.Time     `bun:"edited_at"`
	DeletedAt *time.Time     `bun:"deleted_at"`
	CreatedAt time.Time      `bun:"created_at"`
}

// ReactionRecord models the message_reactions row.
type ReactionRecord struct {
	bun.BaseModel `bun:"table:message_reactions,alias:r"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	MessageID uuid.UUID `bun:"message_id,type:uuid"`
	ProfileID uuid.UUID `bun:"profile_id,type:uuid"`
	Emoji     string    `bun:"emoji"`
	CreatedAt time.Time `bun:"created_at"`
}

// ReceiptRecord models the message_read_receipts row.
type ReceiptRecord struct {
	bun.BaseModel `bun:"table:message_read_receipts,alias:rr"`

	MessageID uuid.UUID `bun:"message_id,pk,type:uuid"`
	ProfileID uuid.UUID `bun:"profile_id,pk,type:uuid"`
	ReadAt    time.Time `bun:"read_at"`
}

func toDomain(rec *Record) *types.Message {
	if rec == nil {
		return nil
	}
	return &types.Message{
		ID:               rec.ID,
		SquadID:          rec.SquadID,
		ProfileID:        rec.ProfileID,
		Type:             types.MessageType(rec.Type),
		Content:          rec.Content,
		Metadata:         cloneMap(rec.Metadata),
		ReplyToID:        rec.ReplyToID,
		EditedAt:         rec.EditedAt,
		DeletedAt:        rec.DeletedAt,
		CreatedAt:        rec.CreatedAt,
		Reactions:        []types.Reaction{},
		ReadByProfileIDs: []uuid.UUID{},
	}
}

func reactionToDomain(rec ReactionRecord) types.Reaction {
	return types.Reaction{
		ID:        rec.ID,
		MessageID: rec.MessageID,
		ProfileID: rec.ProfileID,
		Emoji:     rec.Emoji,
		CreatedAt: rec.CreatedAt,
	}
}

func cloneMap(origin map[string]any) map[string]any {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]any, len(origin))
	for k, v := range origin {
		out[k] = v
	}
	return out
}
