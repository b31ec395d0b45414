package message

import (
	"context"
	"errors"
	"slices"

	"github.com/dylanswipeyourbite/squadupv2/activity"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// DefaultFeedLimit is the page size used when a client sends none.
	DefaultFeedLimit = 50
	// MaxFeedLimit caps a single feed page.
	MaxFeedLimit = 200
)

// RepositoryConfig wires the Bun-backed message repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	Logger     types.Logger
}

// Repository implements types.MessageRepository.
type Repository struct {
	store  repository.Repository[*Record]
	db     *bun.DB
	clock  types.Clock
	logger types.Logger
}

// NewRepository constructs the default message repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("message: db required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Repository{
		store:  repo,
		db:     cfg.DB,
		clock:  clock,
		logger: logger,
	}, nil
}

var _ types.MessageRepository = (*Repository)(nil)

// Send persists a message. A draft carrying a check-in records it in the same
// transaction so the message and the squad totals land together.
func (r *Repository) Send(ctx context.Context, draft types.MessageDraft) (*types.Message, error) {
	if draft.ID == uuid.Nil {
		return nil, errors.New("message: id required")
	}
	rec := &Record{
		ID:        draft.ID,
		SquadID:   draft.SquadID,
		ProfileID: draft.ProfileID,
		Type:      string(draft.Type),
		Content:   draft.Content,
		Metadata:  cloneMap(draft.Metadata),
		ReplyToID: draft.ReplyToID,
		CreatedAt: draft.CreatedAt,
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return err
		}
		if draft.Checkin == nil {
			return nil
		}
		checkin := *draft.Checkin
		checkin.MessageID = &rec.ID
		checkin.SquadID = rec.SquadID
		checkin.ProfileID = rec.ProfileID
		if checkin.CreatedAt.IsZero() {
			checkin.CreatedAt = rec.CreatedAt
		}
		_, err := activity.ApplyCheckin(ctx, tx, checkin)
		return err
	})
	if err != nil {
		return nil, err
	}

	msg := toDomain(rec)
	summaries, err := profile.Summaries(ctx, r.db, []uuid.UUID{msg.ProfileID})
	if err != nil {
		return nil, err
	}
	if author, ok := summaries[msg.ProfileID]; ok {
		msg.Author = &author
	}
	return msg, nil
}

// Get returns the bare message row or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*types.Message, error) {
	rec, err := r.store.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetDetail returns the message with its author, the replied-to message,
// reactions with their authors and read receipts.
func (r *Repository) GetDetail(ctx context.Context, id uuid.UUID) (*types.Message, error) {
	msg, err := r.Get(ctx, id)
	if err != nil || msg == nil {
		return msg, err
	}

	var parent *types.Message
	if msg.ReplyToID != nil {
		parent, err = r.Get(ctx, *msg.ReplyToID)
		if err != nil {
			return nil, err
		}
	}

	reactions, err := r.reactionsFor(ctx, []uuid.UUID{msg.ID})
	if err != nil {
		return nil, err
	}
	receipts, err := r.readersFor(ctx, []uuid.UUID{msg.ID})
	if err != nil {
		return nil, err
	}

	authorIDs := []uuid.UUID{msg.ProfileID}
	if parent != nil {
		authorIDs = append(authorIDs, parent.ProfileID)
	}
	for _, reaction := range reactions[msg.ID] {
		authorIDs = append(authorIDs, reaction.ProfileID)
	}
	summaries, err := profile.Summaries(ctx, r.db, authorIDs)
	if err != nil {
		return nil, err
	}

	msg.Author = summaryPtr(summaries, msg.ProfileID)
	if parent != nil {
		msg.ReplyTo = &types.MessageReply{
			ID:      parent.ID,
			Content: parent.Content,
			Type:    parent.Type,
			Author:  summaryPtr(summaries, parent.ProfileID),
		}
	}
	for _, reaction := range reactions[msg.ID] {
		reaction.Author = summaryPtr(summaries, reaction.ProfileID)
		msg.Reactions = append(msg.Reactions, reaction)
	}
	if readers := receipts[msg.ID]; readers != nil {
		msg.ReadByProfileIDs = readers
	}
	return msg, nil
}

// ListFeed returns a page of live messages in ascending creation order. The
// page holds the newest messages older than filter.Before.
func (r *Repository) ListFeed(ctx context.Context, filter types.MessageFeedFilter) ([]types.Message, error) {
	var cursor *FeedCursor
	if filter.Before != nil {
		cursor = &FeedCursor{CreatedAt: *filter.Before}
	}

	var records []Record
	q := r.db.NewSelect().
		Model(&records).
		Where("squad_id = ?", filter.SquadID).
		Where("deleted_at IS NULL")
	q = ApplyCursorPagination(q, cursor, ClampFeedLimit(filter.Limit))
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	slices.Reverse(records)

	ids := make([]uuid.UUID, 0, len(records))
	authorIDs := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
		authorIDs = append(authorIDs, rec.ProfileID)
	}
	reactions, err := r.reactionsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	receipts, err := r.readersFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	summaries, err := profile.Summaries(ctx, r.db, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]types.Message, 0, len(records))
	for i := range records {
		msg := toDomain(&records[i])
		msg.Author = summaryPtr(summaries, msg.ProfileID)
		if list := reactions[msg.ID]; list != nil {
			msg.Reactions = list
		}
		if readers := receipts[msg.ID]; readers != nil {
			msg.ReadByProfileIDs = readers
		}
		out = append(out, *msg)
	}
	return out, nil
}

// ClampFeedLimit applies the default page size and bounds it to
// [1, MaxFeedLimit].
func ClampFeedLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultFeedLimit
	case limit > MaxFeedLimit:
		return MaxFeedLimit
	default:
		return limit
	}
}

func (r *Repository) reactionsFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]types.Reaction, error) {
	out := make(map[uuid.UUID][]types.Reaction)
	if len(ids) == 0 {
		return out, nil
	}
	var records []ReactionRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("message_id IN (?)", bun.In(ids)).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.MessageID] = append(out[rec.MessageID], reactionToDomain(rec))
	}
	return out, nil
}

func (r *Repository) readersFor(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID)
	if len(ids) == 0 {
		return out, nil
	}
	var records []ReceiptRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("message_id IN (?)", bun.In(ids)).
		OrderExpr("read_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.MessageID] = append(out[rec.MessageID], rec.ProfileID)
	}
	return out, nil
}

func summaryPtr(summaries map[uuid.UUID]types.ProfileSummary, id uuid.UUID) *types.ProfileSummary {
	summary, ok := summaries[id]
	if !ok {
		return nil
	}
	return &summary
}
