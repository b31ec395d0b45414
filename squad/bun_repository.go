package squad

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed squad repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	Logger     types.Logger
}

// Repository implements types.SquadRepository. Multi-statement writes run in
// a single transaction and counters change through relative updates.
type Repository struct {
	store  repository.Repository[*Record]
	db     *bun.DB
	clock  types.Clock
	logger types.Logger
}

// NewRepository constructs the default squad repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("squad: db required")
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
			GetIdentifier: func() string {
				return "invite_code"
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

var _ types.SquadRepository = (*Repository)(nil)

// GetByID returns the squad or nil when it does not exist.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.Squad, error) {
	rec, err := r.store.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// GetByInviteCode resolves a squad from its invite code.
func (r *Repository) GetByInviteCode(ctx context.Context, code string) (*types.Squad, error) {
	rec, err := r.store.Get(ctx, repository.SelectBy("invite_code", "=", code))
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// InviteCodeExists reports whether any squad already uses code.
func (r *Repository) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	return r.db.NewSelect().
		Model((*Record)(nil)).
		Where("invite_code = ?", code).
		Exists(ctx)
}

// CreateWithCaptain inserts the squad and its captain membership together.
func (r *Repository) CreateWithCaptain(ctx context.Context, squad types.Squad, captain types.SquadMember) (*types.Squad, error) {
	rec := fromDomain(squad)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	rec.MemberCount = 1

	member := memberFromDomain(captain)
	member.SquadID = rec.ID
	member.Role = string(types.SquadRoleCaptain)
	if member.JoinedAt.IsZero() {
		member.JoinedAt = rec.CreatedAt
	}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(member).Exec(ctx)
		return err
	})
	if err != nil {
		r.logger.Error("squad create rolled back", err, "squad_id", rec.ID)
		return nil, err
	}
	return toDomain(rec), nil
}

// AddMember inserts a membership and increments member_count. A squad at its
// max_members cap rejects the join with types.ErrSquadFull.
func (r *Repository) AddMember(ctx context.Context, member types.SquadMember) (*types.Squad, error) {
	rec := memberFromDomain(member)
	if rec.JoinedAt.IsZero() {
		rec.JoinedAt = r.clock.Now()
	}
	if rec.Role == "" {
		rec.Role = string(types.SquadRoleMember)
	}

	var updated Record
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*MemberRecord)(nil)).
			Where("squad_id = ?", rec.SquadID).
			Where("profile_id = ?", rec.ProfileID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return types.ErrAlreadyMember
		}

		res, err := tx.NewUpdate().
			Model((*Record)(nil)).
			Set("member_count = member_count + 1").
			Set("updated_at = ?", rec.JoinedAt).
			Where("id = ?", rec.SquadID).
			Where("max_members IS NULL OR member_count < max_members").
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return r.capacityError(ctx, tx, rec.SquadID)
		}

		if _, err := tx.NewInsert().Model(rec).Exec(ctx); err != nil {
			if apperr.IsUniqueViolation(err) {
				return types.ErrAlreadyMember
			}
			return err
		}
		return tx.NewSelect().Model(&updated).Where("id = ?", rec.SquadID).Scan(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toDomain(&updated), nil
}

func (r *Repository) capacityError(ctx context.Context, db bun.IDB, squadID uuid.UUID) error {
	exists, err := db.NewSelect().
		Model((*Record)(nil)).
		Where("id = ?", squadID).
		Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return types.ErrSquadNotFound
	}
	return types.ErrSquadFull
}

// RemoveMember deletes a membership and decrements member_count.
func (r *Repository) RemoveMember(ctx context.Context, squadID, profileID uuid.UUID, at time.Time) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*MemberRecord)(nil)).
			Where("squad_id = ?", squadID).
			Where("profile_id = ?", profileID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return types.ErrNotMember
		}

		_, err = tx.NewUpdate().
			Model((*Record)(nil)).
			Set("member_count = member_count - 1").
			Set("updated_at = ?", at).
			Where("id = ?", squadID).
			Where("member_count > 0").
			Exec(ctx)
		return err
	})
}

// Delete removes the squad. Memberships, messages and check-ins cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return types.ErrSquadNotFound
	}
	return nil
}

// Membership returns the caller's membership row or nil when absent.
func (r *Repository) Membership(ctx context.Context, squadID, profileID uuid.UUID) (*types.SquadMember, error) {
	var rec MemberRecord
	err := r.db.NewSelect().
		Model(&rec).
		Where("squad_id = ?", squadID).
		Where("profile_id = ?", profileID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return memberToDomain(&rec), nil
}

// CountMembers returns the number of membership rows for the squad.
func (r *Repository) CountMembers(ctx context.Context, squadID uuid.UUID) (int, error) {
	return r.db.NewSelect().
		Model((*MemberRecord)(nil)).
		Where("squad_id = ?", squadID).
		Count(ctx)
}

// ListForProfile returns every squad the profile belongs to, oldest
// membership first.
func (r *Repository) ListForProfile(ctx context.Context, profileID uuid.UUID) ([]types.Squad, error) {
	var records []Record
	err := r.db.NewSelect().
		Model(&records).
		Join("JOIN squad_members AS m ON m.squad_id = s.id").
		Where("m.profile_id = ?", profileID).
		OrderExpr("m.joined_at ASC, s.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Squad, 0, len(records))
	for i := range records {
		out = append(out, *toDomain(&records[i]))
	}
	return out, nil
}

// ListMembers returns the squad roster with profile summaries, captains first
// and then by join time.
func (r *Repository) ListMembers(ctx context.Context, squadID uuid.UUID) ([]types.SquadMember, error) {
	var records []MemberRecord
	err := r.db.NewSelect().
		Model(&records).
		Where("squad_id = ?", squadID).
		OrderExpr("role ASC, joined_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ProfileID)
	}
	summaries, err := profile.Summaries(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}

	out := make([]types.SquadMember, 0, len(records))
	for i := range records {
		member := memberToDomain(&records[i])
		if summary, ok := summaries[member.ProfileID]; ok {
			member.Profile = &summary
		}
		out = append(out, *member)
	}
	return out, nil
}

// CountActiveMembers counts members with activity at or after since.
func (r *Repository) CountActiveMembers(ctx context.Context, squadID uuid.UUID, since time.Time) (int, error) {
	return r.db.NewSelect().
		Model((*MemberRecord)(nil)).
		Where("squad_id = ?", squadID).
		Where("last_activity_at >= ?", since).
		Count(ctx)
}
