package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed profile repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository implements types.ProfileRepository using Bun.
type Repository struct {
	store repository.Repository[*Record]
	db    *bun.DB
	clock types.Clock
	idgen types.IDGenerator
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("profile: db required")
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
	idgen := cfg.IDGen
	if idgen == nil {
		idgen = types.UUIDGenerator{}
	}

	return &Repository{
		store: repo,
		db:    cfg.DB,
		clock: clock,
		idgen: idgen,
	}, nil
}

var _ types.ProfileRepository = (*Repository)(nil)

// GetByID returns the profile with the given primary key, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.getOne(ctx, repository.SelectBy("id", "=", id.String()))
}

// GetByUserID resolves the profile owned by an auth subject.
func (r *Repository) GetByUserID(ctx context.Context, userID string) (*types.Profile, error) {
	if userID == "" {
		return nil, nil
	}
	return r.getOne(ctx, repository.SelectBy("user_id", "=", userID))
}

// GetByFirebaseUID resolves the profile linked to a Firebase account.
func (r *Repository) GetByFirebaseUID(ctx context.Context, uid string) (*types.Profile, error) {
	if uid == "" {
		return nil, nil
	}
	return r.getOne(ctx, repository.SelectBy("firebase_uid", "=", uid))
}

// Create inserts a new profile, filling the id and timestamps when unset.
func (r *Repository) Create(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	rec := fromDomain(profile)
	if rec.ID == uuid.Nil {
		rec.ID = r.idgen.UUID()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// TouchLastSeen stamps last_seen_at for a returning user.
func (r *Repository) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("last_seen_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// UpdateOnboardingData replaces the stored onboarding answers wholesale.
func (r *Repository) UpdateOnboardingData(ctx context.Context, id uuid.UUID, data map[string]any, at time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.NewUpdate().
		Model((*Record)(nil)).
		Set("onboarding_data = ?", string(payload)).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (r *Repository) getOne(ctx context.Context, criteria ...repository.SelectCriteria) (*types.Profile, error) {
	rec, err := r.store.Get(ctx, criteria...)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// Summaries loads the author blocks for the given profile ids. Unknown ids are
// omitted from the result.
func Summaries(ctx context.Context, db bun.IDB, ids []uuid.UUID) (map[uuid.UUID]types.ProfileSummary, error) {
	out := make(map[uuid.UUID]types.ProfileSummary, len(ids))
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return out, nil
	}
	var records []Record
	err := db.NewSelect().
		Model(&records).
		Column("id", "display_name", "avatar_url").
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		out[rec.ID] = types.ProfileSummary{
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			AvatarURL:   rec.AvatarURL,
		}
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
