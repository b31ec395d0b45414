package activity

import (
	"context"
	"errors"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository persists logged activities and exposes the window sums used by
// squad stats.
type Repository struct {
	store repository.Repository[*Record]
	db    *bun.DB
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default activity repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("activity: db required")
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
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}

	return &Repository{
		store: repo,
		db:    cfg.DB,
		clock: clock,
		idGen: idGen,
	}, nil
}

var _ types.ActivityRepository = (*Repository)(nil)

// Create records a workout. StartedAt defaults to the creation time.
func (r *Repository) Create(ctx context.Context, activity types.Activity) (*types.Activity, error) {
	if activity.ProfileID == uuid.Nil {
		return nil, errors.New("activity: profile id required")
	}
	rec := &Record{
		ID:              activity.ID,
		ProfileID:       activity.ProfileID,
		ActivityType:    activity.ActivityType,
		DistanceKm:      activity.DistanceKm,
		DurationSeconds: activity.DurationSeconds,
		StartedAt:       activity.StartedAt,
		CreatedAt:       activity.CreatedAt,
	}
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.clock.Now()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = rec.CreatedAt
	}
	created, err := r.store.Create(ctx, rec)
	if err != nil {
		return nil, err
	}
	return toDomain(created), nil
}

// Get returns the activity or nil when it does not exist.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*types.Activity, error) {
	rec, err := r.store.GetByID(ctx, id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// DistanceSince sums the distance of activities checked into the squad at or
// after since.
func (r *Repository) DistanceSince(ctx context.Context, squadID uuid.UUID, since time.Time) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		TableExpr("activity_checkins AS c").
		Join("JOIN activities AS a ON a.id = c.activity_id").
		ColumnExpr("COALESCE(SUM(a.distance_km), 0.0)").
		Where("c.squad_id = ?", squadID).
		Where("c.created_at >= ?", since).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
