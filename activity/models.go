package activity

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the activities row.
type Record struct {
	bun.BaseModel `bun:"table:activities"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	ProfileID       uuid.UUID `bun:"profile_id,type:uuid"`
	ActivityType    string    `bun:"activity_type"`
	DistanceKm      float64   `bun:"distance_km"`
	DurationSeconds int       `bun:"duration_seconds"`
	StartedAt       time.Time `bun:"started_at"`
	CreatedAt       time.Time `bun:"created_at"`
}

// CheckinRecord models the activity_checkins row.
type CheckinRecord struct {
	bun.BaseModel `bun:"table:activity_checkins"`

	ID         uuid.UUID  `bun:"id,pk,type:uuid"`
	SquadID    uuid.UUID  `bun:"squad_id,type:uuid"`
	ActivityID uuid.UUID  `bun:"activity_id,type:uuid"`
	ProfileID  uuid.UUID  `bun:"profile_id,type:uuid"`
	MessageID  *uuid.UUID `bun:"message_id,type:uuid"`
	CreatedAt  time.Time  `bun:"created_at"`
}

func toDomain(rec *Record) *types.Activity {
	if rec == nil {
		return nil
	}
	return &types.Activity{
		ID:              rec.ID,
		ProfileID:       rec.ProfileID,
		ActivityType:    rec.ActivityType,
		DistanceKm:      rec.DistanceKm,
		DurationSeconds: rec.DurationSeconds,
		StartedAt:       rec.StartedAt,
		CreatedAt:       rec.CreatedAt,
	}
}
