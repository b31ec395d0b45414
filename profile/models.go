package profile

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the profiles row.
type Record struct {
	bun.BaseModel `bun:"table:profiles"`

	ID             uuid.UUID      `bun:"id,pk,type:uuid"`
	UserID         string         `bun:"user_id,nullzero"`
	FirebaseUID    string         `bun:"firebase_uid,nullzero"`
	Email          string         `bun:"email"`
	DisplayName    string         `bun:"display_name"`
	AvatarURL      string         `bun:"avatar_url"`
	OnboardingData map[string]any `bun:"onboarding_data,type:jsonb"`
	LastSeenAt     *time.Time     `bun:"last_seen_at"`
	CreatedAt      time.Time      `bun:"created_at"`
	UpdatedAt      time.Time      `bun:"updated_at"`
}

func fromDomain(profile types.Profile) *Record {
	return &Record{
		ID:             profile.ID,
		UserID:         profile.UserID,
		FirebaseUID:    profile.FirebaseUID,
		Email:          profile.Email,
		DisplayName:    profile.DisplayName,
		AvatarURL:      profile.AvatarURL,
		OnboardingData: cloneMap(profile.OnboardingData),
		LastSeenAt:     profile.LastSeenAt,
		CreatedAt:      profile.CreatedAt,
		UpdatedAt:      profile.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.Profile {
	if rec == nil {
		return nil
	}
	return &types.Profile{
		ID:             rec.ID,
		UserID:         rec.UserID,
		FirebaseUID:    rec.FirebaseUID,
		Email:          rec.Email,
		DisplayName:    rec.DisplayName,
		AvatarURL:      rec.AvatarURL,
		OnboardingData: cloneMap(rec.OnboardingData),
		LastSeenAt:     rec.LastSeenAt,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
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
