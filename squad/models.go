package squad

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the squads row.
type Record struct {
	bun.BaseModel `bun:"table:squads,alias:s"`

	ID              uuid.UUID         `bun:"id,pk,type:uuid"`
	Name            string            `bun:"name"`
	Description     *string           `bun:"description"`
	InviteCode      string            `bun:"invite_code"`
	Visibility      string            `bun:"visibility"`
	MaxMembers      *int              `bun:"max_members"`
	MemberCount     int               `bun:"member_count"`
	AvatarURL       *string           `bun:"avatar_url"`
	ThemeColor      *string           `bun:"theme_color"`
	ExpertNames     map[string]string `bun:"expert_names,type:jsonb"`
	TotalDistanceKm float64           `bun:"total_distance_km"`
	TotalActivities int               `bun:"total_activities"`
	CreatedAt       time.Time         `bun:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at"`
}

// MemberRecord models the squad_members row.
type MemberRecord struct {
	bun.BaseModel `bun:"table:squad_members,alias:m"`

	ID                   uuid.UUID  `bun:"id,pk,type:uuid"`
	SquadID              uuid.UUID  `bun:"squad_id,type:uuid"`
	ProfileID            uuid.UUID  `bun:"profile_id,type:uuid"`
	Role                 string     `bun:"role"`
	JoinedAt             time.Time  `bun:"joined_at"`
	TotalActivities      int        `bun:"total_activities"`
	TotalDistanceKm      float64    `bun:"total_distance_km"`
	LastActivityAt       *time.Time `bun:"last_activity_at"`
	NotificationsEnabled bool       `bun:"notifications_enabled"`
}

func fromDomain(squad types.Squad) *Record {
	return &Record{
		ID:              squad.ID,
		Name:            squad.Name,
		Description:     squad.Description,
		InviteCode:      squad.InviteCode,
		Visibility:      squad.Visibility,
		MaxMembers:      squad.MaxMembers,
		MemberCount:     squad.MemberCount,
		AvatarURL:       squad.AvatarURL,
		ThemeColor:      squad.ThemeColor,
		ExpertNames:     cloneNames(squad.ExpertNames),
		TotalDistanceKm: squad.TotalDistanceKm,
		TotalActivities: squad.TotalActivities,
		CreatedAt:       squad.CreatedAt,
		UpdatedAt:       squad.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.Squad {
	if rec == nil {
		return nil
	}
	return &types.Squad{
		ID:              rec.ID,
		Name:            rec.Name,
		Description:     rec.Description,
		InviteCode:      rec.InviteCode,
		Visibility:      rec.Visibility,
		MaxMembers:      rec.MaxMembers,
		MemberCount:     rec.MemberCount,
		AvatarURL:       rec.AvatarURL,
		ThemeColor:      rec.ThemeColor,
		ExpertNames:     cloneNames(rec.ExpertNames),
		TotalDistanceKm: rec.TotalDistanceKm,
		TotalActivities: rec.TotalActivities,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

func memberFromDomain(member types.SquadMember) *MemberRecord {
	return &MemberRecord{
		ID:                   member.ID,
		SquadID:              member.SquadID,
		ProfileID:            member.ProfileID,
		Role:                 string(member.Role),
		JoinedAt:             member.JoinedAt,
		TotalActivities:      member.TotalActivities,
		TotalDistanceKm:      member.TotalDistanceKm,
		LastActivityAt:       member.LastActivityAt,
		NotificationsEnabled: member.NotificationsEnabled,
	}
}

func memberToDomain(rec *MemberRecord) *types.SquadMember {
	if rec == nil {
		return nil
	}
	return &types.SquadMember{
		ID:                   rec.ID,
		SquadID:              rec.SquadID,
		ProfileID:            rec.ProfileID,
		Role:                 types.SquadRole(rec.Role),
		JoinedAt:             rec.JoinedAt,
		TotalActivities:      rec.TotalActivities,
		TotalDistanceKm:      rec.TotalDistanceKm,
		LastActivityAt:       rec.LastActivityAt,
		NotificationsEnabled: rec.NotificationsEnabled,
	}
}

func cloneNames(origin map[string]string) map[string]string {
	if len(origin) == 0 {
		return nil
	}
	out := make(map[string]string, len(origin))
	for k, v := range origin {
		out[k] = v
	}
	return out
}
