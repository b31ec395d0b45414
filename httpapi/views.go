package httpapi

import (
	"time"

	"github.com/dylanswipeyourbite/squadupv2/command"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
)

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	Success bool `json:"success"`
}

type squadView struct {
	ID              uuid.UUID         `json:"id"`
	Name            string            `json:"name"`
	Description     *string           `json:"description"`
	InviteCode      string            `json:"inviteCode"`
	Visibility      string            `json:"visibility"`
	MaxMembers      *int              `json:"maxMembers"`
	MemberCount     int               `json:"memberCount"`
	AvatarURL       *string           `json:"avatarUrl"`
	ThemeColor      *string           `json:"themeColor"`
	ExpertNames     map[string]string `json:"expertNames"`
	TotalDistanceKm float64           `json:"totalDistanceKm"`
	TotalActivities int               `json:"totalActivities"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

func newSquadView(s types.Squad) squadView {
	return squadView{
		ID:              s.ID,
		Name:            s.Name,
		Description:     s.Description,
		InviteCode:      s.InviteCode,
		Visibility:      s.Visibility,
		MaxMembers:      s.MaxMembers,
		MemberCount:     s.MemberCount,
		AvatarURL:       s.AvatarURL,
		ThemeColor:      s.ThemeColor,
		ExpertNames:     s.ExpertNames,
		TotalDistanceKm: s.TotalDistanceKm,
		TotalActivities: s.TotalActivities,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

type squadBody struct {
	Squad squadView `json:"squad"`
}

type squadListBody struct {
	Data []squadView `json:"data"`
}

type memberView struct {
	ID                   uuid.UUID  `json:"id"`
	SquadID              uuid.UUID  `json:"squadId"`
	ProfileID            uuid.UUID  `json:"profileId"`
	DisplayName          string     `json:"displayName"`
	AvatarURL            *string    `json:"avatarUrl"`
	Role                 string     `json:"role"`
	JoinedAt             time.Time  `json:"joinedAt"`
	TotalActivities      int        `json:"totalActivities"`
	TotalDistanceKm      float64    `json:"totalDistanceKm"`
	LastActivityAt       *time.Time `json:"lastActivityAt"`
	NotificationsEnabled bool       `json:"notificationsEnabled"`
}

func newMemberView(m types.SquadMember) memberView {
	view := memberView{
		ID:                   m.ID,
		SquadID:              m.SquadID,
		ProfileID:            m.ProfileID,
		Role:                 string(m.Role),
		JoinedAt:             m.JoinedAt,
		TotalActivities:      m.TotalActivities,
		TotalDistanceKm:      m.TotalDistanceKm,
		LastActivityAt:       m.LastActivityAt,
		NotificationsEnabled: m.NotificationsEnabled,
	}
	if m.Profile != nil {
		view.DisplayName = m.Profile.DisplayName
		view.AvatarURL = optionalString(m.Profile.AvatarURL)
	}
	return view
}

type memberListBody struct {
	Data []memberView `json:"data"`
}

type statsView struct {
	TotalDistance   int `json:"totalDistance"`
	TotalActivities int `json:"totalActivities"`
	WeeklyDistance  int `json:"weeklyDistance"`
	ActiveMembers   int `json:"activeMembers"`
}

type statsBody struct {
	Stats statsView `json:"stats"`
}

type activityView struct {
	ID              uuid.UUID `json:"id"`
	ProfileID       uuid.UUID `json:"profileId"`
	ActivityType    string    `json:"activityType"`
	DistanceKm      float64   `json:"distanceKm"`
	DurationSeconds int       `json:"durationSeconds"`
	StartedAt       time.Time `json:"startedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

type activityBody struct {
	Activity activityView `json:"activity"`
}

// Row shapes for send-message and fetch-messages use snake_case keys.

type authorRow struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
}

type reactionRow struct {
	ID        uuid.UUID `json:"id"`
	MessageID uuid.UUID `json:"message_id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

type messageRow struct {
	ID               uuid.UUID      `json:"id"`
	SquadID          uuid.UUID      `json:"squad_id"`
	ProfileID        uuid.UUID      `json:"profile_id"`
	Type             string         `json:"type"`
	Content          *string        `json:"content"`
	Metadata         map[string]any `json:"metadata"`
	ReplyToID        *uuid.UUID     `json:"reply_to_id"`
	EditedAt         *time.Time     `json:"edited_at"`
	DeletedAt        *time.Time     `json:"deleted_at"`
	CreatedAt        time.Time      `json:"created_at"`
	Author           *authorRow     `json:"author"`
	Reactions        []reactionRow  `json:"reactions"`
	ReadByProfileIDs []uuid.UUID    `json:"read_by_profile_ids"`
}

func newMessageRow(m types.Message) messageRow {
	row := messageRow{
		ID:               m.ID,
		SquadID:          m.SquadID,
		ProfileID:        m.ProfileID,
		Type:             m.Type.Wire(),
		Content:          m.Content,
		Metadata:         m.Metadata,
		ReplyToID:        m.ReplyToID,
		EditedAt:         m.EditedAt,
		DeletedAt:        m.DeletedAt,
		CreatedAt:        m.CreatedAt,
		Reactions:        make([]reactionRow, 0, len(m.Reactions)),
		ReadByProfileIDs: nonNilIDs(m.ReadByProfileIDs),
	}
	if m.Author != nil {
		row.Author = &authorRow{
			ID:          m.Author.ID,
			DisplayName: m.Author.DisplayName,
			AvatarURL:   optionalString(m.Author.AvatarURL),
		}
	}
	for _, r := range m.Reactions {
		row.Reactions = append(row.Reactions, reactionRow{
			ID:        r.ID,
			MessageID: r.MessageID,
			ProfileID: r.ProfileID,
			Emoji:     r.Emoji,
			CreatedAt: r.CreatedAt,
		})
	}
	return row
}

type messageRowBody struct {
	Message messageRow `json:"message"`
}

type messageRowListBody struct {
	Data []messageRow `json:"data"`
}

// fetch-message renders a camelCase detail view.

type authorView struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl"`
}

func newAuthorView(p *types.ProfileSummary) *authorView {
	if p == nil {
		return nil
	}
	return &authorView{ID: p.ID, DisplayName: p.DisplayName, AvatarURL: optionalString(p.AvatarURL)}
}

type replyView struct {
	ID      uuid.UUID   `json:"id"`
	Content *string     `json:"content"`
	Type    string      `json:"type"`
	Author  *authorView `json:"author"`
}

type reactionView struct {
	ID        uuid.UUID   `json:"id"`
	Emoji     string      `json:"emoji"`
	ProfileID uuid.UUID   `json:"profileId"`
	CreatedAt time.Time   `json:"createdAt"`
	Author    *authorView `json:"author"`
}

type messageDetailView struct {
	ID               uuid.UUID      `json:"id"`
	SquadID          uuid.UUID      `json:"squadId"`
	ProfileID        uuid.UUID      `json:"profileId"`
	Type             string         `json:"type"`
	Content          *string        `json:"content"`
	Metadata         map[string]any `json:"metadata"`
	ReplyToID        *uuid.UUID     `json:"replyToId"`
	EditedAt         *time.Time     `json:"editedAt"`
	DeletedAt        *time.Time     `json:"deletedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	Author           *authorView    `json:"author"`
	ReplyTo          *replyView     `json:"replyTo"`
	Reactions        []reactionView `json:"reactions"`
	ReadByProfileIDs []uuid.UUID    `json:"readByProfileIds"`
}

func newMessageDetailView(m types.Message) messageDetailView {
	view := messageDetailView{
		ID:               m.ID,
		SquadID:          m.SquadID,
		ProfileID:        m.ProfileID,
		Type:             m.Type.Wire(),
		Content:          m.Content,
		Metadata:         m.Metadata,
		ReplyToID:        m.ReplyToID,
		EditedAt:         m.EditedAt,
		DeletedAt:        m.DeletedAt,
		CreatedAt:        m.CreatedAt,
		Author:           newAuthorView(m.Author),
		Reactions:        make([]reactionView, 0, len(m.Reactions)),
		ReadByProfileIDs: nonNilIDs(m.ReadByProfileIDs),
	}
	if m.ReplyTo != nil {
		view.ReplyTo = &replyView{
			ID:      m.ReplyTo.ID,
			Content: m.ReplyTo.Content,
			Type:    m.ReplyTo.Type.Wire(),
			Author:  newAuthorView(m.ReplyTo.Author),
		}
	}
	for _, r := range m.Reactions {
		view.Reactions = append(view.Reactions, reactionView{
			ID:        r.ID,
			Emoji:     r.Emoji,
			ProfileID: r.ProfileID,
			CreatedAt: r.CreatedAt,
			Author:    newAuthorView(r.Author),
		})
	}
	return view
}

type messageDetailBody struct {
	Message messageDetailView `json:"message"`
}

// The bridge response mirrors the session shape Supabase clients expect.

type sessionAppMetadata struct {
	Provider string `json:"provider"`
}

type sessionUserMetadata struct {
	ProfileID   uuid.UUID `json:"profile_id"`
	DisplayName string    `json:"display_name"`
}

type sessionUser struct {
	ID           string              `json:"id"`
	Email        string              `json:"email"`
	AppMetadata  sessionAppMetadata  `json:"app_metadata"`
	UserMetadata sessionUserMetadata `json:"user_metadata"`
}

type sessionView struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    int         `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	User         sessionUser `json:"user"`
}

type sessionBody struct {
	Session   sessionView `json:"session"`
	ProfileID uuid.UUID   `json:"profile_id"`
}

func newSessionBody(res command.BridgeSessionResult) sessionBody {
	return sessionBody{
		Session: sessionView{
			AccessToken:  res.Session.AccessToken,
			TokenType:    res.Session.TokenType,
			ExpiresIn:    res.Session.ExpiresIn,
			RefreshToken: res.Session.RefreshToken,
			User: sessionUser{
				ID:          res.Profile.UserID,
				Email:       res.Email,
				AppMetadata: sessionAppMetadata{Provider: "firebase"},
				UserMetadata: sessionUserMetadata{
					ProfileID:   res.Profile.ID,
					DisplayName: res.Profile.DisplayName,
				},
			},
		},
		ProfileID: res.Profile.ID,
	}
}

type onboardingBody struct {
	Message       string         `json:"message"`
	ExtractedData map[string]any `json:"extractedData"`
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
