package types

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SquadRole identifies a member's standing inside a squad.
type SquadRole string

const (
	SquadRoleCaptain SquadRole = "captain"
	SquadRoleMember  SquadRole = "member"
)

// SquadVisibilityPrivate is the only visibility assigned at creation.
const SquadVisibilityPrivate = "private"

// MessageType enumerates the stored message kinds.
type MessageType string

const (
	MessageTypeText            MessageType = "text"
	MessageTypeActivityCheckin MessageType = "activity_checkin"
	MessageTypeImage           MessageType = "image"
	MessageTypeVoice           MessageType = "voice"
	MessageTypeVideo           MessageType = "video"
	MessageTypePoll            MessageType = "poll"
)

// activityCheckinAlias is the camelCase spelling clients send and receive.
const activityCheckinAlias = "activityCheckin"

var messageTypes = map[MessageType]struct{}{
	MessageTypeText:            {},
	MessageTypeActivityCheckin: {},
	MessageTypeImage:           {},
	MessageTypeVoice:           {},
	MessageTypeVideo:           {},
	MessageTypePoll:            {},
}

// ParseMessageType normalizes the client spelling into the stored form and
// reports whether the result is a known type.
func ParseMessageType(raw string) (MessageType, bool) {
	if raw == activityCheckinAlias {
		return MessageTypeActivityCheckin, true
	}
	kind := MessageType(raw)
	_, ok := messageTypes[kind]
	return kind, ok
}

// Wire renders the type the way clients expect it.
func (t MessageType) Wire() string {
	if t == MessageTypeActivityCheckin {
		return activityCheckinAlias
	}
	return string(t)
}

// Profile is the application-level user record.
type Profile struct {
	ID             uuid.UUID
	UserID         string
	FirebaseUID    string
	Email          string
	DisplayName    string
	AvatarURL      string
	OnboardingData map[string]any
	LastSeenAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProfileSummary is the author block embedded in messages and member lists.
type ProfileSummary struct {
	ID          uuid.UUID
	DisplayName string
	AvatarURL   string
}

// Squad mirrors a squads row.
type Squad struct {
	ID              uuid.UUID
	Name            string
	Description     *string
	InviteCode      string
	Visibility      string
	MaxMembers      *int
	MemberCount     int
	AvatarURL       *string
	ThemeColor      *string
	ExpertNames     map[string]string
	TotalDistanceKm float64
	TotalActivities int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DefaultExpertNames returns the persona labels assigned to new squads.
func DefaultExpertNames() map[string]string {
	return map[string]string{
		"sage": "Sage",
		"alex": "Alex",
		"nova": "Nova",
		"aria": "Aria",
		"pace": "Pace",
		"koa":  "Koa",
	}
}

// SquadMember mirrors a squad_members row, optionally with the member profile.
type SquadMember struct {
	ID                   uuid.UUID
	SquadID              uuid.UUID
	ProfileID            uuid.UUID
	Role                 SquadRole
	JoinedAt             time.Time
	TotalActivities      int
	TotalDistanceKm      float64
	LastActivityAt       *time.Time
	NotificationsEnabled bool
	Profile              *ProfileSummary
}

// IsCaptain reports whether the member leads the squad.
func (m SquadMember) IsCaptain() bool {
	return m.Role == SquadRoleCaptain
}

// SquadStats aggregates the counters shown on the squad dashboard.
type SquadStats struct {
	TotalDistance   int
	TotalActivities int
	WeeklyDistance  int
	ActiveMembers   int
}

// Message is a chat entry with its nested author, reply and receipt data.
type Message struct {
	ID               uuid.UUID
	SquadID          uuid.UUID
	ProfileID        uuid.UUID
	Type             MessageType
	Content          *string
	Metadata         map[string]any
	ReplyToID        *uuid.UUID
	EditedAt         *time.Time
	DeletedAt        *time.Time
	CreatedAt        time.Time
	Author           *ProfileSummary
	ReplyTo          *MessageReply
	Reactions        []Reaction
	ReadByProfileIDs []uuid.UUID
}

// MessageReply is the trimmed view of the message being replied to.
type MessageReply struct {
	ID      uuid.UUID
	Content *string
	Type    MessageType
	Author  *ProfileSummary
}

// Reaction is an emoji attached to a message by a profile.
type Reaction struct {
	ID        uuid.UUID
	MessageID uuid.UUID
	ProfileID uuid.UUID
	Emoji     string
	CreatedAt time.Time
	Author    *ProfileSummary
}

// MessageDraft captures everything needed to persist a new message.
type MessageDraft struct {
	ID        uuid.UUID
	SquadID   uuid.UUID
	ProfileID uuid.UUID
	Type      MessageType
	Content   *string
	Metadata  map[string]any
	ReplyToID *uuid.UUID
	CreatedAt time.Time
	Checkin   *Checkin
}

// MessageFeedFilter selects a page of squad messages.
type MessageFeedFilter struct {
	SquadID uuid.UUID
	Limit   int
	Before  *time.Time
}

// Activity is a logged workout.
type Activity struct {
	ID              uuid.UUID
	ProfileID       uuid.UUID
	ActivityType    string
	DistanceKm      float64
	DurationSeconds int
	StartedAt       time.Time
	CreatedAt       time.Time
}

// Checkin links an activity to a squad, usually through a chat message.
type Checkin struct {
	ID         uuid.UUID
	SquadID    uuid.UUID
	ActivityID uuid.UUID
	ProfileID  uuid.UUID
	MessageID  *uuid.UUID
	DistanceKm float64
	CreatedAt  time.Time
}

// ChatMessage is one turn of an onboarding transcript.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProfileRepository persists profiles.
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID string) (*Profile, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*Profile, error)
	Create(ctx context.Context, profile Profile) (*Profile, error)
	TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateOnboardingData(ctx context.Context, id uuid.UUID, data map[string]any, at time.Time) error
}

// SquadRepository persists squads and memberships.
type SquadRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Squad, error)
	GetByInviteCode(ctx context.Context, code string) (*Squad, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
	CreateWithCaptain(ctx context.Context, squad Squad, captain SquadMember) (*Squad, error)
	AddMember(ctx context.Context, member SquadMember) (*Squad, error)
	RemoveMember(ctx context.Context, squadID, profileID uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	Membership(ctx context.Context, squadID, profileID uuid.UUID) (*SquadMember, error)
	CountMembers(ctx context.Context, squadID uuid.UUID) (int, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]Squad, error)
	ListMembers(ctx context.Context, squadID uuid.UUID) ([]SquadMember, error)
	CountActiveMembers(ctx context.Context, squadID uuid.UUID, since time.Time) (int, error)
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Send(ctx context.Context, draft MessageDraft) (*Message, error)
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*Message, error)
	ListFeed(ctx context.Context, filter MessageFeedFilter) ([]Message, error)
}

// ActivityRepository persists logged workouts and squad check-ins.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) (*Activity, error)
	Get(ctx context.Context, id uuid.UUID) (*Activity, error)
	DistanceSince(ctx context.Context, squadID uuid.UUID, since time.Time) (float64, error)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

// TrimmedOrNil returns nil for blank strings and a trimmed copy otherwise.
func TrimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

var (
	// ErrSquadFull indicates a join hit the squad's member cap.
	ErrSquadFull = errors.New("squadup: squad is full")
	// ErrNotMember indicates the profile holds no membership in the squad.
	ErrNotMember = errors.New("squadup: not a squad member")
	// ErrAlreadyMember indicates the profile already belongs to the squad.
	ErrAlreadyMember = errors.New("squadup: already a squad member")
	// ErrSquadNotFound indicates the squad row is missing.
	ErrSquadNotFound = errors.New("squadup: squad not found")
	// ErrActivityNotFound indicates a check-in referenced an unknown activity.
	ErrActivityNotFound = errors.New("squadup: activity not found")
	// ErrActivityAlreadyCheckedIn indicates the activity already has a check-in in the squad.
	ErrActivityAlreadyCheckedIn = errors.New("squadup: activity already checked in")
	// ErrServiceNotReady indicates required service dependencies are missing.
	ErrServiceNotReady = errors.New("squadup: service not ready")
	// ErrMissingProfileRepository occurs when commands lack profile storage.
	ErrMissingProfileRepository = errors.New("squadup: missing profile repository")
	// ErrMissingSquadRepository occurs when commands lack squad storage.
	ErrMissingSquadRepository = errors.New("squadup: missing squad repository")
	// ErrMissingMessageRepository occurs when commands lack message storage.
	ErrMissingMessageRepository = errors.New("squadup: missing message repository")
	// ErrMissingActivityRepository occurs when commands lack activity storage.
	ErrMissingActivityRepository = errors.New("squadup: missing activity repository")
)

// ExternalIdentity is the verified payload of a third-party ID token.
type ExternalIdentity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityVerifier checks an identity provider's ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (ExternalIdentity, error)
}
