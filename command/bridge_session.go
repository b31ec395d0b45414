package command

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-masker"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/authctx"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
)

// SessionIssuer mints the session token pair for a subject.
type SessionIssuer interface {
	Issue(subject string, profileID uuid.UUID) (authctx.Session, error)
}

// BridgeSessionInput carries the identity provider sign-in payload.
type BridgeSessionInput struct {
	IDToken     string
	UID         string
	Email       string
	DisplayName string
	Result      *BridgeSessionResult
}

// BridgeSessionResult is the issued session and the caller's profile.
type BridgeSessionResult struct {
	Session authctx.Session
	Profile types.Profile
	Email   string
	Created bool
}

// Type implements gocommand.Message.
func (BridgeSessionInput) Type() string {
	return "command.session.bridge"
}

// Validate implements gocommand.Message.
func (input BridgeSessionInput) Validate() error {
	if strings.TrimSpace(input.IDToken) == "" || strings.TrimSpace(input.UID) == "" {
		return invalid(msgBridgeFields, "BRIDGE_FIELDS_REQUIRED")
	}
	return nil
}

// BridgeSessionCommand exchanges a verified identity provider token for a
// squadup session, creating the profile on first sign-in.
type BridgeSessionCommand struct {
	profiles types.ProfileRepository
	verifier types.IdentityVerifier
	issuer   SessionIssuer
	clock    types.Clock
	idGen    types.IDGenerator
	logger   types.Logger
	mask     *masker.Masker
}

// BridgeSessionCommandConfig wires dependencies for the bridge command.
type BridgeSessionCommandConfig struct {
	Profiles types.ProfileRepository
	Verifier types.IdentityVerifier
	Issuer   SessionIssuer
	Clock    types.Clock
	IDGen    types.IDGenerator
	Logger   types.Logger
	Masker   *masker.Masker
}

// NewBridgeSessionCommand constructs the bridge handler.
func NewBridgeSessionCommand(cfg BridgeSessionCommandConfig) *BridgeSessionCommand {
	mask := cfg.Masker
	if mask == nil {
		mask = DefaultMasker()
	}
	return &BridgeSessionCommand{
		profiles: cfg.Profiles,
		verifier: cfg.Verifier,
		issuer:   cfg.Issuer,
		clock:    safeClock(cfg.Clock),
		idGen:    safeIDGen(cfg.IDGen),
		logger:   safeLogger(cfg.Logger),
		mask:     mask,
	}
}

var _ gocommand.Commander[BridgeSessionInput] = (*BridgeSessionCommand)(nil)

// Execute verifies the ID token, upserts the profile and issues a session.
func (c *BridgeSessionCommand) Execute(ctx context.Context, input BridgeSessionInput) error {
	switch {
	case c.profiles == nil:
		return types.ErrMissingProfileRepository
	case c.verifier == nil:
		return ErrMissingVerifier
	case c.issuer == nil:
		return ErrMissingIssuer
	}
	if err := input.Validate(); err != nil {
		return err
	}
	uid := strings.TrimSpace(input.UID)

	identity, err := c.verifier.Verify(ctx, strings.TrimSpace(input.IDToken))
	if err != nil {
		c.logger.Error("bridge id token rejected", err, maskedFields(c.mask, map[string]any{
			"uid":      uid,
			"id_token": input.IDToken,
		})...)
		return apperr.Unauthorized(msgBridgeTokenInvalid, "ID_TOKEN_INVALID")
	}
	if identity.UID != uid {
		return apperr.Unauthorized(msgBridgeUIDMismatch, "ID_TOKEN_SUBJECT_MISMATCH")
	}

	email := strings.TrimSpace(identity.Email)
	if email == "" {
		email = strings.TrimSpace(input.Email)
	}

	profile, created, err := c.upsertProfile(ctx, uid, email, input.DisplayName, identity.Name)
	if err != nil {
		return err
	}

	session, err := c.issuer.Issue(uid, profile.ID)
	if err != nil {
		return apperr.Internal(err, "bridge: issue session")
	}

	c.logger.Info("bridge session issued", maskedFields(c.mask, map[string]any{
		"uid":        uid,
		"email":      email,
		"profile_id": profile.ID.String(),
		"created":    created,
	})...)

	if input.Result != nil {
		*input.Result = BridgeSessionResult{
			Session: session,
			Profile: *profile,
			Email:   email,
			Created: created,
		}
	}
	return nil
}

func (c *BridgeSessionCommand) upsertProfile(ctx context.Context, uid, email, displayName, claimedName string) (*types.Profile, bool, error) {
	existing, err := c.profiles.GetByFirebaseUID(ctx, uid)
	if err != nil {
		return nil, false, apperr.Internal(err, "bridge: load profile")
	}
	at := now(c.clock)
	if existing != nil {
		if err := c.profiles.TouchLastSeen(ctx, existing.ID, at); err != nil {
			return nil, false, apperr.Internal(err, "bridge: touch profile")
		}
		existing.LastSeenAt = &at
		return existing, false, nil
	}

	created, err := c.profiles.Create(ctx, types.Profile{
		ID:          c.idGen.UUID(),
		UserID:      uid,
		FirebaseUID: uid,
		Email:       email,
		DisplayName: bridgeDisplayName(displayName, claimedName, email),
		CreatedAt:   at,
		UpdatedAt:   at,
	})
	if err != nil {
		// A concurrent first sign-in may have inserted the row.
		if raced, lookupErr := c.profiles.GetByFirebaseUID(ctx, uid); lookupErr == nil && raced != nil {
			return raced, false, nil
		}
		return nil, false, apperr.Internal(err, "bridge: create profile")
	}
	return created, true, nil
}

func bridgeDisplayName(displayName, claimedName, email string) string {
	if name := strings.TrimSpace(displayName); name != "" {
		return name
	}
	if name := strings.TrimSpace(claimedName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
