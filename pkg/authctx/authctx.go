package authctx

import (
	"context"
	"strings"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

const (
	textCodeHeaderMissing  = "AUTH_HEADER_MISSING"
	textCodeTokenInvalid   = "AUTH_TOKEN_INVALID"
	textCodeProfileMissing = "PROFILE_NOT_FOUND"

	// TokenTypeAccess marks tokens accepted on the Authorization header.
	TokenTypeAccess = "access"
	// TokenTypeRefresh marks tokens only good for minting a new session.
	TokenTypeRefresh = "refresh"

	// DefaultAccessTTL matches the session lifetime handed to clients.
	DefaultAccessTTL = 7 * 24 * time.Hour
	// DefaultRefreshTTL bounds how long a refresh token stays usable.
	DefaultRefreshTTL = 30 * 24 * time.Hour
	// DefaultIssuer is stamped on session tokens when no issuer is configured.
	DefaultIssuer = "squadup"

	bearerScheme = "bearer"
)

// Claims is the payload of a squadup session token.
type Claims struct {
	jwt.RegisteredClaims
	ProfileID string `json:"pid,omitempty"`
	TokenType string `json:"typ"`
}

// Identity is the verified caller extracted from an access token.
type Identity struct {
	Subject   string
	ProfileID uuid.UUID
	ExpiresAt time.Time
}

// Caller pairs a verified identity with its resolved profile.
type Caller struct {
	Identity Identity
	Profile  types.Profile
}

// Session is the token pair returned by the auth bridge.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	ExpiresAt    time.Time
}

// Config configures session signing.
type Config struct {
	SigningKey []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Clock      types.Clock
}

// Authenticator issues and verifies HS256 session tokens.
type Authenticator struct {
	key        []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	clock      types.Clock
}

// NewAuthenticator validates the config and applies defaults.
func NewAuthenticator(cfg Config) (*Authenticator, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("authctx: signing key required", errors.CategoryInternal).
			WithCode(errors.CodeInternal)
	}
	a := &Authenticator{
		key:        append([]byte(nil), cfg.SigningKey...),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		clock:      cfg.Clock,
	}
	if a.issuer == "" {
		a.issuer = DefaultIssuer
	}
	if a.accessTTL <= 0 {
		a.accessTTL = DefaultAccessTTL
	}
	if a.refreshTTL <= 0 {
		a.refreshTTL = DefaultRefreshTTL
	}
	if a.clock == nil {
		a.clock = types.SystemClock{}
	}
	return a, nil
}

// Issue signs an access and refresh token for the subject.
func (a *Authenticator) Issue(subject string, profileID uuid.UUID) (Session, error) {
	now := a.clock.Now()
	access, err := a.sign(subject, profileID, TokenTypeAccess, now, a.accessTTL)
	if err != nil {
		return Session{}, err
	}
	refresh, err := a.sign(subject, profileID, TokenTypeRefresh, now, a.refreshTTL)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(a.accessTTL / time.Second),
		ExpiresAt:    now.Add(a.accessTTL),
	}, nil
}

func (a *Authenticator) sign(subject string, profileID uuid.UUID, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    a.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: kind,
	}
	if profileID != uuid.Nil {
		claims.ProfileID = profileID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "authctx: sign session token").
			WithCode(errors.CodeInternal)
	}
	return signed, nil
}

// UserForToken verifies an access token and returns the identity it carries.
func (a *Authenticator) UserForToken(token string) (Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, invalidToken(err)
	}
	if claims.TokenType != TokenTypeAccess || claims.Subject == "" {
		return Identity{}, invalidToken(nil)
	}
	identity := Identity{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.ProfileID != "" {
		if id, err := uuid.Parse(claims.ProfileID); err == nil {
			identity.ProfileID = id
		}
	}
	return identity, nil
}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it.
func (a *Authenticator) Authenticate(header string) (Identity, error) {
	token, err := BearerToken(header)
	if err != nil {
		return Identity{}, err
	}
	return a.UserForToken(token)
}

// ResolveCaller authenticates the header and loads the caller's profile by
// auth subject.
func (a *Authenticator) ResolveCaller(ctx context.Context, profiles types.ProfileRepository, header string) (*Caller, error) {
	identity, err := a.Authenticate(header)
	if err != nil {
		return nil, err
	}
	profile, err := profiles.GetByUserID(ctx, identity.Subject)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "authctx: load caller profile").
			WithCode(errors.CodeInternal)
	}
	if profile == nil {
		return nil, errors.New("User profile not found", errors.CategoryNotFound).
			WithCode(errors.CodeNotFound).
			WithTextCode(textCodeProfileMissing)
	}
	return &Caller{Identity: identity, Profile: *profile}, nil
}

// BearerToken strips the Bearer scheme from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("No authorization header", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeHeaderMissing)
	}
	if scheme, rest, found := strings.Cut(header, " "); strings.EqualFold(scheme, bearerScheme) {
		header = ""
		if found {
			header = strings.TrimSpace(rest)
		}
	}
	if header == "" {
		return "", invalidToken(nil)
	}
	return header, nil
}

func invalidToken(cause error) error {
	if cause != nil {
		return errors.Wrap(cause, errors.CategoryAuth, "Invalid token").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeTokenInvalid)
	}
	return errors.New("Invalid token", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeTokenInvalid)
}
