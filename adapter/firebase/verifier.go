// Package firebase verifies Firebase Authentication ID tokens.
package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultJWKSURL serves the public keys Firebase signs ID tokens with.
const DefaultJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"

const issuerPrefix = "https://securetoken.google.com/"

// Config configures the verifier.
type Config struct {
	ProjectID       string
	JWKSURL         string
	RefreshInterval time.Duration
	// Keyfunc overrides the JWKS lookup, mostly for tests.
	Keyfunc jwt.Keyfunc
	Clock   types.Clock
}

// Claims is the subset of Firebase ID token claims the bridge reads.
type Claims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
}

// Verifier checks RS256 ID tokens against the project's issuer and audience.
type Verifier struct {
	projectID string
	keyfunc   jwt.Keyfunc
	jwks      *keyfunc.JWKS
	clock     types.Clock
}

// NewVerifier builds a verifier. Without a Keyfunc override it fetches the
// Firebase JWKS and refreshes it in the background until Close is called.
func NewVerifier(ctx context.Context, cfg Config) (*Verifier, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firebase: project id required")
	}
	v := &Verifier{
		projectID: cfg.ProjectID,
		keyfunc:   cfg.Keyfunc,
		clock:     cfg.Clock,
	}
	if v.clock == nil {
		v.clock = types.SystemClock{}
	}
	if v.keyfunc == nil {
		url := cfg.JWKSURL
		if url == "" {
			url = DefaultJWKSURL
		}
		interval := cfg.RefreshInterval
		if interval <= 0 {
			interval = time.Hour
		}
		jwks, err := keyfunc.Get(url, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   interval,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("firebase: load jwks: %w", err)
		}
		v.jwks = jwks
		v.keyfunc = jwks.Keyfunc
	}
	return v, nil
}

var _ types.IdentityVerifier = (*Verifier)(nil)

// Verify parses the ID token and returns the identity it asserts.
func (v *Verifier) Verify(_ context.Context, idToken string) (types.ExternalIdentity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(idToken, &claims, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.clock.Now),
	)
	if err != nil {
		return types.ExternalIdentity{}, fmt.Errorf("firebase: verify id token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return types.ExternalIdentity{}, errors.New("firebase: id token has no subject")
	}
	return types.ExternalIdentity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

// Close stops the background JWKS refresh.
func (v *Verifier) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}
