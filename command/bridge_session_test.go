package command

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dylanswipeyourbite/squadupv2/pkg/authctx"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identity types.ExternalIdentity
	err      error
	tokens   []string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (types.ExternalIdentity, error) {
	s.tokens = append(s.tokens, token)
	return s.identity, s.err
}

func newBridge(t *testing.T, f fixture, verifier types.IdentityVerifier) (*BridgeSessionCommand, *authctx.Authenticator) {
	t.Helper()
	auth, err := authctx.NewAuthenticator(authctx.Config{SigningKey: []byte("test-signing-key"), Clock: f.clock})
	require.NoError(t, err)
	return NewBridgeSessionCommand(BridgeSessionCommandConfig{
		Profiles: f.profiles,
		Verifier: verifier,
		Issuer:   auth,
		Clock:    f.clock,
	}), auth
}

func TestBridgeSessionCommand_CreatesProfileOnFirstSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	verifier := &stubVerifier{identity: types.ExternalIdentity{UID: "fb-1", Email: "jess.runner@example.com"}}
	cmd, auth := newBridge(t, f, verifier)

	var result BridgeSessionResult
	err := cmd.Execute(ctx, BridgeSessionInput{
		IDToken: "id-token",
		UID:     "fb-1",
		Email:   "ignored@example.com",
		Result:  &result,
	})
	require.NoError(t, err)
	require.True(t, result.Created)
	require.Equal(t, []string{"id-token"}, verifier.tokens)
	require.Equal(t, "jess.runner@example.com", result.Email)
	require.Equal(t, "jess.runner", result.Profile.DisplayName)
	require.Equal(t, "fb-1", result.Profile.UserID)
	require.Equal(t, "bearer", result.Session.TokenType)
	require.Equal(t, 604800, result.Session.ExpiresIn)

	identity, err := auth.UserForToken(result.Session.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "fb-1", identity.Subject)
	require.Equal(t, result.Profile.ID, identity.ProfileID)

	stored, err := f.profiles.GetByFirebaseUID(ctx, "fb-1")
	require.NoError(t, err)
	require.Equal(t, result.Profile.ID, stored.ID)
}

func TestBridgeSessionCommand_TouchesExistingProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	verifier := &stubVerifier{identity: types.ExternalIdentity{UID: "fb-2"}}
	cmd, _ := newBridge(t, f, verifier)

	var first BridgeSessionResult
	require.NoError(t, cmd.Execute(ctx, BridgeSessionInput{IDToken: "t", UID: "fb-2", DisplayName: "Kai", Result: &first}))
	require.Equal(t, "Kai", first.Profile.DisplayName)

	var second BridgeSessionResult
	require.NoError(t, cmd.Execute(ctx, BridgeSessionInput{IDToken: "t", UID: "fb-2", DisplayName: "Someone Else", Result: &second}))
	require.False(t, second.Created)
	require.Equal(t, first.Profile.ID, second.Profile.ID)
	require.Equal(t, "Kai", second.Profile.DisplayName)

	stored, err := f.profiles.GetByID(ctx, first.Profile.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastSeenAt)
	require.True(t, baseTime.Equal(*stored.LastSeenAt))
}

func TestBridgeSessionCommand_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cmd, _ := newBridge(t, f, &stubVerifier{identity: types.ExternalIdentity{UID: "fb-3"}})
	requireStatus(t, cmd.Execute(ctx, BridgeSessionInput{UID: "fb-3"}), http.StatusBadRequest, "idToken and uid are required")
	requireStatus(t, cmd.Execute(ctx, BridgeSessionInput{IDToken: "t", UID: "someone-else"}), http.StatusUnauthorized, "ID token does not match uid")

	failing, _ := newBridge(t, f, &stubVerifier{err: errors.New("expired")})
	requireStatus(t, failing.Execute(ctx, BridgeSessionInput{IDToken: "t", UID: "fb-3"}), http.StatusUnauthorized, "Invalid ID token")

	missing, err := f.profiles.GetByFirebaseUID(ctx, "fb-3")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestBridgeSessionCommand_RequiresDependencies(t *testing.T) {
	f := newFixture(t)
	cmd := NewBridgeSessionCommand(BridgeSessionCommandConfig{Profiles: f.profiles})
	err := cmd.Execute(context.Background(), BridgeSessionInput{IDToken: "t", UID: "u"})
	require.ErrorIs(t, err, ErrMissingVerifier)
}

func TestMaskedFields(t *testing.T) {
	fields := maskedFields(DefaultMasker(), map[string]any{
		"uid":      "fb-9",
		"id_token": "eyJhbGciOiJSUzI1NiJ9.payload.signature",
	})
	require.Len(t, fields, 4)
	require.Equal(t, "id_token", fields[0])
	require.NotEqual(t, "eyJhbGciOiJSUzI1NiJ9.payload.signature", fields[1])
	require.Equal(t, "uid", fields[2])
	require.Equal(t, "fb-9", fields[3])
}
