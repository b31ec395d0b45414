package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/command"
	"github.com/dylanswipeyourbite/squadupv2/internal/dbtest"
	"github.com/dylanswipeyourbite/squadupv2/onboarding"
	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/authctx"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/service"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type tokenIsUID struct{}

func (tokenIsUID) Verify(_ context.Context, token string) (types.ExternalIdentity, error) {
	return types.ExternalIdentity{UID: token, Email: token + "@example.com"}, nil
}

func newTestAPI(t *testing.T, features command.StaticFeatureGate) *API {
	t.Helper()
	clock := fixedClock{now: time.Date(2024, 6, 3, 6, 30, 0, 0, time.UTC)}
	auth, err := authctx.NewAuthenticator(authctx.Config{SigningKey: []byte("httpapi-test"), Clock: clock})
	require.NoError(t, err)
	svc, err := service.NewWithDB(dbtest.NewDB(t), service.Config{
		Verifier: tokenIsUID{},
		Issuer:   auth,
		Completer: onboarding.CompleterFunc(func(context.Context, onboarding.CompletionRequest) (string, error) {
			return "Nice! How many days a week do you run?", nil
		}),
		FeatureGate: features,
		Clock:       clock,
	})
	require.NoError(t, err)
	api, err := New(Config{Service: svc, Authenticator: auth})
	require.NoError(t, err)
	return api
}

func body(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func asMap(t *testing.T, v any) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body(t, v), &out))
	return out
}

func signIn(t *testing.T, api *API, uid string) (string, string) {
	t.Helper()
	out, err := api.BridgeSession(context.Background(), Request{Body: body(t, map[string]string{
		"idToken":     uid,
		"uid":         uid,
		"displayName": uid,
	})})
	require.NoError(t, err)
	res := out.(sessionBody)
	return "Bearer " + res.Session.AccessToken, res.ProfileID.String()
}

func requireStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, gotMsg := apperr.Status(err)
	require.Equal(t, status, gotStatus)
	if msg != "" {
		require.Equal(t, msg, gotMsg)
	}
}

func TestBridgeSession_RendersSupabaseShape(t *testing.T) {
	api := newTestAPI(t, nil)
	out, err := api.BridgeSession(context.Background(), Request{Body: body(t, map[string]string{
		"idToken": "fb-uid-1",
		"uid":     "fb-uid-1",
	})})
	require.NoError(t, err)

	view := asMap(t, out)
	session := view["session"].(map[string]any)
	require.Equal(t, "bearer", session["token_type"])
	require.EqualValues(t, 604800, session["expires_in"])
	require.NotEmpty(t, session["access_token"])
	require.NotEmpty(t, session["refresh_token"])

	user := session["user"].(map[string]any)
	require.Equal(t, "fb-uid-1", user["id"])
	require.Equal(t, "fb-uid-1@example.com", user["email"])
	require.Equal(t, map[string]any{"provider": "firebase"}, user["app_metadata"])
	meta := user["user_metadata"].(map[string]any)
	require.Equal(t, view["profile_id"], meta["profile_id"])
	require.Equal(t, "fb-uid-1", meta["display_name"])

	_, err = api.BridgeSession(context.Background(), Request{Body: []byte(`{"uid":"x"}`)})
	requireStatus(t, err, http.StatusBadRequest, "idToken and uid are required")
}

func TestEndpoints_RequireBearerSession(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t, nil)

	_, err := api.SquadList(ctx, Request{})
	requireStatus(t, err, http.StatusUnauthorized, "No authorization header")

	_, err = api.SquadList(ctx, Request{Authorization: "Bearer not-a-jwt"})
	requireStatus(t, err, http.StatusUnauthorized, "Invalid token")
}

func TestEndpoints_RejectMalformedInput(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t, nil)
	token, _ := signIn(t, api, "runner")

	_, err := api.SquadGet(ctx, Request{Authorization: token, Body: []byte(`{"squadId":`)})
	requireStatus(t, err, http.StatusBadRequest, "Invalid JSON body")

	_, err = api.SquadGet(ctx, Request{Authorization: token, Body: []byte(`{"squadId":"nope"}`)})
	requireStatus(t, err, http.StatusBadRequest, "Invalid squadId")

	_, err = api.SquadGet(ctx, Request{Authorization: token})
	requireStatus(t, err, http.StatusBadRequest, "")

	_, err = api.SquadJoin(ctx, Request{Authorization: token, Body: []byte(`{"inviteCode":"SHORT"}`)})
	requireStatus(t, err, http.StatusBadRequest, "Invalid invite code")
}

func TestEndpoints_SquadChatFlow(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t, nil)
	captain, _ := signIn(t, api, "captain")
	runner, runnerID := signIn(t, api, "runner")
	stranger, _ := signIn(t, api, "stranger")

	out, err := api.SquadCreate(ctx, Request{Authorization: captain, Body: []byte(`{"name":"  Dawn Patrol  "}`)})
	require.NoError(t, err)
	created := asMap(t, out)["squad"].(map[string]any)
	require.Equal(t, "Dawn Patrol", created["name"])
	require.Equal(t, "private", created["visibility"])
	require.EqualValues(t, 1, created["memberCount"])
	squadID := created["id"].(string)

	out, err = api.SquadJoin(ctx, Request{Authorization: runner, Body: body(t, map[string]string{"inviteCode": created["inviteCode"].(string)})})
	require.NoError(t, err)
	require.EqualValues(t, 2, asMap(t, out)["squad"].(map[string]any)["memberCount"])

	out, err = api.ActivityLog(ctx, Request{Authorization: runner, Body: []byte(`{"activityType":"Run","distanceKm":12.4,"durationSeconds":3900}`)})
	require.NoError(t, err)
	activity := asMap(t, out)["activity"].(map[string]any)
	require.Equal(t, "run", activity["activityType"])
	require.Equal(t, runnerID, activity["profileId"])

	out, err = api.SendMessage(ctx, Request{Authorization: runner, Body: body(t, map[string]any{
		"squadId":  squadID,
		"type":     "activityCheckin",
		"content":  "Morning miles",
		"metadata": map[string]any{"activityId": activity["id"]},
	})})
	require.NoError(t, err)
	sent := asMap(t, out)["message"].(map[string]any)
	require.Equal(t, "activityCheckin", sent["type"])
	require.Equal(t, squadID, sent["squad_id"])
	require.Equal(t, []any{}, sent["reactions"])
	require.Equal(t, []any{}, sent["read_by_profile_ids"])
	require.Equal(t, "runner", sent["author"].(map[string]any)["display_name"])

	out, err = api.SendMessage(ctx, Request{Authorization: captain, Body: body(t, map[string]any{
		"squadId":   squadID,
		"type":      "text",
		"content":   "Great work",
		"replyToId": sent["id"],
	})})
	require.NoError(t, err)
	reply := asMap(t, out)["message"].(map[string]any)

	out, err = api.FetchMessage(ctx, Request{Authorization: runner, Body: body(t, map[string]any{"messageId": reply["id"]})})
	require.NoError(t, err)
	detail := asMap(t, out)["message"].(map[string]any)
	require.Equal(t, squadID, detail["squadId"])
	replyTo := detail["replyTo"].(map[string]any)
	require.Equal(t, "activityCheckin", replyTo["type"])
	require.Equal(t, "runner", replyTo["author"].(map[string]any)["displayName"])

	out, err = api.FetchMessages(ctx, Request{Authorization: captain, Body: body(t, map[string]any{"squadId": squadID})})
	require.NoError(t, err)
	feed := asMap(t, out)["data"].([]any)
	require.Len(t, feed, 2)
	require.ElementsMatch(t, []any{sent["id"], reply["id"]}, []any{feed[0].(map[string]any)["id"], feed[1].(map[string]any)["id"]})

	out, err = api.SquadStats(ctx, Request{Authorization: captain, Body: body(t, map[string]any{"squadId": squadID})})
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"totalDistance":   float64(12),
		"totalActivities": float64(1),
		"weeklyDistance":  float64(12),
		"activeMembers":   float64(1),
	}, asMap(t, out)["stats"])

	out, err = api.SquadMembers(ctx, Request{Authorization: runner, Body: body(t, map[string]any{"squadId": squadID})})
	require.NoError(t, err)
	members := asMap(t, out)["data"].([]any)
	require.Len(t, members, 2)
	require.Equal(t, "captain", members[0].(map[string]any)["role"])

	scoped := []Endpoint{api.SquadGet, api.SquadMembers, api.SquadStats, api.FetchMessages, api.SquadLeave, api.SquadDelete}
	for _, endpoint := range scoped {
		_, err := endpoint(ctx, Request{Authorization: stranger, Body: body(t, map[string]any{"squadId": squadID})})
		requireStatus(t, err, http.StatusForbidden, "")
	}
	_, err = api.FetchMessage(ctx, Request{Authorization: stranger, Body: body(t, map[string]any{"messageId": reply["id"]})})
	requireStatus(t, err, http.StatusForbidden, "Not authorized to view this message")

	_, err = api.SquadDelete(ctx, Request{Authorization: runner, Body: body(t, map[string]any{"squadId": squadID})})
	requireStatus(t, err, http.StatusForbidden, "Only the captain can delete the squad")

	out, err = api.SquadLeave(ctx, Request{Authorization: runner, Body: body(t, map[string]any{"squadId": squadID})})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"success": true}, asMap(t, out))

	out, err = api.SquadDelete(ctx, Request{Authorization: captain, Body: body(t, map[string]any{"squadId": squadID})})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"success": true}, asMap(t, out))

	out, err = api.SquadList(ctx, Request{Authorization: captain})
	require.NoError(t, err)
	require.Equal(t, []any{}, asMap(t, out)["data"])
}

func TestOnboardingAssistant_ReturnsReplyAndExtraction(t *testing.T) {
	ctx := context.Background()
	api := newTestAPI(t, nil)
	token, profileID := signIn(t, api, "runner")

	out, err := api.OnboardingAssistant(ctx, Request{Authorization: token, Body: body(t, map[string]any{
		"profileId": profileID,
		"messages": []map[string]string{
			{"role": "user", "content": "I am new to running and training for a half marathon, I run in the evening with a group"},
		},
	})})
	require.NoError(t, err)
	view := asMap(t, out)
	require.Equal(t, "Nice! How many days a week do you run?", view["message"])
	extracted := view["extractedData"].(map[string]any)
	require.Equal(t, "beginner", extracted["experienceLevel"])
	require.Equal(t, "evening", extracted["preferredTime"])
	require.Equal(t, "group", extracted["trainingStyle"])

	other, _ := signIn(t, api, "other")
	_, err = api.OnboardingAssistant(ctx, Request{Authorization: other, Body: body(t, map[string]any{"profileId": profileID})})
	requireStatus(t, err, http.StatusForbidden, "Cannot update another user's onboarding data")
}

func TestOnboardingAssistant_FeatureDisabled(t *testing.T) {
	api := newTestAPI(t, command.StaticFeatureGate{command.FeatureOnboardingAssistant: false})
	token, _ := signIn(t, api, "runner")

	_, err := api.OnboardingAssistant(context.Background(), Request{Authorization: token, Body: []byte(`{"messages":[]}`)})
	requireStatus(t, err, http.StatusForbidden, "Onboarding assistant is disabled")
}

func TestEndpoints_CoverEveryFunction(t *testing.T) {
	api := newTestAPI(t, nil)
	names := make([]string, 0)
	for name := range api.Endpoints() {
		names = append(names, name)
	}
	require.ElementsMatch(t, []string{
		"bridge-firebase-session",
		"send-message", "fetch-message", "fetch-messages",
		"squad-create", "squad-get", "squad-join", "squad-leave", "squad-delete",
		"squad-list", "squad-members", "squad-stats",
		"activity-log", "onboarding-assistant",
	}, names)
}
