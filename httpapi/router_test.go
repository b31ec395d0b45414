package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		return fiber.New(fiber.Config{UnescapePath: true})
	})
	Register(srv.Router(), newTestAPI(t, nil))
	return srv.WrappedRouter()
}

func do(t *testing.T, app *fiber.App, method, path, auth string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	res, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.NoError(t, res.Body.Close())
	return res, raw
}

func TestRegister_PreflightOnEveryPath(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{FunctionsPrefix + "/squad-create", FunctionsPrefix + "/bridge-firebase-session", "/health"} {
		res, raw := do(t, app, http.MethodOptions, path, "", nil)
		require.Equal(t, http.StatusOK, res.StatusCode, path)
		require.Equal(t, "ok", string(raw), path)
		require.Equal(t, corsAllowOrigin, res.Header.Get("Access-Control-Allow-Origin"), path)
		require.Equal(t, corsAllowHeaders, res.Header.Get("Access-Control-Allow-Headers"), path)
	}
}

func TestRegister_FunctionsCarryCORSHeaders(t *testing.T) {
	app := newTestApp(t)

	res, raw := do(t, app, http.MethodPost, FunctionsPrefix+"/squad-list", "", []byte(`{}`))
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.Equal(t, corsAllowOrigin, res.Header.Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{"error":"No authorization header"}`, string(raw))

	res, raw = do(t, app, http.MethodPost, FunctionsPrefix+"/bridge-firebase-session", "", []byte(`{"idToken":"runner","uid":"runner"}`))
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, corsAllowOrigin, res.Header.Get("Access-Control-Allow-Origin"))
	var bridged struct {
		Session struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(raw, &bridged))
	require.NotEmpty(t, bridged.Session.AccessToken)

	res, raw = do(t, app, http.MethodPost, FunctionsPrefix+"/squad-create", "Bearer "+bridged.Session.AccessToken, []byte(`{"name":"Dawn Patrol"}`))
	require.Equal(t, http.StatusOK, res.StatusCode, string(raw))
	require.Equal(t, corsAllowOrigin, res.Header.Get("Access-Control-Allow-Origin"))
	require.Contains(t, res.Header.Get("Content-Type"), "application/json")

	res, _ = do(t, app, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, corsAllowOrigin, res.Header.Get("Access-Control-Allow-Origin"))
}
