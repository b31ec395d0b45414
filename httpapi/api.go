// Package httpapi serves the SquadUp handlers as JSON functions on go-router.
// Every function accepts a POST body and, except for the auth bridge, a
// bearer session token.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/authctx"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/service"
)

// FunctionsPrefix is the mount point shared by every function route.
const FunctionsPrefix = "/functions/v1"

// DefaultTimeout bounds a request when no timeout is configured.
const DefaultTimeout = 30 * time.Second

const textCodeInvalidBody = "INVALID_BODY"

// Request is the transport-neutral input of an endpoint.
type Request struct {
	Authorization string
	Body          []byte
}

// Endpoint handles one function call and returns the JSON body to send.
type Endpoint func(ctx context.Context, req Request) (any, error)

// Config wires the API.
type Config struct {
	Service       *service.Service
	Authenticator *authctx.Authenticator
	Timeout       time.Duration
	Logger        types.Logger
}

// API binds the service facades to HTTP endpoints.
type API struct {
	svc     *service.Service
	auth    *authctx.Authenticator
	timeout time.Duration
	logger  types.Logger
}

// New validates the config and builds the API.
func New(cfg Config) (*API, error) {
	if cfg.Service == nil {
		return nil, types.ErrServiceNotReady
	}
	if cfg.Authenticator == nil {
		return nil, errors.New("httpapi: authenticator required")
	}
	api := &API{
		svc:     cfg.Service,
		auth:    cfg.Authenticator,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
	if api.timeout <= 0 {
		api.timeout = DefaultTimeout
	}
	if api.logger == nil {
		api.logger = types.NopLogger{}
	}
	return api, nil
}

// Endpoints maps each function name to its endpoint.
func (a *API) Endpoints() map[string]Endpoint {
	return map[string]Endpoint{
		"bridge-firebase-session": a.BridgeSession,
		"send-message":            a.SendMessage,
		"fetch-message":           a.FetchMessage,
		"fetch-messages":          a.FetchMessages,
		"squad-create":            a.SquadCreate,
		"squad-get":               a.SquadGet,
		"squad-join":              a.SquadJoin,
		"squad-leave":             a.SquadLeave,
		"squad-delete":            a.SquadDelete,
		"squad-list":              a.SquadList,
		"squad-members":           a.SquadMembers,
		"squad-stats":             a.SquadStats,
		"activity-log":            a.ActivityLog,
		"onboarding-assistant":    a.OnboardingAssistant,
	}
}

// Register mounts CORS handling, the health probe and every function route.
func Register[T any](r router.Router[T], api *API) {
	r.Use(CORS())
	r.Handle(router.HTTPMethod(http.MethodOptions), "/*", Preflight)
	r.Get("/health", api.Health)
	functions := r.Group(FunctionsPrefix)
	for name, endpoint := range api.Endpoints() {
		functions.Post("/"+name, api.Handler(endpoint))
	}
}

// Handler adapts an endpoint to go-router.
func (a *API) Handler(endpoint Endpoint) router.HandlerFunc {
	return func(c router.Context) error {
		ctx, cancel := context.WithTimeout(c.Context(), a.timeout)
		defer cancel()

		out, err := endpoint(ctx, Request{
			Authorization: c.Header("Authorization"),
			Body:          c.Body(),
		})
		if err != nil {
			return a.writeError(c, err)
		}
		return writeJSON(c, http.StatusOK, out)
	}
}

// Health reports whether the service has its dependencies wired.
func (a *API) Health(c router.Context) error {
	if err := a.svc.HealthCheck(c.Context()); err != nil {
		a.logger.Error("health check failed", err)
		return writeJSON(c, http.StatusServiceUnavailable, errorBody{Error: "Service unavailable"})
	}
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) writeError(c router.Context, err error) error {
	status, msg := apperr.Status(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("function failed", err, "status", status)
	}
	return writeJSON(c, status, errorBody{Error: msg})
}

func writeJSON(c router.Context, status int, body any) error {
	c.SetHeader("Content-Type", "application/json")
	return c.JSON(status, body)
}

func (a *API) caller(ctx context.Context, req Request) (*authctx.Caller, error) {
	return a.auth.ResolveCaller(ctx, a.svc.Profiles(), req.Authorization)
}

// decode reads a JSON body into dst. An empty body decodes as {}.
func decode(body []byte, dst any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("Invalid JSON body", textCodeInvalidBody)
	}
	return nil
}

// parseID leaves blank ids as uuid.Nil so the command reports the missing
// field with its own message.
func parseID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid "+field, "INVALID_ID")
	}
	return id, nil
}

func parseOptionalID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseID(*raw, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
