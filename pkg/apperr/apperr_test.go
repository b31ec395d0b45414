package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", Validation("Squad ID is required", "SQUAD_ID_REQUIRED"), http.StatusBadRequest, "Squad ID is required"},
		{"auth", Unauthorized("Invalid token", "AUTH_TOKEN_INVALID"), http.StatusUnauthorized, "Invalid token"},
		{"authz", Forbidden("Not a member of this squad", "NOT_MEMBER"), http.StatusForbidden, "Not a member of this squad"},
		{"not found", NotFound("Squad not found", "SQUAD_NOT_FOUND"), http.StatusNotFound, "Squad not found"},
		{"upstream", Upstream(errors.New("boom"), "OpenAI API error: boom"), http.StatusInternalServerError, "OpenAI API error: boom"},
		{"internal", Internal(errors.New("pq: relation missing"), "load squad"), http.StatusInternalServerError, InternalMessage},
		{"plain", errors.New("raw"), http.StatusInternalServerError, InternalMessage},
		{"timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, TimeoutMessage},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := Status(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.message, message)
		})
	}
}

func TestInternalKeepsRichErrors(t *testing.T) {
	original := Forbidden("Only the captain can delete the squad", "CAPTAIN_ONLY")
	require.Same(t, original, Internal(original, "delete squad"))
	require.Nil(t, Internal(nil, "noop"))
}

func TestIsUniqueViolation(t *testing.T) {
	require.False(t, IsUniqueViolation(nil))
	require.False(t, IsUniqueViolation(errors.New("no such table: squads")))
	require.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	require.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	require.True(t, IsUniqueViolation(fmt.Errorf("insert: %w",
		errors.New("UNIQUE constraint failed: squad_members.squad_id, squad_members.profile_id"))))
}
