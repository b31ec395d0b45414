package query

import (
	"errors"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

// ErrActorRequired indicates the caller's profile was not supplied.
var ErrActorRequired = errors.New("squadup: actor profile required")

const (
	msgSquadIDRequired   = "Squad ID is required"
	msgMessageIDRequired = "Message ID is required"
	msgSquadNotMember    = "You are not a member of this squad"
	msgFeedNotMember     = "Not a member of this squad"
	msgMessageForbidden  = "Not authorized to view this message"
	msgSquadNotFound     = "Squad not found"
	msgMessageNotFound   = "Message not found"

	// statsWindow is the look-back used for weekly distance and active members.
	statsWindow = 7 * 24 * time.Hour
)

func safeScopeGuard(g scope.Guard, squads types.SquadRepository) scope.Guard {
	if g != nil {
		return g
	}
	return scope.NewGuard(squads)
}

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func squadIDRequired() error {
	return apperr.Validation(msgSquadIDRequired, "SQUAD_ID_REQUIRED")
}

func squadNotFound() error {
	return apperr.NotFound(msgSquadNotFound, "SQUAD_NOT_FOUND")
}
