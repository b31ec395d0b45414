package scope

import (
	"context"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/google/uuid"
)

const textCodeNotMember = "SQUAD_MEMBERSHIP_REQUIRED"

// Guard resolves a caller's membership in a squad before squad-scoped
// commands and queries touch any squad data.
type Guard interface {
	RequireMember(ctx context.Context, squadID, profileID uuid.UUID, denied string) (*types.SquadMember, error)
}

type guard struct {
	squads types.SquadRepository
}

// NewGuard builds a Guard backed by the squad repository.
func NewGuard(squads types.SquadRepository) Guard {
	return guard{squads: squads}
}

// RequireMember returns the caller's membership or a 403 carrying denied.
func (g guard) RequireMember(ctx context.Context, squadID, profileID uuid.UUID, denied string) (*types.SquadMember, error) {
	if g.squads == nil {
		return nil, types.ErrMissingSquadRepository
	}
	member, err := g.squads.Membership(ctx, squadID, profileID)
	if err != nil {
		return nil, apperr.Internal(err, "scope: load membership")
	}
	if member == nil {
		return nil, apperr.Forbidden(denied, textCodeNotMember)
	}
	return member, nil
}
