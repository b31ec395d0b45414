package query

import (
	"context"
	"math"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/scope"
)

// SquadInput addresses a single squad on behalf of the caller.
type SquadInput struct {
	ActorID uuid.UUID
	SquadID uuid.UUID
}

// Type implements gocommand.Message.
func (SquadInput) Type() string {
	return "query.squad"
}

// Validate implements gocommand.Message.
func (input SquadInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case input.SquadID == uuid.Nil:
		return squadIDRequired()
	}
	return nil
}

// SquadGetQuery returns a squad the caller belongs to.
type SquadGetQuery struct {
	squads types.SquadRepository
	guard  scope.Guard
}

// NewSquadGetQuery constructs the squad lookup.
func NewSquadGetQuery(squads types.SquadRepository, guard scope.Guard) *SquadGetQuery {
	return &SquadGetQuery{squads: squads, guard: safeScopeGuard(guard, squads)}
}

var _ gocommand.Querier[SquadInput, *types.Squad] = (*SquadGetQuery)(nil)

// Query returns the squad or a 404 when it no longer exists.
func (q *SquadGetQuery) Query(ctx context.Context, input SquadInput) (*types.Squad, error) {
	if q.squads == nil {
		return nil, types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := q.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgSquadNotMember); err != nil {
		return nil, err
	}
	squad, err := q.squads.GetByID(ctx, input.SquadID)
	if err != nil {
		return nil, apperr.Internal(err, "squad get")
	}
	if squad == nil {
		return nil, squadNotFound()
	}
	return squad, nil
}

// SquadListInput scopes the caller's squad list.
type SquadListInput struct {
	ActorID uuid.UUID
}

// Type implements gocommand.Message.
func (SquadListInput) Type() string {
	return "query.squad.list"
}

// Validate implements gocommand.Message.
func (input SquadListInput) Validate() error {
	if input.ActorID == uuid.Nil {
		return ErrActorRequired
	}
	return nil
}

// SquadListQuery returns every squad the caller belongs to.
type SquadListQuery struct {
	squads types.SquadRepository
}

// NewSquadListQuery constructs the list query.
func NewSquadListQuery(squads types.SquadRepository) *SquadListQuery {
	return &SquadListQuery{squads: squads}
}

var _ gocommand.Querier[SquadListInput, []types.Squad] = (*SquadListQuery)(nil)

// Query lists squads in join order.
func (q *SquadListQuery) Query(ctx context.Context, input SquadListInput) ([]types.Squad, error) {
	if q.squads == nil {
		return nil, types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	squads, err := q.squads.ListForProfile(ctx, input.ActorID)
	if err != nil {
		return nil, apperr.Internal(err, "squad list")
	}
	if squads == nil {
		squads = []types.Squad{}
	}
	return squads, nil
}

// SquadMembersQuery returns the squad roster, captains first.
type SquadMembersQuery struct {
	squads types.SquadRepository
	guard  scope.Guard
}

// NewSquadMembersQuery constructs the roster query.
func NewSquadMembersQuery(squads types.SquadRepository, guard scope.Guard) *SquadMembersQuery {
	return &SquadMembersQuery{squads: squads, guard: safeScopeGuard(guard, squads)}
}

var _ gocommand.Querier[SquadInput, []types.SquadMember] = (*SquadMembersQuery)(nil)

// Query lists members ordered by role then join time.
func (q *SquadMembersQuery) Query(ctx context.Context, input SquadInput) ([]types.SquadMember, error) {
	if q.squads == nil {
		return nil, types.ErrMissingSquadRepository
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}
	if _, err := q.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgSquadNotMember); err != nil {
		return nil, err
	}
	members, err := q.squads.ListMembers(ctx, input.SquadID)
	if err != nil {
		return nil, apperr.Internal(err, "squad members")
	}
	if members == nil {
		members = []types.SquadMember{}
	}
	return members, nil
}

// SquadStatsQuery aggregates lifetime and weekly squad counters.
type SquadStatsQuery struct {
	squads     types.SquadRepository
	activities types.ActivityRepository
	guard      scope.Guard
	clock      types.Clock
}

// SquadStatsQueryConfig wires dependencies for the stats query.
type SquadStatsQueryConfig struct {
	Squads     types.SquadRepository
	Activities types.ActivityRepository
	ScopeGuard scope.Guard
	Clock      types.Clock
}

// NewSquadStatsQuery constructs the stats query.
func NewSquadStatsQuery(cfg SquadStatsQueryConfig) *SquadStatsQuery {
	return &SquadStatsQuery{
		squads:     cfg.Squads,
		activities: cfg.Activities,
		guard:      safeScopeGuard(cfg.ScopeGuard, cfg.Squads),
		clock:      safeClock(cfg.Clock),
	}
}

var _ gocommand.Querier[SquadInput, types.SquadStats] = (*SquadStatsQuery)(nil)

// Query returns rounded distances, the activity total and the number of
// members active within the last week.
func (q *SquadStatsQuery) Query(ctx context.Context, input SquadInput) (types.SquadStats, error) {
	if q.squads == nil {
		return types.SquadStats{}, types.ErrMissingSquadRepository
	}
	if q.activities == nil {
		return types.SquadStats{}, types.ErrMissingActivityRepository
	}
	if err := input.Validate(); err != nil {
		return types.SquadStats{}, err
	}
	if _, err := q.guard.RequireMember(ctx, input.SquadID, input.ActorID, msgSquadNotMember); err != nil {
		return types.SquadStats{}, err
	}

	squad, err := q.squads.GetByID(ctx, input.SquadID)
	if err != nil {
		return types.SquadStats{}, apperr.Internal(err, "squad stats: load squad")
	}
	if squad == nil {
		return types.SquadStats{}, squadNotFound()
	}

	since := q.clock.Now().Add(-statsWindow)
	weekly, err := q.activities.DistanceSince(ctx, input.SquadID, since)
	if err != nil {
		return types.SquadStats{}, apperr.Internal(err, "squad stats: weekly distance")
	}
	active, err := q.squads.CountActiveMembers(ctx, input.SquadID, since)
	if err != nil {
		return types.SquadStats{}, apperr.Internal(err, "squad stats: active members")
	}

	return types.SquadStats{
		TotalDistance:   int(math.Round(squad.TotalDistanceKm)),
		TotalActivities: squad.TotalActivities,
		WeeklyDistance:  int(math.Round(weekly)),
		ActiveMembers:   active,
	}, nil
}
