package command

import (
	"context"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
)

// ActivityLogInput records a workout for the caller.
type ActivityLogInput struct {
	ActorID         uuid.UUID
	ActivityType    string
	DistanceKm      float64
	DurationSeconds int
	StartedAt       *time.Time
	Result          *types.Activity
}

// Type implements gocommand.Message.
func (ActivityLogInput) Type() string {
	return "command.activity.log"
}

// Validate implements gocommand.Message.
func (input ActivityLogInput) Validate() error {
	switch {
	case input.ActorID == uuid.Nil:
		return ErrActorRequired
	case strings.TrimSpace(input.ActivityType) == "":
		return invalid(msgActivityTypeMissing, "ACTIVITY_TYPE_REQUIRED")
	case input.DistanceKm < 0:
		return invalid(msgDistanceNegative, "ACTIVITY_DISTANCE_INVALID")
	case input.DurationSeconds < 0:
		return invalid(msgDurationNegative, "ACTIVITY_DURATION_INVALID")
	}
	return nil
}

// ActivityLogCommand persists workouts that check-in messages later reference.
type ActivityLogCommand struct {
	activities types.ActivityRepository
	clock      types.Clock
	idGen      types.IDGenerator
	logger     types.Logger
}

// ActivityLogCommandConfig wires dependencies for the log command.
type ActivityLogCommandConfig struct {
	Activities types.ActivityRepository
	Clock      types.Clock
	IDGen      types.IDGenerator
	Logger     types.Logger
}

// NewActivityLogCommand constructs the logging command handler.
func NewActivityLogCommand(cfg ActivityLogCommandConfig) *ActivityLogCommand {
	return &ActivityLogCommand{
		activities: cfg.Activities,
		clock:      safeClock(cfg.Clock),
		idGen:      safeIDGen(cfg.IDGen),
		logger:     safeLogger(cfg.Logger),
	}
}

var _ gocommand.Commander[ActivityLogInput] = (*ActivityLogCommand)(nil)

// Execute validates and persists the activity.
func (c *ActivityLogCommand) Execute(ctx context.Context, input ActivityLogInput) error {
	if c.activities == nil {
		return types.ErrMissingActivityRepository
	}
	if err := input.Validate(); err != nil {
		return err
	}

	at := now(c.clock)
	activity := types.Activity{
		ID:              c.idGen.UUID(),
		ProfileID:       input.ActorID,
		ActivityType:    strings.ToLower(strings.TrimSpace(input.ActivityType)),
		DistanceKm:      input.DistanceKm,
		DurationSeconds: input.DurationSeconds,
		StartedAt:       at,
		CreatedAt:       at,
	}
	if input.StartedAt != nil && !input.StartedAt.IsZero() {
		activity.StartedAt = input.StartedAt.UTC()
	}

	created, err := c.activities.Create(ctx, activity)
	if err != nil {
		return apperr.Internal(err, "activity log")
	}
	c.logger.Debug("activity logged", "activity_id", created.ID, "profile_id", input.ActorID)
	if input.Result != nil {
		*input.Result = *created
	}
	return nil
}
