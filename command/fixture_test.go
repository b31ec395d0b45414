package command

import (
	"context"
	"testing"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/activity"
	"github.com/dylanswipeyourbite/squadupv2/internal/dbtest"
	"github.com/dylanswipeyourbite/squadupv2/message"
	"github.com/dylanswipeyourbite/squadupv2/pkg/apperr"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	"github.com/dylanswipeyourbite/squadupv2/squad"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var baseTime = time.Date(2024, 6, 3, 6, 30, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fixture struct {
	db         *bun.DB
	clock      fixedClock
	profiles   *profile.Repository
	squads     *squad.Repository
	messages   *message.Repository
	activities *activity.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.NewDB(t)
	clock := fixedClock{now: baseTime}

	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	squads, err := squad.NewRepository(squad.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	messages, err := message.NewRepository(message.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)
	activities, err := activity.NewRepository(activity.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)

	return fixture{
		db:         db,
		clock:      clock,
		profiles:   profiles,
		squads:     squads,
		messages:   messages,
		activities: activities,
	}
}

func (f fixture) profile(t *testing.T, name string) uuid.UUID {
	t.Helper()
	created, err := f.profiles.Create(context.Background(), types.Profile{
		UserID:      "uid-" + name,
		DisplayName: name,
	})
	require.NoError(t, err)
	return created.ID
}

func (f fixture) createSquad(t *testing.T, captainID uuid.UUID) *types.Squad {
	t.Helper()
	var created types.Squad
	cmd := NewSquadCreateCommand(SquadCreateCommandConfig{Squads: f.squads, Clock: f.clock})
	require.NoError(t, cmd.Execute(context.Background(), SquadCreateInput{
		ActorID: captainID,
		Name:    "Dawn Patrol",
		Result:  &created,
	}))
	return &created
}

func (f fixture) join(t *testing.T, squadRow *types.Squad, profileID uuid.UUID) {
	t.Helper()
	cmd := NewSquadJoinCommand(SquadJoinCommandConfig{Squads: f.squads, Clock: f.clock})
	require.NoError(t, cmd.Execute(context.Background(), SquadJoinInput{
		ActorID:    profileID,
		InviteCode: squadRow.InviteCode,
	}))
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, gotMessage := apperr.Status(err)
	require.Equal(t, status, gotStatus)
	require.Equal(t, message, gotMessage)
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
	scoped  int
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, opts ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	s.scoped += len(opts)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}
