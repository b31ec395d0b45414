package squad

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dylanswipeyourbite/squadupv2/internal/dbtest"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/dylanswipeyourbite/squadupv2/profile"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

var baseTime = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

type fixture struct {
	db       *bun.DB
	repo     *Repository
	profiles *profile.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.NewDB(t)
	repo, err := NewRepository(RepositoryConfig{DB: db})
	require.NoError(t, err)
	profiles, err := profile.NewRepository(profile.RepositoryConfig{DB: db})
	require.NoError(t, err)
	return fixture{db: db, repo: repo, profiles: profiles}
}

func (f fixture) profile(t *testing.T, name string) uuid.UUID {
	t.Helper()
	created, err := f.profiles.Create(context.Background(), types.Profile{UserID: "uid-" + name, DisplayName: name})
	require.NoError(t, err)
	return created.ID
}

func (f fixture) squad(t *testing.T, captainID uuid.UUID, code string, maxMembers *int) *types.Squad {
	t.Helper()
	created, err := f.repo.CreateWithCaptain(context.Background(), types.Squad{
		ID:          uuid.New(),
		Name:        "Dawn Patrol",
		InviteCode:  code,
		Visibility:  types.SquadVisibilityPrivate,
		MaxMembers:  maxMembers,
		ExpertNames: types.DefaultExpertNames(),
		CreatedAt:   baseTime,
	}, types.SquadMember{ID: uuid.New(), ProfileID: captainID})
	require.NoError(t, err)
	return created
}

func TestRepository_CreateWithCaptain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")

	created := f.squad(t, captain, "ABCDEFGH1", nil)
	require.Equal(t, 1, created.MemberCount)

	byCode, err := f.repo.GetByInviteCode(ctx, "ABCDEFGH1")
	require.NoError(t, err)
	require.Equal(t, created.ID, byCode.ID)
	require.Equal(t, "Sage", byCode.ExpertNames["sage"])
	require.Equal(t, types.SquadVisibilityPrivate, byCode.Visibility)

	exists, err := f.repo.InviteCodeExists(ctx, "ABCDEFGH1")
	require.NoError(t, err)
	require.True(t, exists)
	exists, err = f.repo.InviteCodeExists(ctx, "ZZZZZZZZZ")
	require.NoError(t, err)
	require.False(t, exists)

	member, err := f.repo.Membership(ctx, created.ID, captain)
	require.NoError(t, err)
	require.True(t, member.IsCaptain())
}

func TestRepository_CreateRollsBackWhenCaptainInsertFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.repo.CreateWithCaptain(ctx, types.Squad{
		ID:         uuid.New(),
		Name:       "Ghost",
		InviteCode: "GHOST0001",
		Visibility: types.SquadVisibilityPrivate,
	}, types.SquadMember{ID: uuid.New(), ProfileID: uuid.New()})
	require.Error(t, err)

	exists, err := f.repo.InviteCodeExists(ctx, "GHOST0001")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRepository_JoinAndLeaveAdjustCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	runner := f.profile(t, "runner")
	created := f.squad(t, captain, "JOIN00001", nil)

	joined, err := f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: runner, JoinedAt: baseTime.Add(time.Hour)})
	require.NoError(t, err)
	require.Equal(t, 2, joined.MemberCount)

	_, err = f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: runner})
	require.ErrorIs(t, err, types.ErrAlreadyMember)

	count, err := f.repo.CountMembers(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, f.repo.RemoveMember(ctx, created.ID, runner, baseTime.Add(2*time.Hour)))
	after, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.MemberCount)

	require.ErrorIs(t, f.repo.RemoveMember(ctx, created.ID, runner, baseTime), types.ErrNotMember)
}

func TestRepository_JoinRespectsMaxMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	limit := 2
	created := f.squad(t, f.profile(t, "cap"), "FULL00001", &limit)

	_, err := f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: f.profile(t, "second")})
	require.NoError(t, err)

	_, err = f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: f.profile(t, "third")})
	require.ErrorIs(t, err, types.ErrSquadFull)

	_, err = f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: uuid.New(), ProfileID: f.profile(t, "fourth")})
	require.ErrorIs(t, err, types.ErrSquadNotFound)

	count, err := f.repo.CountMembers(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestRepository_JoinFailureLeavesCountUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := f.squad(t, f.profile(t, "cap"), "FAIL00001", nil)
	blocked := f.profile(t, "blocked")

	_, err := f.db.Exec(fmt.Sprintf(`CREATE TRIGGER block_member BEFORE INSERT ON squad_members
		WHEN NEW.profile_id = '%s' BEGIN SELECT RAISE(ABORT, 'forced failure'); END`, blocked))
	require.NoError(t, err)

	_, err = f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: blocked})
	require.Error(t, err)

	after, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.MemberCount)
	member, err := f.repo.Membership(ctx, created.ID, blocked)
	require.NoError(t, err)
	require.Nil(t, member)
}

func TestRepository_JoinLosingRaceReportsAlreadyMember(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := f.squad(t, f.profile(t, "cap"), "RACE00001", nil)
	runner := f.profile(t, "runner")

	// A concurrent join lands between the membership check and the insert.
	_, err := f.db.Exec(fmt.Sprintf(`CREATE TRIGGER concurrent_join BEFORE INSERT ON squad_members
		WHEN NEW.profile_id = '%s' AND NOT EXISTS (
			SELECT 1 FROM squad_members WHERE squad_id = NEW.squad_id AND profile_id = NEW.profile_id)
		BEGIN
			INSERT INTO squad_members (id, squad_id, profile_id, role)
			VALUES ('other-' || NEW.id, NEW.squad_id, NEW.profile_id, 'member');
		END`, runner))
	require.NoError(t, err)

	_, err = f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: runner})
	require.ErrorIs(t, err, types.ErrAlreadyMember)

	after, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, after.MemberCount)
}

func TestRepository_LeaveFailureKeepsMembership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	created := f.squad(t, f.profile(t, "cap"), "FAIL00002", nil)
	runner := f.profile(t, "runner")
	_, err := f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: runner})
	require.NoError(t, err)

	_, err = f.db.Exec(`CREATE TRIGGER block_decrement BEFORE UPDATE OF member_count ON squads
		BEGIN SELECT RAISE(ABORT, 'forced failure'); END`)
	require.NoError(t, err)

	require.Error(t, f.repo.RemoveMember(ctx, created.ID, runner, baseTime))

	member, err := f.repo.Membership(ctx, created.ID, runner)
	require.NoError(t, err)
	require.NotNil(t, member)
	after, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 2, after.MemberCount)
}

func TestRepository_ListsAndRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	runner := f.profile(t, "runner")
	first := f.squad(t, captain, "LIST00001", nil)
	second := f.squad(t, runner, "LIST00002", nil)

	_, err := f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: first.ID, ProfileID: runner, JoinedAt: baseTime.Add(time.Hour)})
	require.NoError(t, err)

	squads, err := f.repo.ListForProfile(ctx, runner)
	require.NoError(t, err)
	require.Len(t, squads, 2)
	ids := []uuid.UUID{squads[0].ID, squads[1].ID}
	require.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)

	roster, err := f.repo.ListMembers(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, types.SquadRoleCaptain, roster[0].Role)
	require.Equal(t, "cap", roster[0].Profile.DisplayName)
	require.Equal(t, types.SquadRoleMember, roster[1].Role)
	require.Equal(t, "runner", roster[1].Profile.DisplayName)
}

func TestRepository_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.squad(t, captain, "GONE00001", nil)

	require.NoError(t, f.repo.Delete(ctx, created.ID))

	got, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	count, err := f.repo.CountMembers(ctx, created.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	require.ErrorIs(t, f.repo.Delete(ctx, created.ID), types.ErrSquadNotFound)
}

func TestRepository_CountActiveMembers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	captain := f.profile(t, "cap")
	created := f.squad(t, captain, "ACTV00001", nil)
	_, err := f.repo.AddMember(ctx, types.SquadMember{ID: uuid.New(), SquadID: created.ID, ProfileID: f.profile(t, "idle")})
	require.NoError(t, err)

	recent := baseTime.Add(-24 * time.Hour)
	_, err = f.db.NewUpdate().
		Model((*MemberRecord)(nil)).
		Set("last_activity_at = ?", recent).
		Where("profile_id = ?", captain).
		Exec(ctx)
	require.NoError(t, err)

	active, err := f.repo.CountActiveMembers(ctx, created.ID, baseTime.Add(-7*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, active)
}
