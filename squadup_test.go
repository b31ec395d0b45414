package squadup_test

import (
	"context"
	"io/fs"
	"testing"

	squadup "github.com/dylanswipeyourbite/squadupv2"
	"github.com/dylanswipeyourbite/squadupv2/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFSCarriesBothDialects(t *testing.T) {
	pg, err := fs.Glob(squadup.GetMigrationsFS(), "data/sql/migrations/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, pg)

	lite, err := fs.Glob(squadup.GetMigrationsFS(), "data/sql/migrations/sqlite/*.up.sql")
	require.NoError(t, err)
	require.Len(t, lite, len(pg))
}

func TestNewWithoutRepositoriesIsNotReady(t *testing.T) {
	svc := squadup.New(squadup.Config{})
	require.False(t, svc.Ready())
	require.ErrorIs(t, svc.HealthCheck(context.Background()), types.ErrMissingProfileRepository)
}
