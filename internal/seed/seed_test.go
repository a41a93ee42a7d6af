package seed

import (
	"context"
	"strings"
	"testing"

	"lifelink/internal/lifecycle"
	"lifelink/internal/matching"
	"lifelink/internal/store/memstore"
	"lifelink/internal/validate"
	"lifelink/pkg/types"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeedTarget() (*memstore.Store, *lifecycle.Service) {
	logger, _ := test.NewNullLogger()
	store := memstore.New()
	return store, lifecycle.NewService(store, validate.New(), logger)
}

func countSeeded(t *testing.T, store *memstore.Store) int {
	t.Helper()
	total := 0
	for _, id := range seedUserIDs(types.RoleRecipient) {
		mine, err := store.AlertsByRequester(context.Background(), id)
		require.NoError(t, err)
		for _, a := range mine {
			assert.True(t, strings.HasPrefix(a.Description, DescriptionPrefix))
			total++
		}
	}
	return total
}

func TestRunIsIdempotent(t *testing.T) {
	store, alerts := newSeedTarget()
	logger, _ := test.NewNullLogger()
	ctx := context.Background()

	require.NoError(t, Run(ctx, store, alerts, Options{}, logger))
	assert.Equal(t, len(fakeAlerts), countSeeded(t, store))

	require.NoError(t, Run(ctx, store, alerts, Options{}, logger))
	assert.Equal(t, len(fakeAlerts), countSeeded(t, store))
}

func TestResetReplacesSeededAlerts(t *testing.T) {
	store, alerts := newSeedTarget()
	ctx := context.Background()

	_, err := SeedFakeUsers(ctx, store)
	require.NoError(t, err)

	created, deleted, err := SeedFakeAlerts(ctx, store, alerts, false)
	require.NoError(t, err)
	assert.Equal(t, len(fakeAlerts), created)
	assert.Zero(t, deleted)

	created, deleted, err = SeedFakeAlerts(ctx, store, alerts, true)
	require.NoError(t, err)
	assert.Equal(t, len(fakeAlerts), created)
	assert.Equal(t, int64(len(fakeAlerts)), deleted)
	assert.Equal(t, len(fakeAlerts), countSeeded(t, store))
}

func TestSeededDonorsSeeNearbyAlerts(t *testing.T) {
	store, alerts := newSeedTarget()
	logger, _ := test.NewNullLogger()
	ctx := context.Background()
	require.NoError(t, Run(ctx, store, alerts, Options{}, logger))

	matcher := matching.NewService(store, store, 50, 20038)

	// O- kidney donor near City Hall: both blood alerts plus the kidney.
	universal := types.Actor{UserID: fakeProfiles[0].UserID, Role: types.RoleDonor}
	nearby, err := matcher.NearbyAlerts(ctx, universal, 0)
	require.NoError(t, err)
	assert.Len(t, nearby, 3)

	unavailable := types.Actor{UserID: fakeProfiles[3].UserID, Role: types.RoleDonor}
	nearby, err = matcher.NearbyAlerts(ctx, unavailable, 0)
	require.NoError(t, err)
	assert.Empty(t, nearby)
}

func TestSeedDescription(t *testing.T) {
	assert.Equal(t, "[seed] hello", seedDescription("hello"))
	assert.Equal(t, "[seed] hello", seedDescription("[seed] hello"))
}
