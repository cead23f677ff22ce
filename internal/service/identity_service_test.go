package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

func TestIdentityServiceCachesHitsOnly(t *testing.T) {
	users := &userRepoStub{users: map[string]models.User{"w-1": {ID: "w-1", Name: "Ravi", Role: models.RoleWorker}}}
	svc := NewIdentityService(users, &venueRepoStub{}, IdentityConfig{CacheSize: 4}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user, err := svc.User(ctx, "w-1")
		require.NoError(t, err)
		assert.Equal(t, "Ravi", user.Name)
	}
	assert.Equal(t, 1, users.calls)

	for i := 0; i < 2; i++ {
		_, err := svc.User(ctx, "ghost")
		assert.ErrorIs(t, err, appErrors.ErrNotFound)
	}
	assert.Equal(t, 3, users.calls)
}

func TestIdentityServiceWorkerRole(t *testing.T) {
	users := &userRepoStub{users: map[string]models.User{
		"w-1": {ID: "w-1", Role: models.RoleWorker},
		"a-1": {ID: "a-1", Role: models.RoleAdmin},
	}}
	svc := NewIdentityService(users, &venueRepoStub{}, IdentityConfig{}, nil)

	worker, err := svc.Worker(context.Background(), "w-1")
	require.NoError(t, err)
	assert.True(t, worker.IsWorker())

	_, err = svc.Worker(context.Background(), "a-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidRole)
}

func TestIdentityServiceWorkerIgnoresCachedRole(t *testing.T) {
	users := &userRepoStub{users: map[string]models.User{"w-1": {ID: "w-1", Role: models.RoleWorker}}}
	svc := NewIdentityService(users, &venueRepoStub{}, IdentityConfig{}, nil)
	ctx := context.Background()

	_, err := svc.User(ctx, "w-1")
	require.NoError(t, err)

	users.users["w-1"] = models.User{ID: "w-1", Role: models.RoleStudent}
	_, err = svc.Worker(ctx, "w-1")
	assert.ErrorIs(t, err, appErrors.ErrInvalidRole)
	assert.Equal(t, 2, users.calls)

	user, err := svc.User(ctx, "w-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, 2, users.calls)
}

func TestIdentityServiceVenue(t *testing.T) {
	venues := &venueRepoStub{venues: map[string]models.Venue{"v-1": {ID: "v-1", Name: "Hall A"}}}
	svc := NewIdentityService(&userRepoStub{}, venues, IdentityConfig{}, nil)

	venue, err := svc.Venue(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, "Hall A", venue.Name)

	_, err = svc.Venue(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
