package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/pkg/config"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

func TestPermissivePolicyAllowsAnyKnownStatus(t *testing.T) {
	policy := PermissiveTransitionPolicy{}
	assert.NoError(t, policy.Allow(models.QueryStatusClosed, models.QueryStatusPending))
	assert.NoError(t, policy.Allow(models.QueryStatusResolved, models.QueryStatusInProgress))
	assert.ErrorIs(t, policy.Allow(models.QueryStatusPending, "DONE"), appErrors.ErrValidation)
}

func TestStrictPolicy(t *testing.T) {
	policy := StrictTransitionPolicy{}
	cases := []struct {
		name    string
		from    models.QueryStatus
		to      models.QueryStatus
		wantErr *appErrors.Error
	}{
		{"forward one step", models.QueryStatusPending, models.QueryStatusAssigned, nil},
		{"forward skip", models.QueryStatusPending, models.QueryStatusResolved, nil},
		{"reassign", models.QueryStatusAssigned, models.QueryStatusAssigned, nil},
		{"recomplete", models.QueryStatusResolved, models.QueryStatusResolved, nil},
		{"backwards", models.QueryStatusResolved, models.QueryStatusInProgress, appErrors.ErrInvalidTransition},
		{"repeat in progress", models.QueryStatusInProgress, models.QueryStatusInProgress, appErrors.ErrInvalidTransition},
		{"closed is terminal", models.QueryStatusClosed, models.QueryStatusClosed, appErrors.ErrInvalidTransition},
		{"unknown target", models.QueryStatusPending, "REOPENED", appErrors.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := policy.Allow(tc.from, tc.to)
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewTransitionPolicy(t *testing.T) {
	assert.IsType(t, StrictTransitionPolicy{}, NewTransitionPolicy(config.TransitionPolicyStrict))
	assert.IsType(t, PermissiveTransitionPolicy{}, NewTransitionPolicy(config.TransitionPolicyPermissive))
	assert.IsType(t, PermissiveTransitionPolicy{}, NewTransitionPolicy(""))
}
