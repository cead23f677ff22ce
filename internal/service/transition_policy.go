package service

import (
	"fmt"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	"github.com/salmaanit26/Query-Management-System/pkg/config"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

// TransitionPolicy decides whether a query may move between two statuses.
type TransitionPolicy interface {
	Allow(from, to models.QueryStatus) error
}

// PermissiveTransitionPolicy accepts any known target status.
type PermissiveTransitionPolicy struct{}

// Allow implements TransitionPolicy.
func (PermissiveTransitionPolicy) Allow(_, to models.QueryStatus) error {
	if !to.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", to))
	}
	return nil
}

// StrictTransitionPolicy only moves queries forward. ASSIGNED and RESOLVED may
// be re-applied for reassignment and re-completion. CLOSED is terminal.
type StrictTransitionPolicy struct{}

// Allow implements TransitionPolicy.
func (StrictTransitionPolicy) Allow(from, to models.QueryStatus) error {
	if !to.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", to))
	}
	if from == models.QueryStatusClosed {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "query is closed")
	}
	if from == to {
		if to == models.QueryStatusAssigned || to == models.QueryStatusResolved {
			return nil
		}
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("query is already %s", to))
	}
	if to.Rank() < from.Rank() {
		return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot move query from %s back to %s", from, to))
	}
	return nil
}

// NewTransitionPolicy resolves a policy from its configured name.
func NewTransitionPolicy(name string) TransitionPolicy {
	if name == config.TransitionPolicyStrict {
		return StrictTransitionPolicy{}
	}
	return PermissiveTransitionPolicy{}
}
