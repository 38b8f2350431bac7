// Package gate decides, for every navigation, whether a user lands on
// login, onboarding, farm selection or the requested page. The decision
// combines three signals that can disagree: the authenticated user, the
// farm list owned by that user, and the locally cached farm selection.
package gate

import (
	"context"
	"strings"

	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	session "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Session"
)

// State is the outcome of a resolution pass.
type State string

const (
	StateUnauthenticated  State = "unauthenticated"
	StateNoFarms          State = "no_farms"
	StateInvalidSelection State = "invalid_selection"
	StateReady            State = "ready"
)

const (
	LoginRoute      = "/login"
	OnboardingRoute = "/onboarding"
	SelectFarmRoute = "/select-farm"
)

// Resolution tells the client what to render. Redirect is empty when
// the requested route may be rendered as-is; FarmID is set only in
// StateReady for non-public routes.
type Resolution struct {
	State    State  `json:"state"`
	Redirect string `json:"redirect,omitempty"`
	FarmID   string `json:"farm_id,omitempty"`
}

// FarmDirectory is the slice of the farm repository the gate needs.
type FarmDirectory interface {
	ListByOwner(ctx context.Context, ownerID string) ([]agtmodels.Farm, error)
	Get(ctx context.Context, farmID string) (*agtmodels.Farm, error)
}

// Resolver runs the resolution state machine. Resolve is a pure
// function of its inputs plus the two collaborators, so repeated auth
// events produce identical outcomes (no redirect loops from
// re-entrancy).
type Resolver struct {
	dir     FarmDirectory
	session session.Store
	logger  *logger.Logger
}

func NewResolver(dir FarmDirectory, store session.Store, log *logger.Logger) *Resolver {
	return &Resolver{dir: dir, session: store, logger: log}
}

// Resolve evaluates the transition rules in order. userID is empty for
// anonymous callers.
func (r *Resolver) Resolve(ctx context.Context, userID, route string) Resolution {
	// Public routes are reachable regardless of auth state.
	if isPublicRoute(route) {
		return Resolution{State: StateReady}
	}

	if userID == "" {
		return Resolution{State: StateUnauthenticated, Redirect: LoginRoute}
	}

	farms, err := r.dir.ListByOwner(ctx, userID)
	if err != nil {
		// Fail closed: a farm list we cannot fetch is treated like a
		// missing session, not like an empty account.
		r.logger.WithError(err).Warn("farm list fetch failed during resolution")
		return Resolution{State: StateUnauthenticated, Redirect: LoginRoute}
	}

	if len(farms) == 0 {
		if isOnboardingRoute(route) {
			return Resolution{State: StateNoFarms}
		}
		return Resolution{State: StateNoFarms, Redirect: OnboardingRoute}
	}

	selected, ok := r.session.Get(userID)
	if !ok {
		// Auto-heal: adopt the first farm instead of forcing a trip
		// through farm selection.
		first := farms[0].ID
		r.session.Set(userID, first)
		return Resolution{State: StateReady, FarmID: first}
	}

	for _, f := range farms {
		if f.ID == selected {
			return Resolution{State: StateReady, FarmID: selected}
		}
	}

	// The pointer missed the list. The list query may simply be stale,
	// so give the farm a chance via direct lookup before discarding.
	direct, err := r.dir.Get(ctx, selected)
	if err == nil && direct != nil && direct.OwnerID == userID {
		return Resolution{State: StateReady, FarmID: selected}
	}

	r.session.Clear(userID)
	if isSelectFarmRoute(route) || isOnboardingRoute(route) {
		return Resolution{State: StateInvalidSelection}
	}
	return Resolution{State: StateInvalidSelection, Redirect: SelectFarmRoute}
}

// SwitchFarm records an explicit farm choice after revalidating
// ownership. This is the only writer of the pointer besides Resolve's
// auto-heal.
func (r *Resolver) SwitchFarm(ctx context.Context, userID, farmID string) error {
	if userID == "" {
		return agtmodels.E(agtmodels.KindUnauthenticated, "not signed in")
	}
	farm, err := r.dir.Get(ctx, farmID)
	if err != nil {
		return err
	}
	if farm.OwnerID != userID {
		return agtmodels.E(agtmodels.KindPermissionDenied, "farm belongs to another user")
	}
	r.session.Set(userID, farmID)
	return nil
}

// ClearSelection drops the cached pointer, e.g. on logout.
func (r *Resolver) ClearSelection(userID string) {
	if userID != "" {
		r.session.Clear(userID)
	}
}

func isPublicRoute(route string) bool     { return strings.HasPrefix(route, LoginRoute) }
func isOnboardingRoute(route string) bool { return strings.HasPrefix(route, OnboardingRoute) }
func isSelectFarmRoute(route string) bool { return strings.HasPrefix(route, SelectFarmRoute) }
