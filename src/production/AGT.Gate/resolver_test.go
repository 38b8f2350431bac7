package gate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	config "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Config"
	logger "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Logger"
	agtmodels "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Models"
	session "gitlab.com/agrisense1/agt.farm_server/src/production/AGT.Session"
)

// fakeDirectory serves canned farms and can be forced to fail listing.
type fakeDirectory struct {
	farms    map[string]agtmodels.Farm
	byOwner  map[string][]string
	listErr  error
	getCalls int
}

func newFakeDirectory(farms ...agtmodels.Farm) *fakeDirectory {
	d := &fakeDirectory{
		farms:   make(map[string]agtmodels.Farm),
		byOwner: make(map[string][]string),
	}
	for _, f := range farms {
		d.farms[f.ID] = f
		d.byOwner[f.OwnerID] = append(d.byOwner[f.OwnerID], f.ID)
	}
	return d
}

func (d *fakeDirectory) ListByOwner(_ context.Context, ownerID string) ([]agtmodels.Farm, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}
	var out []agtmodels.Farm
	for _, id := range d.byOwner[ownerID] {
		out = append(out, d.farms[id])
	}
	return out, nil
}

func (d *fakeDirectory) Get(_ context.Context, farmID string) (*agtmodels.Farm, error) {
	d.getCalls++
	f, ok := d.farms[farmID]
	if !ok {
		return nil, agtmodels.E(agtmodels.KindNotFound, "farm not found")
	}
	return &f, nil
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&config.LoggingConfig{Level: "error", Format: "json"})
}

func farm(id, owner string) agtmodels.Farm {
	return agtmodels.Farm{ID: id, OwnerID: owner, Name: id}
}

func TestResolvePublicRouteAlwaysReady(t *testing.T) {
	r := NewResolver(newFakeDirectory(), session.NewMemoryStore(), testLogger())

	res := r.Resolve(context.Background(), "", "/login")
	assert.Equal(t, StateReady, res.State)
	assert.Empty(t, res.Redirect)
}

func TestResolveAnonymousRedirectsToLogin(t *testing.T) {
	r := NewResolver(newFakeDirectory(), session.NewMemoryStore(), testLogger())

	res := r.Resolve(context.Background(), "", "/dashboard")
	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Equal(t, "/login", res.Redirect)
}

func TestResolveListFailureFailsClosed(t *testing.T) {
	dir := newFakeDirectory(farm("A", "u-1"))
	dir.listErr = agtmodels.E(agtmodels.KindUnavailable, "store unreachable")
	r := NewResolver(dir, session.NewMemoryStore(), testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateUnauthenticated, res.State)
	assert.Equal(t, "/login", res.Redirect)
}

func TestResolveZeroFarmsRedirectsToOnboarding(t *testing.T) {
	r := NewResolver(newFakeDirectory(), session.NewMemoryStore(), testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateNoFarms, res.State)
	assert.Equal(t, "/onboarding", res.Redirect)

	// Already on onboarding: no redirect loop.
	res = r.Resolve(context.Background(), "u-1", "/onboarding")
	assert.Equal(t, StateNoFarms, res.State)
	assert.Empty(t, res.Redirect)
}

func TestResolveMissingPointerAutoHealsToFirstFarm(t *testing.T) {
	store := session.NewMemoryStore()
	r := NewResolver(newFakeDirectory(farm("A", "u-1"), farm("B", "u-1")), store, testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateReady, res.State)
	assert.Empty(t, res.Redirect, "auto-heal must not detour through farm selection")
	assert.Equal(t, "A", res.FarmID)

	stored, ok := store.Get("u-1")
	require.True(t, ok)
	assert.Equal(t, "A", stored)
}

func TestResolveValidPointerIsReady(t *testing.T) {
	store := session.NewMemoryStore()
	store.Set("u-1", "B")
	r := NewResolver(newFakeDirectory(farm("A", "u-1"), farm("B", "u-1")), store, testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateReady, res.State)
	assert.Equal(t, "B", res.FarmID)
}

func TestResolveStalePointerAcceptedViaDirectLookup(t *testing.T) {
	// "C" is owned by u-1 but missing from the (stale) list query.
	dir := newFakeDirectory(farm("A", "u-1"), farm("C", "u-1"))
	dir.byOwner["u-1"] = []string{"A"}
	store := session.NewMemoryStore()
	store.Set("u-1", "C")
	r := NewResolver(dir, store, testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateReady, res.State)
	assert.Equal(t, "C", res.FarmID)
	assert.Equal(t, 1, dir.getCalls)
}

func TestResolveForeignFarmPointerClearedAndRedirected(t *testing.T) {
	dir := newFakeDirectory(farm("A", "u-1"), farm("X", "someone-else"))
	store := session.NewMemoryStore()
	store.Set("u-1", "X")
	r := NewResolver(dir, store, testLogger())

	res := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, StateInvalidSelection, res.State)
	assert.Equal(t, "/select-farm", res.Redirect)

	_, ok := store.Get("u-1")
	assert.False(t, ok, "stale pointer must be cleared")
}

func TestResolveDanglingPointerOnSelectFarmDoesNotRedirect(t *testing.T) {
	store := session.NewMemoryStore()
	store.Set("u-1", "gone")
	r := NewResolver(newFakeDirectory(farm("A", "u-1")), store, testLogger())

	res := r.Resolve(context.Background(), "u-1", "/select-farm")
	assert.Equal(t, StateInvalidSelection, res.State)
	assert.Empty(t, res.Redirect)
}

func TestResolveIsIdempotentAcrossRepeatedAuthEvents(t *testing.T) {
	store := session.NewMemoryStore()
	r := NewResolver(newFakeDirectory(farm("A", "u-1"), farm("B", "u-1")), store, testLogger())

	first := r.Resolve(context.Background(), "u-1", "/dashboard")
	second := r.Resolve(context.Background(), "u-1", "/dashboard")
	assert.Equal(t, first, second)
}

func TestSwitchFarmValidatesOwnership(t *testing.T) {
	store := session.NewMemoryStore()
	r := NewResolver(newFakeDirectory(farm("A", "u-1"), farm("X", "u-2")), store, testLogger())

	require.NoError(t, r.SwitchFarm(context.Background(), "u-1", "A"))
	got, _ := store.Get("u-1")
	assert.Equal(t, "A", got)

	err := r.SwitchFarm(context.Background(), "u-1", "X")
	assert.Equal(t, agtmodels.KindPermissionDenied, agtmodels.KindOf(err))

	err = r.SwitchFarm(context.Background(), "u-1", "missing")
	assert.Equal(t, agtmodels.KindNotFound, agtmodels.KindOf(err))

	// The failed switches must not have clobbered the selection.
	got, _ = store.Get("u-1")
	assert.Equal(t, "A", got)
}
