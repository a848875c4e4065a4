package crush_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/crush-radar/internal/crush"
	"github.com/oggyb/crush-radar/internal/metrics"
)

var (
	alice = crush.Profile{ID: "a", Name: "Alice", Class: "CS-A", Batch: "2024"}
	bob   = crush.Profile{ID: "b", Name: "Bob", Class: "EE-B", Batch: "2023"}
	carol = crush.Profile{ID: "c", Name: "Carol", Class: "CS-B", Batch: "2024"}
)

func newWorkflow(t *testing.T, profiles ...crush.Profile) (*crush.Workflow, *memStore) {
	t.Helper()
	store := newMemStore(profiles...)
	return crush.NewWorkflow(store, store), store
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func matchIDs(l *crush.MatchList) []string {
	ids := make([]string, 0, len(l.Matches))
	for _, m := range l.Matches {
		ids = append(ids, m.Counterpart.ID)
	}
	return ids
}

func TestListCandidates_ExcludesViewer(t *testing.T) {
	ctx := context.Background()
	wf, _ := newWorkflow(t, alice, bob, carol)

	got, err := wf.ListCandidates(ctx, "a")
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, c := range got {
		assert.NotEqual(t, "a", c.ID)
	}
	// ordered by name
	assert.Equal(t, "Bob", got[0].Name)
	assert.Equal(t, "Carol", got[1].Name)
}

func TestListCandidates_ExcludesViewerEvenIfStoreReturnsIt(t *testing.T) {
	ctx := context.Background()
	profiles := &mockProfiles{}
	edges := &mockEdges{}
	profiles.On("ListProfilesExcluding", mock.Anything, "a").Return([]crush.Profile{alice, bob}, nil)
	edges.On("OutgoingEdges", mock.Anything, "a").Return([]crush.Edge(nil), nil)

	got, err := crush.NewWorkflow(profiles, edges).ListCandidates(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
}

func TestListCandidates_FlagsSelected(t *testing.T) {
	ctx := context.Background()
	wf, _ := newWorkflow(t, alice, bob, carol)

	_, err := wf.ToggleCrush(ctx, "a", "c")
	require.NoError(t, err)

	got, err := wf.ListCandidates(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.False(t, got[0].Selected) // Bob
	assert.True(t, got[1].Selected)  // Carol
}

func TestListCandidates_StoreFailure(t *testing.T) {
	profiles := &mockProfiles{}
	profiles.On("ListProfilesExcluding", mock.Anything, "a").Return(nil, errors.New("db down"))

	_, err := crush.NewWorkflow(profiles, &mockEdges{}).ListCandidates(context.Background(), "a")
	require.ErrorIs(t, err, crush.ErrCandidateFetchFailed)
}

func TestToggleCrush_TwiceIsNetNoOp(t *testing.T) {
	ctx := context.Background()
	wf, store := newWorkflow(t, alice, bob)

	res, err := wf.ToggleCrush(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, crush.Added, res)
	assert.Equal(t, 1, store.edgeCount("a", "b"))

	res, err = wf.ToggleCrush(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, crush.Removed, res)
	assert.Equal(t, 0, store.edgeCount("a", "b"))

	for _, id := range []string{"a", "b"} {
		l, err := wf.ComputeMatches(ctx, id)
		require.NoError(t, err)
		assert.True(t, l.Empty())
	}
}

func TestToggleCrush_SelfTargetRejectedWithoutWrite(t *testing.T) {
	ctx := context.Background()
	wf, store := newWorkflow(t, alice)

	for _, target := range []string{"a", ""} {
		_, err := wf.ToggleCrush(ctx, "a", target)
		require.ErrorIs(t, err, crush.ErrInvalidTarget)
	}
	assert.Zero(t, store.writes)
}

func TestToggleCrush_StoreFailureIsEdgeWriteFailed(t *testing.T) {
	raw := errors.New("deadlock")
	edges := &mockEdges{}
	edges.On("ToggleEdge", mock.Anything, "a", "b").Return(false, raw)

	_, err := crush.NewWorkflow(newMemStore(alice, bob), edges).ToggleCrush(context.Background(), "a", "b")
	require.ErrorIs(t, err, crush.ErrEdgeWriteFailed)
	// raw store error does not cross the boundary
	assert.NotErrorIs(t, err, raw)
}

func TestToggleCrush_UnknownTargetRejectedWithoutWrite(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice, bob)
	counts := &memCounts{}
	wf := crush.NewWorkflow(store, store, crush.WithCountCache(counts))
	rejected := counterValue(t, metrics.CrushToggles.WithLabelValues("rejected"))

	_, err := wf.ToggleCrush(ctx, "a", "no-such-identity")
	require.ErrorIs(t, err, crush.ErrInvalidTarget)
	assert.Zero(t, store.writes)
	assert.Equal(t, rejected+1, counterValue(t, metrics.CrushToggles.WithLabelValues("rejected")))

	n, err := wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestToggleCrush_TargetLookupFailure(t *testing.T) {
	profiles := &mockProfiles{}
	edges := &mockEdges{}
	profiles.On("GetProfiles", mock.Anything, []string{"b"}).Return(nil, errors.New("db down"))

	_, err := crush.NewWorkflow(profiles, edges).ToggleCrush(context.Background(), "a", "b")
	require.ErrorIs(t, err, crush.ErrEdgeWriteFailed)
	edges.AssertNotCalled(t, "ToggleEdge", mock.Anything, mock.Anything, mock.Anything)
}

func TestToggleCrush_InFlightGuard(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice, bob)
	guard := &heldGuard{}
	wf := crush.NewWorkflow(store, store, crush.WithGuard(guard))

	release, ok, err := guard.Acquire(ctx, "a:b")
	require.NoError(t, err)
	require.True(t, ok)
	busy := counterValue(t, metrics.CrushToggles.WithLabelValues("busy"))

	_, err = wf.ToggleCrush(ctx, "a", "b")
	require.ErrorIs(t, err, crush.ErrToggleInFlight)
	assert.Zero(t, store.writes)
	assert.Equal(t, busy+1, counterValue(t, metrics.CrushToggles.WithLabelValues("busy")))

	release()
	res, err := wf.ToggleCrush(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, crush.Added, res)
}

func TestComputeMatches_Scenario(t *testing.T) {
	ctx := context.Background()
	wf, _ := newWorkflow(t, alice, bob)

	_, err := wf.ToggleCrush(ctx, "a", "b")
	require.NoError(t, err)

	la, err := wf.ComputeMatches(ctx, "a")
	require.NoError(t, err)
	lb, err := wf.ComputeMatches(ctx, "b")
	require.NoError(t, err)
	assert.True(t, la.Empty())
	assert.True(t, lb.Empty())

	_, err = wf.ToggleCrush(ctx, "b", "a")
	require.NoError(t, err)

	la, err = wf.ComputeMatches(ctx, "a")
	require.NoError(t, err)
	lb, err = wf.ComputeMatches(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, matchIDs(la))
	assert.Equal(t, []string{"a"}, matchIDs(lb))
	assert.Equal(t, "Bob", la.Matches[0].Counterpart.Name)
	assert.Equal(t, la.Matches[0].MatchedAt, lb.Matches[0].MatchedAt)
}

func TestComputeMatches_RemovingEitherEdgeDropsMatch(t *testing.T) {
	ctx := context.Background()
	wf, _ := newWorkflow(t, alice, bob)

	_, _ = wf.ToggleCrush(ctx, "a", "b")
	_, _ = wf.ToggleCrush(ctx, "b", "a")
	_, _ = wf.ToggleCrush(ctx, "b", "a") // b withdraws

	for _, id := range []string{"a", "b"} {
		l, err := wf.ComputeMatches(ctx, id)
		require.NoError(t, err)
		assert.True(t, l.Empty(), "viewer %s", id)
	}
}

func TestComputeMatches_NoDoubleCounting(t *testing.T) {
	edges := &mockEdges{}
	profiles := &mockProfiles{}
	// duplicate rows as a misbehaving store might return them
	edges.On("EdgesInvolving", mock.Anything, "a").Return([]crush.Edge{
		{Sender: "a", Receiver: "b"},
		{Sender: "b", Receiver: "a"},
		{Sender: "a", Receiver: "b"},
		{Sender: "b", Receiver: "a"},
	}, nil)
	profiles.On("GetProfiles", mock.Anything, []string{"b"}).Return(map[string]crush.Profile{"b": bob}, nil)

	l, err := crush.NewWorkflow(profiles, edges).ComputeMatches(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, matchIDs(l))
	profiles.AssertNumberOfCalls(t, "GetProfiles", 1)
}

func TestComputeMatches_EmptyVsFailure(t *testing.T) {
	ctx := context.Background()

	emptyFetches := counterValue(t, metrics.MatchFetches.WithLabelValues("empty"))
	empty := &mockEdges{}
	empty.On("EdgesInvolving", mock.Anything, "a").Return([]crush.Edge{}, nil)
	l, err := crush.NewWorkflow(&mockProfiles{}, empty).ComputeMatches(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.NotNil(t, l.Matches)
	assert.True(t, l.Empty())
	assert.Equal(t, emptyFetches+1, counterValue(t, metrics.MatchFetches.WithLabelValues("empty")))

	broken := &mockEdges{}
	broken.On("EdgesInvolving", mock.Anything, "a").Return(nil, errors.New("connection refused"))
	l, err = crush.NewWorkflow(&mockProfiles{}, broken).ComputeMatches(ctx, "a")
	require.ErrorIs(t, err, crush.ErrMatchFetchFailed)
	assert.Nil(t, l)
}

func TestComputeMatches_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	edges := &mockEdges{}
	edges.On("EdgesInvolving", mock.Anything, "a").Return(nil, context.Canceled)

	_, err := crush.NewWorkflow(&mockProfiles{}, edges).ComputeMatches(ctx, "a")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, crush.ErrMatchFetchFailed)
}

func TestComputeMatches_MissingCounterpartPlaceholder(t *testing.T) {
	ctx := context.Background()
	wf, store := newWorkflow(t, alice, bob, carol)

	for _, pair := range [][2]string{{"a", "b"}, {"b", "a"}, {"a", "c"}, {"c", "a"}} {
		_, err := wf.ToggleCrush(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}
	delete(store.profiles, "c")

	l, err := wf.ComputeMatches(ctx, "a")
	require.NoError(t, err)
	require.Len(t, l.Matches, 2)

	byID := map[string]crush.Match{}
	for _, m := range l.Matches {
		byID[m.Counterpart.ID] = m
	}
	assert.False(t, byID["b"].Missing)
	assert.True(t, byID["c"].Missing)
	assert.Equal(t, crush.UnknownName, byID["c"].Counterpart.Name)
}

func TestComputeMatches_ProfileBatchFailureDegrades(t *testing.T) {
	edges := &mockEdges{}
	profiles := &mockProfiles{}
	edges.On("EdgesInvolving", mock.Anything, "a").Return([]crush.Edge{
		{Sender: "a", Receiver: "b"}, {Sender: "b", Receiver: "a"},
	}, nil)
	profiles.On("GetProfiles", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	l, err := crush.NewWorkflow(profiles, edges).ComputeMatches(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, l.Matches, 1)
	assert.True(t, l.Matches[0].Missing)
	assert.Equal(t, "b", l.Matches[0].Counterpart.ID)
}

func TestCountCrushes_CacheFirst(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice, bob, carol)
	counts := &memCounts{}
	wf := crush.NewWorkflow(store, store, crush.WithCountCache(counts))

	n, err := wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// toggle drops the cached value
	_, err = wf.ToggleCrush(ctx, "a", "b")
	require.NoError(t, err)
	_, cached, _ := counts.GetCrushCount(ctx, "a")
	assert.False(t, cached)

	n, err = wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// served from cache now
	gen, _ := counts.CrushCountGeneration(ctx, "a")
	_, _ = counts.SetCrushCount(ctx, "a", 42, gen)
	n, err = wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestCountCrushes_ToggleDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(alice, bob)
	edges := &slowCounts{memStore: store}
	counts := &memCounts{}
	wf := crush.NewWorkflow(store, edges, crush.WithCountCache(counts))

	// a toggle commits after the count was read but before it is cached
	edges.afterCount = func() {
		_, err := wf.ToggleCrush(ctx, "a", "b")
		require.NoError(t, err)
	}

	n, err := wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	_, cached, _ := counts.GetCrushCount(ctx, "a")
	assert.False(t, cached)

	n, err = wf.CountCrushes(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, cached, _ = counts.GetCrushCount(ctx, "a")
	assert.True(t, cached)
}

func TestCandidatePage_FiltersAndPages(t *testing.T) {
	ctx := context.Background()
	dave := crush.Profile{ID: "d", Name: "dave", Class: "CS-A"}
	wf, _ := newWorkflow(t, alice, bob, carol, dave)

	page, next, err := wf.CandidatePage(ctx, "b", crush.Filter{Query: "cs"}, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Alice", page[0].Name)
	assert.Equal(t, "Carol", page[1].Name)
	require.NotEmpty(t, next)

	page, next, err = wf.CandidatePage(ctx, "b", crush.Filter{Query: "cs"}, next, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "d", page[0].ID)
	assert.Empty(t, next)

	_, _, err = wf.CandidatePage(ctx, "b", crush.Filter{}, "not base64!", 2)
	assert.Error(t, err)
}
