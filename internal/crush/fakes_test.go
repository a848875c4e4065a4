package crush_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/oggyb/crush-radar/internal/crush"
)

// memStore is an in-memory ProfileStore + EdgeStore.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]crush.Profile
	edges    map[[2]string]time.Time
	writes   int
	clock    time.Time
}

func newMemStore(profiles ...crush.Profile) *memStore {
	s := &memStore{
		profiles: make(map[string]crush.Profile),
		edges:    make(map[[2]string]time.Time),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, p := range profiles {
		s.profiles[p.ID] = p
	}
	return s
}

func (s *memStore) ListProfilesExcluding(_ context.Context, viewer string) ([]crush.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]crush.Profile, 0, len(s.profiles))
	for id, p := range s.profiles {
		if id != viewer && p.Name != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) GetProfiles(_ context.Context, ids []string) (map[string]crush.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]crush.Profile, len(ids))
	for _, id := range ids {
		if p, ok := s.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) ToggleEdge(_ context.Context, sender, receiver string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	k := [2]string{sender, receiver}
	if _, ok := s.edges[k]; ok {
		delete(s.edges, k)
		return false, nil
	}
	s.clock = s.clock.Add(time.Minute)
	s.edges[k] = s.clock
	return true, nil
}

func (s *memStore) OutgoingEdges(_ context.Context, sender string) ([]crush.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []crush.Edge
	for k, at := range s.edges {
		if k[0] == sender {
			out = append(out, crush.Edge{Sender: k[0], Receiver: k[1], CreatedAt: at})
		}
	}
	return out, nil
}

func (s *memStore) EdgesInvolving(_ context.Context, id string) ([]crush.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []crush.Edge
	for k, at := range s.edges {
		if k[0] == id || k[1] == id {
			out = append(out, crush.Edge{Sender: k[0], Receiver: k[1], CreatedAt: at})
		}
	}
	return out, nil
}

func (s *memStore) CountOutgoing(ctx context.Context, sender string) (int64, error) {
	edges, _ := s.OutgoingEdges(ctx, sender)
	return int64(len(edges)), nil
}

func (s *memStore) edgeCount(sender, receiver string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.edges[[2]string{sender, receiver}]; ok {
		return 1
	}
	return 0
}

// mockEdges lets tests inject store failures.
type mockEdges struct{ mock.Mock }

func (m *mockEdges) ToggleEdge(ctx context.Context, sender, receiver string) (bool, error) {
	args := m.Called(ctx, sender, receiver)
	return args.Bool(0), args.Error(1)
}

func (m *mockEdges) OutgoingEdges(ctx context.Context, sender string) ([]crush.Edge, error) {
	args := m.Called(ctx, sender)
	edges, _ := args.Get(0).([]crush.Edge)
	return edges, args.Error(1)
}

func (m *mockEdges) EdgesInvolving(ctx context.Context, id string) ([]crush.Edge, error) {
	args := m.Called(ctx, id)
	edges, _ := args.Get(0).([]crush.Edge)
	return edges, args.Error(1)
}

func (m *mockEdges) CountOutgoing(ctx context.Context, sender string) (int64, error) {
	args := m.Called(ctx, sender)
	return args.Get(0).(int64), args.Error(1)
}

// mockProfiles lets tests inject profile store failures.
type mockProfiles struct{ mock.Mock }

func (m *mockProfiles) ListProfilesExcluding(ctx context.Context, viewer string) ([]crush.Profile, error) {
	args := m.Called(ctx, viewer)
	ps, _ := args.Get(0).([]crush.Profile)
	return ps, args.Error(1)
}

func (m *mockProfiles) GetProfiles(ctx context.Context, ids []string) (map[string]crush.Profile, error) {
	args := m.Called(ctx, ids)
	ps, _ := args.Get(0).(map[string]crush.Profile)
	return ps, args.Error(1)
}

// heldGuard is a Guard whose keys can be pre-held.
type heldGuard struct {
	mu   sync.Mutex
	held map[string]bool
}

func (g *heldGuard) Acquire(_ context.Context, key string) (func(), bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held == nil {
		g.held = make(map[string]bool)
	}
	if g.held[key] {
		return nil, false, nil
	}
	g.held[key] = true
	return func() {
		g.mu.Lock()
		delete(g.held, key)
		g.mu.Unlock()
	}, true, nil
}

// memCounts is a CountCache with the same generation rule as the redis one.
type memCounts struct {
	mu  sync.Mutex
	m   map[string]int64
	gen map[string]int64
}

func (c *memCounts) GetCrushCount(_ context.Context, viewer string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.m[viewer]
	return n, ok, nil
}

func (c *memCounts) CrushCountGeneration(_ context.Context, viewer string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen[viewer], nil
}

func (c *memCounts) SetCrushCount(_ context.Context, viewer string, n, gen int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen[viewer] != gen {
		return false, nil
	}
	if c.m == nil {
		c.m = make(map[string]int64)
	}
	c.m[viewer] = n
	return true, nil
}

func (c *memCounts) DropCrushCount(_ context.Context, viewer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen == nil {
		c.gen = make(map[string]int64)
	}
	c.gen[viewer]++
	delete(c.m, viewer)
	return nil
}

// slowCounts runs afterCount once, between CountOutgoing reading the store
// and returning.
type slowCounts struct {
	*memStore
	afterCount func()
}

func (s *slowCounts) CountOutgoing(ctx context.Context, sender string) (int64, error) {
	n, err := s.memStore.CountOutgoing(ctx, sender)
	if s.afterCount != nil {
		hook := s.afterCount
		s.afterCount = nil
		hook()
	}
	return n, err
}
