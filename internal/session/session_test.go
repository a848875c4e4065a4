package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/cache"
	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/session"
)

type fakeProfiles struct {
	m     map[string]*db.Profile
	loads int
	// afterRead runs once the copy is taken, before Get returns.
	afterRead func(id string)
}

func (f *fakeProfiles) Get(_ context.Context, id string) (*db.Profile, error) {
	f.loads++
	p, ok := f.m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	if f.afterRead != nil {
		hook := f.afterRead
		f.afterRead = nil
		hook(id)
	}
	return &cp, nil
}

func setupManager(t *testing.T) (*session.Manager, *session.Hub, *fakeProfiles) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	profiles := &fakeProfiles{m: map[string]*db.Profile{
		"a": {ID: "a", Email: "a@x.io", Name: "Alice"},
		"n": {ID: "n", Email: "new@x.io"},
	}}
	hub := session.NewHub()
	m := session.NewManager(profiles, cache.NewRedisCache(cfg), hub, nil)
	t.Cleanup(m.Close)
	return m, hub, profiles
}

func TestHub_SubscribeOrderAndUnsubscribe(t *testing.T) {
	hub := session.NewHub()
	var got []string

	unsubA := hub.Subscribe(func(e session.Event) { got = append(got, "a:"+e.IdentityKey) })
	hub.Subscribe(func(e session.Event) { got = append(got, "b:"+e.IdentityKey) })

	hub.Publish(session.Event{Kind: session.ProfileUpdated, IdentityKey: "x"})
	unsubA()
	unsubA() // idempotent
	hub.Publish(session.Event{Kind: session.AvatarChanged, IdentityKey: "y"})

	assert.Equal(t, []string{"a:x", "b:x", "b:y"}, got)
}

func TestManager_CachesView(t *testing.T) {
	ctx := context.Background()
	m, _, profiles := setupManager(t)

	v, err := m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.DisplayName)

	_, err = m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, profiles.loads)
}

func TestManager_InvalidatesOnEvent(t *testing.T) {
	ctx := context.Background()
	m, hub, profiles := setupManager(t)

	_, err := m.View(ctx, "a")
	require.NoError(t, err)

	url := "http://blob/a.png"
	profiles.m["a"].Name = "Alicia"
	profiles.m["a"].AvatarURL = &url
	hub.Publish(session.Event{Kind: session.AvatarChanged, IdentityKey: "a"})

	v, err := m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", v.DisplayName)
	assert.Equal(t, url, v.AvatarURL)
	assert.Equal(t, 2, profiles.loads)
}

func TestManager_UpdateDuringLoadIsNotCached(t *testing.T) {
	ctx := context.Background()
	m, hub, profiles := setupManager(t)

	// the profile is renamed and the change published after the old row was read
	profiles.afterRead = func(id string) {
		profiles.m[id].Name = "Alicia"
		hub.Publish(session.Event{Kind: session.ProfileUpdated, IdentityKey: id})
	}

	v, err := m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", v.DisplayName)

	v, err = m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", v.DisplayName)
	assert.Equal(t, 2, profiles.loads)

	// the fresh view is cached again
	_, err = m.View(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, profiles.loads)
}

func TestManager_FallsBackToEmailAndMissingProfile(t *testing.T) {
	ctx := context.Background()
	m, _, _ := setupManager(t)

	v, err := m.View(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", v.DisplayName)

	_, err = m.View(ctx, "ghost")
	assert.ErrorIs(t, err, session.ErrNoProfile)
}
