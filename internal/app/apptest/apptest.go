// Package apptest builds a fully wired AppContext on SQLite and miniredis
// for service and transport tests.
package apptest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/app"
	"github.com/oggyb/crush-radar/internal/auth"
	"github.com/oggyb/crush-radar/internal/cache"
	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/logger"
)

// Env is one isolated test environment.
type Env struct {
	App   *app.AppContext
	DB    *gorm.DB
	Redis *miniredis.Miniredis
	Blobs *MemBlobs
}

// New spins up an in-memory SQLite DB, applies migrations, starts a
// miniredis, and wires everything into an AppContext.
//
// Each test gets its own isolated DB + Redis.
func New(t testing.TB) *Env {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	dbase, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := dbase.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(dbase))

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Blob.MaxAvatarBytes = 1024

	blobs := &MemBlobs{Objects: map[string][]byte{}}

	appCtx := app.New(cfg, dbase, cache.NewRedisCache(cfg), blobs, logger.Discard())
	t.Cleanup(appCtx.Close)

	return &Env{App: appCtx, DB: dbase, Redis: mr, Blobs: blobs}
}

// SignUp registers email with a fixed password and returns the session.
func (e *Env) SignUp(t testing.TB, email string) *auth.Session {
	t.Helper()
	sess, err := e.App.Auth.SignUp(context.Background(), email, "password")
	require.NoError(t, err)
	return sess
}

// Member signs up and completes the profile so it shows up as a candidate.
func (e *Env) Member(t testing.TB, email, name, class, batch string) *auth.Session {
	t.Helper()
	sess := e.SignUp(t, email)
	_, _, err := e.App.Profiles.Ensure(context.Background(), sess.Identity.ID, email)
	require.NoError(t, err)
	require.NoError(t, e.DB.Model(&db.Profile{}).
		Where("id = ?", sess.Identity.ID).
		Updates(map[string]any{"name": name, "class": class, "batch": batch}).Error)
	return sess
}

// Ctx returns a context authenticated as sess.
func Ctx(sess *auth.Session) context.Context {
	return auth.WithIdentity(context.Background(), sess.Identity)
}

// MemBlobs is an in-memory blob store.
type MemBlobs struct {
	mu      sync.Mutex
	Objects map[string][]byte
}

func (b *MemBlobs) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Objects[key] = data
	return nil
}

func (b *MemBlobs) Remove(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Objects, key)
	return nil
}

func (b *MemBlobs) PublicURL(key string) string { return "http://blob.test/avatars/" + key }

func (b *MemBlobs) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Objects)
}
