package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/repository"
)

// setup in-memory DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}

func seedProfiles(t *testing.T, database *gorm.DB, profiles ...db.Profile) {
	t.Helper()
	for i := range profiles {
		require.NoError(t, database.Create(&profiles[i]).Error)
	}
}

func TestToggleEdge(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewCrushRepository(dbase)

	added, err := repo.ToggleEdge(ctx, "a", "b")
	assert.NoError(t, err)
	assert.True(t, added)

	out, err := repo.OutgoingEdges(ctx, "a")
	assert.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].Receiver)

	// second toggle withdraws
	added, err = repo.ToggleEdge(ctx, "a", "b")
	assert.NoError(t, err)
	assert.False(t, added)

	var count int64
	dbase.Model(&db.Crush{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestToggleEdge_DirectionMatters(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCrushRepository(setupTestDB(t))

	_, _ = repo.ToggleEdge(ctx, "a", "b")

	n, err := repo.CountOutgoing(ctx, "b")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestEdgesInvolving(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCrushRepository(setupTestDB(t))

	_, _ = repo.ToggleEdge(ctx, "a", "b")
	_, _ = repo.ToggleEdge(ctx, "b", "a")
	_, _ = repo.ToggleEdge(ctx, "c", "a")
	_, _ = repo.ToggleEdge(ctx, "b", "c") // unrelated to a

	edges, err := repo.EdgesInvolving(ctx, "a")
	assert.NoError(t, err)
	assert.Len(t, edges, 3)
	for _, e := range edges {
		assert.True(t, e.Sender == "a" || e.Receiver == "a")
		assert.False(t, e.CreatedAt.IsZero())
	}
}

func TestOutgoingAndCount(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCrushRepository(setupTestDB(t))

	_, _ = repo.ToggleEdge(ctx, "a", "b")
	_, _ = repo.ToggleEdge(ctx, "a", "c")
	_, _ = repo.ToggleEdge(ctx, "b", "a")

	edges, err := repo.OutgoingEdges(ctx, "a")
	assert.NoError(t, err)
	assert.Len(t, edges, 2)

	n, err := repo.CountOutgoing(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestListProfilesExcluding(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	seedProfiles(t, dbase,
		db.Profile{ID: "a", Name: "Alice"},
		db.Profile{ID: "b", Name: "Bob", Class: "CS-A"},
		db.Profile{ID: "c"}, // setup not finished
	)

	got, err := repo.ListProfilesExcluding(ctx, "a")
	assert.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "CS-A", got[0].Class)
}

func TestGetProfiles(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)

	url := "http://blob/a.png"
	seedProfiles(t, dbase,
		db.Profile{ID: "a", Name: "Alice", AvatarURL: &url},
		db.Profile{ID: "b", Name: "Bob"},
	)

	got, err := repo.GetProfiles(ctx, []string{"a", "b", "gone"})
	assert.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, url, got["a"].AvatarURL)
	_, ok := got["gone"]
	assert.False(t, ok)

	empty, err := repo.GetProfiles(ctx, nil)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewProfileRepository(setupTestDB(t))

	created, err := repo.CreateIfAbsent(ctx, &db.Profile{ID: "a", Email: "a@x.io", HintsRemaining: db.DefaultHints})
	assert.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIfAbsent(ctx, &db.Profile{ID: "a", Email: "other@x.io"})
	assert.NoError(t, err)
	assert.False(t, created)

	p, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a@x.io", p.Email)
	assert.Equal(t, db.DefaultHints, p.HintsRemaining)
}

func TestUpdateAndSetAvatar(t *testing.T) {
	ctx := context.Background()
	dbase := setupTestDB(t)
	repo := repository.NewProfileRepository(dbase)
	seedProfiles(t, dbase, db.Profile{ID: "a", Name: "Alice", Batch: "2023"})

	require.NoError(t, repo.Update(ctx, "a", map[string]any{"name": "Alicia"}))

	url, key := "http://blob/a/avatar.png", "a/avatar.png"
	require.NoError(t, repo.SetAvatar(ctx, "a", &url, &key))

	p, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", p.Name)
	assert.Equal(t, "2023", p.Batch)
	require.NotNil(t, p.AvatarKey)
	assert.Equal(t, key, *p.AvatarKey)

	require.NoError(t, repo.SetAvatar(ctx, "a", nil, nil))
	p, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, p.AvatarURL)
	assert.Nil(t, p.AvatarKey)
}

func TestGetMissingProfile(t *testing.T) {
	_, err := repository.NewProfileRepository(setupTestDB(t)).Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAccountCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewAccountRepository(setupTestDB(t))

	require.NoError(t, repo.Create(ctx, &db.Account{ID: "1", Email: "a@x.io", PasswordHash: "h"}))
	err := repo.Create(ctx, &db.Account{ID: "2", Email: "a@x.io", PasswordHash: "h"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	a, err := repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.Nil(t, a.LastLoginAt)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLogin(ctx, "1", now))
	a, err = repo.GetByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.NotNil(t, a.LastLoginAt)
	assert.True(t, now.Equal(a.LastLoginAt.UTC()))
}
