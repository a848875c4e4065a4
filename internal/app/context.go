package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/auth"
	"github.com/oggyb/crush-radar/internal/cache"
	"github.com/oggyb/crush-radar/internal/config"
	"github.com/oggyb/crush-radar/internal/crush"
	"github.com/oggyb/crush-radar/internal/profile"
	"github.com/oggyb/crush-radar/internal/repository"
	"github.com/oggyb/crush-radar/internal/session"
)

// AppContext holds shared dependencies (DB, Redis, Logger, etc.) and the
// domain services built on them. Both transports read from the same instance.
type AppContext struct {
	Config     *config.Config
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger

	Hub      *session.Hub
	Auth     *auth.Service
	Profiles *profile.Service
	Sessions *session.Manager
	Crush    *crush.Workflow
}

// New creates a new AppContext and wires the domain services.
// blobs may be nil when avatar storage is not configured; uploads then fail
// with ErrAvatarUploadFailed.
func New(cfg *config.Config, db *gorm.DB, rdb *cache.RedisCache, blobs profile.Blobs, logger *slog.Logger) *AppContext {
	if blobs == nil {
		blobs = unavailableBlobs{}
	}

	profileRepo := repository.NewProfileRepository(db)
	hub := session.NewHub()

	return &AppContext{
		Config:     cfg,
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,

		Hub:      hub,
		Auth:     auth.NewService(repository.NewAccountRepository(db), rdb, cfg.Auth, logger.With("component", "auth")),
		Profiles: profile.NewService(profileRepo, blobs, hub, cfg.Blob.MaxAvatarBytes, logger.With("component", "profile")),
		Sessions: session.NewManager(profileRepo, rdb, hub, logger.With("component", "session")),
		Crush: crush.NewWorkflow(profileRepo, repository.NewCrushRepository(db),
			crush.WithGuard(rdb),
			crush.WithCountCache(rdb),
			crush.WithLogger(logger.With("component", "crush")),
		),
	}
}

// Close releases subscriptions held by the domain services.
func (a *AppContext) Close() {
	a.Sessions.Close()
}
