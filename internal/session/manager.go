package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/logger"
)

// ErrNoProfile is returned by View when the identity has no profile yet.
var ErrNoProfile = errors.New("no profile for identity")

// View is what the UI header shows for the signed-in user.
type View struct {
	IdentityKey string `json:"identity_key"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Profiles loads the profile a view is derived from.
type Profiles interface {
	Get(ctx context.Context, id string) (*db.Profile, error)
}

// Store caches serialized views. SetSessionView only stores when no
// DropSessionView ran since gen was read from SessionGeneration.
type Store interface {
	GetSessionView(ctx context.Context, id string) ([]byte, bool, error)
	SessionGeneration(ctx context.Context, id string) (int64, error)
	SetSessionView(ctx context.Context, id string, view []byte, gen int64) (bool, error)
	DropSessionView(ctx context.Context, id string) error
}

// Manager serves session views and drops them whenever the hub reports a
// profile change.
type Manager struct {
	profiles Profiles
	store    Store
	log      *slog.Logger
	unsub    func()
}

// NewManager subscribes to hub. Close detaches it.
func NewManager(profiles Profiles, store Store, hub *Hub, log *slog.Logger) *Manager {
	log = logger.OrDiscard(log)
	m := &Manager{profiles: profiles, store: store, log: log}
	m.unsub = hub.Subscribe(m.invalidate)
	return m
}

func (m *Manager) Close() { m.unsub() }

// View returns the cached view or rebuilds it from the profile.
func (m *Manager) View(ctx context.Context, id string) (View, error) {
	if b, ok, err := m.store.GetSessionView(ctx, id); err != nil {
		m.log.Warn("session cache read failed", "id", id, "err", err)
	} else if ok {
		var v View
		if err := json.Unmarshal(b, &v); err == nil {
			return v, nil
		}
	}

	// read before the profile so a change published mid-load wins
	gen, genErr := m.store.SessionGeneration(ctx, id)
	if genErr != nil {
		m.log.Warn("session cache generation read failed", "id", id, "err", genErr)
	}

	p, err := m.profiles.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return View{}, ErrNoProfile
	} else if err != nil {
		return View{}, err
	}

	v := FromProfile(p)
	if genErr != nil {
		return v, nil
	}
	if b, err := json.Marshal(v); err == nil {
		stored, err := m.store.SetSessionView(ctx, id, b, gen)
		if err != nil {
			m.log.Warn("session cache write failed", "id", id, "err", err)
		} else if !stored {
			m.log.Debug("session view changed while loading", "id", id)
		}
	}
	return v, nil
}

func (m *Manager) invalidate(e Event) {
	if err := m.store.DropSessionView(context.Background(), e.IdentityKey); err != nil {
		m.log.Warn("session cache drop failed", "id", e.IdentityKey, "kind", e.Kind, "err", err)
	}
}

// FromProfile builds a view; an unnamed profile shows its email.
func FromProfile(p *db.Profile) View {
	v := View{IdentityKey: p.ID, DisplayName: p.Name}
	if v.DisplayName == "" {
		v.DisplayName = p.Email
	}
	if p.AvatarURL != nil {
		v.AvatarURL = *p.AvatarURL
	}
	return v
}
