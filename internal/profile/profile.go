// Package profile manages the owner-editable part of a user's profile:
// display fields and the avatar image.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/crush-radar/internal/db"
	"github.com/oggyb/crush-radar/internal/logger"
	"github.com/oggyb/crush-radar/internal/metrics"
	"github.com/oggyb/crush-radar/internal/session"
)

var (
	ErrNotFound           = errors.New("profile not found")
	ErrInvalidInput       = errors.New("invalid profile input")
	ErrInvalidAvatar      = errors.New("invalid avatar")
	ErrAvatarUploadFailed = errors.New("avatar upload failed")
)

const (
	MaxNameLen  = 64
	maxClassLen = 64
	maxBatchLen = 32
)

// Genders accepted by Update. Empty means not set.
var Genders = map[string]bool{"": true, "male": true, "female": true, "other": true, "prefer-not": true}

// Store persists profiles.
type Store interface {
	Get(ctx context.Context, id string) (*db.Profile, error)
	CreateIfAbsent(ctx context.Context, p *db.Profile) (bool, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	SetAvatar(ctx context.Context, id string, url, key *string) error
}

// Blobs stores avatar objects.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Publisher receives change events after they are persisted.
type Publisher interface {
	Publish(e session.Event)
}

// UpdateInput is a partial update; nil fields are left alone.
type UpdateInput struct {
	Name   *string
	Gender *string
	Class  *string
	Batch  *string
}

// Upload is one avatar file as received from the client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Service struct {
	store     Store
	blobs     Blobs
	events    Publisher
	maxAvatar int64
	now       func() time.Time
	log       *slog.Logger
}

func NewService(store Store, blobs Blobs, events Publisher, maxAvatarBytes int64, log *slog.Logger) *Service {
	log = logger.OrDiscard(log)
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = 5 << 20
	}
	return &Service{
		store:     store,
		blobs:     blobs,
		events:    events,
		maxAvatar: maxAvatarBytes,
		now:       time.Now,
		log:       log,
	}
}

// Ensure creates the profile on the first visit after authentication.
// created reports whether this call made it.
func (s *Service) Ensure(ctx context.Context, id, email string) (*db.Profile, bool, error) {
	created, err := s.store.CreateIfAbsent(ctx, &db.Profile{
		ID:             id,
		Email:          email,
		HintsRemaining: db.DefaultHints,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.log.Info("profile created", "id", id)
	}
	p, err := s.Get(ctx, id)
	return p, created, err
}

func (s *Service) Get(ctx context.Context, id string) (*db.Profile, error) {
	p, err := s.store.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// Update applies in to the caller's own profile.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*db.Profile, error) {
	fields, err := in.fields()
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}

	if err := s.store.Update(ctx, id, fields); err != nil {
		s.log.Error("update profile failed", "id", id, "err", err)
		return nil, err
	}
	s.publish(session.ProfileUpdated, id)
	return s.Get(ctx, id)
}

// UploadAvatar stores a new avatar and points the profile at it. The old
// object is removed only once the new one is in place.
func (s *Service) UploadAvatar(ctx context.Context, id string, up Upload) (*db.Profile, error) {
	if err := s.checkUpload(up); err != nil {
		metrics.AvatarUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := s.avatarKey(id, up)
	body := io.LimitReader(up.Body, up.Size)
	if err := s.blobs.Put(ctx, key, body, up.Size, up.ContentType); err != nil {
		metrics.AvatarUploads.WithLabelValues("failed").Inc()
		s.log.Error("avatar put failed", "id", id, "key", key, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrAvatarUploadFailed, err)
	}

	url := s.blobs.PublicURL(key)
	if err := s.store.SetAvatar(ctx, id, &url, &key); err != nil {
		metrics.AvatarUploads.WithLabelValues("failed").Inc()
		s.log.Error("avatar save failed", "id", id, "err", err)
		s.removeBlob(ctx, id, key)
		return nil, fmt.Errorf("%w: %v", ErrAvatarUploadFailed, err)
	}

	if current.AvatarKey != nil && *current.AvatarKey != key {
		s.removeBlob(ctx, id, *current.AvatarKey)
	}

	metrics.AvatarUploads.WithLabelValues("ok").Inc()
	s.publish(session.AvatarChanged, id)
	return s.Get(ctx, id)
}

// RemoveAvatar clears the avatar. Deleting the object is best-effort.
func (s *Service) RemoveAvatar(ctx context.Context, id string) (*db.Profile, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AvatarKey == nil && current.AvatarURL == nil {
		return current, nil
	}

	if err := s.store.SetAvatar(ctx, id, nil, nil); err != nil {
		s.log.Error("avatar clear failed", "id", id, "err", err)
		return nil, err
	}
	if current.AvatarKey != nil {
		s.removeBlob(ctx, id, *current.AvatarKey)
	}

	s.publish(session.AvatarChanged, id)
	return s.Get(ctx, id)
}

func (s *Service) checkUpload(up Upload) error {
	if up.Body == nil || up.Size <= 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidAvatar)
	}
	if up.Size > s.maxAvatar {
		return fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidAvatar, s.maxAvatar)
	}
	mediaType, _, err := mime.ParseMediaType(up.ContentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("%w: content type must be image/*", ErrInvalidAvatar)
	}
	return nil
}

// avatarKey is "<id>/avatar-<unixmillis>-<random>.<ext>".
func (s *Service) avatarKey(id string, up Upload) string {
	return fmt.Sprintf("%s/avatar-%d-%s.%s",
		id, s.now().UnixMilli(), uuid.NewString()[:8], extension(up.Filename, up.ContentType))
}

func extension(filename, contentType string) string {
	if ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), ".")); ext != "" && len(ext) <= 5 {
		return ext
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if sub, ok := strings.CutPrefix(mediaType, "image/"); ok && sub != "" {
		switch sub {
		case "jpeg":
			return "jpg"
		case "svg+xml":
			return "svg"
		}
		return sub
	}
	return "img"
}

func (s *Service) removeBlob(ctx context.Context, id, key string) {
	if err := s.blobs.Remove(ctx, key); err != nil {
		s.log.Warn("avatar object not removed", "id", id, "key", key, "err", err)
	}
}

func (s *Service) publish(kind session.EventKind, id string) {
	if s.events != nil {
		s.events.Publish(session.Event{Kind: kind, IdentityKey: id})
	}
}

func (in UpdateInput) fields() (map[string]any, error) {
	fields := map[string]any{}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		if utf8.RuneCountInString(name) > MaxNameLen {
			return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, MaxNameLen)
		}
		fields["name"] = name
	}
	if in.Gender != nil {
		g := strings.ToLower(strings.TrimSpace(*in.Gender))
		if !Genders[g] {
			return nil, fmt.Errorf("%w: unknown gender %q", ErrInvalidInput, *in.Gender)
		}
		fields["gender"] = g
	}
	if in.Class != nil {
		c := strings.TrimSpace(*in.Class)
		if utf8.RuneCountInString(c) > maxClassLen {
			return nil, fmt.Errorf("%w: class is too long", ErrInvalidInput)
		}
		fields["class"] = c
	}
	if in.Batch != nil {
		b := strings.TrimSpace(*in.Batch)
		if utf8.RuneCountInString(b) > maxBatchLen {
			return nil, fmt.Errorf("%w: batch is too long", ErrInvalidInput)
		}
		fields["batch"] = b
	}
	return fields, nil
}
