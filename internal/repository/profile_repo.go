package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/crush-radar/internal/crush"
	"github.com/oggyb/crush-radar/internal/db"
)

// ProfileRepository reads and writes profiles. It implements crush.ProfileStore.
type ProfileRepository struct {
	db *gorm.DB
}

var _ crush.ProfileStore = (*ProfileRepository)(nil)

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// ListProfilesExcluding returns every profile with a name, except viewer.
// Profiles that never finished setup are not browsable.
func (r *ProfileRepository) ListProfilesExcluding(ctx context.Context, viewer string) ([]crush.Profile, error) {
	var rows []db.Profile
	err := r.db.WithContext(ctx).
		Where("id <> ? AND name <> ''", viewer).
		Order("name ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]crush.Profile, len(rows))
	for i := range rows {
		out[i] = ToCrushProfile(&rows[i])
	}
	return out, nil
}

// GetProfiles batch-loads profiles with one IN query.
func (r *ProfileRepository) GetProfiles(ctx context.Context, ids []string) (map[string]crush.Profile, error) {
	out := make(map[string]crush.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []db.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = ToCrushProfile(&rows[i])
	}
	return out, nil
}

// Get returns gorm.ErrRecordNotFound when the profile does not exist.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIfAbsent inserts p unless a profile with the same ID exists.
// It reports whether a row was created.
func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, p *db.Profile) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Update applies a partial update. Keys are column names.
func (r *ProfileRepository) Update(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// SetAvatar stores the avatar URL and object key. Nil clears both.
func (r *ProfileRepository) SetAvatar(ctx context.Context, id string, url, key *string) error {
	return r.Update(ctx, id, map[string]any{
		"avatar_url": url,
		"avatar_key": key,
	})
}

// ToCrushProfile converts a row into the display type used by the crush core.
func ToCrushProfile(p *db.Profile) crush.Profile {
	out := crush.Profile{
		ID:             p.ID,
		Name:           p.Name,
		Gender:         p.Gender,
		Class:          p.Class,
		Batch:          p.Batch,
		HintsRemaining: p.HintsRemaining,
	}
	if p.AvatarURL != nil {
		out.AvatarURL = *p.AvatarURL
	}
	return out
}
