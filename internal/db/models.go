package db

import (
	"time"
)

// DefaultHints is the hint allowance of a freshly created profile.
const DefaultHints = 3

// Account holds sign-in credentials. ID is the identity key shared with Profile.
type Account struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Profile is the public face of an identity. One row per account, created on
// the first visit after authentication and only ever mutated by its owner.
//
// AvatarKey is the object key inside the avatar bucket; AvatarURL is the
// public URL derived from it. Both are nil when no avatar is set.
type Profile struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Email          string    `gorm:"size:255"`
	Name           string    `gorm:"size:64;not null;default:''"`
	AvatarURL      *string   `gorm:"size:512"`
	AvatarKey      *string   `gorm:"size:255"`
	Gender         string    `gorm:"size:16"`
	Class          string    `gorm:"column:class;size:64"`
	Batch          string    `gorm:"size:32"`
	HintsRemaining int       `gorm:"not null;default:3"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

// Crush is a directed preference sender -> receiver.
//
// Composite PK: (SenderID, ReceiverID)
//   - At most one row per directed pair, so re-selecting can never
//     double-count toward a match.
//
// Indexes:
//   - idx_crush_receiver(receiver_id, sender_id)
//     Serves the receiver half of the "sender = X OR receiver = X" scan.
type Crush struct {
	SenderID   string    `gorm:"primaryKey;size:36"`
	ReceiverID string    `gorm:"primaryKey;size:36;index:idx_crush_receiver,priority:1"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&Account{}, &Profile{}, &Crush{}}
}
