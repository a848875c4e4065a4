package db

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/crush-radar/internal/logger"
)

var (
	seedClasses = []string{"CS-A", "CS-B", "EE-A", "EE-B", "ME-A"}
	seedBatches = []string{"2023", "2024", "2025"}
	seedGenders = []string{"male", "female", "other", "prefer-not"}
)

// SeedTestData resets the database and populates it with demo accounts,
// profiles and crush edges.
//
// Behavior:
//  1. Clears existing data in `crushes`, `profiles` and `accounts`.
//  2. Creates 20 accounts (password "password") each with a completed profile.
//  3. Generates random crush edges; every 3rd edge also gets its reverse so the
//     demo always has mutual matches.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"crushes", "profiles", "accounts"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	logger.Info("cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// --- Seed accounts + profiles ---
	ids := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		id := uuid.NewString()
		email := fmt.Sprintf("user%d@example.com", i)

		account := Account{ID: id, Email: email, PasswordHash: string(hash)}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}

		profile := Profile{
			ID:             id,
			Email:          email,
			Name:           fmt.Sprintf("User %d", i),
			Gender:         seedGenders[r.Intn(len(seedGenders))],
			Class:          seedClasses[r.Intn(len(seedClasses))],
			Batch:          seedBatches[r.Intn(len(seedBatches))],
			HintsRemaining: DefaultHints,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		ids = append(ids, id)
	}
	logger.Info("seeded accounts", "count", len(ids))

	// --- Seed crushes ---
	counter := 0
	for _, sender := range ids {
		for j := 0; j < 5; j++ {
			receiver := ids[r.Intn(len(ids))]
			if sender == receiver {
				continue
			}

			edges := []Crush{{SenderID: sender, ReceiverID: receiver}}
			if counter%3 == 0 {
				edges = append(edges, Crush{SenderID: receiver, ReceiverID: sender})
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edges).Error; err != nil {
				return fmt.Errorf("failed to seed crush: %w", err)
			}
			counter++
		}
	}
	logger.Info("seeded crush selections", "count", counter)

	return nil
}
