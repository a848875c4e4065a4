package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/crush-radar/internal/crush"
	"github.com/oggyb/crush-radar/internal/db"
)

// CrushRepository provides data access methods for the Crush model.
// It encapsulates all queries over directed sender -> receiver edges and
// implements crush.EdgeStore.
type CrushRepository struct {
	db *gorm.DB
}

var _ crush.EdgeStore = (*CrushRepository)(nil)

// NewCrushRepository creates a new repository bound to the given DB connection.
func NewCrushRepository(database *gorm.DB) *CrushRepository {
	return &CrushRepository{db: database}
}

// ToggleEdge flips sender -> receiver inside one transaction.
//
// Behavior:
//   - If the (sender_id, receiver_id) row exists → it is deleted, added=false.
//   - If it doesn't exist → a new row is inserted, added=true.
//   - Composite PK ensures a concurrent duplicate insert is a no-op.
//
// Example:
//
//	repo.ToggleEdge(ctx, "a", "b") // a selects b, or withdraws if already selected
func (r *CrushRepository) ToggleEdge(ctx context.Context, sender, receiver string) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("sender_id = ? AND receiver_id = ?", sender, receiver).
			Delete(&db.Crush{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = false
			return nil
		}

		edge := db.Crush{SenderID: sender, ReceiverID: receiver}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error; err != nil {
			return err
		}
		added = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// OutgoingEdges returns every edge the sender owns, newest first.
func (r *CrushRepository) OutgoingEdges(ctx context.Context, sender string) ([]crush.Edge, error) {
	var rows []db.Crush
	err := r.db.WithContext(ctx).
		Where("sender_id = ?", sender).
		Order("created_at DESC, receiver_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEdges(rows), nil
}

// EdgesInvolving returns edges where id is the sender or the receiver.
//
// Behavior:
//   - Single scan: "sender_id = X OR receiver_id = X".
//   - Served by the PK (sender half) and idx_crush_receiver (receiver half).
//   - Callers intersect the two halves to find mutual pairs.
func (r *CrushRepository) EdgesInvolving(ctx context.Context, id string) ([]crush.Edge, error) {
	var rows []db.Crush
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", id, id).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toEdges(rows), nil
}

// CountOutgoing returns how many crushes the sender has.
// Used in conjunction with Redis cache (DB is fallback).
func (r *CrushRepository) CountOutgoing(ctx context.Context, sender string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Crush{}).
		Where("sender_id = ?", sender).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func toEdges(rows []db.Crush) []crush.Edge {
	out := make([]crush.Edge, len(rows))
	for i, row := range rows {
		out[i] = crush.Edge{Sender: row.SenderID, Receiver: row.ReceiverID, CreatedAt: row.CreatedAt}
	}
	return out
}
