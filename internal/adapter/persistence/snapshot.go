// Package persistence stores venue.Snapshot durably, grounded on the
// teacher's repository shape (internal/db/repositories/*Repository: a
// struct holding *gorm.DB and *zap.Logger, Create/GetLatest methods).
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ionex-markets/matchcore/internal/core/venue"
)

// SnapshotRecord is the gorm model backing one persisted venue.Snapshot.
// Payload is JSON rather than a normalized schema because JSON round-trips
// decimal.Decimal exactly (it marshals as a string) — spec.md §6(b)'s only
// hard requirement on the snapshot encoding.
type SnapshotRecord struct {
	ID      uint64 `gorm:"primaryKey"`
	TakenAt time.Time
	Payload []byte `gorm:"type:jsonb"`
}

// TableName pins the gorm table name regardless of struct name changes.
func (SnapshotRecord) TableName() string { return "venue_snapshots" }

// SnapshotRepository persists and retrieves venue.Snapshot values.
type SnapshotRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSnapshotRepository creates a repository over db.
func NewSnapshotRepository(db *gorm.DB, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// Migrate creates the backing table if it does not already exist.
func (r *SnapshotRepository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&SnapshotRecord{})
}

// Create persists snap as a new row.
func (r *SnapshotRepository) Create(ctx context.Context, snap venue.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		r.logger.Error("failed to marshal venue snapshot", zap.Error(err))
		return err
	}
	record := &SnapshotRecord{TakenAt: time.Now(), Payload: payload}
	if result := r.db.WithContext(ctx).Create(record); result.Error != nil {
		r.logger.Error("failed to persist venue snapshot", zap.Error(result.Error))
		return result.Error
	}
	return nil
}

// GetLatest returns the most recently taken snapshot, or (zero, false, nil)
// if none has ever been persisted.
func (r *SnapshotRepository) GetLatest(ctx context.Context) (venue.Snapshot, bool, error) {
	var record SnapshotRecord
	result := r.db.WithContext(ctx).Order("taken_at DESC, id DESC").First(&record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return venue.Snapshot{}, false, nil
		}
		r.logger.Error("failed to load latest venue snapshot", zap.Error(result.Error))
		return venue.Snapshot{}, false, result.Error
	}

	var snap venue.Snapshot
	if err := json.Unmarshal(record.Payload, &snap); err != nil {
		r.logger.Error("failed to unmarshal venue snapshot", zap.Error(err))
		return venue.Snapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteOlderThan removes snapshots taken before cutoff, retaining history
// depth bounded to what the caller wants to keep.
func (r *SnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) error {
	result := r.db.WithContext(ctx).Where("taken_at < ?", cutoff).Delete(&SnapshotRecord{})
	if result.Error != nil {
		r.logger.Error("failed to delete old venue snapshots", zap.Error(result.Error))
		return result.Error
	}
	return nil
}
