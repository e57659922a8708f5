package repository

import (
	"Linkup/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PresenceRepo interface {
	// UpsertPresence 上线/下线均刷新 last_seen
	UpsertPresence(ctx context.Context, userID uint64, isOnline bool, at time.Time) error
	GetPresence(ctx context.Context, userID uint64) (*model.Presence, error)
}

type presenceRepoImpl struct {
	db *gorm.DB
}

func NewPresenceRepo(db *gorm.DB) PresenceRepo {
	return &presenceRepoImpl{db: db}
}

func (s *presenceRepoImpl) UpsertPresence(ctx context.Context, userID uint64, isOnline bool, at time.Time) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"is_online": isOnline,
			"last_seen": at,
		}),
	}).Create(&model.Presence{
		UserID:   userID,
		IsOnline: isOnline,
		LastSeen: at,
	}).Error
}

func (s *presenceRepoImpl) GetPresence(ctx context.Context, userID uint64) (*model.Presence, error) {
	var p model.Presence
	err := s.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error
	return &p, err
}
