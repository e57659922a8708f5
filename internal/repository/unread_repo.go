package repository

import (
	"Linkup/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnreadRepo interface {
	// IncrUnread 单条 upsert 语句完成读-改-写，并发发送方下保持正确，返回自增后的计数
	IncrUnread(ctx context.Context, userID, chatID uint64, isGroup bool, lastMessageID string) (uint64, error)
	ResetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) error
	GetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) (*model.UnreadCounter, error)
	GetTotalUnread(ctx context.Context, userID uint64) (int64, error)
}

type unreadRepoImpl struct {
	db *gorm.DB
}

func NewUnreadRepo(db *gorm.DB) UnreadRepo {
	return &unreadRepoImpl{db: db}
}

func (s *unreadRepoImpl) IncrUnread(ctx context.Context, userID, chatID uint64, isGroup bool, lastMessageID string) (uint64, error) {
	var count uint64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "chat_id"}, {Name: "is_group"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"unread_count":    gorm.Expr("unread_count + 1"),
				"last_message_id": lastMessageID,
				"updated_at":      time.Now(),
			}),
		}).Create(&model.UnreadCounter{
			UserID:        userID,
			ChatID:        chatID,
			IsGroup:       isGroup,
			UnreadCount:   1,
			LastMessageID: lastMessageID,
		}).Error
		if err != nil {
			return err
		}

		return tx.Model(&model.UnreadCounter{}).
			Select("unread_count").
			Where("user_id = ? AND chat_id = ? AND is_group = ?", userID, chatID, isGroup).
			Scan(&count).Error
	})
	return count, err
}

// ResetUnread 归零，仅由计数归属用户的已读动作触发
func (s *unreadRepoImpl) ResetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) error {
	return s.db.WithContext(ctx).Model(&model.UnreadCounter{}).
		Where("user_id = ? AND chat_id = ? AND is_group = ?", userID, chatID, isGroup).
		Update("unread_count", 0).Error
}

func (s *unreadRepoImpl) GetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) (*model.UnreadCounter, error) {
	var counter model.UnreadCounter
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND chat_id = ? AND is_group = ?", userID, chatID, isGroup).
		First(&counter).Error
	return &counter, err
}

// GetTotalUnread 计算全局未读数
func (s *unreadRepoImpl) GetTotalUnread(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&model.UnreadCounter{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(unread_count), 0)").
		Scan(&total).Error
	return total, err
}
