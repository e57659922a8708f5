package repository

import (
	"Linkup/internal/model"
	"context"

	"gorm.io/gorm"
)

type GroupRepo interface {
	GetGroup(ctx context.Context, groupID uint64) (*model.Group, error)
	IsMember(ctx context.Context, groupID uint64, userID uint64) (bool, error)
	// ListMemberIDs 返回当前花名册内的全部成员 ID，广播与未读计数均以此为边界
	ListMemberIDs(ctx context.Context, groupID uint64) ([]uint64, error)
}

type groupRepoImpl struct {
	db *gorm.DB
}

func NewGroupRepo(db *gorm.DB) GroupRepo {
	return &groupRepoImpl{db: db}
}

func (s *groupRepoImpl) GetGroup(ctx context.Context, groupID uint64) (*model.Group, error) {
	var group model.Group
	err := s.db.WithContext(ctx).First(&group, groupID).Error
	return &group, err
}

// IsMember 检查用户是否在群组花名册内
func (s *groupRepoImpl) IsMember(ctx context.Context, groupID uint64, userID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	return count > 0, err
}

func (s *groupRepoImpl) ListMemberIDs(ctx context.Context, groupID uint64) ([]uint64, error) {
	var ids []uint64
	err := s.db.WithContext(ctx).Model(&model.GroupMember{}).
		Where("group_id = ?", groupID).
		Pluck("user_id", &ids).Error
	return ids, err
}
