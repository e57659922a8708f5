package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/repository"
	"context"
	log "log/slog"
)

// UnreadService 未读计数同步：消息事件驱动自增并推送，已读动作归零。
// 同一 messageID 重复投递不做去重，计数可能重复累加，等产品定论后再收口。
type UnreadService interface {
	OnGroupMessage(ctx context.Context, groupID uint64, senderID uint64, messageID string) error
	OnDirectMessage(ctx context.Context, convID uint64, senderID uint64, recipientID uint64, messageID string) error
	ResetCount(ctx context.Context, userID uint64, chatID uint64, isGroup bool) error
	GetTotalUnread(ctx context.Context, userID uint64) (int64, error)
}

type unreadServiceImpl struct {
	groupRepo  repository.GroupRepo
	unreadRepo repository.UnreadRepo
	hub        Broadcaster
}

func NewUnreadService(groupRepo repository.GroupRepo, unreadRepo repository.UnreadRepo, hub Broadcaster) UnreadService {
	return &unreadServiceImpl{
		groupRepo:  groupRepo,
		unreadRepo: unreadRepo,
		hub:        hub,
	}
}

// OnGroupMessage 对当前花名册内除发送者外的每个成员自增并推送。
// 单个成员失败只记日志，不影响其余成员。
func (s *unreadServiceImpl) OnGroupMessage(ctx context.Context, groupID uint64, senderID uint64, messageID string) error {
	memberIDs, err := s.groupRepo.ListMemberIDs(ctx, groupID)
	if err != nil {
		return err
	}

	for _, memberID := range memberIDs {
		if memberID == senderID {
			continue
		}
		s.incrAndPush(ctx, memberID, groupID, true, messageID)
	}
	return nil
}

func (s *unreadServiceImpl) OnDirectMessage(ctx context.Context, convID uint64, senderID uint64, recipientID uint64, messageID string) error {
	if recipientID == senderID {
		return ErrParamInvalid
	}
	s.incrAndPush(ctx, recipientID, convID, false, messageID)
	return nil
}

func (s *unreadServiceImpl) incrAndPush(ctx context.Context, userID uint64, chatID uint64, isGroup bool, messageID string) {
	count, err := s.unreadRepo.IncrUnread(ctx, userID, chatID, isGroup, messageID)
	if err != nil {
		log.ErrorContext(ctx, "未读计数自增失败", "user_id", userID, "chat_id", chatID, "is_group", isGroup, "err", err)
		return
	}

	s.hub.EmitToUser(userID, consts.EventUnreadCountChanged, &dto.UnreadCountDTO{
		ChatID:        chatID,
		IsGroup:       isGroup,
		UnreadCount:   count,
		LastMessageID: messageID,
	})
}

// ResetCount 归零并推送，只能由计数归属用户的已读动作触发
func (s *unreadServiceImpl) ResetCount(ctx context.Context, userID uint64, chatID uint64, isGroup bool) error {
	if err := s.unreadRepo.ResetUnread(ctx, userID, chatID, isGroup); err != nil {
		return err
	}

	s.hub.EmitToUser(userID, consts.EventUnreadCountChanged, &dto.UnreadCountDTO{
		ChatID:      chatID,
		IsGroup:     isGroup,
		UnreadCount: 0,
	})
	return nil
}

func (s *unreadServiceImpl) GetTotalUnread(ctx context.Context, userID uint64) (int64, error) {
	return s.unreadRepo.GetTotalUnread(ctx, userID)
}
