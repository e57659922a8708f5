package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/model"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/mongo"
	"Linkup/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"

	"gorm.io/gorm"
)

// DirectService 单聊通道：实时投递、输入中信号、已读回执。
// 持久化层落库后通过 OnMessageEvent 回调，这里维护 Mongo 里的
// 消息状态镜像（已读批量推进依赖它）并驱动未读计数。
type DirectService interface {
	SendEphemeral(ctx context.Context, senderID uint64, convID uint64, content string) error
	Typing(ctx context.Context, userID uint64, convID uint64, started bool) error
	MarkRead(ctx context.Context, readerID uint64, convID uint64) error
	OnMessageEvent(ctx context.Context, convID uint64, senderID uint64, recipientID uint64, messageID string, content string, at time.Time) error
	CountUnread(ctx context.Context, userID uint64, convID uint64) (int64, error)
}

type directServiceImpl struct {
	convRepo    repository.ConversationRepo
	messageRepo mongo.MessageRepo
	unread      UnreadService
	hub         Broadcaster
}

func NewDirectService(convRepo repository.ConversationRepo, messageRepo mongo.MessageRepo, unread UnreadService, hub Broadcaster) DirectService {
	return &directServiceImpl{
		convRepo:    convRepo,
		messageRepo: messageRepo,
		unread:      unread,
		hub:         hub,
	}
}

// peerOf 校验 userID 是会话参与者并解析对手方。
// 会话不存在或不属于调用者统一返回 ErrConversationNotFound，只报给请求方。
func (s *directServiceImpl) peerOf(ctx context.Context, convID uint64, userID uint64) (uint64, error) {
	conv, err := s.convRepo.GetConversation(ctx, convID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrConversationNotFound
		}
		return 0, err
	}

	peerID, ok := model.PeerOf(conv.PeerKey, userID)
	if !ok {
		return 0, ErrConversationNotFound
	}
	return peerID, nil
}

func (s *directServiceImpl) SendEphemeral(ctx context.Context, senderID uint64, convID uint64, content string) error {
	peerID, err := s.peerOf(ctx, convID, senderID)
	if err != nil {
		return err
	}

	now := time.Now()

	// 回执给发送方
	s.hub.EmitToUser(senderID, consts.EventMessageAcknowledged, &dto.MessageAckDTO{
		ConversationID: convID,
		Content:        content,
		Timestamp:      now,
		Status:         mongo.StatusSent,
	})

	// 对方在线才有实时投递
	if s.hub.IsOnline(peerID) {
		s.hub.EmitToUser(peerID, consts.EventMessageDelivered, &dto.MessageDeliveredDTO{
			ConversationID: convID,
			Content:        content,
			SenderID:       senderID,
			Timestamp:      now,
			Status:         mongo.StatusDelivered,
		})
	}
	return nil
}

// Typing 输入中信号：易失、不落库，对方在线才转发
func (s *directServiceImpl) Typing(ctx context.Context, userID uint64, convID uint64, started bool) error {
	peerID, err := s.peerOf(ctx, convID, userID)
	if err != nil {
		return err
	}

	if !s.hub.IsOnline(peerID) {
		return nil
	}

	event := consts.EventTypingStopped
	if started {
		event = consts.EventTypingStarted
	}
	s.hub.EmitToUser(peerID, event, &dto.TypingDTO{
		ConversationID: convID,
		UserID:         userID,
	})
	return nil
}

// OnMessageEvent 持久化层落库后的回调：写入消息状态镜像并驱动未读计数
func (s *directServiceImpl) OnMessageEvent(ctx context.Context, convID uint64, senderID uint64, recipientID uint64, messageID string, content string, at time.Time) error {
	if senderID == recipientID {
		return ErrParamInvalid
	}
	if at.IsZero() {
		at = time.Now()
	}

	if err := s.ensureConversation(ctx, convID, senderID, recipientID); err != nil {
		return err
	}

	if err := s.messageRepo.SaveMessage(ctx, &mongo.Message{
		ID:             messageID,
		ConversationID: convID,
		SenderID:       senderID,
		Content:        content,
		Status:         mongo.StatusSent,
		CreatedAt:      at,
	}); err != nil {
		return err
	}

	return s.unread.OnDirectMessage(ctx, convID, senderID, recipientID, messageID)
}

// ensureConversation 会话镜像缺失时按 peer_key 补建，保持与持久化层对齐
func (s *directServiceImpl) ensureConversation(ctx context.Context, convID uint64, a uint64, b uint64) error {
	_, err := s.convRepo.GetConversation(ctx, convID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	peerKey := model.BuildPeerKey(a, b)
	_, err = s.convRepo.GetConversationByPeerKey(ctx, peerKey)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	log.InfoContext(ctx, "会话镜像缺失，按消息事件补建", "conversation_id", convID, "peer_key", peerKey)
	return s.convRepo.CreateConversation(ctx, &model.Conversation{ID: convID, PeerKey: peerKey})
}

// CountUnread 按 Mongo 消息明细重算调用者在会话内的未读数
func (s *directServiceImpl) CountUnread(ctx context.Context, userID uint64, convID uint64) (int64, error) {
	peerID, err := s.peerOf(ctx, convID, userID)
	if err != nil {
		return 0, err
	}
	return s.messageRepo.CountUnreadFrom(ctx, convID, peerID)
}

// MarkRead 批量把对方发出的未读消息推进到 read，然后通知对方并归零未读计数
func (s *directServiceImpl) MarkRead(ctx context.Context, readerID uint64, convID uint64) error {
	peerID, err := s.peerOf(ctx, convID, readerID)
	if err != nil {
		return err
	}

	updated, err := s.messageRepo.MarkConversationRead(ctx, convID, peerID)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "会话消息已批量置为已读", "conversation_id", convID, "reader_id", readerID, "updated", updated)

	s.hub.EmitToUser(peerID, consts.EventMessagesMarkedRead, &dto.ReadReceiptDTO{
		ConversationID: convID,
		ReaderID:       readerID,
	})

	if err := s.unread.ResetCount(ctx, readerID, convID, false); err != nil {
		log.ErrorContext(ctx, "未读计数归零失败", "conversation_id", convID, "reader_id", readerID, "err", err)
	}
	return nil
}
