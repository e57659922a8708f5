package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/mongo"
	"Linkup/internal/repository"
	"Linkup/internal/ws"
	"context"
	"errors"
	log "log/slog"
	"time"

	"gorm.io/gorm"
)

const (
	MembershipJoined = "joined"
	MembershipLeft   = "left"
)

// GroupService 群聊通道：房间进出、广播与输入中信号
type GroupService interface {
	Join(ctx context.Context, sess *ws.Session, groupID uint64) error
	Leave(ctx context.Context, sess *ws.Session, groupID uint64) error
	Typing(ctx context.Context, sess *ws.Session, groupID uint64, started bool) error
	BroadcastToGroup(ctx context.Context, groupID uint64, event string, payload any)
	OnMessageEvent(ctx context.Context, groupID uint64, senderID uint64, messageID string, content string, at time.Time) error
	MarkGroupRead(ctx context.Context, userID uint64, groupID uint64) error
}

type groupServiceImpl struct {
	groupRepo    repository.GroupRepo
	groupMsgRepo mongo.GroupMessageRepo
	unread       UnreadService
	hub          Broadcaster
}

func NewGroupService(groupRepo repository.GroupRepo, groupMsgRepo mongo.GroupMessageRepo, unread UnreadService, hub Broadcaster) GroupService {
	return &groupServiceImpl{
		groupRepo:    groupRepo,
		groupMsgRepo: groupMsgRepo,
		unread:       unread,
		hub:          hub,
	}
}

// requireMember 入房前显式校验花名册，不再信任上游的预检查
func (s *groupServiceImpl) requireMember(ctx context.Context, groupID uint64, userID uint64) error {
	isMember, err := s.groupRepo.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return ErrNotGroupMember
	}
	return nil
}

func (s *groupServiceImpl) Join(ctx context.Context, sess *ws.Session, groupID uint64) error {
	if err := s.requireMember(ctx, groupID, sess.UserID); err != nil {
		return err
	}

	room := consts.GroupRoom(groupID)

	// 先通知在场成员，再入房，避免通知发给自己
	s.hub.EmitToRoom(room, consts.EventGroupMembershipChanged, &dto.GroupMembershipDTO{
		GroupID: groupID,
		UserID:  sess.UserID,
		Action:  MembershipJoined,
	}, nil)

	s.hub.JoinRoom(room, sess)
	log.InfoContext(ctx, "会话加入群房间", "group_id", groupID, "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

func (s *groupServiceImpl) Leave(ctx context.Context, sess *ws.Session, groupID uint64) error {
	room := consts.GroupRoom(groupID)
	s.hub.LeaveRoom(room, sess)

	s.hub.EmitToRoom(room, consts.EventGroupMembershipChanged, &dto.GroupMembershipDTO{
		GroupID: groupID,
		UserID:  sess.UserID,
		Action:  MembershipLeft,
	}, nil)
	log.InfoContext(ctx, "会话退出群房间", "group_id", groupID, "user_id", sess.UserID, "session_id", sess.ID)
	return nil
}

// Typing 房间范围的易失信号，排除发送者本人
func (s *groupServiceImpl) Typing(ctx context.Context, sess *ws.Session, groupID uint64, started bool) error {
	event := consts.EventTypingStopped
	if started {
		event = consts.EventTypingStarted
	}

	s.hub.EmitToRoom(consts.GroupRoom(groupID), event, &dto.TypingDTO{
		GroupID: groupID,
		UserID:  sess.UserID,
	}, sess)
	return nil
}

// BroadcastToGroup 投向群房间，房间为空时由 Hub 降级为全局广播
func (s *groupServiceImpl) BroadcastToGroup(ctx context.Context, groupID uint64, event string, payload any) {
	delivered := s.hub.EmitToGroup(groupID, event, payload)
	log.InfoContext(ctx, "群事件已广播", "group_id", groupID, "event", event, "delivered", delivered)
}

// OnMessageEvent 持久化层落库后的回调：写入群消息镜像、群内广播并驱动未读计数
func (s *groupServiceImpl) OnMessageEvent(ctx context.Context, groupID uint64, senderID uint64, messageID string, content string, at time.Time) error {
	if _, err := s.groupRepo.GetGroup(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if at.IsZero() {
		at = time.Now()
	}
	if err := s.groupMsgRepo.SaveGroupMessage(ctx, &mongo.GroupMessage{
		ID:        messageID,
		GroupID:   groupID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: at,
	}); err != nil {
		return err
	}

	s.BroadcastToGroup(ctx, groupID, consts.EventGroupMessageBroadcast, &dto.GroupMessageDTO{
		GroupID:   groupID,
		MessageID: messageID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: at,
	})

	return s.unread.OnGroupMessage(ctx, groupID, senderID, messageID)
}

// MarkGroupRead 补齐该用户在群内的全部已读回执并归零未读计数
func (s *groupServiceImpl) MarkGroupRead(ctx context.Context, userID uint64, groupID uint64) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	ids, err := s.groupMsgRepo.ListUnreadIDs(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if err := s.groupMsgRepo.UpsertReceipts(ctx, groupID, userID, ids); err != nil {
		return err
	}

	if err := s.unread.ResetCount(ctx, userID, groupID, true); err != nil {
		log.ErrorContext(ctx, "群未读计数归零失败", "group_id", groupID, "user_id", userID, "err", err)
	}
	return nil
}
