package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/redis"
	"Linkup/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// PresenceService 在线状态追踪：连接/断开时落库并向全体在线用户广播
type PresenceService interface {
	SetOnline(ctx context.Context, userID uint64) error
	SetOffline(ctx context.Context, userID uint64) error
	GetPresence(ctx context.Context, userID uint64) (*dto.PresenceDTO, error)
}

type presenceServiceImpl struct {
	presenceRepo repository.PresenceRepo
	hub          Broadcaster
}

func NewPresenceService(presenceRepo repository.PresenceRepo, hub Broadcaster) PresenceService {
	return &presenceServiceImpl{presenceRepo: presenceRepo, hub: hub}
}

func (s *presenceServiceImpl) SetOnline(ctx context.Context, userID uint64) error {
	return s.transition(ctx, userID, true)
}

func (s *presenceServiceImpl) SetOffline(ctx context.Context, userID uint64) error {
	return s.transition(ctx, userID, false)
}

// transition 上线/下线共用：落库、刷新缓存、广播。
// 广播是尽力而为，不与任何聊天状态写入搭成事务。
func (s *presenceServiceImpl) transition(ctx context.Context, userID uint64, isOnline bool) error {
	now := time.Now()
	if err := s.presenceRepo.UpsertPresence(ctx, userID, isOnline, now); err != nil {
		return err
	}

	// last_seen 缓存供其他服务快速查询，失败只记日志
	field := strconv.FormatUint(userID, 10)
	if err := redis.HSet(ctx, consts.PresenceLastSeenKey, field, now.Unix()); err != nil {
		log.Warn("刷新 last_seen 缓存失败", "user_id", userID, "err", err)
	}

	s.hub.BroadcastAll(consts.EventPresenceChanged, &dto.PresenceDTO{
		UserID:   userID,
		IsOnline: isOnline,
		LastSeen: now,
	})
	return nil
}

func (s *presenceServiceImpl) GetPresence(ctx context.Context, userID uint64) (*dto.PresenceDTO, error) {
	p, err := s.presenceRepo.GetPresence(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var res dto.PresenceDTO
	if err := copier.Copy(&res, p); err != nil {
		return nil, err
	}

	// 缓存里的 last_seen 可能比库里新（落库与缓存刷新之间无事务），取较新者
	field := strconv.FormatUint(userID, 10)
	if v, err := redis.HGet(ctx, consts.PresenceLastSeenKey, field); err == nil && v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			if cached := time.Unix(sec, 0); cached.After(res.LastSeen) {
				res.LastSeen = cached
			}
		}
	}
	return &res, nil
}
