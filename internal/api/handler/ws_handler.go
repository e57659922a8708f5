package handler

import (
	"Linkup/internal/api/config"
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/redis"
	"Linkup/internal/pkg/response"
	"Linkup/internal/pkg/security"
	"Linkup/internal/service"
	"Linkup/internal/ws"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WsHandler 连接网关：握手鉴权、会话登记、上行事件分发
type WsHandler struct {
	hub      *ws.Hub
	presence service.PresenceService
	direct   service.DirectService
	group    service.GroupService
}

func NewWsHandler(hub *ws.Hub, presence service.PresenceService, direct service.DirectService, group service.GroupService) *WsHandler {
	return &WsHandler{
		hub:      hub,
		presence: presence,
		direct:   direct,
		group:    group,
	}
}

func writeTimeout() time.Duration {
	if config.Cfg != nil && config.Cfg.WS.WriteTimeout > 0 {
		return time.Duration(config.Cfg.WS.WriteTimeout) * time.Second
	}
	return 10 * time.Second
}

func (s *WsHandler) Connect(c *gin.Context) {
	// 鉴权必须在任何处理器挂载之前完成，失败时连接不会被升级
	token := c.Query("token")
	if token == "" {
		response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
		return
	}

	signature, err := security.ExtractSignature(token)
	if err != nil {
		response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
		return
	}
	revoked, err := redis.GetValue(c.Request.Context(), consts.TokenRevokedKey+signature)
	if err == nil && revoked != "" {
		response.Fail(c, response.Unauthorized, "Token 无效或已过期")
		return
	}

	claims, err := security.ValidateToken(token)
	if err != nil {
		log.Warn("WS 鉴权失败", "err", err)
		response.Fail(c, response.Unauthorized, "Token 无效或已过期")
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}

	ctx := c.Request.Context()

	// 登记会话并进入个人房间
	sess := ws.NewSession(userID, conn)
	s.hub.Register(sess)
	go sess.WriteLoop(writeTimeout())

	if err := s.presence.SetOnline(ctx, userID); err != nil {
		log.ErrorContext(ctx, "上线状态写入失败", "user_id", userID, "err", err)
	}

	log.InfoContext(ctx, "用户 WS 连接已建立", "user_id", userID, "session_id", sess.ID)

	defer func() {
		s.hub.Unregister(sess)
		// 被顶替的旧会话断开时，该身份仍有新会话在线，不能打成离线
		if !s.hub.IsOnline(userID) {
			if err := s.presence.SetOffline(context.WithoutCancel(ctx), userID); err != nil {
				log.Error("下线状态写入失败", "user_id", userID, "err", err)
			}
		}
		log.Info("用户 WS 连接已断开", "user_id", userID, "session_id", sess.ID)
	}()

	// 读循环：逐帧分发上行事件
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatch(ctx, sess, raw)
	}
}

// dispatch 处理单帧上行事件。任何处理失败只回错误事件给当前连接，
// 读循环与其他连接不受影响。
func (s *WsHandler) dispatch(ctx context.Context, sess *ws.Session, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "WS 事件处理 panic", "user_id", sess.UserID, "panic", r)
			sess.Send(consts.EventError, &dto.WSErrorDTO{Message: service.UnExpectedError.Error()})
		}
	}()

	frame, err := ws.DecodeFrame(raw)
	if err != nil {
		sess.Send(consts.EventError, &dto.WSErrorDTO{Message: service.ErrParamInvalid.Error()})
		return
	}

	if err := s.handleEvent(ctx, sess, frame); err != nil {
		s.replyError(sess, frame.Event, err)
	}
}

func (s *WsHandler) handleEvent(ctx context.Context, sess *ws.Session, frame *ws.Frame) error {
	switch frame.Event {
	case consts.EventDirectSend:
		var req dto.DirectSendReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.ConversationID == 0 || req.Content == "" {
			return service.ErrParamInvalid
		}
		return s.direct.SendEphemeral(ctx, sess.UserID, req.ConversationID, req.Content)

	case consts.EventDirectRead:
		var req dto.DirectReadReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.ConversationID == 0 {
			return service.ErrParamInvalid
		}
		return s.direct.MarkRead(ctx, sess.UserID, req.ConversationID)

	case consts.EventDirectTypingOn, consts.EventDirectTypingOff:
		var req dto.DirectTypingReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.ConversationID == 0 {
			return service.ErrParamInvalid
		}
		return s.direct.Typing(ctx, sess.UserID, req.ConversationID, frame.Event == consts.EventDirectTypingOn)

	case consts.EventGroupJoin:
		var req dto.GroupTargetReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.GroupID == 0 {
			return service.ErrParamInvalid
		}
		return s.group.Join(ctx, sess, req.GroupID)

	case consts.EventGroupLeave:
		var req dto.GroupTargetReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.GroupID == 0 {
			return service.ErrParamInvalid
		}
		return s.group.Leave(ctx, sess, req.GroupID)

	case consts.EventGroupTypingOn, consts.EventGroupTypingOff:
		var req dto.GroupTargetReq
		if err := json.Unmarshal(frame.Data, &req); err != nil || req.GroupID == 0 {
			return service.ErrParamInvalid
		}
		return s.group.Typing(ctx, sess, req.GroupID, frame.Event == consts.EventGroupTypingOn)

	default:
		log.WarnContext(ctx, "未知的上行事件", "event", frame.Event, "user_id", sess.UserID)
		return nil
	}
}

// replyError 业务错误原样回传，未登记的错误按系统异常收敛
func (s *WsHandler) replyError(sess *ws.Session, event string, err error) {
	msg := service.UnExpectedError.Error()
	if _, ok := service.ErrorMap[err]; ok {
		msg = err.Error()
	} else {
		log.Error("WS 事件处理失败", "event", event, "user_id", sess.UserID, "err", err)
	}
	sess.Send(consts.EventError, &dto.WSErrorDTO{Event: event, Message: msg})
}
