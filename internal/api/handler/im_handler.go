package handler

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/response"
	"Linkup/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// IMHandler 持久化层与查询方访问实时核心的窄接口
type IMHandler struct {
	unread   service.UnreadService
	direct   service.DirectService
	group    service.GroupService
	presence service.PresenceService
}

func NewIMHandler(unread service.UnreadService, direct service.DirectService, group service.GroupService, presence service.PresenceService) *IMHandler {
	return &IMHandler{
		unread:   unread,
		direct:   direct,
		group:    group,
		presence: presence,
	}
}

// OnDirectMessage 单聊消息落库后的回调：写入状态镜像并驱动未读计数
func (s *IMHandler) OnDirectMessage(c *gin.Context) {
	var req dto.DirectMessageEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	err := s.direct.OnMessageEvent(c.Request.Context(), req.ConversationID, req.SenderID, req.RecipientID, req.MessageID, req.Content, req.CreatedAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// OnGroupMessage 群聊消息落库后的回调：写入群消息镜像、群内广播 + 未读计数
func (s *IMHandler) OnGroupMessage(c *gin.Context) {
	var req dto.GroupMessageEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	err := s.group.OnMessageEvent(c.Request.Context(), req.GroupID, req.SenderID, req.MessageID, req.Content, req.CreatedAt)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// MarkGroupRead 群内消息已读：补齐回执并归零计数
func (s *IMHandler) MarkGroupRead(c *gin.Context) {
	var req dto.GroupTargetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := c.GetUint64("user_id")
	if err := s.group.MarkGroupRead(c.Request.Context(), userID, req.GroupID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetPresence 在线状态点查
func (s *IMHandler) GetPresence(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.presence.GetPresence(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetDirectUnread 按 Mongo 消息明细点查当前用户在单个会话内的未读数
func (s *IMHandler) GetDirectUnread(c *gin.Context) {
	convID, err := strconv.ParseUint(c.Param("conversation_id"), 10, 64)
	if err != nil || convID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := c.GetUint64("user_id")
	total, err := s.direct.CountUnread(c.Request.Context(), userID, convID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"total": total})
}

// GetTotalUnread 当前用户全局未读数
func (s *IMHandler) GetTotalUnread(c *gin.Context) {
	userID := c.GetUint64("user_id")

	total, err := s.unread.GetTotalUnread(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"total": total})
}
