package consts

// 服务端推送事件
const (
	EventPresenceChanged        = "presence-changed"
	EventMessageAcknowledged    = "message-acknowledged"
	EventMessageDelivered       = "message-delivered"
	EventMessagesMarkedRead     = "messages-marked-read"
	EventTypingStarted          = "typing-started"
	EventTypingStopped          = "typing-stopped"
	EventGroupMembershipChanged = "group-membership-changed"
	EventGroupMessageBroadcast  = "group-message-broadcast"
	EventUnreadCountChanged     = "unread-count-changed"
	EventError                  = "error"
)

// 客户端上行事件
const (
	EventDirectSend      = "direct-send"
	EventDirectRead      = "direct-read"
	EventDirectTypingOn  = "direct-typing-start"
	EventDirectTypingOff = "direct-typing-stop"
	EventGroupJoin       = "group-join"
	EventGroupLeave      = "group-leave"
	EventGroupTypingOn   = "group-typing-start"
	EventGroupTypingOff  = "group-typing-stop"
)
