package consts

const (
	TokenRevokedKey     = "token:revoked:"
	PresenceLastSeenKey = "presence:last_seen"
)
