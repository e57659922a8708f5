package model

import "fmt"

// BuildPeerKey 生成单聊唯一标识，无关参数顺序
func BuildPeerKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d_%d", a, b)
}

// PeerOf 从 PeerKey 中解析出对手方 ID，第二个返回值表示 userID 是否属于该会话
func PeerOf(peerKey string, userID uint64) (uint64, bool) {
	var u1, u2 uint64
	if _, err := fmt.Sscanf(peerKey, "%d_%d", &u1, &u2); err != nil {
		return 0, false
	}
	switch userID {
	case u1:
		return u2, true
	case u2:
		return u1, true
	default:
		return 0, false
	}
}
