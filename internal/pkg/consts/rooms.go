package consts

import "strconv"

// 房间命名规则：个人房间承载所有面向单个用户的推送，群房间承载群内广播
const (
	UserRoomPrefix  = "user:"
	GroupRoomPrefix = "group:"
)

func UserRoom(userID uint64) string {
	return UserRoomPrefix + strconv.FormatUint(userID, 10)
}

func GroupRoom(groupID uint64) string {
	return GroupRoomPrefix + strconv.FormatUint(groupID, 10)
}
