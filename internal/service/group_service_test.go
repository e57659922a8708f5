package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/ws"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newGroupFixture() (*fakeGroupRepo, *fakeGroupMessageRepo, *fakeUnreadRepo, *fakeBroadcaster, GroupService) {
	groupRepo := newFakeGroupRepo()
	groupRepo.members[9] = []uint64{1, 2}
	groupMsgRepo := &fakeGroupMessageRepo{}
	unreadRepo := newFakeUnreadRepo()
	hub := newFakeBroadcaster()
	unread := NewUnreadService(groupRepo, unreadRepo, hub)
	svc := NewGroupService(groupRepo, groupMsgRepo, unread, hub)
	return groupRepo, groupMsgRepo, unreadRepo, hub, svc
}

func TestJoinRejectsNonMember(t *testing.T) {
	_, _, _, hub, svc := newGroupFixture()
	sess := ws.NewSession(3, nil)

	err := svc.Join(context.Background(), sess, 9)
	require.ErrorIs(t, err, ErrNotGroupMember)
	require.Empty(t, hub.emits)
}

func TestJoinNotifiesRoomBeforeAdmission(t *testing.T) {
	_, _, _, hub, svc := newGroupFixture()
	sess := ws.NewSession(1, nil)

	require.NoError(t, svc.Join(context.Background(), sess, 9))

	// 先向在场成员广播，再把新会话放进房间
	require.Len(t, hub.emits, 2)
	require.Equal(t, "room", hub.emits[0].kind)
	require.Equal(t, consts.EventGroupMembershipChanged, hub.emits[0].event)
	require.Equal(t, consts.GroupRoom(9), hub.emits[0].room)
	notice := hub.emits[0].data.(*dto.GroupMembershipDTO)
	require.Equal(t, MembershipJoined, notice.Action)
	require.Equal(t, uint64(1), notice.UserID)

	require.Equal(t, "join", hub.emits[1].kind)
	require.Equal(t, consts.GroupRoom(9), hub.emits[1].room)
}

func TestLeaveNotifiesRemaining(t *testing.T) {
	_, _, _, hub, svc := newGroupFixture()
	sess := ws.NewSession(1, nil)

	require.NoError(t, svc.Leave(context.Background(), sess, 9))

	// 先出房再广播，离开通知不会发回给离开者
	require.Len(t, hub.emits, 2)
	require.Equal(t, "leave", hub.emits[0].kind)
	require.Equal(t, "room", hub.emits[1].kind)
	require.Equal(t, MembershipLeft, hub.emits[1].data.(*dto.GroupMembershipDTO).Action)
}

func TestGroupTypingExcludesSender(t *testing.T) {
	_, _, _, hub, svc := newGroupFixture()
	sess := ws.NewSession(1, nil)

	require.NoError(t, svc.Typing(context.Background(), sess, 9, true))

	started := hub.byEvent(consts.EventTypingStarted)
	require.Len(t, started, 1)
	require.Equal(t, consts.GroupRoom(9), started[0].room)
	require.Same(t, sess, started[0].except)
	require.Equal(t, uint64(9), started[0].data.(*dto.TypingDTO).GroupID)
}

func TestBroadcastToGroup(t *testing.T) {
	_, _, _, hub, svc := newGroupFixture()
	payload := &dto.GroupMessageDTO{GroupID: 9, MessageID: "m1", SenderID: 1, Content: "hi"}

	svc.BroadcastToGroup(context.Background(), 9, consts.EventGroupMessageBroadcast, payload)

	emits := hub.byEvent(consts.EventGroupMessageBroadcast)
	require.Len(t, emits, 1)
	require.Equal(t, "group", emits[0].kind)
	require.Equal(t, uint64(9), emits[0].target)
	require.Same(t, payload, emits[0].data)
}

func TestGroupOnMessageEventPersistsBroadcastsAndCounts(t *testing.T) {
	_, groupMsgRepo, unreadRepo, hub, svc := newGroupFixture()
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, svc.OnMessageEvent(ctx, 9, 2, "m1", "hello", at))

	// 群消息镜像落盘
	require.Len(t, groupMsgRepo.saved, 1)
	saved := groupMsgRepo.saved[0]
	require.Equal(t, "m1", saved.ID)
	require.Equal(t, uint64(9), saved.GroupID)
	require.Equal(t, at, saved.CreatedAt)

	// 群内广播一次
	casts := hub.byEvent(consts.EventGroupMessageBroadcast)
	require.Len(t, casts, 1)
	require.Equal(t, "group", casts[0].kind)
	require.Equal(t, "hello", casts[0].data.(*dto.GroupMessageDTO).Content)

	// 发送者之外的成员计数自增
	counter, err := unreadRepo.GetUnread(ctx, 1, 9, true)
	require.NoError(t, err)
	require.Equal(t, uint64(1), counter.UnreadCount)
	_, err = unreadRepo.GetUnread(ctx, 2, 9, true)
	require.Error(t, err)
}

func TestGroupOnMessageEventUnknownGroup(t *testing.T) {
	_, groupMsgRepo, _, hub, svc := newGroupFixture()

	err := svc.OnMessageEvent(context.Background(), 404, 2, "m1", "hi", time.Now())
	require.ErrorIs(t, err, ErrGroupNotFound)
	require.Empty(t, groupMsgRepo.saved)
	require.Empty(t, hub.emits)
}

func TestMarkGroupReadUpsertsReceiptsAndResets(t *testing.T) {
	_, groupMsgRepo, unreadRepo, hub, svc := newGroupFixture()
	groupMsgRepo.unreadIDs = []string{"m1", "m2"}
	ctx := context.Background()

	// 群内先有一条消息，走消息事件回调产生成员 1 的未读计数
	require.NoError(t, svc.OnMessageEvent(ctx, 9, 2, "m2", "hi", time.Now()))

	require.NoError(t, svc.MarkGroupRead(ctx, 1, 9))

	require.Len(t, groupMsgRepo.receipts, 1)
	require.Equal(t, uint64(9), groupMsgRepo.receipts[0].groupID)
	require.Equal(t, uint64(1), groupMsgRepo.receipts[0].readerID)
	require.Equal(t, []string{"m1", "m2"}, groupMsgRepo.receipts[0].messageIDs)

	counter, err := unreadRepo.GetUnread(ctx, 1, 9, true)
	require.NoError(t, err)
	require.Zero(t, counter.UnreadCount)
	require.Len(t, hub.byEvent(consts.EventUnreadCountChanged), 2) // 自增 + 归零
}

func TestMarkGroupReadRejectsNonMember(t *testing.T) {
	_, groupMsgRepo, _, _, svc := newGroupFixture()

	err := svc.MarkGroupRead(context.Background(), 3, 9)
	require.ErrorIs(t, err, ErrNotGroupMember)
	require.Empty(t, groupMsgRepo.receipts)
}
