package service

import (
	"Linkup/internal/api/dto"
	"Linkup/internal/model"
	"Linkup/internal/pkg/consts"
	"Linkup/internal/pkg/mongo"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// 会话 1：用户 1 与用户 2
func newDirectFixture() (*fakeConvRepo, *fakeMessageRepo, *fakeUnreadRepo, *fakeBroadcaster, DirectService) {
	convRepo := newFakeConvRepo(&model.Conversation{ID: 1, PeerKey: model.BuildPeerKey(1, 2)})
	msgRepo := &fakeMessageRepo{}
	unreadRepo := newFakeUnreadRepo()
	hub := newFakeBroadcaster()
	unread := NewUnreadService(newFakeGroupRepo(), unreadRepo, hub)
	svc := NewDirectService(convRepo, msgRepo, unread, hub)
	return convRepo, msgRepo, unreadRepo, hub, svc
}

func TestSendEphemeralDeliversWhenPeerOnline(t *testing.T) {
	_, _, _, hub, svc := newDirectFixture()
	hub.online[2] = true

	require.NoError(t, svc.SendEphemeral(context.Background(), 1, 1, "hello"))

	acks := hub.byEvent(consts.EventMessageAcknowledged)
	require.Len(t, acks, 1)
	require.Equal(t, uint64(1), acks[0].target)
	ack := acks[0].data.(*dto.MessageAckDTO)
	require.Equal(t, mongo.StatusSent, ack.Status)
	require.Equal(t, "hello", ack.Content)

	delivered := hub.byEvent(consts.EventMessageDelivered)
	require.Len(t, delivered, 1)
	require.Equal(t, uint64(2), delivered[0].target)
	msg := delivered[0].data.(*dto.MessageDeliveredDTO)
	require.Equal(t, mongo.StatusDelivered, msg.Status)
	require.Equal(t, uint64(1), msg.SenderID)
}

func TestSendEphemeralPeerOffline(t *testing.T) {
	_, _, _, hub, svc := newDirectFixture()

	require.NoError(t, svc.SendEphemeral(context.Background(), 1, 1, "hello"))

	// 发送方仍收到回执，但没有实时投递
	require.Len(t, hub.byEvent(consts.EventMessageAcknowledged), 1)
	require.Empty(t, hub.byEvent(consts.EventMessageDelivered))
}

func TestSendEphemeralNotParticipant(t *testing.T) {
	_, _, _, hub, svc := newDirectFixture()

	err := svc.SendEphemeral(context.Background(), 3, 1, "hello")
	require.ErrorIs(t, err, ErrConversationNotFound)
	require.Empty(t, hub.emits)
}

func TestSendEphemeralUnknownConversation(t *testing.T) {
	_, _, _, _, svc := newDirectFixture()

	err := svc.SendEphemeral(context.Background(), 1, 99, "hello")
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestTypingForwardsOnlyWhenPeerOnline(t *testing.T) {
	_, _, _, hub, svc := newDirectFixture()
	ctx := context.Background()

	require.NoError(t, svc.Typing(ctx, 1, 1, true))
	require.Empty(t, hub.emits)

	hub.online[2] = true
	require.NoError(t, svc.Typing(ctx, 1, 1, true))
	require.NoError(t, svc.Typing(ctx, 1, 1, false))

	started := hub.byEvent(consts.EventTypingStarted)
	require.Len(t, started, 1)
	require.Equal(t, uint64(2), started[0].target)
	require.Equal(t, uint64(1), started[0].data.(*dto.TypingDTO).UserID)
	require.Len(t, hub.byEvent(consts.EventTypingStopped), 1)
}

func TestMarkReadNotifiesPeerAndResetsCount(t *testing.T) {
	_, msgRepo, unreadRepo, hub, svc := newDirectFixture()
	ctx := context.Background()

	// 对方先发一条消息，走消息事件回调产生未读计数
	require.NoError(t, svc.OnMessageEvent(ctx, 1, 2, 1, "m1", "hi", time.Time{}))

	require.NoError(t, svc.MarkRead(ctx, 1, 1))

	// 批量置已读只针对对方发出的消息
	require.Len(t, msgRepo.marks, 1)
	require.Equal(t, uint64(1), msgRepo.marks[0].convID)
	require.Equal(t, uint64(2), msgRepo.marks[0].peerID)

	// 恰好一条回执推给对方
	receipts := hub.byEvent(consts.EventMessagesMarkedRead)
	require.Len(t, receipts, 1)
	require.Equal(t, uint64(2), receipts[0].target)
	receipt := receipts[0].data.(*dto.ReadReceiptDTO)
	require.Equal(t, uint64(1), receipt.ReaderID)
	require.Equal(t, uint64(1), receipt.ConversationID)

	// 未读计数归零并推送给读者本人
	counter, err := unreadRepo.GetUnread(ctx, 1, 1, false)
	require.NoError(t, err)
	require.Zero(t, counter.UnreadCount)
	resets := hub.byEvent(consts.EventUnreadCountChanged)
	require.Len(t, resets, 2) // 前置自增一次 + 归零一次
	last := resets[1]
	require.Equal(t, uint64(1), last.target)
	require.Zero(t, last.data.(*dto.UnreadCountDTO).UnreadCount)
}

func TestOnMessageEventPersistsAndSyncs(t *testing.T) {
	_, msgRepo, unreadRepo, hub, svc := newDirectFixture()
	ctx := context.Background()
	at := time.Now()

	require.NoError(t, svc.OnMessageEvent(ctx, 1, 1, 2, "m9", "hello", at))

	// 消息状态镜像以 sent 落盘
	require.Len(t, msgRepo.saved, 1)
	saved := msgRepo.saved[0]
	require.Equal(t, "m9", saved.ID)
	require.Equal(t, uint64(1), saved.ConversationID)
	require.Equal(t, mongo.StatusSent, saved.Status)
	require.Equal(t, at, saved.CreatedAt)

	// 接收方未读计数自增并收到推送
	counter, err := unreadRepo.GetUnread(ctx, 2, 1, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), counter.UnreadCount)
	pushes := hub.byEvent(consts.EventUnreadCountChanged)
	require.Len(t, pushes, 1)
	require.Equal(t, uint64(2), pushes[0].target)
}

func TestOnMessageEventRebuildsMissingConversation(t *testing.T) {
	convRepo, msgRepo, _, _, svc := newDirectFixture()

	require.NoError(t, svc.OnMessageEvent(context.Background(), 5, 3, 4, "m1", "hi", time.Now()))

	// 未知会话按 peer_key 补建镜像
	conv, err := convRepo.GetConversation(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, model.BuildPeerKey(3, 4), conv.PeerKey)
	require.Len(t, msgRepo.saved, 1)
}

func TestOnMessageEventToSelf(t *testing.T) {
	_, msgRepo, _, _, svc := newDirectFixture()

	err := svc.OnMessageEvent(context.Background(), 1, 1, 1, "m1", "hi", time.Now())
	require.ErrorIs(t, err, ErrParamInvalid)
	require.Empty(t, msgRepo.saved)
}

func TestCountUnreadResolvesPeer(t *testing.T) {
	_, msgRepo, _, _, svc := newDirectFixture()
	msgRepo.countTotal = 3

	total, err := svc.CountUnread(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	// 只统计对手方发出的消息
	require.Len(t, msgRepo.countCalls, 1)
	require.Equal(t, uint64(2), msgRepo.countCalls[0].peerID)

	_, err = svc.CountUnread(context.Background(), 7, 1)
	require.ErrorIs(t, err, ErrConversationNotFound)
}

func TestMarkReadNotParticipant(t *testing.T) {
	_, msgRepo, _, hub, svc := newDirectFixture()

	err := svc.MarkRead(context.Background(), 3, 1)
	require.ErrorIs(t, err, ErrConversationNotFound)
	require.Empty(t, msgRepo.marks)
	require.Empty(t, hub.emits)
}
