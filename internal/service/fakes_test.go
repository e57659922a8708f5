package service

import (
	"Linkup/internal/model"
	"Linkup/internal/pkg/mongo"
	"Linkup/internal/ws"
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// emission 记录一次推送，便于断言投递目标与载荷
type emission struct {
	kind   string // user / group / room / all / join / leave
	target uint64
	room   string
	except *ws.Session
	event  string
	data   any
}

type fakeBroadcaster struct {
	online map[uint64]bool
	emits  []emission
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{online: make(map[uint64]bool)}
}

func (f *fakeBroadcaster) EmitToUser(userID uint64, event string, data any) bool {
	f.emits = append(f.emits, emission{kind: "user", target: userID, event: event, data: data})
	return true
}

func (f *fakeBroadcaster) EmitToGroup(groupID uint64, event string, data any) int {
	f.emits = append(f.emits, emission{kind: "group", target: groupID, event: event, data: data})
	return 1
}

func (f *fakeBroadcaster) EmitToRoom(room string, event string, data any, except *ws.Session) int {
	f.emits = append(f.emits, emission{kind: "room", room: room, event: event, data: data, except: except})
	return 1
}

func (f *fakeBroadcaster) BroadcastAll(event string, data any) {
	f.emits = append(f.emits, emission{kind: "all", event: event, data: data})
}

func (f *fakeBroadcaster) IsOnline(userID uint64) bool {
	return f.online[userID]
}

func (f *fakeBroadcaster) JoinRoom(room string, s *ws.Session) {
	f.emits = append(f.emits, emission{kind: "join", room: room})
}

func (f *fakeBroadcaster) LeaveRoom(room string, s *ws.Session) {
	f.emits = append(f.emits, emission{kind: "leave", room: room})
}

func (f *fakeBroadcaster) byEvent(event string) []emission {
	var res []emission
	for _, e := range f.emits {
		if e.event == event {
			res = append(res, e)
		}
	}
	return res
}

type fakeConvRepo struct {
	convs map[uint64]*model.Conversation
}

func newFakeConvRepo(convs ...*model.Conversation) *fakeConvRepo {
	f := &fakeConvRepo{convs: make(map[uint64]*model.Conversation)}
	for _, c := range convs {
		f.convs[c.ID] = c
	}
	return f
}

func (f *fakeConvRepo) GetConversation(ctx context.Context, convID uint64) (*model.Conversation, error) {
	if c, ok := f.convs[convID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConvRepo) GetConversationByPeerKey(ctx context.Context, peerKey string) (*model.Conversation, error) {
	for _, c := range f.convs {
		if c.PeerKey == peerKey {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConvRepo) CreateConversation(ctx context.Context, conv *model.Conversation) error {
	f.convs[conv.ID] = conv
	return nil
}

type fakeGroupRepo struct {
	members map[uint64][]uint64
	err     error
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{members: make(map[uint64][]uint64)}
}

func (f *fakeGroupRepo) GetGroup(ctx context.Context, groupID uint64) (*model.Group, error) {
	if _, ok := f.members[groupID]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.Group{ID: groupID}, nil
}

func (f *fakeGroupRepo) IsMember(ctx context.Context, groupID uint64, userID uint64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, id := range f.members[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeGroupRepo) ListMemberIDs(ctx context.Context, groupID uint64) ([]uint64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.members[groupID], nil
}

type fakeUnreadRepo struct {
	counters map[string]*model.UnreadCounter
	err      error
}

func newFakeUnreadRepo() *fakeUnreadRepo {
	return &fakeUnreadRepo{counters: make(map[string]*model.UnreadCounter)}
}

func unreadKey(userID, chatID uint64, isGroup bool) string {
	return fmt.Sprintf("%d_%d_%t", userID, chatID, isGroup)
}

func (f *fakeUnreadRepo) IncrUnread(ctx context.Context, userID, chatID uint64, isGroup bool, lastMessageID string) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	key := unreadKey(userID, chatID, isGroup)
	c, ok := f.counters[key]
	if !ok {
		c = &model.UnreadCounter{UserID: userID, ChatID: chatID, IsGroup: isGroup}
		f.counters[key] = c
	}
	c.UnreadCount++
	c.LastMessageID = lastMessageID
	return c.UnreadCount, nil
}

func (f *fakeUnreadRepo) ResetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) error {
	if f.err != nil {
		return f.err
	}
	if c, ok := f.counters[unreadKey(userID, chatID, isGroup)]; ok {
		c.UnreadCount = 0
	}
	return nil
}

func (f *fakeUnreadRepo) GetUnread(ctx context.Context, userID, chatID uint64, isGroup bool) (*model.UnreadCounter, error) {
	if c, ok := f.counters[unreadKey(userID, chatID, isGroup)]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUnreadRepo) GetTotalUnread(ctx context.Context, userID uint64) (int64, error) {
	var total int64
	for _, c := range f.counters {
		if c.UserID == userID {
			total += int64(c.UnreadCount)
		}
	}
	return total, nil
}

type fakePresenceRepo struct {
	records []model.Presence
	err     error
}

func (f *fakePresenceRepo) UpsertPresence(ctx context.Context, userID uint64, isOnline bool, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, model.Presence{UserID: userID, IsOnline: isOnline, LastSeen: at})
	return nil
}

func (f *fakePresenceRepo) GetPresence(ctx context.Context, userID uint64) (*model.Presence, error) {
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			return &f.records[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type markCall struct {
	convID uint64
	peerID uint64
}

type fakeMessageRepo struct {
	saved      []*mongo.Message
	marks      []markCall
	countCalls []markCall
	countTotal int64
	err        error
}

func (f *fakeMessageRepo) SaveMessage(ctx context.Context, msg *mongo.Message) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeMessageRepo) MarkConversationRead(ctx context.Context, convID uint64, peerID uint64) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.marks = append(f.marks, markCall{convID: convID, peerID: peerID})
	return 2, nil
}

func (f *fakeMessageRepo) CountUnreadFrom(ctx context.Context, convID uint64, peerID uint64) (int64, error) {
	f.countCalls = append(f.countCalls, markCall{convID: convID, peerID: peerID})
	return f.countTotal, nil
}

type receiptCall struct {
	groupID    uint64
	readerID   uint64
	messageIDs []string
}

type fakeGroupMessageRepo struct {
	saved     []*mongo.GroupMessage
	unreadIDs []string
	receipts  []receiptCall
	err       error
}

func (f *fakeGroupMessageRepo) SaveGroupMessage(ctx context.Context, msg *mongo.GroupMessage) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, msg)
	return nil
}

func (f *fakeGroupMessageRepo) ListUnreadIDs(ctx context.Context, groupID uint64, readerID uint64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.unreadIDs, nil
}

func (f *fakeGroupMessageRepo) UpsertReceipts(ctx context.Context, groupID uint64, readerID uint64, messageIDs []string) error {
	if f.err != nil {
		return f.err
	}
	f.receipts = append(f.receipts, receiptCall{groupID: groupID, readerID: readerID, messageIDs: messageIDs})
	return nil
}
