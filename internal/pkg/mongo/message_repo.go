package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	// MarkConversationRead 将会话内 peerID 发出的所有未读消息置为已读，返回受影响条数。
	// 过滤条件排除 read 状态，保证状态不会回退。
	MarkConversationRead(ctx context.Context, convID uint64, peerID uint64) (int64, error)
	CountUnreadFrom(ctx context.Context, convID uint64, peerID uint64) (int64, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("message"),
	}
}

// SaveMessage 将消息存入 MongoDB
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.Status == "" {
		msg.Status = StatusSent
	}
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

func (s *messageRepoImpl) MarkConversationRead(ctx context.Context, convID uint64, peerID uint64) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       peerID,
		"status":          bson.M{"$ne": StatusRead},
	}
	update := bson.M{"$set": bson.M{
		"status":  StatusRead,
		"read_at": time.Now(),
	}}

	res, err := s.col.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnreadFrom 统计会话内对方发出的未读消息数
func (s *messageRepoImpl) CountUnreadFrom(ctx context.Context, convID uint64, peerID uint64) (int64, error) {
	return s.col.CountDocuments(ctx, bson.M{
		"conversation_id": convID,
		"sender_id":       peerID,
		"status":          bson.M{"$ne": StatusRead},
	})
}
