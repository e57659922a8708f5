package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GroupMessageRepo interface {
	SaveGroupMessage(ctx context.Context, msg *GroupMessage) error
	// ListUnreadIDs 找出群内 readerID 尚未回执的消息（不含本人发出的）
	ListUnreadIDs(ctx context.Context, groupID uint64, readerID uint64) ([]string, error)
	// UpsertReceipts 按 (message, reader) 幂等写入已读回执
	UpsertReceipts(ctx context.Context, groupID uint64, readerID uint64, messageIDs []string) error
}

type groupMessageRepoImpl struct {
	messages *mongo.Collection
	receipts *mongo.Collection
}

func NewGroupMessageRepo(db *mongo.Database) GroupMessageRepo {
	return &groupMessageRepoImpl{
		messages: db.Collection("group_message"),
		receipts: db.Collection("group_message_receipt"),
	}
}

func (s *groupMessageRepoImpl) SaveGroupMessage(ctx context.Context, msg *GroupMessage) error {
	_, err := s.messages.InsertOne(ctx, msg)
	return err
}

func (s *groupMessageRepoImpl) ListUnreadIDs(ctx context.Context, groupID uint64, readerID uint64) ([]string, error) {
	// 先取该读者已有回执的消息 ID 集合
	acked, err := s.receipts.Distinct(ctx, "message_id", bson.M{
		"group_id":  groupID,
		"reader_id": readerID,
	})
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"group_id":  groupID,
		"sender_id": bson.M{"$ne": readerID},
	}
	if len(acked) > 0 {
		filter["_id"] = bson.M{"$nin": acked}
	}

	cursor, err := s.messages.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *groupMessageRepoImpl) UpsertReceipts(ctx context.Context, groupID uint64, readerID uint64, messageIDs []string) error {
	if len(messageIDs) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(messageIDs))
	for _, id := range messageIDs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"message_id": id, "reader_id": readerID}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{
				"message_id": id,
				"group_id":   groupID,
				"reader_id":  readerID,
				"read_at":    now,
			}}).
			SetUpsert(true))
	}

	_, err := s.receipts.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	return err
}
