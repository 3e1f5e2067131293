package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"LSProject/data/database"
	"LSProject/module/notify/model"
	"LSProject/tools/errs"
)

type Store struct {
	DB *mongo.Database
}

func New(db *mongo.Database) *Store { return &Store{DB: db} }

func (s *Store) inbox() *mongo.Collection {
	return database.CollectionOf(s.DB, model.Notification{})
}

func (s *Store) prefs() *mongo.Collection {
	return database.CollectionOf(s.DB, model.Preferences{})
}

// Insert 幂等落一条收件箱：同 _id 重复消费不产生重复行
func (s *Store) Insert(ctx context.Context, n *model.Notification) error {
	_, err := s.inbox().UpdateOne(ctx,
		bson.M{"_id": n.ID},
		bson.M{"$setOnInsert": n},
		options.Update().SetUpsert(true),
	)
	return err
}

// Inbox 最新在前，最多 limit 条
func (s *Store) Inbox(ctx context.Context, userID string, unreadOnly bool, limit int64) ([]model.Notification, error) {
	filter := bson.M{"recipient_id": userID}
	if unreadOnly {
		filter["read"] = false
	}
	cur, err := s.inbox().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []model.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.inbox().CountDocuments(ctx, bson.M{"recipient_id": userID, "read": false})
}

// MarkRead 标记一条；不属于该用户时不生效
func (s *Store) MarkRead(ctx context.Context, userID, notificationID string) error {
	res, err := s.inbox().UpdateOne(ctx,
		bson.M{"_id": notificationID, "recipient_id": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errs.ErrRecordNotFound.WithDetail("notification " + notificationID)
	}
	return nil
}

func (s *Store) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res, err := s.inbox().UpdateMany(ctx,
		bson.M{"recipient_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// GetPreferences 没有记录时返回全开默认值
func (s *Store) GetPreferences(ctx context.Context, userID string) (model.Preferences, error) {
	var p model.Preferences
	err := s.prefs().FindOne(ctx, bson.M{"_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return model.DefaultPreferences(userID), nil
	}
	if err != nil {
		return model.Preferences{}, err
	}
	return p, nil
}

func (s *Store) UpsertPreferences(ctx context.Context, p model.Preferences) error {
	p.UpdatedAt = time.Now().UTC()
	_, err := s.prefs().UpdateOne(ctx,
		bson.M{"_id": p.UserID},
		bson.M{"$set": p},
		options.Update().SetUpsert(true),
	)
	return err
}

// EnsureIndexes 启动时建收件箱查询索引
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.inbox().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "read", Value: 1}}},
	})
	return err
}
