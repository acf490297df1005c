package repositories

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tube-brief/models"
)

type ChatMessageRepository struct {
	col *mongo.Collection
}

func NewChatMessageRepository(db *mongo.Database) *ChatMessageRepository {
	return &ChatMessageRepository{col: db.Collection("chat_messages")}
}

// Insert appends a message. Messages are never updated afterwards.
func (r *ChatMessageRepository) Insert(ctx context.Context, m *models.ChatMessage) (primitive.ObjectID, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	m.ID = id
	return id, nil
}

// ListByVideo returns the full history for a video in chronological order.
func (r *ChatMessageRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.ChatMessage, error) {
	cur, err := r.col.Find(ctx, bson.M{"video_id": videoID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.ChatMessage
	for cur.Next(ctx) {
		var m models.ChatMessage
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, cur.Err()
}

// ListRecentByVideo returns the latest limit messages in chronological order
// (context window for the next chat turn).
func (r *ChatMessageRepository) ListRecentByVideo(ctx context.Context, videoID primitive.ObjectID, limit int) ([]models.ChatMessage, error) {
	cur, err := r.col.Find(ctx, bson.M{"video_id": videoID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
			SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.ChatMessage
	for cur.Next(ctx) {
		var m models.ChatMessage
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	// reverse newest-first into chronological order
	for i, j := 0, len(results)-1; i < j; i, j = i+1, j-1 {
		results[i], results[j] = results[j], results[i]
	}
	return results, nil
}

// CountByVideo reports how many messages a video has.
func (r *ChatMessageRepository) CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"video_id": videoID})
}
