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

type TagRepository struct {
	tags      *mongo.Collection
	videoTags *mongo.Collection
}

func NewTagRepository(db *mongo.Database) *TagRepository {
	return &TagRepository{
		tags:      db.Collection("tags"),
		videoTags: db.Collection("video_tags"),
	}
}

// ListByUser returns the caller's tags sorted by name.
func (r *TagRepository) ListByUser(ctx context.Context, userID string) ([]models.Tag, error) {
	cur, err := r.tags.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Tag
	for cur.Next(ctx) {
		var t models.Tag
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, cur.Err()
}

// Create inserts a tag for a user. The unique (user_id, name) index rejects
// duplicates.
func (r *TagRepository) Create(ctx context.Context, userID, name string) (*models.Tag, error) {
	t := models.Tag{CreatedAt: time.Now(), UserID: userID, Name: name}
	res, err := r.tags.InsertOne(ctx, t)
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	t.ID = id
	return &t, nil
}

// Attach links a tag to a video, idempotently.
func (r *TagRepository) Attach(ctx context.Context, videoID, tagID primitive.ObjectID) error {
	_, err := r.videoTags.UpdateOne(ctx,
		bson.M{"video_id": videoID, "tag_id": tagID},
		bson.M{"$setOnInsert": bson.M{
			"video_id":   videoID,
			"tag_id":     tagID,
			"created_at": time.Now(),
		}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Detach removes a tag from a video.
func (r *TagRepository) Detach(ctx context.Context, videoID, tagID primitive.ObjectID) error {
	_, err := r.videoTags.DeleteOne(ctx, bson.M{"video_id": videoID, "tag_id": tagID})
	return err
}

// ListForVideo returns the tags attached to a video (export frontmatter and
// the tags API read this).
func (r *TagRepository) ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Tag, error) {
	cur, err := r.videoTags.Find(ctx, bson.M{"video_id": videoID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tagIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var vt models.VideoTag
		if err := cur.Decode(&vt); err != nil {
			return nil, err
		}
		tagIDs = append(tagIDs, vt.TagID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(tagIDs) == 0 {
		return nil, nil
	}

	tagCur, err := r.tags.Find(ctx, bson.M{"_id": bson.M{"$in": tagIDs}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer tagCur.Close(ctx)

	var results []models.Tag
	for tagCur.Next(ctx) {
		var t models.Tag
		if err := tagCur.Decode(&t); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, tagCur.Err()
}
