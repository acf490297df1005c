package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tube-brief/models"
)

type VideoRepository struct {
	col *mongo.Collection
}

func NewVideoRepository(db *mongo.Database) *VideoRepository {
	return &VideoRepository{col: db.Collection("videos")}
}

// FindByYouTubeID returns the caller's video by its platform id.
func (r *VideoRepository) FindByYouTubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error) {
	var v models.Video
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID, "youtube_id": youtubeID}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByID returns a video by its ObjectID regardless of owner.
// Callers doing authorization must check UserID themselves.
func (r *VideoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var v models.Video
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

type ListVideosOptions struct {
	PlaylistID     string
	IsRead         *bool
	IncludeRemoved bool
}

// List returns the caller's videos, newest published first.
func (r *VideoRepository) List(ctx context.Context, userID string, opt ListVideosOptions) ([]models.Video, error) {
	filter := bson.M{"user_id": userID}
	if opt.PlaylistID != "" {
		filter["playlist_id"] = opt.PlaylistID
	}
	if opt.IsRead != nil {
		filter["is_read"] = *opt.IsRead
	}
	if !opt.IncludeRemoved {
		filter["is_removed"] = false
	}

	findOpts := options.Find().SetSort(bson.D{
		{Key: "published_at", Value: -1},
		{Key: "_id", Value: -1},
	})
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Video
	for cur.Next(ctx) {
		var v models.Video
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, cur.Err()
}

// Upsert inserts or refreshes a video keyed by (user_id, youtube_id).
// Used by the playlist-sync collaborator; flags and transcript cache are
// left untouched on refresh.
func (r *VideoRepository) Upsert(ctx context.Context, v *models.Video) error {
	now := time.Now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": v.UserID, "youtube_id": v.YouTubeID},
		bson.M{
			"$set": bson.M{
				"title":        v.Title,
				"channel_name": v.ChannelName,
				"duration":     v.Duration,
				"published_at": v.PublishedAt,
				"playlist_id":  v.PlaylistID,
				"updated_at":   now,
			},
			"$setOnInsert": bson.M{
				"created_at": now,
				"is_read":    false,
				"is_removed": false,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// UpdateFlags sets the is_read / is_removed booleans. Nil fields are skipped.
func (r *VideoRepository) UpdateFlags(ctx context.Context, id primitive.ObjectID, isRead, isRemoved *bool) error {
	set := bson.M{"updated_at": time.Now()}
	if isRead != nil {
		set["is_read"] = *isRead
	}
	if isRemoved != nil {
		set["is_removed"] = *isRemoved
	}
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	return err
}

// GetTranscriptData returns the cached transcript payload for a platform
// video id, or "" on cache miss.
func (r *VideoRepository) GetTranscriptData(ctx context.Context, youtubeID string) (string, error) {
	var v models.Video
	err := r.col.FindOne(ctx,
		bson.M{"youtube_id": youtubeID, "transcript_data": bson.M{"$nin": bson.A{nil, ""}}},
		options.FindOne().SetProjection(bson.M{"transcript_data": 1}),
	).Decode(&v)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.TranscriptData, nil
}

// SetTranscriptData caches a transcript payload on every row holding this
// platform video id so future fetches skip YouTube.
func (r *VideoRepository) SetTranscriptData(ctx context.Context, youtubeID, data string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"youtube_id": youtubeID},
		bson.M{"$set": bson.M{"transcript_data": data, "updated_at": time.Now()}},
	)
	return err
}
