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

type SummaryRepository struct {
	col *mongo.Collection
}

func NewSummaryRepository(db *mongo.Database) *SummaryRepository {
	return &SummaryRepository{col: db.Collection("summaries")}
}

// Insert creates a new summary attempt row.
func (r *SummaryRepository) Insert(ctx context.Context, s *models.Summary) (primitive.ObjectID, error) {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	s.ID = id
	return id, nil
}

func (r *SummaryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summary, error) {
	var s models.Summary
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindProcessingByVideo returns the in-flight attempt for a video, or nil.
// The admission guard relies on there being at most one.
func (r *SummaryRepository) FindProcessingByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error) {
	var s models.Summary
	err := r.col.FindOne(ctx, bson.M{"video_id": videoID, "status": models.SummaryStatusProcessing}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByVideo returns all attempts for a video, newest first.
func (r *SummaryRepository) ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Summary, error) {
	cur, err := r.col.Find(ctx, bson.M{"video_id": videoID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Summary
	for cur.Next(ctx) {
		var s models.Summary
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		results = append(results, s)
	}
	return results, cur.Err()
}

// LatestCompletedByVideo returns the most recent completed attempt, or nil.
func (r *SummaryRepository) LatestCompletedByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error) {
	var s models.Summary
	err := r.col.FindOne(ctx,
		bson.M{"video_id": videoID, "status": models.SummaryStatusCompleted},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// updateFields applies a $set and always bumps updated_at: every pipeline
// write doubles as the staleness heartbeat.
func (r *SummaryRepository) updateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()
	_, err := r.col.UpdateByID(ctx, id, bson.M{"$set": fields})
	return err
}

// SetTranscript stores the (possibly truncated) transcript snapshot and
// re-asserts processing status at the start of an attempt.
func (r *SummaryRepository) SetTranscript(ctx context.Context, id primitive.ObjectID, transcript string) error {
	return r.updateFields(ctx, id, bson.M{
		"transcript": transcript,
		"status":     models.SummaryStatusProcessing,
	})
}

// SetPass1 records the structural analysis checkpoint.
func (r *SummaryRepository) SetPass1(ctx context.Context, id primitive.ObjectID, analysis, category, provider, providerModel string) error {
	return r.updateFields(ctx, id, bson.M{
		"structural_analysis": analysis,
		"category":            category,
		"passes_completed":    1,
		"provider":            provider,
		"provider_model":      providerModel,
	})
}

// SetPass2 records the deep summary checkpoint.
func (r *SummaryRepository) SetPass2(ctx context.Context, id primitive.ObjectID, markdown string) error {
	return r.updateFields(ctx, id, bson.M{
		"markdown":         markdown,
		"passes_completed": 2,
	})
}

// Complete finalizes a successful attempt.
func (r *SummaryRepository) Complete(ctx context.Context, id primitive.ObjectID, markdown string, passes int, targetLanguage string, inputTokens, outputTokens, totalTokens int64) error {
	return r.updateFields(ctx, id, bson.M{
		"markdown":         markdown,
		"passes_completed": passes,
		"status":           models.SummaryStatusCompleted,
		"target_language":  targetLanguage,
		"input_tokens":     inputTokens,
		"output_tokens":    outputTokens,
		"total_tokens":     totalTokens,
	})
}

// MarkFailed transitions an attempt to its failed terminal state.
func (r *SummaryRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error {
	return r.updateFields(ctx, id, bson.M{
		"status":        models.SummaryStatusFailed,
		"error_message": message,
	})
}

// MarkFailedIfProcessing is the catch-all backstop: it fails the attempt only
// if no per-pass handler already reached a terminal state, so pass-labeled
// error messages are never clobbered.
func (r *SummaryRepository) MarkFailedIfProcessing(ctx context.Context, id primitive.ObjectID, message string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SummaryStatusProcessing},
		bson.M{"$set": bson.M{
			"status":        models.SummaryStatusFailed,
			"error_message": message,
			"updated_at":    time.Now(),
		}},
	)
	return err
}

// SetTranslation merges one language into the translations map and bumps the
// usage counters. Existing languages are never discarded.
func (r *SummaryRepository) SetTranslation(ctx context.Context, id primitive.ObjectID, language, markdown string, inputTokens, outputTokens, totalTokens int64) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"translations." + language: markdown,
			"updated_at":               time.Now(),
		},
		"$inc": bson.M{
			"input_tokens":  inputTokens,
			"output_tokens": outputTokens,
			"total_tokens":  totalTokens,
		},
	})
	return err
}

// Delete removes one attempt unconditionally.
func (r *SummaryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
