package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tube-brief/ai"
	"tube-brief/models"
)

type UserSettingsRepository struct {
	col *mongo.Collection
}

func NewUserSettingsRepository(db *mongo.Database) *UserSettingsRepository {
	return &UserSettingsRepository{col: db.Collection("user_settings")}
}

// Get returns the stored settings document, or nil when none exists.
func (r *UserSettingsRepository) Get(ctx context.Context, userID string) (*models.UserSettings, error) {
	var s models.UserSettings
	err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&s)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve returns the AI settings for a user, falling back to defaults when
// no document exists. Absence of an API key is not an error here; the
// gateway treats it as its one hard precondition failure.
func (r *UserSettingsRepository) Resolve(ctx context.Context, userID string) (ai.Settings, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return ai.Settings{}, err
	}
	out := ai.Settings{
		Provider: ai.ProviderGemini,
		Model:    "gemini-2.0-flash",
	}
	if s == nil {
		return out, nil
	}
	if s.AIProvider != "" {
		out.Provider = s.AIProvider
	}
	if s.AIModel != "" {
		out.Model = s.AIModel
	}
	out.APIKey = s.APIKey
	out.BaseURL = s.BaseURL
	return out, nil
}

// Upsert stores the user's settings, creating the document on first write.
func (r *UserSettingsRepository) Upsert(ctx context.Context, s *models.UserSettings) error {
	now := time.Now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": s.UserID},
		bson.M{
			"$set": bson.M{
				"ai_provider": s.AIProvider,
				"ai_model":    s.AIModel,
				"api_key":     s.APIKey,
				"base_url":    s.BaseURL,
				"updated_at":  now,
			},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
