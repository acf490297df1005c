package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserSettings stores the AI backend configuration per user. BaseURL is only
// honored for the openai-compatible provider (self-hosted endpoints).
// Collection: user_settings
type UserSettings struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
	UserID     string             `bson:"user_id" json:"user_id"`
	AIProvider string             `bson:"ai_provider,omitempty" json:"ai_provider,omitempty"`
	AIModel    string             `bson:"ai_model,omitempty" json:"ai_model,omitempty"`
	APIKey     string             `bson:"api_key,omitempty" json:"-"`
	BaseURL    string             `bson:"base_url,omitempty" json:"base_url,omitempty"`
}
