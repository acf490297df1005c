package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage belongs to a video and is append-only; messages are never
// mutated after creation. Ordering is by CreatedAt.
// Collection: chat_messages
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"video_id"`
	Role      string             `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
}
