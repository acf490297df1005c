package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tag is a user-scoped label.
// Collection: tags
type Tag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Name      string             `bson:"name" json:"name"`
}

// VideoTag joins videos and tags many-to-many.
// Collection: video_tags
type VideoTag struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"video_id"`
	TagID     primitive.ObjectID `bson:"tag_id" json:"tag_id"`
}
