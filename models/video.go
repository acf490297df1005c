package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a playlist member owned by exactly one user. Rows are created and
// refreshed by the playlist-sync collaborator; this service reads them for
// summarization, chat context and the transcript cache, and mutates only the
// read/removed flags and the cached transcript payload.
// Collection: videos
type Video struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
	UserID      string             `bson:"user_id" json:"user_id"`
	YouTubeID   string             `bson:"youtube_id" json:"youtube_id"`
	Title       string             `bson:"title" json:"title"`
	ChannelName string             `bson:"channel_name" json:"channel_name"`
	Duration    string             `bson:"duration,omitempty" json:"duration,omitempty"`
	PublishedAt *time.Time         `bson:"published_at,omitempty" json:"published_at,omitempty"`
	PlaylistID  string             `bson:"playlist_id,omitempty" json:"playlist_id,omitempty"`
	IsRead      bool               `bson:"is_read" json:"is_read"`
	IsRemoved   bool               `bson:"is_removed" json:"is_removed"`

	// TranscriptData caches the fetched transcript as serialized JSON
	// (segments + detected language) so repeat summarizations skip YouTube.
	TranscriptData string `bson:"transcript_data,omitempty" json:"-"`
}
