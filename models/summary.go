package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Summary statuses. A summary is created in processing and ends in exactly
// one of completed or failed; there are no other states.
const (
	SummaryStatusProcessing = "processing"
	SummaryStatusCompleted  = "completed"
	SummaryStatusFailed     = "failed"
)

// Summary is one attempt at summarizing a video. Attempts are never
// overwritten: every trigger inserts a new row and history is preserved.
// UpdatedAt doubles as the heartbeat for stuck-attempt detection.
// Collection: summaries
type Summary struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
	VideoID   primitive.ObjectID `bson:"video_id" json:"video_id"`

	Status string `bson:"status" json:"status"`

	// Transcript is the snapshot this attempt ran over, possibly truncated.
	Transcript         string `bson:"transcript,omitempty" json:"-"`
	StructuralAnalysis string `bson:"structural_analysis,omitempty" json:"-"`
	Category           string `bson:"category,omitempty" json:"category,omitempty"`
	Markdown           string `bson:"markdown,omitempty" json:"markdown,omitempty"`

	// PassesCompleted is a strictly increasing checkpoint: 1 after structural
	// analysis, 2 after the deep summary, 3 when translation ran.
	PassesCompleted int `bson:"passes_completed" json:"passes_completed"`

	Provider       string `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderModel  string `bson:"provider_model,omitempty" json:"provider_model,omitempty"`
	TargetLanguage string `bson:"target_language,omitempty" json:"target_language,omitempty"`

	InputTokens  int64 `bson:"input_tokens" json:"input_tokens"`
	OutputTokens int64 `bson:"output_tokens" json:"output_tokens"`
	TotalTokens  int64 `bson:"total_tokens" json:"total_tokens"`

	// Translations maps language code to translated markdown, populated
	// lazily by the on-demand translate path, never by the pipeline.
	Translations map[string]string `bson:"translations,omitempty" json:"translations,omitempty"`

	ErrorMessage string `bson:"error_message,omitempty" json:"error_message,omitempty"`
}
