package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/ai"
	"tube-brief/logger"
	"tube-brief/models"
	"tube-brief/prompts"
)

// chatHistoryWindow is how many prior messages go into the model context.
const chatHistoryWindow = 20

// chatTranscriptPrefix caps the transcript portion of the chat context.
const chatTranscriptPrefix = 10000

// suggestionSample caps the summary portion of the suggestion prompt.
const suggestionSample = 3000

var (
	// ErrForbidden means the caller does not own the referenced resource.
	ErrForbidden = errors.New("forbidden")

	// ErrEmptySummary rejects translation of a summary with no content.
	ErrEmptySummary = errors.New("original summary content is empty")
)

// ChatStore covers the chat message repository methods the service uses.
type ChatStore interface {
	Insert(ctx context.Context, m *models.ChatMessage) (primitive.ObjectID, error)
	ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.ChatMessage, error)
	ListRecentByVideo(ctx context.Context, videoID primitive.ObjectID, limit int) ([]models.ChatMessage, error)
	CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// SummaryReadStore covers the summary repository methods chat and
// translation read and write.
type SummaryReadStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summary, error)
	LatestCompletedByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error)
	SetTranslation(ctx context.Context, id primitive.ObjectID, language, markdown string, inputTokens, outputTokens, totalTokens int64) error
}

// GenerateFunc is the model gateway call. ai.Generate satisfies it.
type GenerateFunc func(ctx context.Context, prompt string, settings ai.Settings, opts *ai.Options) (*ai.GenerationResult, error)

// ChatService answers questions about a video using its summary and
// transcript as context, and serves on-demand summary translations.
type ChatService struct {
	videos    VideoStore
	summaries SummaryReadStore
	chats     ChatStore
	settings  SettingsResolver
	generate  GenerateFunc
}

func NewChatService(videos VideoStore, summaries SummaryReadStore, chats ChatStore, settings SettingsResolver, generate GenerateFunc) *ChatService {
	if generate == nil {
		generate = ai.Generate
	}
	return &ChatService{
		videos:    videos,
		summaries: summaries,
		chats:     chats,
		settings:  settings,
		generate:  generate,
	}
}

// History returns the full chat history for the caller's video, plus
// suggested questions when the history is empty. Suggestion generation
// never fails the request.
func (s *ChatService) History(ctx context.Context, userID, youtubeID string) ([]models.ChatMessage, []string, error) {
	video, err := s.videos.FindByYouTubeID(ctx, userID, youtubeID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.chats.ListByVideo(ctx, video.ID)
	if err != nil {
		return nil, nil, err
	}

	var suggestions []string
	if len(messages) == 0 {
		suggestions = s.suggestedQuestions(ctx, video.ID, userID)
	}
	return messages, suggestions, nil
}

// Post persists the user's message, generates the assistant's reply, and
// persists that too. The user message is kept even when generation fails.
func (s *ChatService) Post(ctx context.Context, userID, youtubeID, message string) (*models.ChatMessage, error) {
	video, err := s.videos.FindByYouTubeID(ctx, userID, youtubeID)
	if err != nil {
		return nil, err
	}

	userMsg := &models.ChatMessage{
		VideoID: video.ID,
		Role:    models.ChatRoleUser,
		Content: message,
	}
	if _, err := s.chats.Insert(ctx, userMsg); err != nil {
		return nil, err
	}

	reply, err := s.generateReply(ctx, video, userID, message)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	assistantMsg := &models.ChatMessage{
		VideoID: video.ID,
		Role:    models.ChatRoleAssistant,
		Content: reply,
	}
	if _, err := s.chats.Insert(ctx, assistantMsg); err != nil {
		return nil, err
	}
	return assistantMsg, nil
}

func (s *ChatService) generateReply(ctx context.Context, video *models.Video, userID, userMessage string) (string, error) {
	latest, err := s.summaries.LatestCompletedByVideo(ctx, video.ID)
	if err != nil {
		return "", err
	}

	history, err := s.chats.ListRecentByVideo(ctx, video.ID, chatHistoryWindow)
	if err != nil {
		return "", err
	}

	var lines []string
	channel := video.ChannelName
	if channel == "" {
		channel = "Unknown"
	}
	lines = append(lines, fmt.Sprintf("VIDEO: %q by %s", video.Title, channel))

	if latest != nil && latest.Markdown != "" {
		lines = append(lines, "", "VIDEO SUMMARY:", latest.Markdown)
	}
	if latest != nil && latest.Transcript != "" {
		transcript := latest.Transcript
		if len(transcript) > chatTranscriptPrefix {
			transcript = transcript[:chatTranscriptPrefix]
		}
		lines = append(lines, "", "TRANSCRIPT (partial):", transcript)
	}

	if len(history) > 0 {
		lines = append(lines, "", "CONVERSATION HISTORY:")
		for _, msg := range history {
			role := "Assistant"
			if msg.Role == models.ChatRoleUser {
				role = "Human"
			}
			lines = append(lines, role+": "+msg.Content, "")
		}
	}

	lines = append(lines, "", "Human: "+userMessage, "", "Provide a helpful response:")

	settings, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return "", err
	}

	result, err := s.generate(ctx, strings.Join(lines, "\n"), settings, &ai.Options{
		SystemInstruction: prompts.ChatSystemInstruction,
		Tools:             ai.SearchTools(settings.Provider),
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

var staticSuggestions = []string{
	"What is this video about?",
	"What are the key takeaways?",
	"Can you explain the main concepts?",
}

var fallbackSuggestions = []string{
	"What is this video about?",
	"What are the key takeaways?",
	"Can you explain the main concepts?",
	"What are the practical applications?",
}

// suggestedQuestions asks the model for starter questions based on the
// latest summary. Any failure falls back to a static list; it never errors.
func (s *ChatService) suggestedQuestions(ctx context.Context, videoID primitive.ObjectID, userID string) []string {
	latest, err := s.summaries.LatestCompletedByVideo(ctx, videoID)
	if err != nil || latest == nil || latest.Markdown == "" {
		return staticSuggestions
	}

	sample := latest.Markdown
	if len(sample) > suggestionSample {
		sample = sample[:suggestionSample]
	}

	settings, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return fallbackSuggestions
	}

	result, err := s.generate(ctx, prompts.SuggestedQuestions(sample), settings, nil)
	if err != nil {
		return fallbackSuggestions
	}

	var questions []string
	if err := json.Unmarshal([]byte(result.Text), &questions); err != nil || len(questions) == 0 {
		logger.Log.Debugf("could not parse suggested questions for video %s: %v", videoID.Hex(), err)
		return fallbackSuggestions
	}
	if len(questions) > 4 {
		questions = questions[:4]
	}
	return questions
}

// Translate returns the summary rendered in targetLanguage, generating and
// caching it on first request. Ownership is checked through the video.
func (s *ChatService) Translate(ctx context.Context, userID string, summaryID primitive.ObjectID, targetLanguage string) (markdown string, cached bool, err error) {
	summary, err := s.summaries.FindByID(ctx, summaryID)
	if err != nil {
		return "", false, err
	}

	video, err := s.videos.FindByID(ctx, summary.VideoID)
	if err != nil {
		return "", false, err
	}
	if video.UserID != userID {
		return "", false, ErrForbidden
	}

	if existing, ok := summary.Translations[targetLanguage]; ok && existing != "" {
		return existing, true, nil
	}

	if summary.Markdown == "" {
		return "", false, ErrEmptySummary
	}

	settings, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return "", false, err
	}

	result, err := s.generate(ctx, prompts.Translation(summary.Markdown, targetLanguage), settings, nil)
	if err != nil {
		return "", false, fmt.Errorf("translation failed: %w", err)
	}

	if err := s.summaries.SetTranslation(ctx, summaryID, targetLanguage, result.Text,
		result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens); err != nil {
		return "", false, err
	}
	return result.Text, false, nil
}
