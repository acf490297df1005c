package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/ai"
	"tube-brief/models"
	"tube-brief/services"
)

type fakeChatStore struct {
	messages []models.ChatMessage
	inserted []*models.ChatMessage
}

func (f *fakeChatStore) Insert(ctx context.Context, m *models.ChatMessage) (primitive.ObjectID, error) {
	m.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, m)
	f.messages = append(f.messages, *m)
	return m.ID, nil
}

func (f *fakeChatStore) ListByVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.ChatMessage, error) {
	return f.messages, nil
}

func (f *fakeChatStore) ListRecentByVideo(ctx context.Context, videoID primitive.ObjectID, limit int) ([]models.ChatMessage, error) {
	if len(f.messages) > limit {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeChatStore) CountByVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	return int64(len(f.messages)), nil
}

type fakeSummaryReadStore struct {
	summaries map[primitive.ObjectID]*models.Summary
	latest    *models.Summary

	translations map[string]string
}

func (f *fakeSummaryReadStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summary, error) {
	s, ok := f.summaries[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return s, nil
}

func (f *fakeSummaryReadStore) LatestCompletedByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error) {
	return f.latest, nil
}

func (f *fakeSummaryReadStore) SetTranslation(ctx context.Context, id primitive.ObjectID, language, markdown string, inputTokens, outputTokens, totalTokens int64) error {
	if f.translations == nil {
		f.translations = map[string]string{}
	}
	f.translations[language] = markdown
	return nil
}

type generateCall struct {
	prompt string
	opts   *ai.Options
}

func staticGenerate(text string, err error) (services.GenerateFunc, *[]generateCall) {
	calls := &[]generateCall{}
	fn := func(ctx context.Context, prompt string, settings ai.Settings, opts *ai.Options) (*ai.GenerationResult, error) {
		*calls = append(*calls, generateCall{prompt: prompt, opts: opts})
		if err != nil {
			return nil, err
		}
		return &ai.GenerationResult{Text: text, Usage: ai.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}, nil
	}
	return fn, calls
}

func newChatService(videos *fakeVideoStore, summaries *fakeSummaryReadStore, chats *fakeChatStore, generate services.GenerateFunc) *services.ChatService {
	return services.NewChatService(videos, summaries, chats, &fakeSettingsResolver{settings: geminiSettings}, generate)
}

func TestHistoryEmptyUsesStaticSuggestions(t *testing.T) {
	videos, _ := testVideos()
	gen, calls := staticGenerate("unused", nil)
	svc := newChatService(videos, &fakeSummaryReadStore{}, &fakeChatStore{}, gen)

	messages, suggestions, err := svc.History(context.Background(), "user-1", "yt-1")
	require.NoError(t, err)

	assert.Empty(t, messages)
	assert.Equal(t, []string{
		"What is this video about?",
		"What are the key takeaways?",
		"Can you explain the main concepts?",
	}, suggestions)
	// no summary exists, so no model call is made
	assert.Empty(t, *calls)
}

func TestHistoryGeneratesSuggestionsFromSummary(t *testing.T) {
	videos, video := testVideos()
	summaries := &fakeSummaryReadStore{latest: &models.Summary{
		VideoID:  video.ID,
		Status:   models.SummaryStatusCompleted,
		Markdown: "# Summary of the video",
	}}
	gen, _ := staticGenerate(`["Q1?", "Q2?", "Q3?", "Q4?", "Q5?"]`, nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	_, suggestions, err := svc.History(context.Background(), "user-1", "yt-1")
	require.NoError(t, err)
	// the model returned five, only four are kept
	assert.Equal(t, []string{"Q1?", "Q2?", "Q3?", "Q4?"}, suggestions)
}

func TestHistorySuggestionParseFailureFallsBack(t *testing.T) {
	videos, video := testVideos()
	summaries := &fakeSummaryReadStore{latest: &models.Summary{
		VideoID:  video.ID,
		Markdown: "# Summary",
	}}
	gen, _ := staticGenerate("Here are some questions you could ask...", nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	_, suggestions, err := svc.History(context.Background(), "user-1", "yt-1")
	require.NoError(t, err)
	assert.Len(t, suggestions, 4)
	assert.Equal(t, "What are the practical applications?", suggestions[3])
}

func TestHistorySkipsSuggestionsWhenNonEmpty(t *testing.T) {
	videos, video := testVideos()
	chats := &fakeChatStore{messages: []models.ChatMessage{
		{VideoID: video.ID, Role: models.ChatRoleUser, Content: "hi"},
	}}
	gen, calls := staticGenerate("unused", nil)
	svc := newChatService(videos, &fakeSummaryReadStore{}, chats, gen)

	messages, suggestions, err := svc.History(context.Background(), "user-1", "yt-1")
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Nil(t, suggestions)
	assert.Empty(t, *calls)
}

func TestPostBuildsContextAndStoresReply(t *testing.T) {
	videos, video := testVideos()
	summaries := &fakeSummaryReadStore{latest: &models.Summary{
		VideoID:    video.ID,
		Markdown:   "# The Summary",
		Transcript: "[0:00] hello",
	}}
	chats := &fakeChatStore{messages: []models.ChatMessage{
		{VideoID: video.ID, Role: models.ChatRoleUser, Content: "earlier question"},
		{VideoID: video.ID, Role: models.ChatRoleAssistant, Content: "earlier answer"},
	}}
	gen, calls := staticGenerate("The video covers X.", nil)
	svc := newChatService(videos, summaries, chats, gen)

	reply, err := svc.Post(context.Background(), "user-1", "yt-1", "What is X?")
	require.NoError(t, err)

	assert.Equal(t, models.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "The video covers X.", reply.Content)

	require.Len(t, *calls, 1)
	prompt := (*calls)[0].prompt
	assert.Contains(t, prompt, `VIDEO: "How Things Work" by Unknown`)
	assert.Contains(t, prompt, "VIDEO SUMMARY:\n# The Summary")
	assert.Contains(t, prompt, "TRANSCRIPT (partial):\n[0:00] hello")
	assert.Contains(t, prompt, "Human: earlier question")
	assert.Contains(t, prompt, "Assistant: earlier answer")
	assert.Contains(t, prompt, "Human: What is X?")
	assert.Contains(t, prompt, "Provide a helpful response:")

	opts := (*calls)[0].opts
	require.NotNil(t, opts)
	assert.NotEmpty(t, opts.SystemInstruction)
	require.NotNil(t, opts.Tools)
	assert.True(t, opts.Tools.GoogleSearch)

	// both sides of the exchange were persisted
	require.Len(t, chats.inserted, 2)
	assert.Equal(t, models.ChatRoleUser, chats.inserted[0].Role)
	assert.Equal(t, models.ChatRoleAssistant, chats.inserted[1].Role)
}

func TestPostKeepsUserMessageOnGenerationFailure(t *testing.T) {
	videos, _ := testVideos()
	gen, _ := staticGenerate("", errors.New("model down"))
	chats := &fakeChatStore{}
	svc := newChatService(videos, &fakeSummaryReadStore{}, chats, gen)

	_, err := svc.Post(context.Background(), "user-1", "yt-1", "hello?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to generate response")

	require.Len(t, chats.inserted, 1)
	assert.Equal(t, models.ChatRoleUser, chats.inserted[0].Role)
	assert.Equal(t, "hello?", chats.inserted[0].Content)
}

func TestTranslateReturnsCachedTranslation(t *testing.T) {
	videos, video := testVideos()
	summaryID := primitive.NewObjectID()
	summaries := &fakeSummaryReadStore{summaries: map[primitive.ObjectID]*models.Summary{
		summaryID: {
			ID:           summaryID,
			VideoID:      video.ID,
			Markdown:     "# English",
			Translations: map[string]string{"tr": "# Türkçe"},
		},
	}}
	gen, calls := staticGenerate("unused", nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	markdown, cached, err := svc.Translate(context.Background(), "user-1", summaryID, "tr")
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "# Türkçe", markdown)
	assert.Empty(t, *calls)
}

func TestTranslateGeneratesAndCaches(t *testing.T) {
	videos, video := testVideos()
	summaryID := primitive.NewObjectID()
	summaries := &fakeSummaryReadStore{summaries: map[primitive.ObjectID]*models.Summary{
		summaryID: {ID: summaryID, VideoID: video.ID, Markdown: "# English"},
	}}
	gen, calls := staticGenerate("# Deutsch", nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	markdown, cached, err := svc.Translate(context.Background(), "user-1", summaryID, "de")
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "# Deutsch", markdown)
	assert.Equal(t, "# Deutsch", summaries.translations["de"])
	require.Len(t, *calls, 1)
	assert.Contains(t, (*calls)[0].prompt, "# English")
}

func TestTranslateRejectsForeignSummary(t *testing.T) {
	videos, _ := testVideos()
	otherVideo := &models.Video{ID: primitive.NewObjectID(), UserID: "someone-else"}
	videos.videos["someone-else/yt-2"] = otherVideo

	summaryID := primitive.NewObjectID()
	summaries := &fakeSummaryReadStore{summaries: map[primitive.ObjectID]*models.Summary{
		summaryID: {ID: summaryID, VideoID: otherVideo.ID, Markdown: "# English"},
	}}
	gen, _ := staticGenerate("unused", nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	_, _, err := svc.Translate(context.Background(), "user-1", summaryID, "tr")
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestTranslateRejectsEmptySummary(t *testing.T) {
	videos, video := testVideos()
	summaryID := primitive.NewObjectID()
	summaries := &fakeSummaryReadStore{summaries: map[primitive.ObjectID]*models.Summary{
		summaryID: {ID: summaryID, VideoID: video.ID, Status: models.SummaryStatusFailed},
	}}
	gen, _ := staticGenerate("unused", nil)
	svc := newChatService(videos, summaries, &fakeChatStore{}, gen)

	_, _, err := svc.Translate(context.Background(), "user-1", summaryID, "tr")
	assert.ErrorIs(t, err, services.ErrEmptySummary)
}
