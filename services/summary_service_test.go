package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tube-brief/ai"
	"tube-brief/models"
	"tube-brief/services"
)

type fakeVideoStore struct {
	videos map[string]*models.Video
}

func (f *fakeVideoStore) FindByYouTubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error) {
	v, ok := f.videos[userID+"/"+youtubeID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return v, nil
}

func (f *fakeVideoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

type fakeAdmissionStore struct {
	processing *models.Summary

	inserted     []*models.Summary
	failed       map[primitive.ObjectID]string
	backstopped  map[primitive.ObjectID]string
	backstopDone chan struct{}
}

func newFakeAdmissionStore() *fakeAdmissionStore {
	return &fakeAdmissionStore{
		failed:       map[primitive.ObjectID]string{},
		backstopped:  map[primitive.ObjectID]string{},
		backstopDone: make(chan struct{}, 1),
	}
}

func (f *fakeAdmissionStore) Insert(ctx context.Context, s *models.Summary) (primitive.ObjectID, error) {
	s.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, s)
	return s.ID, nil
}

func (f *fakeAdmissionStore) FindProcessingByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error) {
	return f.processing, nil
}

func (f *fakeAdmissionStore) MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error {
	f.failed[id] = message
	return nil
}

func (f *fakeAdmissionStore) MarkFailedIfProcessing(ctx context.Context, id primitive.ObjectID, message string) error {
	f.backstopped[id] = message
	select {
	case f.backstopDone <- struct{}{}:
	default:
	}
	return nil
}

type fakeSettingsResolver struct {
	settings ai.Settings
	err      error
}

func (f *fakeSettingsResolver) Resolve(ctx context.Context, userID string) (ai.Settings, error) {
	return f.settings, f.err
}

type fakeQuota struct {
	allow bool
	err   error
}

func (f *fakeQuota) WaitAndReserve(ctx context.Context) (bool, error) {
	return f.allow, f.err
}

func testVideos() (*fakeVideoStore, *models.Video) {
	video := &models.Video{
		ID:        primitive.NewObjectID(),
		UserID:    "user-1",
		YouTubeID: "yt-1",
		Title:     "How Things Work",
	}
	return &fakeVideoStore{videos: map[string]*models.Video{"user-1/yt-1": video}}, video
}

var geminiSettings = ai.Settings{Provider: ai.ProviderGemini, Model: "gemini-2.0-flash", APIKey: "k"}

func TestStartVideoNotFound(t *testing.T) {
	videos, _ := testVideos()
	svc := services.NewSummaryService(videos, newFakeAdmissionStore(), &fakeSettingsResolver{settings: geminiSettings}, nil, nil)

	_, err := svc.Start(context.Background(), "user-1", "missing", "en")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
}

func TestStartRejectsRecentProcessingAttempt(t *testing.T) {
	videos, video := testVideos()
	store := newFakeAdmissionStore()
	store.processing = &models.Summary{
		ID:        primitive.NewObjectID(),
		VideoID:   video.ID,
		Status:    models.SummaryStatusProcessing,
		UpdatedAt: time.Now().Add(-2 * time.Minute),
	}

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, nil, nil)
	_, err := svc.Start(context.Background(), "user-1", "yt-1", "en")

	assert.ErrorIs(t, err, services.ErrAlreadyProcessing)
	assert.Empty(t, store.inserted)
}

func TestStartReapsStaleAttempt(t *testing.T) {
	videos, video := testVideos()
	store := newFakeAdmissionStore()
	stale := &models.Summary{
		ID:        primitive.NewObjectID(),
		VideoID:   video.ID,
		Status:    models.SummaryStatusProcessing,
		UpdatedAt: time.Now().Add(-25 * time.Minute),
	}
	store.processing = stale

	ran := make(chan struct{})
	runner := func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error {
		close(ran)
		return nil
	}

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, nil, runner)
	summary, err := svc.Start(context.Background(), "user-1", "yt-1", "en")
	require.NoError(t, err)

	assert.Equal(t, "Timed out after 25 minutes", store.failed[stale.ID])
	require.Len(t, store.inserted, 1)
	assert.NotEqual(t, stale.ID, summary.ID)

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("pipeline runner was not invoked")
	}
}

func TestStartQuotaExceeded(t *testing.T) {
	videos, _ := testVideos()
	store := newFakeAdmissionStore()

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, &fakeQuota{allow: false}, nil)
	_, err := svc.Start(context.Background(), "user-1", "yt-1", "en")

	assert.ErrorIs(t, err, services.ErrQuotaExceeded)
	assert.Empty(t, store.inserted)
}

func TestStartLaunchesPipeline(t *testing.T) {
	videos, video := testVideos()
	store := newFakeAdmissionStore()

	type runCall struct {
		youtubeID      string
		summaryID      primitive.ObjectID
		settings       ai.Settings
		targetLanguage string
	}
	ran := make(chan runCall, 1)
	runner := func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error {
		ran <- runCall{youtubeID, summaryID, settings, targetLanguage}
		return nil
	}

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, &fakeQuota{allow: true}, runner)
	summary, err := svc.Start(context.Background(), "user-1", "yt-1", "tr")
	require.NoError(t, err)

	assert.Equal(t, video.ID, summary.VideoID)
	assert.Equal(t, models.SummaryStatusProcessing, summary.Status)
	assert.Equal(t, ai.ProviderGemini, summary.Provider)
	assert.Equal(t, "gemini-2.0-flash", summary.ProviderModel)
	assert.Equal(t, "tr", summary.TargetLanguage)

	select {
	case call := <-ran:
		assert.Equal(t, "yt-1", call.youtubeID)
		assert.Equal(t, summary.ID, call.summaryID)
		assert.Equal(t, "tr", call.targetLanguage)
		assert.Equal(t, geminiSettings, call.settings)
	case <-time.After(time.Second):
		t.Fatal("pipeline runner was not invoked")
	}
}

func TestStartBackstopsRunnerError(t *testing.T) {
	videos, _ := testVideos()
	store := newFakeAdmissionStore()

	runner := func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error {
		return errors.New("Pass 1 failed: rate limited")
	}

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, nil, runner)
	summary, err := svc.Start(context.Background(), "user-1", "yt-1", "en")
	require.NoError(t, err)

	select {
	case <-store.backstopDone:
	case <-time.After(time.Second):
		t.Fatal("runner error was not backstopped")
	}
	assert.Equal(t, "Pass 1 failed: rate limited", store.backstopped[summary.ID])
}

func TestStartBackstopsPanic(t *testing.T) {
	videos, _ := testVideos()
	store := newFakeAdmissionStore()

	runner := func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error {
		panic("nil provider client")
	}

	svc := services.NewSummaryService(videos, store, &fakeSettingsResolver{settings: geminiSettings}, nil, runner)
	summary, err := svc.Start(context.Background(), "user-1", "yt-1", "en")
	require.NoError(t, err)

	select {
	case <-store.backstopDone:
	case <-time.After(time.Second):
		t.Fatal("panic was not backstopped")
	}
	assert.Equal(t, "internal error: nil provider client", store.backstopped[summary.ID])
}
