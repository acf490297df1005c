package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/models"
)

type fakeSummaryFinder struct {
	summary *models.Summary
}

func (f *fakeSummaryFinder) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summary, error) {
	return f.summary, nil
}

type fakeVideoFinder struct {
	video *models.Video
}

func (f *fakeVideoFinder) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	return f.video, nil
}

type fakeTagLister struct {
	tags []models.Tag
}

func (f *fakeTagLister) ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Tag, error) {
	return f.tags, nil
}

func testFixture() (*models.Video, *models.Summary) {
	published := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	video := &models.Video{
		ID:          primitive.NewObjectID(),
		UserID:      "user-1",
		YouTubeID:   "dQw4w9WgXcQ",
		Title:       "Go Concurrency: Patterns & Pitfalls!",
		ChannelName: "Tech Channel",
		Duration:    "12:34",
		PublishedAt: &published,
		PlaylistID:  "PLabc123",
	}
	summary := &models.Summary{
		ID:            primitive.NewObjectID(),
		VideoID:       video.ID,
		Status:        models.SummaryStatusCompleted,
		Markdown:      "# Go Concurrency\n\nBody.",
		ProviderModel: "gemini-2.0-flash",
	}
	return video, summary
}

func TestExportWritesFile(t *testing.T) {
	dir := t.TempDir()
	video, summary := testFixture()
	tags := []models.Tag{{Name: "golang"}, {Name: "concurrency"}}

	e := New(&fakeSummaryFinder{summary: summary}, &fakeVideoFinder{video: video}, &fakeTagLister{tags: tags}, dir)
	require.NoError(t, e.Export(context.Background(), summary.ID))

	// unsafe characters are stripped from folder and file names
	path := filepath.Join(dir, "user-1", "PLabc123",
		"Tech Channel - Go Concurrency Patterns Pitfalls",
		"Tech Channel - Go Concurrency Patterns Pitfalls - gemini-2.0-flash.md")
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(content)
	assert.True(t, strings.HasPrefix(text, "---\n"))
	assert.Contains(t, text, `tags: ["golang", "concurrency"]`)
	assert.Contains(t, text, "video_url: https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	assert.Contains(t, text, `channel: "Tech Channel"`)
	assert.Contains(t, text, `playlist: "PLabc123"`)
	assert.Contains(t, text, `model: "gemini-2.0-flash"`)
	assert.Contains(t, text, `video_published: "2025-03-14"`)
	assert.Contains(t, text, `duration: "12:34"`)
	assert.True(t, strings.HasSuffix(text, "# Go Concurrency\n\nBody."))
}

func TestExportLanguageSuffix(t *testing.T) {
	dir := t.TempDir()
	video, summary := testFixture()
	summary.TargetLanguage = "tr"

	e := New(&fakeSummaryFinder{summary: summary}, &fakeVideoFinder{video: video}, &fakeTagLister{}, dir)
	require.NoError(t, e.Export(context.Background(), summary.ID))

	matches, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "*.tr.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestExportEnglishHasNoSuffix(t *testing.T) {
	dir := t.TempDir()
	video, summary := testFixture()
	summary.TargetLanguage = "en"

	e := New(&fakeSummaryFinder{summary: summary}, &fakeVideoFinder{video: video}, &fakeTagLister{}, dir)
	require.NoError(t, e.Export(context.Background(), summary.ID))

	matches, err := filepath.Glob(filepath.Join(dir, "*", "*", "*", "*.md"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, strings.Contains(filepath.Base(matches[0]), ".en."))
}

func TestExportDefaults(t *testing.T) {
	dir := t.TempDir()
	video, summary := testFixture()
	video.ChannelName = ""
	video.PlaylistID = ""
	summary.ProviderModel = ""

	e := New(&fakeSummaryFinder{summary: summary}, &fakeVideoFinder{video: video}, &fakeTagLister{}, dir)
	require.NoError(t, e.Export(context.Background(), summary.ID))

	matches, err := filepath.Glob(filepath.Join(dir, "user-1", "Uncategorized", "Unknown Channel - *", "* - ai.md"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestExportEmptyMarkdownIsTerminal(t *testing.T) {
	dir := t.TempDir()
	video, summary := testFixture()
	summary.Markdown = ""

	e := New(&fakeSummaryFinder{summary: summary}, &fakeVideoFinder{video: video}, &fakeTagLister{}, dir)
	require.NoError(t, e.Export(context.Background(), summary.ID))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Hello World", sanitizeFilename("Hello / World?"))
	assert.Equal(t, "Çok Güzel Video", sanitizeFilename("Çok Güzel Video!"))
	assert.Equal(t, "a - b_c quoted", sanitizeFilename(`a - b_c: "quoted"`))
	assert.Equal(t, "", sanitizeFilename("<>:|?*"))
}
