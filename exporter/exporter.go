// Package exporter writes completed summaries to disk as markdown files
// with Obsidian-compatible frontmatter.
//
// Folder layout:
// {dataDir}/{user}/{playlist}/{channel} - {title}/{channel} - {title} - {model}[.lang].md
package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/logger"
	"tube-brief/models"
)

type SummaryFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Summary, error)
}

type VideoFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
}

type TagLister interface {
	ListForVideo(ctx context.Context, videoID primitive.ObjectID) ([]models.Tag, error)
}

// Exporter renders summary markdown files. It only reads; export never
// mutates summary rows.
type Exporter struct {
	summaries SummaryFinder
	videos    VideoFinder
	tags      TagLister
	dataDir   string
}

func New(summaries SummaryFinder, videos VideoFinder, tags TagLister, dataDir string) *Exporter {
	if dataDir == "" {
		dataDir = "data"
	}
	return &Exporter{
		summaries: summaries,
		videos:    videos,
		tags:      tags,
		dataDir:   dataDir,
	}
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9\x{00C0}-\x{024F}\x{1E00}-\x{1EFF}\s\-_]`)
var multiSpaceRe = regexp.MustCompile(`\s+`)

func sanitizeFilename(name string) string {
	cleaned := unsafeFilenameRe.ReplaceAllString(name, "")
	cleaned = strings.TrimSpace(cleaned)
	return multiSpaceRe.ReplaceAllString(cleaned, " ")
}

// Export writes one summary to its markdown file. An error means the write
// should be retried; a missing or empty summary is terminal and returns nil.
func (e *Exporter) Export(ctx context.Context, summaryID primitive.ObjectID) error {
	summary, err := e.summaries.FindByID(ctx, summaryID)
	if err != nil {
		return fmt.Errorf("load summary %s: %w", summaryID.Hex(), err)
	}
	if summary.Markdown == "" {
		logger.Log.Warnf("summary %s has no markdown, skipping export", summaryID.Hex())
		return nil
	}

	video, err := e.videos.FindByID(ctx, summary.VideoID)
	if err != nil {
		return fmt.Errorf("load video %s: %w", summary.VideoID.Hex(), err)
	}

	tags, err := e.tags.ListForVideo(ctx, video.ID)
	if err != nil {
		logger.Log.Warnf("failed to load tags for video %s: %v", video.ID.Hex(), err)
		tags = nil
	}

	playlistName := "Uncategorized"
	if video.PlaylistID != "" {
		playlistName = video.PlaylistID
	}

	channelName := "Unknown Channel"
	if video.ChannelName != "" {
		channelName = sanitizeFilename(video.ChannelName)
	}
	videoTitle := sanitizeFilename(video.Title)

	userFolder := sanitizeFilename(video.UserID)
	if userFolder == "" {
		userFolder = video.UserID
	}

	videoFolder := fmt.Sprintf("%s - %s", channelName, videoTitle)

	model := summary.ProviderModel
	if model == "" {
		model = "ai"
	}
	fileName := fmt.Sprintf("%s - %s - %s", channelName, videoTitle, model)
	if summary.TargetLanguage != "" && summary.TargetLanguage != "en" {
		fileName += "." + summary.TargetLanguage
	}
	fileName += ".md"

	folderPath := filepath.Join(e.dataDir, userFolder, sanitizeFilename(playlistName), videoFolder)
	filePath := filepath.Join(folderPath, fileName)

	content := e.frontmatter(video, summary, tags, playlistName) + summary.Markdown

	if err := os.MkdirAll(folderPath, 0o755); err != nil {
		return fmt.Errorf("create export folder: %w", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	logger.InfoWithFields("summary exported", logger.Fields{
		"summary_id": summaryID.Hex(),
		"path":       filePath,
	})
	return nil
}

func (e *Exporter) frontmatter(video *models.Video, summary *models.Summary, tags []models.Tag, playlistName string) string {
	tagNames := make([]string, 0, len(tags))
	for _, t := range tags {
		tagNames = append(tagNames, fmt.Sprintf("%q", t.Name))
	}

	published := ""
	if video.PublishedAt != nil {
		published = video.PublishedAt.Format("2006-01-02")
	}

	model := summary.ProviderModel
	if model == "" {
		model = "unknown"
	}

	return fmt.Sprintf(`---
tags: [%s]
video_url: https://www.youtube.com/watch?v=%s
channel: %q
playlist: %q
model: %q
created_at: %s
video_published: %q
duration: %q
rating:
status:
---

`,
		strings.Join(tagNames, ", "),
		video.YouTubeID,
		video.ChannelName,
		playlistName,
		model,
		time.Now().Format("2006-01-02"),
		published,
		video.Duration,
	)
}
