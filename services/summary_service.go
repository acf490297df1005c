// Package services holds the application services between the HTTP handlers
// and the repositories: summary admission, chat, and translation.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/ai"
	"tube-brief/logger"
	"tube-brief/models"
)

// stuckTimeout is how long a processing attempt may go without a heartbeat
// before a new request is allowed to reap it.
const stuckTimeout = 10 * time.Minute

// pipelineTimeout bounds one full background summarization run.
const pipelineTimeout = 30 * time.Minute

var (
	// ErrAlreadyProcessing rejects a second concurrent attempt for one video.
	ErrAlreadyProcessing = errors.New("already processing")

	// ErrQuotaExceeded means the daily summary quota is exhausted.
	ErrQuotaExceeded = errors.New("daily summary quota exceeded")
)

// VideoStore is the video lookup slice the services need.
type VideoStore interface {
	FindByYouTubeID(ctx context.Context, userID, youtubeID string) (*models.Video, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
}

// SummaryAdmissionStore covers the summary repository methods the admission
// guard uses.
type SummaryAdmissionStore interface {
	Insert(ctx context.Context, s *models.Summary) (primitive.ObjectID, error)
	FindProcessingByVideo(ctx context.Context, videoID primitive.ObjectID) (*models.Summary, error)
	MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error
	MarkFailedIfProcessing(ctx context.Context, id primitive.ObjectID, message string) error
}

// SettingsResolver yields the effective AI settings for a user.
type SettingsResolver interface {
	Resolve(ctx context.Context, userID string) (ai.Settings, error)
}

// QuotaGate reserves one pipeline admission, or reports exhaustion.
type QuotaGate interface {
	WaitAndReserve(ctx context.Context) (bool, error)
}

// PipelineRunner executes one summarization run to its terminal state.
// Pass failures are persisted by the pipeline itself; the returned error is
// only for the caller's backstop.
type PipelineRunner func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error

// SummaryService admits summarization requests: at most one processing
// attempt per video, with stale attempts reaped on the next request.
type SummaryService struct {
	videos    VideoStore
	summaries SummaryAdmissionStore
	settings  SettingsResolver
	quota     QuotaGate
	run       PipelineRunner
}

func NewSummaryService(videos VideoStore, summaries SummaryAdmissionStore, settings SettingsResolver, quota QuotaGate, run PipelineRunner) *SummaryService {
	return &SummaryService{
		videos:    videos,
		summaries: summaries,
		settings:  settings,
		quota:     quota,
		run:       run,
	}
}

// Start admits a new summarization attempt for the caller's video and
// launches the pipeline in the background. The returned summary row is
// already persisted with status processing.
//
// Admission order: ownership lookup, staleness check against the in-flight
// attempt's heartbeat, quota reservation, row creation, launch.
func (s *SummaryService) Start(ctx context.Context, userID, youtubeID, targetLanguage string) (*models.Summary, error) {
	if targetLanguage == "" {
		targetLanguage = "en"
	}

	video, err := s.videos.FindByYouTubeID(ctx, userID, youtubeID)
	if err != nil {
		return nil, err
	}

	processing, err := s.summaries.FindProcessingByVideo(ctx, video.ID)
	if err != nil {
		return nil, err
	}
	if processing != nil {
		elapsed := time.Since(processing.UpdatedAt)
		if elapsed <= stuckTimeout {
			return nil, ErrAlreadyProcessing
		}
		// The attempt's heartbeat went silent; reap it and admit this one.
		minutes := int(math.Round(elapsed.Minutes()))
		if err := s.summaries.MarkFailed(ctx, processing.ID, fmt.Sprintf("Timed out after %d minutes", minutes)); err != nil {
			return nil, err
		}
		logger.WarnWithFields("reaped stale summary attempt", logger.Fields{
			"summary_id": processing.ID.Hex(),
			"video_id":   video.ID.Hex(),
			"minutes":    minutes,
		})
	}

	if s.quota != nil {
		ok, err := s.quota.WaitAndReserve(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrQuotaExceeded
		}
	}

	settings, err := s.settings.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &models.Summary{
		VideoID:        video.ID,
		Status:         models.SummaryStatusProcessing,
		Provider:       settings.Provider,
		ProviderModel:  settings.Model,
		TargetLanguage: targetLanguage,
	}
	if _, err := s.summaries.Insert(ctx, summary); err != nil {
		return nil, err
	}

	go s.runDetached(youtubeID, summary.ID, settings, targetLanguage)

	return summary, nil
}

// runDetached wraps the pipeline so that every exit path, including a panic,
// leaves the attempt in a terminal state. The conditional backstop never
// clobbers a pass-labeled failure already written by the pipeline.
func (s *SummaryService) runDetached(youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) {
	ctx, cancel := context.WithTimeout(context.Background(), pipelineTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Log.Errorf("summarization pipeline panic for summary %s: %v", summaryID.Hex(), r)
			s.backstop(summaryID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := s.run(ctx, youtubeID, summaryID, settings, targetLanguage); err != nil {
		logger.Log.Errorf("summarization pipeline failed for summary %s: %v", summaryID.Hex(), err)
		s.backstop(summaryID, err.Error())
	}
}

func (s *SummaryService) backstop(summaryID primitive.ObjectID, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.summaries.MarkFailedIfProcessing(ctx, summaryID, message); err != nil {
		logger.Log.Errorf("failed to backstop summary %s: %v", summaryID.Hex(), err)
	}
}
