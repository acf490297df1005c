package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/ai"
	"tube-brief/api/router"
	"tube-brief/config"
	"tube-brief/db"
	"tube-brief/eventbus"
	"tube-brief/events"
	"tube-brief/exporter"
	"tube-brief/logger"
	"tube-brief/quota"
	"tube-brief/repositories"
	"tube-brief/services"
	"tube-brief/summarizer"
	"tube-brief/transcript"
)

// @title           Tube-Brief API
// @version         1.0
// @description     Async AI summarization and chat for YouTube videos
// @BasePath        /api/v1
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := db.Init(ctx); err != nil {
		logger.Log.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	videoRepo := repositories.NewVideoRepository(db.Database())
	summaryRepo := repositories.NewSummaryRepository(db.Database())
	chatRepo := repositories.NewChatMessageRepository(db.Database())
	tagRepo := repositories.NewTagRepository(db.Database())
	settingsRepo := repositories.NewUserSettingsRepository(db.Database())

	transcripts := transcript.NewClient(videoRepo, cfg.Transcript.BaseURL,
		time.Duration(cfg.Transcript.TimeoutSeconds)*time.Second)

	exp := exporter.New(summaryRepo, videoRepo, tagRepo, cfg.Export.DataDir)

	var wg sync.WaitGroup
	exportTrigger := buildExportTrigger(ctx, &wg, cfg, exp, summaryRepo, videoRepo)

	runner := func(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, settings ai.Settings, targetLanguage string) error {
		pipeline := summarizer.New(ai.Client{Settings: settings}, transcripts, summaryRepo, settings, exportTrigger)
		_, err := pipeline.Run(ctx, youtubeID, summaryID, targetLanguage)
		return err
	}

	quotaLimiter := quota.NewSummaryQuotaLimiterFromConfig(cfg)
	summarySvc := services.NewSummaryService(videoRepo, summaryRepo, settingsRepo, quotaLimiter, runner)
	chatSvc := services.NewChatService(videoRepo, summaryRepo, chatRepo, settingsRepo, nil)

	r := router.New(router.Deps{
		Videos:      videoRepo,
		Summaries:   summaryRepo,
		Tags:        tagRepo,
		Settings:    settingsRepo,
		Transcripts: transcripts,
		SummarySvc:  summarySvc,
		ChatSvc:     chatSvc,
	})

	corsOptions := cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "X-User-ID"},
	}
	if len(corsOptions.AllowedOrigins) == 0 {
		corsOptions.AllowedOrigins = []string{"*"}
	}
	handler := cors.New(corsOptions).Handler(r)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: handler,
	}

	go func() {
		logger.Log.Infof("server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Errorf("server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Log.Info("received shutdown signal, shutting down...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("server shutdown error: %v", err)
	}

	cancel()
	wg.Wait()
	logger.Log.Info("server stopped")
}

// buildExportTrigger wires the post-completion export side effect. With
// Kafka enabled, completion events go through the event bus and a consumer
// with delayed retries and a DLQ performs the writes; otherwise the export
// runs in a plain goroutine.
func buildExportTrigger(ctx context.Context, wg *sync.WaitGroup, cfg config.AppConfig, exp *exporter.Exporter, summaryRepo *repositories.SummaryRepository, videoRepo *repositories.VideoRepository) summarizer.ExportTrigger {
	if !cfg.Kafka.Enabled {
		return func(summaryID primitive.ObjectID) {
			go func() {
				exportCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
				defer cancel()
				if err := exp.Export(exportCtx, summaryID); err != nil {
					logger.Log.Errorf("failed to export summary %s: %v", summaryID.Hex(), err)
				}
			}()
		}
	}

	if err := eventbus.EnsureTopics(cfg.Kafka.Brokers, eventbus.TopicSummaryEvents, 3); err != nil {
		logger.Log.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Kafka.Brokers)
	if err != nil {
		logger.Log.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := bus.Subscribe(ctx, cfg.Kafka.GroupID, eventbus.TopicSummaryEvents, func(ctx context.Context, ev eventbus.Event) error {
			var peek struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(ev.Payload, &peek); err != nil {
				return err
			}
			switch events.EventType(peek.Type) {
			case events.SummaryCompleted:
				v, err := eventbus.DecodeJSON[events.SummaryCompletedEvent](ev)
				if err != nil {
					return err
				}
				return exp.Export(ctx, v.SummaryID)
			default:
				// not for this consumer, commit and move on
				return nil
			}
		})
		if err != nil && err != context.Canceled {
			logger.Log.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := bus.StartRetryReinjector(ctx, cfg.Kafka.GroupID+".retry", eventbus.TopicSummaryEvents)
		if err != nil && err != context.Canceled {
			logger.Log.Errorf("retry reinjector error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		bus.Close()
	}()

	return func(summaryID primitive.ObjectID) {
		go func() {
			publishCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			summary, err := summaryRepo.FindByID(publishCtx, summaryID)
			if err != nil {
				logger.Log.Errorf("failed to load summary %s for export event: %v", summaryID.Hex(), err)
				return
			}
			userID := ""
			if video, err := videoRepo.FindByID(publishCtx, summary.VideoID); err == nil {
				userID = video.UserID
			}

			payload := events.SummaryCompletedEvent{
				BaseEvent: events.NewBaseEvent(events.SummaryCompleted, "server"),
				SummaryID: summaryID,
				VideoID:   summary.VideoID,
				UserID:    userID,
			}
			evt, err := eventbus.NewJSONEvent(payload.ID, payload, 0)
			if err != nil {
				logger.Log.Errorf("failed to build export event: %v", err)
				return
			}
			if err := bus.Publish(publishCtx, eventbus.TopicSummaryEvents.Base(), evt); err != nil {
				logger.Log.Errorf("failed to publish export event: %v", err)
			}
		}()
	}
}
