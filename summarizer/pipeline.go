// Package summarizer runs the multi-pass summarization pipeline: structural
// analysis, deep summary, and an optional translation pass, with a checkpoint
// written to storage after every pass.
package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tube-brief/ai"
	"tube-brief/logger"
	"tube-brief/prompts"
)

// maxTranscriptLength caps the transcript fed to the model, roughly 100k
// characters. Longer transcripts are truncated with a marker.
const maxTranscriptLength = 100000

const truncationMarker = "\n\n[Transcript truncated...]"

// Generator produces text for a prompt. The ai package's Generate function
// fits after currying in per-user settings.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts *ai.Options) (*ai.GenerationResult, error)
}

// TranscriptSource provides the timestamped transcript text for a video.
type TranscriptSource interface {
	FetchText(ctx context.Context, youtubeID string) (string, error)
}

// SummaryStore is the slice of the summary repository the pipeline writes
// through. Every method bumps the attempt's heartbeat.
type SummaryStore interface {
	SetTranscript(ctx context.Context, id primitive.ObjectID, transcript string) error
	SetPass1(ctx context.Context, id primitive.ObjectID, analysis, category, provider, providerModel string) error
	SetPass2(ctx context.Context, id primitive.ObjectID, markdown string) error
	Complete(ctx context.Context, id primitive.ObjectID, markdown string, passes int, targetLanguage string, inputTokens, outputTokens, totalTokens int64) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, message string) error
}

// ExportTrigger fires after a successful run. Failures are the trigger's
// problem; the pipeline result is already committed.
type ExportTrigger func(summaryID primitive.ObjectID)

// Pipeline owns one video's summarization run.
type Pipeline struct {
	generator   Generator
	transcripts TranscriptSource
	store       SummaryStore
	export      ExportTrigger
	settings    ai.Settings
}

// Result is what a completed run produced.
type Result struct {
	Markdown           string
	Category           string
	StructuralAnalysis string
	PassesCompleted    int
	Usage              ai.Usage
}

func New(generator Generator, transcripts TranscriptSource, store SummaryStore, settings ai.Settings, export ExportTrigger) *Pipeline {
	return &Pipeline{
		generator:   generator,
		transcripts: transcripts,
		store:       store,
		export:      export,
		settings:    settings,
	}
}

// Run executes all passes for one summary attempt. Each pass persists its
// checkpoint before the next starts; a pass failure marks the attempt failed
// with a pass-labeled message and returns the underlying error. Translation
// is the exception: its failure degrades to the English summary with a note.
func (p *Pipeline) Run(ctx context.Context, youtubeID string, summaryID primitive.ObjectID, targetLanguage string) (*Result, error) {
	start := time.Now()
	if targetLanguage == "" {
		targetLanguage = "en"
	}

	transcript, err := p.transcripts.FetchText(ctx, youtubeID)
	if err != nil {
		p.fail(ctx, summaryID, fmt.Sprintf("Failed to fetch transcript: %s", err))
		return nil, err
	}

	if len(transcript) > maxTranscriptLength {
		transcript = transcript[:maxTranscriptLength] + truncationMarker
	}

	if err := p.store.SetTranscript(ctx, summaryID, transcript); err != nil {
		return nil, fmt.Errorf("persist transcript: %w", err)
	}

	var totalUsage ai.Usage

	// Pass 1: structural analysis.
	analysis, category, err := p.runStructuralAnalysis(ctx, transcript, &totalUsage)
	if err != nil {
		p.fail(ctx, summaryID, fmt.Sprintf("Pass 1 failed: %s", err))
		return nil, err
	}
	if err := p.store.SetPass1(ctx, summaryID, analysis, category, p.settings.Provider, p.settings.Model); err != nil {
		return nil, fmt.Errorf("persist pass 1: %w", err)
	}

	// Pass 2: deep summary.
	deepResult, err := p.generator.Generate(ctx, prompts.DeepSummary(transcript, analysis, category), nil)
	if err != nil {
		p.fail(ctx, summaryID, fmt.Sprintf("Pass 2 failed: %s", err))
		return nil, err
	}
	totalUsage = addUsage(totalUsage, deepResult.Usage)
	finalMarkdown := deepResult.Text
	if err := p.store.SetPass2(ctx, summaryID, finalMarkdown); err != nil {
		return nil, fmt.Errorf("persist pass 2: %w", err)
	}

	// Pass 3: translation, skipped for English. Its failure never fails the
	// run; the English summary ships with a note instead.
	passes := 2
	if targetLanguage != "en" {
		passes = 3
		transResult, err := p.generator.Generate(ctx, prompts.Translation(finalMarkdown, targetLanguage), nil)
		if err != nil {
			logger.Log.Errorf("translation pass failed for summary %s: %v", summaryID.Hex(), err)
			finalMarkdown += fmt.Sprintf("\n\n> **Note:** Translation to %s failed. Showing original English summary.", targetLanguage)
		} else {
			finalMarkdown = transResult.Text
			totalUsage = addUsage(totalUsage, transResult.Usage)
		}
	}

	durationSec := int(time.Since(start).Round(time.Second).Seconds())
	finalMarkdown += fmt.Sprintf("\n\n---\n*AI Usage: [Input: %d | Output: %d | Total: %d tokens | Duration: %ds]*",
		totalUsage.InputTokens, totalUsage.OutputTokens, totalUsage.TotalTokens, durationSec)

	if err := p.store.Complete(ctx, summaryID, finalMarkdown, passes, targetLanguage,
		totalUsage.InputTokens, totalUsage.OutputTokens, totalUsage.TotalTokens); err != nil {
		return nil, fmt.Errorf("finalize summary: %w", err)
	}

	if p.export != nil {
		p.export(summaryID)
	}

	return &Result{
		Markdown:           finalMarkdown,
		Category:           category,
		StructuralAnalysis: analysis,
		PassesCompleted:    passes,
		Usage:              totalUsage,
	}, nil
}

// runStructuralAnalysis executes pass 1 and resolves the category. When the
// analysis is not parseable JSON, a lightweight classification call over the
// first 3000 characters decides the category instead.
func (p *Pipeline) runStructuralAnalysis(ctx context.Context, transcript string, totalUsage *ai.Usage) (analysis, category string, err error) {
	result, err := p.generator.Generate(ctx, prompts.StructuralAnalysis(transcript), nil)
	if err != nil {
		return "", "", err
	}
	*totalUsage = addUsage(*totalUsage, result.Usage)
	analysis = result.Text

	category, ok := extractCategory(analysis)
	if !ok {
		sample := transcript
		if len(sample) > 3000 {
			sample = sample[:3000]
		}
		catResult, err := p.generator.Generate(ctx, prompts.CategoryDetection(sample), nil)
		if err != nil {
			return "", "", err
		}
		*totalUsage = addUsage(*totalUsage, catResult.Usage)

		category = strings.ToLower(strings.TrimSpace(catResult.Text))
		if !prompts.IsValidCategory(category) {
			category = prompts.CategoryGeneral
		}
	}
	return analysis, category, nil
}

// extractCategory pulls the category field out of the structural analysis.
// Models sometimes wrap the JSON in a code fence despite instructions, so a
// fenced payload is tolerated.
func extractCategory(analysis string) (string, bool) {
	payload := strings.TrimSpace(analysis)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")

	var parsed struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return "", false
	}
	if parsed.Category == "" {
		return prompts.CategoryGeneral, true
	}
	return parsed.Category, true
}

func (p *Pipeline) fail(ctx context.Context, summaryID primitive.ObjectID, message string) {
	if err := p.store.MarkFailed(ctx, summaryID, message); err != nil {
		logger.Log.Errorf("failed to mark summary %s failed: %v", summaryID.Hex(), err)
	}
}

func addUsage(a, b ai.Usage) ai.Usage {
	return ai.Usage{
		InputTokens:  a.InputTokens + b.InputTokens,
		OutputTokens: a.OutputTokens + b.OutputTokens,
		TotalTokens:  a.TotalTokens + b.TotalTokens,
	}
}
