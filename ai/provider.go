package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"google.golang.org/genai"

	"tube-brief/logger"
)

// Supported provider ids.
const (
	ProviderGemini           = "gemini"
	ProviderOpenAI           = "openai"
	ProviderOpenAICompatible = "openai-compatible"
)

// maxToolTurns bounds the function-calling loop: each turn is one model call
// optionally followed by tool execution.
const maxToolTurns = 5

// Settings selects the backend for one generation call. Resolved per user by
// the settings repository; the gateway itself never touches storage.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// Usage is the normalized token accounting across backends.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// GenerationResult is sanitized model text plus accumulated usage.
type GenerationResult struct {
	Text  string
	Usage Usage
}

// Options carries the optional system instruction and tool set for one call.
type Options struct {
	SystemInstruction string
	Tools             *Tools
}

// Client binds Settings to Generate so callers that hold per-user settings
// can pass a single value around.
type Client struct {
	Settings Settings
}

func (c Client) Generate(ctx context.Context, prompt string, opts *Options) (*GenerationResult, error) {
	return Generate(ctx, prompt, c.Settings, opts)
}

// Generate produces text with the backend selected by settings.
// A missing API key is a hard precondition failure; it is never retried.
func Generate(ctx context.Context, prompt string, settings Settings, opts *Options) (*GenerationResult, error) {
	if settings.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q: add one in settings", settings.Provider)
	}

	switch settings.Provider {
	case ProviderGemini:
		return generateWithGemini(ctx, prompt, settings, opts)
	case ProviderOpenAI, ProviderOpenAICompatible:
		return generateWithOpenAI(ctx, prompt, settings, opts)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", settings.Provider)
	}
}

func generateWithGemini(ctx context.Context, prompt string, settings Settings, opts *Options) (*GenerationResult, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: settings.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	cfg := &genai.GenerateContentConfig{}
	if opts != nil && opts.SystemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: opts.SystemInstruction}}}
	}
	// Gemini's search grounding is a single opaque tool; there is no
	// function-dispatch loop on this backend.
	if opts != nil && opts.Tools != nil && opts.Tools.GoogleSearch {
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	result, err := client.Models.GenerateContent(ctx, settings.Model, genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}

	out := &GenerationResult{Text: SanitizeModelOutput(result.Text())}
	if result.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}
	return out, nil
}

func generateWithOpenAI(ctx context.Context, prompt string, settings Settings, opts *Options) (*GenerationResult, error) {
	clientOpts := []option.RequestOption{option.WithAPIKey(settings.APIKey)}
	// Self-hosted/compatible endpoints (Ollama, LM Studio, vLLM, ...)
	if settings.Provider == ProviderOpenAICompatible && settings.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(settings.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	var messages []openai.ChatCompletionMessageParamUnion
	if opts != nil && opts.SystemInstruction != "" {
		messages = append(messages, openai.SystemMessage(opts.SystemInstruction))
	}
	messages = append(messages, openai.UserMessage(prompt))

	if opts == nil || opts.Tools == nil || len(opts.Tools.Functions) == 0 {
		completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(settings.Model),
			Messages: messages,
		})
		if err != nil {
			return nil, err
		}
		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("no response choices from %s", settings.Provider)
		}
		return &GenerationResult{
			Text: SanitizeModelOutput(completion.Choices[0].Message.Content),
			Usage: Usage{
				InputTokens:  completion.Usage.PromptTokens,
				OutputTokens: completion.Usage.CompletionTokens,
				TotalTokens:  completion.Usage.TotalTokens,
			},
		}, nil
	}

	return runToolLoop(ctx, &client, settings, messages, opts.Tools)
}

// runToolLoop executes the function-calling conversation. Usage accumulates
// across every turn; the loop ends on the first turn without tool calls.
// Hitting the turn limit yields a sentinel error-text result, not an error,
// so callers always get a usable string.
func runToolLoop(ctx context.Context, client *openai.Client, settings Settings, messages []openai.ChatCompletionMessageParamUnion, tools *Tools) (*GenerationResult, error) {
	toolParams := make([]openai.ChatCompletionToolUnionParam, 0, len(tools.Functions))
	for _, fn := range tools.Functions {
		toolParams = append(toolParams, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        fn.Name,
			Description: openai.String(fn.Description),
			Parameters:  openai.FunctionParameters(fn.Parameters),
		}))
	}

	var totalInput, totalOutput int64

	for turn := 0; turn < maxToolTurns; turn++ {
		completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(settings.Model),
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return nil, err
		}

		totalInput += completion.Usage.PromptTokens
		totalOutput += completion.Usage.CompletionTokens

		if len(completion.Choices) == 0 {
			return nil, fmt.Errorf("no response choices from %s", settings.Provider)
		}
		message := completion.Choices[0].Message

		if len(message.ToolCalls) == 0 {
			return &GenerationResult{
				Text: SanitizeModelOutput(message.Content),
				Usage: Usage{
					InputTokens:  totalInput,
					OutputTokens: totalOutput,
					TotalTokens:  totalInput + totalOutput,
				},
			}, nil
		}

		messages = append(messages, message.ToParam())

		for _, call := range message.ToolCalls {
			name := call.Function.Name
			var args map[string]any
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				args = map[string]any{}
			}

			// Unknown tools and executor failures become inline error strings
			// fed back to the model so it can recover.
			result := tools.Execute(ctx, name, args)
			logger.InfoWithFields("tool executed", logger.Fields{
				"tool":    name,
				"preview": preview(result, 100),
			})

			messages = append(messages, openai.ToolMessage(result, call.ID))
		}
	}

	return &GenerationResult{
		Text: "Error: Maximum tool execution turns reached.",
		Usage: Usage{
			InputTokens:  totalInput,
			OutputTokens: totalOutput,
			TotalTokens:  totalInput + totalOutput,
		},
	}, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
