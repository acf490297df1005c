// Package transcript fetches YouTube captions through the timedtext API,
// with a database-backed cache so repeat summarizations skip the network.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tube-brief/logger"
)

// ErrTranscriptsDisabled means the video owner turned captions off. Callers
// must not retry in another language.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

// ErrNoTranscript means no caption track exists in any attempted language.
var ErrNoTranscript = errors.New("no transcript found for this video")

// Segment is one caption cue, in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Result is a full transcript for one video.
type Result struct {
	VideoID  string    `json:"video_id"`
	Language string    `json:"language"`
	Segments []Segment `json:"transcript"`
}

// Text renders the transcript as timestamped lines, one per segment:
// [M:SS] text
func (r *Result) Text() string {
	lines := make([]string, 0, len(r.Segments))
	for _, seg := range r.Segments {
		minutes := int(seg.Start) / 60
		seconds := int(seg.Start) % 60
		lines = append(lines, fmt.Sprintf("[%d:%02d] %s", minutes, seconds, seg.Text))
	}
	return strings.Join(lines, "\n")
}

// Cache persists fetched transcripts. The video repository satisfies this
// with the transcript_data field on the videos collection.
type Cache interface {
	GetTranscriptData(ctx context.Context, youtubeID string) (string, error)
	SetTranscriptData(ctx context.Context, youtubeID, data string) error
}

// Client fetches transcripts with a cache in front of the timedtext API.
type Client struct {
	cache      Cache
	httpClient *http.Client
	baseURL    string
}

func NewClient(cache Cache, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://www.youtube.com/api/timedtext"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cache:      cache,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// Fetch returns the transcript for a video, preferring the cache. On a miss
// it tries the requested language first, then any available language. A
// disabled-captions response aborts immediately.
func (c *Client) Fetch(ctx context.Context, youtubeID, lang string) (*Result, error) {
	if lang == "" {
		lang = "en"
	}

	if cached := c.fromCache(ctx, youtubeID); cached != nil {
		return cached, nil
	}

	attempts := []string{lang, ""}
	var lastErr error

	for _, attemptLang := range attempts {
		segments, err := c.fetchTimedtext(ctx, youtubeID, attemptLang)
		if err != nil {
			if errors.Is(err, ErrTranscriptsDisabled) {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(segments) == 0 {
			continue
		}

		label := attemptLang
		if label == "" {
			label = "any"
		}
		result := &Result{VideoID: youtubeID, Language: label, Segments: segments}

		// Cache write failures are logged and swallowed.
		if data, err := json.Marshal(result); err == nil {
			if err := c.cache.SetTranscriptData(ctx, youtubeID, string(data)); err != nil {
				logger.Log.Errorf("failed to cache transcript for %s: %v", youtubeID, err)
			}
		}
		return result, nil
	}

	if lastErr == nil {
		return nil, ErrNoTranscript
	}
	msg := strings.ToLower(lastErr.Error())
	if strings.Contains(msg, "not available") || strings.Contains(msg, "no transcript") || strings.Contains(msg, "not found") {
		return nil, ErrNoTranscript
	}
	return nil, fmt.Errorf("failed to fetch transcript: %w", lastErr)
}

// FetchText returns the transcript rendered as timestamped lines.
func (c *Client) FetchText(ctx context.Context, youtubeID string) (string, error) {
	result, err := c.Fetch(ctx, youtubeID, "en")
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

func (c *Client) fromCache(ctx context.Context, youtubeID string) *Result {
	data, err := c.cache.GetTranscriptData(ctx, youtubeID)
	if err != nil {
		logger.Log.Warnf("transcript cache lookup failed for %s: %v", youtubeID, err)
		return nil
	}
	if data == "" {
		return nil
	}
	var result Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		// corrupt cache entry, refetch
		return nil
	}
	return &result
}

func (c *Client) fetchTimedtext(ctx context.Context, youtubeID, lang string) ([]Segment, error) {
	params := url.Values{}
	params.Set("v", youtubeID)
	params.Set("fmt", "json3")
	if lang != "" {
		params.Set("lang", lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("timedtext request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, ErrTranscriptsDisabled
	case http.StatusNotFound:
		return nil, fmt.Errorf("captions not found for video %s", youtubeID)
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited by YouTube")
	default:
		return nil, fmt.Errorf("timedtext API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseTimedtext(body)
}

type timedtextResponse struct {
	Events []struct {
		TStartMs    int64 `json:"tStartMs"`
		DDurationMs int64 `json:"dDurationMs"`
		Segs        []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// parseTimedtext converts a json3 timedtext payload to segments. Events
// without text segs (window/style events) are skipped.
func parseTimedtext(data []byte) ([]Segment, error) {
	var resp timedtextResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal timedtext JSON: %w", err)
	}

	var segments []Segment
	for _, event := range resp.Events {
		if len(event.Segs) == 0 {
			continue
		}
		var text strings.Builder
		for _, seg := range event.Segs {
			text.WriteString(seg.UTF8)
		}
		trimmed := strings.TrimSpace(strings.ReplaceAll(text.String(), "\n", " "))
		if trimmed == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     trimmed,
			Start:    float64(event.TStartMs) / 1000.0,
			Duration: float64(event.DDurationMs) / 1000.0,
		})
	}
	return segments, nil
}
